// Package simulation implements the cooperative-concurrent testbench
// scheduler and the bounded convergence loop it drives on every
// rendezvous.
//
// One coordinator goroutine owns the run; each testbench or clock driver
// runs in its own goroutine and exchanges the circuit value with the
// coordinator over unbuffered channels, so at any instant exactly one
// goroutine holds the circuit and data races are structurally
// impossible. A recovered testbench panic is converted into the SimPanic
// sentinel rather than swallowed.
package simulation

import (
	"sync"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/check"
)

// VTime is simulated time, measured in picoseconds.
type VTime uint64

const (
	Picosecond  VTime = 1
	Nanosecond        = 1000 * Picosecond
	Microsecond       = 1000 * Nanosecond
	Millisecond       = 1000 * Microsecond
	Second            = 1000 * Millisecond
)

// noMoreWork is the sentinel meaning "no worker is waiting on a Time or
// Clock trigger".
const noMoreWork VTime = ^VTime(0)

// MaxConvergeIterations bounds the per-rendezvous combinational update
// loop. A circuit that has not settled after this many iterations is
// presumed oscillating.
const MaxConvergeIterations = 100

// triggerKind is the closed sum type a worker can be waiting on.
type triggerKind int

const (
	triggerNever triggerKind = iota
	triggerHalt
	triggerTime
	triggerClock
	triggerFunction
)

type trigger struct {
	kind triggerKind
	time VTime
	fn   func(block.Block) bool
}

// message is a value handed off across a rendezvous: the trigger the
// sender is now waiting on, and the circuit value at the moment of
// handoff.
type message struct {
	trig    trigger
	circuit block.Block
}

// reply is what a testbench goroutine sends back to the coordinator:
// either a message, or notice that the goroutine panicked.
type reply struct {
	msg   message
	panic bool
}

// workerHandle is the coordinator's view of one registered testbench or
// clock-driver goroutine.
type workerHandle struct {
	id       int
	toWorker chan message
	trig     trigger
}

// Tracer receives circuit snapshots from a running Sim, letting a VCD (or
// other trace format) writer observe a run without the simulation
// package depending on it. vcd.Writer implements this interface.
type Tracer interface {
	Header(root block.Block)
	Dump(root block.Block)
	Change(time VTime, root block.Block)
}

// CustomLogic is a function run once per convergence iteration, before
// UpdateAll, letting a driver model things that don't fit the plain
// Update discipline (tri-state buses, open-collector shared lines).
type CustomLogic func(block.Block)

// Worker is the function signature testbench code implements. It
// receives an Endpoint to rendezvous with the coordinator through, and
// should return promptly on any error the Endpoint reports (a torn-down
// simulation).
type Worker func(e *Endpoint) error

// Sim is a scheduler: a set of registered testbench/clock-driver
// goroutines plus the single coordinator loop that hands the circuit
// value to whichever one is due next.
type Sim struct {
	workers     []*workerHandle
	recv        chan reply
	time        VTime
	wg          sync.WaitGroup
	customLogic []CustomLogic
}

// New constructs an empty Sim with no registered testbenches.
func New() *Sim {
	return &Sim{recv: make(chan reply)}
}

// AddCustomLogic registers a function invoked once per convergence
// iteration across the whole run.
func (s *Sim) AddCustomLogic(fn CustomLogic) {
	s.customLogic = append(s.customLogic, fn)
}

// endpoint registers a new worker slot and returns the Endpoint its
// goroutine will use to talk to the coordinator.
func (s *Sim) endpoint() *Endpoint {
	toWorker := make(chan message)
	id := len(s.workers)
	s.workers = append(s.workers, &workerHandle{id: id, toWorker: toWorker, trig: trigger{kind: triggerNever}})
	return &Endpoint{toSim: s.recv, fromSim: toWorker}
}

// AddTestbench registers w as a new testbench goroutine. w runs
// concurrently with every other registered testbench once Run/RunTraced
// starts; they rendezvous only through the Endpoint Sim hands w.
func (s *Sim) AddTestbench(w Worker) {
	ep := s.endpoint()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				// Best-effort: the coordinator may already have torn the
				// rendezvous down, in which case no one is listening and
				// this send would block forever.
				select {
				case ep.toSim <- reply{panic: true}:
				default:
				}
			}
		}()
		_ = w(ep)
	}()
}

// AddClock registers a free-running clock driver: toggle is invoked every
// interval of simulated time, starting at time 0.
func (s *Sim) AddClock(interval VTime, toggle func(block.Block)) {
	s.AddTestbench(func(e *Endpoint) error {
		root, err := e.Init()
		if err != nil {
			return err
		}
		for {
			root, err = e.Clock(interval, root)
			if err != nil {
				return err
			}
			toggle(root)
		}
	})
}

// AddPhasedClock is AddClock with an initial delay before the first
// toggle, letting a driver stagger several clock domains.
func (s *Sim) AddPhasedClock(interval, phaseDelay VTime, toggle func(block.Block)) {
	s.AddTestbench(func(e *Endpoint) error {
		root, err := e.Init()
		if err != nil {
			return err
		}
		root, err = e.Wait(phaseDelay, root)
		if err != nil {
			return err
		}
		for {
			root, err = e.Clock(interval, root)
			if err != nil {
				return err
			}
			toggle(root)
		}
	})
}

func (s *Sim) terminate() {
	for _, w := range s.workers {
		close(w.toWorker)
	}
	s.workers = nil
	s.wg.Wait()
}

// dispatch hands root to worker idx, waits for it to rendezvous back, and
// runs the bounded convergence loop on whatever it staged.
func (s *Sim) dispatch(idx int, root block.Block) (block.Block, error) {
	w := s.workers[idx]
	w.toWorker <- message{trig: trigger{kind: triggerTime, time: s.time}, circuit: root}
	r, ok := <-s.recv
	if !ok || r.panic {
		return nil, kindErr(SimPanic)
	}
	w.trig = r.msg.trig
	root = r.msg.circuit

	converged := false
	for i := 0; i < MaxConvergeIterations; i++ {
		for _, cl := range s.customLogic {
			cl(root)
		}
		root.UpdateAll()
		if !root.HasChanged() {
			converged = true
			break
		}
	}
	if !converged {
		return nil, kindErr(FailedToConverge)
	}
	trace("dispatch", "worker", idx, "time", s.time)
	return root, nil
}

// scanWorkers finds the earliest trigger among all registered workers.
// Priority order: a Halt trigger wins outright; a ready Function (Watch)
// predicate wins at the current time; otherwise the earliest Time/Clock
// deadline wins.
func (s *Sim) scanWorkers(root block.Block) (t VTime, idx int, clocksOnly, halted bool) {
	for _, w := range s.workers {
		if w.trig.kind == triggerHalt {
			return 0, 0, false, true
		}
	}
	minTime := noMoreWork
	minIdx := 0
	onlyClockWaiters := true
	for _, w := range s.workers {
		switch w.trig.kind {
		case triggerHalt:
			return 0, 0, false, true
		case triggerNever:
			continue
		case triggerTime:
			onlyClockWaiters = false
			if w.trig.time < minTime {
				minTime, minIdx = w.trig.time, w.id
			}
		case triggerFunction:
			onlyClockWaiters = false
			if w.trig.fn(root) {
				return s.time, w.id, false, false
			}
		case triggerClock:
			if w.trig.time < minTime {
				minTime, minIdx = w.trig.time, w.id
			}
		}
	}
	return minTime, minIdx, onlyClockWaiters, false
}

// Run drives the simulation until every testbench calls Done, a
// testbench calls Halt, or maxTime is reached. It runs ConnectAll and the
// connectivity checker on root before starting.
func (s *Sim) Run(root block.Block, maxTime VTime) error {
	return s.run(root, maxTime, nil)
}

// RunTraced is Run, additionally feeding every circuit snapshot to
// tracer (ordinarily a *vcd.Writer).
func (s *Sim) RunTraced(root block.Block, maxTime VTime, tracer Tracer) error {
	return s.run(root, maxTime, tracer)
}

func (s *Sim) run(root block.Block, maxTime VTime, tracer Tracer) error {
	root.ConnectAll()
	if err := check.Run(root); err != nil {
		return &Error{Kind: CheckFailed, Err: err}
	}
	if tracer != nil {
		tracer.Header(root)
	}

	for id := range s.workers {
		var err error
		root, err = s.dispatch(id, root)
		if err != nil {
			s.terminate()
			return err
		}
	}
	if tracer != nil {
		tracer.Dump(root)
	}

	halted := false
	for s.time < maxTime {
		t, idx, clocksOnly, h := s.scanWorkers(root)
		if t == noMoreWork || clocksOnly || h {
			halted = h
			break
		}
		s.time = t
		var err error
		root, err = s.dispatch(idx, root)
		if err != nil {
			s.terminate()
			return err
		}
		if tracer != nil {
			tracer.Change(s.time, root)
		}
		waveform("rendezvous", "time", s.time)
	}
	s.terminate()

	if s.time >= maxTime {
		return kindErr(MaxTimeReached)
	}
	if halted {
		return kindErr(SimHalted)
	}
	return nil
}

// Endpoint is what a testbench goroutine uses to rendezvous with the
// coordinator: stage a trigger, hand back the circuit, block until the
// coordinator returns it (possibly much later in simulated time).
type Endpoint struct {
	time    VTime
	toSim   chan reply
	fromSim chan message
}

// Init blocks until the coordinator's first dispatch, returning the
// initial circuit value.
func (e *Endpoint) Init() (block.Block, error) {
	m, ok := <-e.fromSim
	if !ok {
		return nil, kindErr(SimTerminated)
	}
	return m.circuit, nil
}

func (e *Endpoint) rendezvous(t trigger, c block.Block) (block.Block, error) {
	e.toSim <- reply{msg: message{trig: t, circuit: c}}
	m, ok := <-e.fromSim
	if !ok {
		return nil, kindErr(SimTerminated)
	}
	if m.trig.kind == triggerTime || m.trig.kind == triggerClock {
		e.time = m.trig.time
	}
	return m.circuit, nil
}

// Wait stages a Time trigger delta simulated-time units from now and
// blocks until the coordinator schedules this worker again.
func (e *Endpoint) Wait(delta VTime, c block.Block) (block.Block, error) {
	return e.rendezvous(trigger{kind: triggerTime, time: delta + e.time}, c)
}

// Clock stages a Clock trigger delta simulated-time units from now.
// Clock triggers behave like Time triggers in the scan priority except
// that a worker waiting only on Clock triggers never by itself keeps a
// run alive: a run with only clocks left waiting is quiescent.
func (e *Endpoint) Clock(delta VTime, c block.Block) (block.Block, error) {
	return e.rendezvous(trigger{kind: triggerClock, time: delta + e.time}, c)
}

// Watch stages a Function trigger: the coordinator re-evaluates pred
// against the current circuit on every rendezvous scan and wakes this
// worker the moment it returns true.
func (e *Endpoint) Watch(pred func(block.Block) bool, c block.Block) (block.Block, error) {
	return e.rendezvous(trigger{kind: triggerFunction, fn: pred}, c)
}

// Done stages a Never trigger: this worker has finished and will not be
// scheduled again, but the run continues for other workers.
func (e *Endpoint) Done(c block.Block) error {
	e.toSim <- reply{msg: message{trig: trigger{kind: triggerNever}, circuit: c}}
	return nil
}

// Halt stages a Halt trigger, which ends the whole run with SimHalted as
// soon as the coordinator next scans triggers. Halt always returns a
// non-nil error so a testbench can `return e.Halt(c)` directly.
func (e *Endpoint) Halt(c block.Block) error {
	e.toSim <- reply{msg: message{trig: trigger{kind: triggerHalt}, circuit: c}}
	return kindErr(SimHalted)
}

// Time returns the simulated time as of this Endpoint's last rendezvous.
func (e *Endpoint) Time() VTime { return e.time }
