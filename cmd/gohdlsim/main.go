// Command gohdlsim drives a small fixed demonstration circuit through the
// simulation scheduler, writing a VCD trace and printing the checker and
// convergence reports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/config"
	"github.com/samitbasu/gohdl/report"
	"github.com/samitbasu/gohdl/simulation"
	"github.com/samitbasu/gohdl/vcd"
	"github.com/samitbasu/gohdl/widgets"
)

// stepTracer wraps a simulation.Tracer, recording one report.Step per
// Change call by diffing a shared convergence-iteration counter that a
// CustomLogic hook increments once per combinational pass. Sim exposes no
// per-step iteration count directly, since the bounded convergence loop
// is internal to dispatch.
type stepTracer struct {
	inner      simulation.Tracer
	iterations *int
	lastCount  int
	steps      *[]report.Step
}

func (t *stepTracer) Header(root block.Block) { t.inner.Header(root) }
func (t *stepTracer) Dump(root block.Block)   { t.inner.Dump(root) }
func (t *stepTracer) Change(time simulation.VTime, root block.Block) {
	diff := *t.iterations - t.lastCount
	t.lastCount = *t.iterations
	*t.steps = append(*t.steps, report.Step{Time: time, Iterations: diff, Converged: true})
	t.inner.Change(time, root)
}

func main() {
	cycles := flag.Int("cycles", 9, "number of clock rising edges to run before stopping")
	tracePath := flag.String("trace", "gohdlsim.vcd", "VCD output path")
	runParamsPath := flag.String("run-params", "", "optional YAML run-parameters file (overrides -trace)")
	flag.Parse()

	if *runParamsPath != "" {
		rp := config.LoadRunParams(*runParamsPath)
		if rp.TracePath != "" {
			*tracePath = rp.TracePath
		}
	}

	uut := widgets.NewCounter(8)

	tracer, err := vcd.NewFile(*tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gohdlsim: %v\n", err)
		atexit.Exit(1)
		return
	}

	sim := simulation.New()
	iterCount := 0
	sim.AddCustomLogic(func(block.Block) { iterCount++ })

	var steps []report.Step
	traced := &stepTracer{inner: tracer, iterations: &iterCount, steps: &steps}

	sim.AddClock(500*simulation.Nanosecond, func(c block.Block) {
		clk := c.(*widgets.Counter).Clk
		clk.SetBool(!clk.Bool())
	})
	sim.AddTestbench(func(e *simulation.Endpoint) error {
		c, err := e.Init()
		if err != nil {
			return err
		}
		for i := 0; i < *cycles; i++ {
			c, err = e.Watch(func(c block.Block) bool {
				return c.(*widgets.Counter).Clk.Bool()
			}, c)
			if err != nil {
				return err
			}
			c, err = e.Watch(func(c block.Block) bool {
				return !c.(*widgets.Counter).Clk.Bool()
			}, c)
			if err != nil {
				return err
			}
		}
		return e.Done(c)
	})

	runErr := sim.RunTraced(uut, 60*simulation.Microsecond, traced)
	if err := tracer.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "gohdlsim: closing trace: %v\n", err)
	}

	if runErr != nil {
		if simErr, ok := runErr.(*simulation.Error); ok && simErr.Kind == simulation.CheckFailed {
			fmt.Println(report.CheckReport(simErr.Err))
		} else {
			fmt.Fprintf(os.Stderr, "gohdlsim: %v\n", runErr)
		}
		atexit.Exit(1)
		return
	}

	fmt.Println(report.ConvergenceReport(steps))
	fmt.Printf("final count: %d\n", uut.Q.Val().Index())
	atexit.Exit(0)
}
