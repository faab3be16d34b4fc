// Package signal implements the typed wire that carries values between
// components: Signal, its Direction, Constant, Clock, and the D flip-flop
// primitive (DFF). Connection is an explicit, idempotent act; values move
// through a staged next/committed current pair.
package signal

import (
	"fmt"

	"github.com/samitbasu/gohdl/bits"
)

// Direction classifies how a Signal may be driven and read.
type Direction int

const (
	// In signals are driven externally and read internally.
	In Direction = iota
	// Out signals are driven internally and read externally.
	Out
	// Local signals are driven and read internally only.
	Local
	// InOut signals are bidirectional (tri-state pins); treated as both
	// driven and read.
	InOut
)

// String renders the direction as its Go constant name ("In", "Out",
// "Local", "InOut").
func (d Direction) String() string {
	switch d {
	case In:
		return "In"
	case Out:
		return "Out"
	case Local:
		return "Local"
	case InOut:
		return "InOut"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// TypeKind distinguishes the shapes a TypeDescriptor can describe.
type TypeKind int

const (
	// KindBit is a single-bit scalar.
	KindBit TypeKind = iota
	// KindBits is a plain N-bit scalar (N recorded separately on the
	// owning Atom/Signal, not duplicated here).
	KindBits
	// KindEnum is an N-bit value whose distinct values carry labels.
	KindEnum
	// KindComposite is a named aggregate of sub-fields.
	KindComposite
)

// TypeDescriptor names a Signal's logical type, independent of its raw bit
// width, for Verilog enum-constant generation and VCD variable naming.
type TypeDescriptor struct {
	Name   string
	Kind   TypeKind
	Labels []string         // populated when Kind == KindEnum, declaration order is the ordinal
	Fields []TypeDescriptor // populated when Kind == KindComposite
}

// BitType is the default scalar type descriptor for an N-bit value.
func BitType(width int) TypeDescriptor {
	if width == 1 {
		return TypeDescriptor{Name: "bit", Kind: KindBit}
	}
	return TypeDescriptor{Name: fmt.Sprintf("bits%d", width), Kind: KindBits}
}

// EnumType builds an enum type descriptor. Ordinal assignment is the
// declaration order of labels, starting at 0, and callers must preserve
// that order: generated code and user comparisons both depend on it.
func EnumType(name string, labels ...string) TypeDescriptor {
	return TypeDescriptor{Name: name, Kind: KindEnum, Labels: labels}
}

// CompositeType builds a struct-shaped type descriptor.
func CompositeType(name string, fields ...TypeDescriptor) TypeDescriptor {
	return TypeDescriptor{Name: name, Kind: KindComposite, Fields: fields}
}

// Constraint is a single physical attribute attached to one bit of a
// Signal: pin location, I/O standard, timing, or slew. Constraints are
// indexed per-bit because a wide bus may fan out to pins with different
// physical properties.
type Constraint struct {
	Bit       int
	Pin       string
	IOStandard string
	TimingPs   int
	Slew       string
}

// Signal is a named wire carrying a bits.Bits value. Values are mutated
// only through SetNext; Commit moves the staged value into the current value
// between simulation steps.
type Signal struct {
	name      string
	dir       Direction
	typ       TypeDescriptor
	cur       bits.Bits
	next      bits.Bits
	dirty     bool
	changed   bool
	connected bool
	isConst   bool
	constrs   []Constraint
	drivers   []string
}

// New creates a Signal of the given name, direction, width, and type.
func New(name string, dir Direction, width int, typ TypeDescriptor) *Signal {
	z := bits.Zero(width)
	return &Signal{name: name, dir: dir, typ: typ, cur: z, next: z}
}

// NewConstant creates an immutable Signal whose value is fixed at
// construction. Constants are always reported as connected, since nothing
// ever needs to drive them, and lower to a Verilog localparam.
func NewConstant(name string, value bits.Bits, typ TypeDescriptor) *Signal {
	return &Signal{
		name: name, dir: Local, typ: typ,
		cur: value, next: value, connected: true, isConst: true,
	}
}

// Name returns the signal's declared name.
func (s *Signal) Name() string { return s.name }

// Direction returns the signal's direction.
func (s *Signal) Direction() Direction { return s.dir }

// Type returns the signal's type descriptor.
func (s *Signal) Type() TypeDescriptor { return s.typ }

// Width returns the bit width of the signal's value.
func (s *Signal) Width() int { return s.cur.Width() }

// IsConstant reports whether the signal is a Constant.
func (s *Signal) IsConstant() bool { return s.isConst }

// Val returns the signal's current (committed) value.
func (s *Signal) Val() bits.Bits { return s.cur }

// SetNext stages v to become the signal's value at the next Commit. It is
// a programmer error to write to a Constant.
func (s *Signal) SetNext(v bits.Bits) {
	if s.isConst {
		panic(fmt.Sprintf("signal %q: cannot assign to a constant", s.name))
	}
	s.next = v
	s.dirty = true
}

// Next returns the value currently staged for the next Commit (whether or
// not it has actually been written this step).
func (s *Signal) Next() bits.Bits { return s.next }

// Connect marks the signal as driven. Connecting is explicit and
// idempotent: calling it more than once from the same component has no
// additional effect.
func (s *Signal) Connect() { s.connected = true }

// ConnectBy marks the signal as driven by the named component path. Like
// Connect, it is idempotent for repeated calls with the same owner; unlike
// bare Connect, it lets the connectivity checker detect two distinct
// components both claiming to drive the same signal, so multi-driver
// wiring is rejected at check time instead of silently resolved.
func (s *Signal) ConnectBy(owner string) {
	s.connected = true
	for _, d := range s.drivers {
		if d == owner {
			return
		}
	}
	s.drivers = append(s.drivers, owner)
}

// Connected reports whether some component has called Connect on this
// signal.
func (s *Signal) Connected() bool { return s.connected }

// Drivers returns the distinct component paths that have called
// ConnectBy on this signal. Signals connected only via bare Connect
// report no drivers, since that call site records no identity.
func (s *Signal) Drivers() []string {
	return append([]string(nil), s.drivers...)
}

// HasChanged reports whether the most recent Commit changed the signal's
// value.
func (s *Signal) HasChanged() bool { return s.changed }

// Commit moves the staged Next value into Val, sets the changed flag if
// the value differs, and clears the dirty flag. It is called once per
// convergence iteration for every signal in the tree.
func (s *Signal) Commit() {
	if !s.dirty {
		s.changed = false
		return
	}
	s.changed = !s.cur.Equal(s.next)
	s.cur = s.next
	s.dirty = false
}

// AddConstraint attaches a physical constraint to the signal.
func (s *Signal) AddConstraint(c Constraint) {
	s.constrs = append(s.constrs, c)
}

// Constraints returns the signal's physical constraints.
func (s *Signal) Constraints() []Constraint {
	return s.constrs
}

// Clock is a boolean-valued Signal (width 1) distinguished by a marker
// type so edge detection can be expressed without special-casing regular
// one-bit signals.
type Clock struct {
	*Signal
}

// NewClock creates a new Clock signal, initially low.
func NewClock(name string) *Clock {
	return &Clock{Signal: New(name, In, 1, BitType(1))}
}

// Bool returns the clock's current (committed) value as a bool.
func (c *Clock) Bool() bool { return c.Val().Bit(0) }

// SetBool stages the clock's next boolean value.
func (c *Clock) SetBool(v bool) {
	c.SetNext(bits.FromUint64(1, boolToUint(v)))
}

func boolToUint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// RisingEdge reports whether this signal's pending (uncommitted) value
// carries the clock from low to high: it compares the still-staged Next
// against the currently committed Val, so it reads true for exactly the
// one convergence iteration that performs the transition — the iteration
// right after a driver calls SetBool(true) and before that value commits.
// Once committed, Val catches up to Next and RisingEdge reads false again
// without any separate per-step bookkeeping.
func (c *Clock) RisingEdge() bool {
	return !c.Val().Bit(0) && c.Next().Bit(0)
}

// DFF is a two-signal bundle (D input, Q output) sampled by a Clock. On
// each rising clock edge Q takes the value of D at that edge; between
// edges Q is stable and reads the previous value.
type DFF struct {
	D   *Signal
	Q   *Signal
	Clk *Clock
}

// NewDFF creates a DFF of the given width, named "<name>$d"/"<name>$q".
func NewDFF(name string, width int, clk *Clock) *DFF {
	return &DFF{
		D:   New(name+"$d", In, width, BitType(width)),
		Q:   New(name+"$q", Out, width, BitType(width)),
		Clk: clk,
	}
}

// Sample stages Q's next value. On a rising edge it captures D; otherwise
// it holds Q's current value. The owning component's Update should call
// this once per step.
func (f *DFF) Sample() {
	if f.Clk.RisingEdge() {
		f.Q.SetNext(f.D.Val())
		return
	}
	f.Q.SetNext(f.Q.Val())
}
