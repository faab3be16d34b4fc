package block

import "github.com/samitbasu/gohdl/signal"

type namedSignal struct {
	name string
	sig  *signal.Signal
}

type namespaceGroup struct {
	name    string
	signals []namedSignal
}

type namedChild struct {
	name  string
	block Block
}

// Child names one direct submodule instance.
type Child struct {
	Name  string
	Block Block
}

// Introspectable is implemented (via promoted BaseBlock methods) by every
// component built on BaseBlock. The connectivity checker uses it to walk
// the tree directly, independent of the Visitor/Accept machinery used for
// Verilog emission and tracing.
type Introspectable interface {
	OwnSignals() []*signal.Signal
	OwnDFFs() []*signal.DFF
	OwnClocks() []*signal.Clock
	ChildBlocks() []Child
}

// BaseBlock is an embeddable helper that supplies the recursive plumbing
// (ConnectAll, UpdateAll, HasChanged, Accept, and a default no-op
// Update/Connect/HDL) so that concrete components only implement the
// methods whose behavior actually differs from the default.
//
// BaseBlock must be constructed with NewBaseBlock(self), passing the
// embedding component itself, so that the recursive methods dispatch to
// the component's own overridden Update/Connect/HasChanged/HDL rather
// than to BaseBlock's defaults.
type BaseBlock struct {
	self     Block
	signals  []namedSignal
	groups   []namespaceGroup
	children []namedChild
	dffs     []*signal.DFF
	clocks   []*signal.Clock
}

// NewBaseBlock constructs a BaseBlock for the given outer component.
func NewBaseBlock(self Block) *BaseBlock {
	return &BaseBlock{self: self}
}

// AddSignal registers an ungrouped (top-level) signal owned by this
// component.
func (b *BaseBlock) AddSignal(s *signal.Signal) *signal.Signal {
	b.signals = append(b.signals, namedSignal{name: s.Name(), sig: s})
	return s
}

// AddNamespace registers a group of signals under a namespace name (e.g.
// a DFF's "d"/"q"/"clk").
func (b *BaseBlock) AddNamespace(name string, signals ...*signal.Signal) {
	g := namespaceGroup{name: name}
	for _, s := range signals {
		g.signals = append(g.signals, namedSignal{name: s.Name(), sig: s})
	}
	b.groups = append(b.groups, g)
}

// AddDFF registers a DFF's d/q signals as a namespace group (named after
// the DFF) and records the DFF itself for the connectivity checker's
// floating-D-input rule.
func (b *BaseBlock) AddDFF(name string, dff *signal.DFF) *signal.DFF {
	b.AddNamespace(name, dff.D, dff.Q)
	b.dffs = append(b.dffs, dff)
	return dff
}

// OwnDFFs returns every DFF registered directly on this component.
func (b *BaseBlock) OwnDFFs() []*signal.DFF {
	return append([]*signal.DFF(nil), b.dffs...)
}

// AddClock registers an externally-driven clock signal owned by this
// component, both as a plain signal (so it is connectivity-checked and
// committed like any other input) and as a clock, so reporting and tracing
// code can distinguish clock nets from ordinary signals.
func (b *BaseBlock) AddClock(clk *signal.Clock) *signal.Clock {
	b.AddSignal(clk.Signal)
	b.clocks = append(b.clocks, clk)
	return clk
}

// OwnClocks returns every clock registered directly on this component.
func (b *BaseBlock) OwnClocks() []*signal.Clock {
	return append([]*signal.Clock(nil), b.clocks...)
}

// AddChild registers a child component (submodule instance).
func (b *BaseBlock) AddChild(name string, child Block) {
	b.children = append(b.children, namedChild{name: name, block: child})
}

// Children returns the registered child components in declaration order.
func (b *BaseBlock) Children() []Block {
	out := make([]Block, len(b.children))
	for i, c := range b.children {
		out[i] = c.block
	}
	return out
}

// ChildBlocks returns the registered children paired with their instance
// names, in declaration order.
func (b *BaseBlock) ChildBlocks() []Child {
	out := make([]Child, len(b.children))
	for i, c := range b.children {
		out[i] = Child{Name: c.name, Block: c.block}
	}
	return out
}

// OwnSignals returns every signal directly owned by this component
// (ungrouped and grouped), used by the connectivity checker.
func (b *BaseBlock) OwnSignals() []*signal.Signal {
	var out []*signal.Signal
	for _, ns := range b.signals {
		out = append(out, ns.sig)
	}
	for _, g := range b.groups {
		for _, ns := range g.signals {
			out = append(out, ns.sig)
		}
	}
	return out
}

// Update is the default no-op combinational update.
func (b *BaseBlock) Update() {}

// Connect is the default no-op connection step.
func (b *BaseBlock) Connect() {}

// HDL is the default Empty form.
func (b *BaseBlock) HDL() HDLForm { return Empty() }

// ConnectAll calls self.Connect and then recurses into every child.
func (b *BaseBlock) ConnectAll() {
	b.self.Connect()
	for _, c := range b.children {
		c.block.ConnectAll()
	}
}

// UpdateAll calls self.Update, commits every owned signal's staged value,
// and recurses into every child. Children are updated and committed
// first, so a parent's Update reads the values its children committed in
// this same pass, while values the parent stages for a child's signals
// are committed by that child on the next pass. For an acyclic
// combinational system the fixpoint the convergence loop reaches does not
// depend on this order.
func (b *BaseBlock) UpdateAll() {
	for _, c := range b.children {
		c.block.UpdateAll()
	}
	b.self.Update()
	for _, ns := range b.signals {
		ns.sig.Commit()
	}
	for _, g := range b.groups {
		for _, ns := range g.signals {
			ns.sig.Commit()
		}
	}
}

// HasChanged reports whether any owned signal or descendant changed
// during the last UpdateAll.
func (b *BaseBlock) HasChanged() bool {
	for _, ns := range b.signals {
		if ns.sig.HasChanged() {
			return true
		}
	}
	for _, g := range b.groups {
		for _, ns := range g.signals {
			if ns.sig.HasChanged() {
				return true
			}
		}
	}
	for _, c := range b.children {
		if c.block.HasChanged() {
			return true
		}
	}
	return false
}

// Accept dispatches v over this component's own atoms (grouped and
// ungrouped) and then over every child, wrapped in a scope named `name`.
func (b *BaseBlock) Accept(name string, v Visitor) {
	v.StartScope(name)
	for _, ns := range b.signals {
		v.Atom(ToAtom(ns.sig))
	}
	for _, g := range b.groups {
		v.StartNamespace(g.name)
		for _, ns := range g.signals {
			v.Atom(ToAtom(ns.sig))
		}
		v.EndNamespace()
	}
	for _, c := range b.children {
		c.block.Accept(c.name, v)
	}
	v.EndScope()
}
