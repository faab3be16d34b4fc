// Package block implements the circuit tree: the Block interface every
// component satisfies, the Visitor/Probe contract used to walk it, and the
// Atom/TypeDescriptor view a visitor sees at each leaf signal.
//
// BaseBlock is constructed with a reference to the outer Block so that
// its recursive ConnectAll/UpdateAll/HasChanged call the concrete
// component's overridden Connect/Update, not BaseBlock's own no-op
// defaults.
package block

import (
	"github.com/samitbasu/gohdl/hdl"
	"github.com/samitbasu/gohdl/signal"
)

// Block is a node in the circuit tree: a primitive leaf or a composition
// of children.
type Block interface {
	// Update computes this component's next signal values from the
	// current (start-of-step) values of signals it reads.
	Update()
	// Connect marks which of this component's own Out/Local signals it
	// drives. Called once before simulation begins.
	Connect()
	// ConnectAll calls Connect on this node and every descendant.
	ConnectAll()
	// UpdateAll calls Update on this node and every descendant, then
	// commits every owned signal's staged value.
	UpdateAll()
	// HasChanged reports whether any signal owned by this node or a
	// descendant changed value during the last UpdateAll.
	HasChanged() bool
	// Accept dispatches Visitor callbacks for this node, named `name` in
	// its parent's scope, and recursively for every child.
	Accept(name string, v Visitor)
	// HDL returns this component's emitted Verilog form.
	HDL() HDLForm
}

// HDLKind enumerates the five shapes a component's Verilog body can take.
type HDLKind int

const (
	// HDLEmpty components emit no body of their own (pure composition).
	HDLEmpty HDLKind = iota
	// HDLCombinatorial components supply a captured hdl.Stmt tree, lowered
	// by the emitter into always @(*) / continuous-assignment Verilog.
	HDLCombinatorial
	// HDLCustom components supply hand-written Verilog body text.
	HDLCustom
	// HDLBlackbox components supply a verbatim module body, emitted
	// without the usual wrapping.
	HDLBlackbox
	// HDLWrapper components supply glue code placed inside the generated
	// module plus "cores" text appended once at file scope.
	HDLWrapper
)

// HDLForm is a component's emitted-Verilog description, one of the five
// HDLKind variants described above.
type HDLForm struct {
	Kind         HDLKind
	Statements   []hdl.Stmt // HDLCombinatorial
	Custom       string     // HDLCustom
	BlackboxBody string     // HDLBlackbox
	WrapperGlue  string     // HDLWrapper: placed inside the module
	WrapperCores string     // HDLWrapper: appended once at file scope
}

// Empty returns the HDLEmpty form.
func Empty() HDLForm { return HDLForm{Kind: HDLEmpty} }

// Combinatorial returns the HDLCombinatorial form wrapping stmts.
func Combinatorial(stmts []hdl.Stmt) HDLForm {
	return HDLForm{Kind: HDLCombinatorial, Statements: stmts}
}

// Custom returns the HDLCustom form wrapping verbatim body text.
func Custom(body string) HDLForm {
	return HDLForm{Kind: HDLCustom, Custom: body}
}

// Blackbox returns the HDLBlackbox form wrapping a verbatim module body.
func Blackbox(body string) HDLForm {
	return HDLForm{Kind: HDLBlackbox, BlackboxBody: body}
}

// Wrapper returns the HDLWrapper form.
func Wrapper(glue, cores string) HDLForm {
	return HDLForm{Kind: HDLWrapper, WrapperGlue: glue, WrapperCores: cores}
}

// AtomDirection is the visitor's richer classification of a leaf signal,
// distinguishing module-argument roles from internal/stub roles. A plain
// signal.Direction only distinguishes In/Out/Local/InOut at the data-model
// level; AtomDirection additionally distinguishes how the Verilog emitter
// must declare the signal once link information is known (see the
// verilog package, which reclassifies OutputParameter to
// OutputPassthrough when a link shows the output is merely forwarded from
// a submodule instance).
type AtomDirection int

const (
	InputParameter AtomDirection = iota
	OutputParameter
	InOutParameter
	OutputPassthrough
	LocalSignal
	StubInputSignal
	StubOutputSignal
	ConstantAtom
)

// Atom is the visitor's view of one leaf signal.
type Atom struct {
	Name      string
	Direction AtomDirection
	Width     int
	Literal   *signal.Signal // set (and IsConstant() true) when Direction == ConstantAtom
	Signed    bool
	Type      signal.TypeDescriptor

	// Ref is the live signal backing this atom. The verilog package never
	// reads it (it only needs the structural view above); a trace
	// consumer like the vcd package uses it to sample Val() at each
	// reported simulation time.
	Ref *signal.Signal
}

// ToAtom classifies a *signal.Signal into its default Atom view. Only the
// four "intrinsic" directions are produced here (a signal cannot know, by
// itself, that it is a stub bridging a submodule port) — the verilog
// package's module-define pass refines InputParameter/OutputParameter
// into the Stub*/Passthrough variants once link information is available.
func ToAtom(s *signal.Signal) Atom {
	a := Atom{Name: s.Name(), Width: s.Width(), Type: s.Type(), Ref: s}
	switch {
	case s.IsConstant():
		a.Direction = ConstantAtom
		a.Literal = s
	case s.Direction() == signal.In:
		a.Direction = InputParameter
	case s.Direction() == signal.Out:
		a.Direction = OutputParameter
	case s.Direction() == signal.InOut:
		a.Direction = InOutParameter
	default:
		a.Direction = LocalSignal
	}
	return a
}

// Visitor receives callbacks while a Block tree is walked. Scopes
// correspond to submodule instances; namespaces group atoms within a
// single component (e.g. a DFF's d/q/clk). Paths are joined with "$".
type Visitor interface {
	StartScope(name string)
	EndScope()
	StartNamespace(name string)
	EndNamespace()
	Atom(a Atom)
}

// JoinPath joins scope/namespace names the way the emitter's name
// mangling rule requires.
func JoinPath(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
		} else {
			out = out + "$" + p
		}
	}
	return out
}
