// Package verilog implements the module-define pass and Verilog emitter:
// the synthesis-facing heart of the framework. Gather walks a circuit
// tree collecting one ModuleDefine per scope (atoms, submodule
// instances, enum constants, the module's HDL form, and the link
// statements declared inside it); Emit lowers the gathered defines to a
// single ASCII Verilog file, one module per component.
package verilog

import (
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
)

// SubmoduleInstance is one child scope instantiated inside a module.
//
// ModuleKind is the full "$"-joined path of the child scope rather than
// a shared type name: every scope gets its own generated module, named
// after its path, so two instances of the same Go component type never
// collide and never need de-duplication. The module kind IS the
// instantiating path.
type SubmoduleInstance struct {
	InstanceName string
	ModuleKind   string
}

// EnumConstant is one (type, label, ordinal) tuple contributed by an
// enum-typed atom. Ordinal assignment is the label's declaration order,
// which user code comparing signals against the constants depends on.
type EnumConstant struct {
	TypeName string
	Label    string
	Ordinal  int
}

// ModuleDefine is everything the emitter needs to write one Verilog
// `module ... endmodule` block (plus, for HDLWrapper modules, file-scope
// cores text collected separately — see Emit).
type ModuleDefine struct {
	Name       string
	Atoms      []block.Atom
	Submodules []SubmoduleInstance
	Enums      []EnumConstant
	Code       block.HDLForm
	Links      []hdl.LinkDetail
}
