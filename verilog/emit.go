package verilog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
)

var titleCaser = cases.Title(language.Und)

// describeModule renders a human-readable comment naming the module,
// purely cosmetic: identifier mangling (mangle, mangleEnumLabel) is
// untouched ASCII and never runs through this.
func describeModule(name string) string {
	words := strings.NewReplacer("$", " ", "_", " ").Replace(name)
	return titleCaser.String(words)
}

// isArg reports whether an AtomDirection belongs in a module's port
// list.
func isArg(d block.AtomDirection) bool {
	switch d {
	case block.InputParameter, block.OutputParameter, block.InOutParameter, block.OutputPassthrough:
		return true
	default:
		return false
	}
}

// reclassify returns a copy of atoms with OutputParameter atoms that are
// merely forwarded from a submodule instance (found via a link whose
// LocalName names the atom) relabeled OutputPassthrough: a forwarded
// output is declared `output wire`, not `output reg`.
func reclassify(atoms []block.Atom, links []linkBinding) []block.Atom {
	passthrough := map[string]bool{}
	for _, l := range links {
		if l.fromSubmodule {
			passthrough[l.localName] = true
		}
	}
	out := make([]block.Atom, len(atoms))
	copy(out, atoms)
	for i, a := range out {
		if a.Direction == block.OutputParameter && passthrough[a.Name] {
			out[i].Direction = block.OutputPassthrough
		}
	}
	return out
}

// linkBinding is a link resolved against this module's submodule
// instances: the full child-port path it addresses (target) and the net
// name in the owning scope it binds that port to (localName).
type linkBinding struct {
	target        string
	localName     string
	fromSubmodule bool
}

// resolveLinks matches md.Links against md.Submodules, producing one
// linkBinding per link whose OtherPath addresses a direct child's port.
// This is how two differently-named ports (e.g. one instance's "y" and
// the next instance's "a") end up bound to the same net: both links name
// the same LocalName, and portNet looks that net up by the exact target
// path rather than by name coincidence.
func resolveLinks(md *ModuleDefine) []linkBinding {
	var out []linkBinding
	for _, l := range md.Links {
		for _, sub := range md.Submodules {
			prefix := sub.ModuleKind + "$"
			if strings.HasPrefix(l.OtherPath, prefix) {
				out = append(out, linkBinding{
					target:        l.OtherPath,
					localName:     l.LocalName,
					fromSubmodule: true,
				})
			}
		}
	}
	return out
}

// portNet resolves the net name a submodule's port should bind to: the
// link-assigned local name of a link naming this exact port, else the
// port's own name (the default same-name wiring convention connect_all
// establishes for unlinked ports).
func portNet(sub SubmoduleInstance, portName string, links []linkBinding) string {
	target := sub.ModuleKind + "$" + portName
	for _, l := range links {
		if l.target == target {
			return l.localName
		}
	}
	return portName
}

// Emit writes every gathered ModuleDefine to w as a single Verilog file,
// topName first, children in a deterministic (path-sorted) order after
// it. Black-box bodies are emitted verbatim; wrapper "cores" text is
// collected once and appended after every module.
func Emit(defs map[string]*ModuleDefine, topName string, w io.Writer) error {
	paths := make([]string, 0, len(defs))
	for p := range defs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var cores []string
	for _, p := range paths {
		md := defs[p]
		if err := emitModule(w, md, defs); err != nil {
			return err
		}
		if md.Code.Kind == block.HDLWrapper && md.Code.WrapperCores != "" {
			cores = append(cores, md.Code.WrapperCores)
		}
	}
	for _, c := range cores {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	return nil
}

func emitModule(w io.Writer, md *ModuleDefine, defs map[string]*ModuleDefine) error {
	name := mangle(md.Name)

	if md.Code.Kind == block.HDLBlackbox {
		_, err := fmt.Fprintln(w, md.Code.BlackboxBody)
		return err
	}

	links := resolveLinks(md)
	atoms := reclassify(md.Atoms, links)

	var args []string
	for _, a := range atoms {
		if isArg(a.Direction) {
			args = append(args, mangle(a.Name))
		}
	}

	fmt.Fprintf(w, "// %s\n", describeModule(md.Name))
	fmt.Fprintf(w, "module %s(%s);\n", name, strings.Join(args, ", "))

	for _, a := range atoms {
		if !isArg(a.Direction) {
			continue
		}
		switch a.Direction {
		case block.InputParameter:
			fmt.Fprintf(w, "  input %s%s;\n", widthDecl(a.Width), mangle(a.Name))
		case block.InOutParameter:
			fmt.Fprintf(w, "  inout %s%s;\n", widthDecl(a.Width), mangle(a.Name))
		case block.OutputPassthrough:
			fmt.Fprintf(w, "  output %s%s;\n", widthDecl(a.Width), mangle(a.Name))
		case block.OutputParameter:
			fmt.Fprintf(w, "  output reg %s%s;\n", widthDecl(a.Width), mangle(a.Name))
		}
	}
	for _, a := range atoms {
		if a.Direction == block.ConstantAtom && a.Literal != nil {
			fmt.Fprintf(w, "  localparam %s%s = %s;\n", widthDecl(a.Width), mangle(a.Name), formatLiteral(a.Literal.Val()))
		}
	}
	for _, e := range md.Enums {
		fmt.Fprintf(w, "  localparam %s = %d;\n", mangleEnumLabel(e.TypeName, e.Label), e.Ordinal)
	}

	stubNames := map[string]bool{}
	for _, l := range links {
		stubNames[l.localName] = true
	}
	for _, a := range atoms {
		if a.Direction == block.LocalSignal && stubNames[a.Name] {
			fmt.Fprintf(w, "  wire %s%s;\n", widthDecl(a.Width), mangle(a.Name))
		}
	}
	for _, a := range atoms {
		if a.Direction == block.LocalSignal && !stubNames[a.Name] {
			kw := "wire"
			if md.Code.Kind == block.HDLCombinatorial {
				kw = "reg"
			}
			fmt.Fprintf(w, "  %s %s%s;\n", kw, widthDecl(a.Width), mangle(a.Name))
		}
	}

	for _, sub := range md.Submodules {
		childDef := defs[sub.ModuleKind]
		var ports []string
		if childDef != nil {
			for _, a := range childDef.Atoms {
				if !isArg(a.Direction) {
					continue
				}
				net := portNet(sub, a.Name, links)
				ports = append(ports, fmt.Sprintf(".%s(%s)", mangle(a.Name), mangle(net)))
			}
		}
		fmt.Fprintf(w, "  %s %s(%s);\n", mangle(sub.ModuleKind), mangle(sub.InstanceName), strings.Join(ports, ", "))
	}

	switch md.Code.Kind {
	case block.HDLCombinatorial:
		fmt.Fprintln(w, "  always @(*) begin")
		fmt.Fprint(w, lowerStmts(md.Code.Statements, 2))
		fmt.Fprintln(w, "  end")
	case block.HDLCustom:
		fmt.Fprintln(w, md.Code.Custom)
	case block.HDLWrapper:
		fmt.Fprintln(w, md.Code.WrapperGlue)
	}

	resolvedTargets := map[string]bool{}
	for _, l := range links {
		resolvedTargets[l.target] = true
	}
	for _, l := range md.Links {
		// A link whose OtherPath names a direct submodule port was
		// already realized above as that port's instance binding
		// (portNet); only links that address something outside this
		// module's own submodules still need their own assign statement.
		if resolvedTargets[l.OtherPath] {
			continue
		}
		emitLinkAssign(w, l)
	}

	fmt.Fprintln(w, "endmodule")
	return nil
}

// emitLinkAssign writes the continuous `assign` statement that realizes a
// link not already resolved as a port pass-through. The link's Mode only
// picks which side is assigned (Forward assigns OtherPath, Backward and
// Bidirectional assign LocalName); no always-block form is emitted.
func emitLinkAssign(w io.Writer, l hdl.LinkDetail) {
	switch l.Mode {
	case hdl.Forward:
		fmt.Fprintf(w, "  assign %s = %s;\n", mangle(l.OtherPath), mangle(l.LocalName))
	case hdl.Backward:
		fmt.Fprintf(w, "  assign %s = %s;\n", mangle(l.LocalName), mangle(l.OtherPath))
	case hdl.Bidirectional:
		fmt.Fprintf(w, "  assign %s = %s;\n", mangle(l.LocalName), mangle(l.OtherPath))
	}
}
