package verilog

import (
	"sort"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
	"github.com/samitbasu/gohdl/signal"
)

// Gather walks root once, keyed by topName, producing one ModuleDefine
// per scope. It walks via block.Introspectable directly (the same
// mechanism check.Run uses) rather than through block.Visitor: the
// module-define pass needs each child's actual Block — to recurse into
// it and to read its HDL() form — which the plain Atom-only Visitor
// contract deliberately does not expose.
func Gather(root block.Block, topName string) map[string]*ModuleDefine {
	defs := map[string]*ModuleDefine{}
	gather(root, topName, defs)
	return defs
}

func gather(b block.Block, path string, defs map[string]*ModuleDefine) {
	md := &ModuleDefine{Name: path, Code: b.HDL()}
	defs[path] = md

	intro, ok := b.(block.Introspectable)
	if !ok {
		return
	}

	for _, s := range intro.OwnSignals() {
		md.Atoms = append(md.Atoms, block.ToAtom(s))
	}
	for _, child := range intro.ChildBlocks() {
		childPath := block.JoinPath(path, child.Name)
		md.Submodules = append(md.Submodules, SubmoduleInstance{
			InstanceName: child.Name,
			ModuleKind:   childPath,
		})
		gather(child.Block, childPath, defs)
	}

	if md.Code.Kind == block.HDLCombinatorial {
		md.Links = hdl.Links(md.Code.Statements)
	}
	md.Enums = collectEnums(md.Atoms)
}

// collectEnums returns the (type, label, ordinal) tuples for every
// distinct enum-typed atom's type descriptor under this module,
// deduplicated by type name and sorted for deterministic emission.
func collectEnums(atoms []block.Atom) []EnumConstant {
	seen := map[string]bool{}
	var out []EnumConstant
	for _, a := range atoms {
		if a.Type.Kind != signal.KindEnum {
			continue
		}
		if seen[a.Type.Name] {
			continue
		}
		seen[a.Type.Name] = true
		for ordinal, label := range a.Type.Labels {
			out = append(out, EnumConstant{TypeName: a.Type.Name, Label: label, Ordinal: ordinal})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TypeName != out[j].TypeName {
			return out[i].TypeName < out[j].TypeName
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}
