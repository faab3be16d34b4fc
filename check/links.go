package check

import (
	"fmt"
	"strings"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
	"github.com/samitbasu/gohdl/signal"
)

// CheckLinks verifies that every link's OwnerPath and OtherPath resolve to
// an actual signal in the tree rooted at root. It returns one DanglingLink
// Violation per path that does not resolve. Both ends must be full signal
// paths ("top$...$<signal>"): a bare module path such as "top" does not
// name a signal and is reported as dangling.
func CheckLinks(root block.Block, links []hdl.LinkDetail) []Violation {
	var out []Violation
	for _, l := range links {
		if resolve(root, "top", l.OwnerPath) == nil {
			out = append(out, Violation{
				Category: DanglingLink,
				Path:     l.OwnerPath,
				Reason:   fmt.Sprintf("link %s: owner path does not resolve to a signal", describeLink(l)),
			})
		}
		if resolve(root, "top", l.OtherPath) == nil {
			out = append(out, Violation{
				Category: DanglingLink,
				Path:     l.OtherPath,
				Reason:   fmt.Sprintf("link %s: other path does not resolve to a signal", describeLink(l)),
			})
		}
	}
	return out
}

func describeLink(l hdl.LinkDetail) string {
	return fmt.Sprintf("%s<-%s(%s)", l.OwnerPath, l.OtherPath, l.Mode)
}

// resolve walks root looking for the signal addressed by a "$"-joined
// path whose first segment equals rootName.
func resolve(b block.Block, rootName, path string) *signal.Signal {
	segs := strings.Split(path, "$")
	if len(segs) == 0 || segs[0] != rootName {
		return nil
	}
	return resolveSegs(b, segs[1:])
}

func resolveSegs(b block.Block, segs []string) *signal.Signal {
	intro, ok := b.(block.Introspectable)
	if !ok || len(segs) == 0 {
		return nil
	}
	// Match the joined remainder against own signal names first: signal
	// names may themselves contain "$" (a DFF's "reg$d"/"reg$q"), so a
	// segment-at-a-time match would never find them.
	rest := strings.Join(segs, "$")
	for _, s := range intro.OwnSignals() {
		if s.Name() == rest {
			return s
		}
	}
	for _, c := range intro.ChildBlocks() {
		if c.Name == segs[0] {
			return resolveSegs(c.Block, segs[1:])
		}
	}
	return nil
}
