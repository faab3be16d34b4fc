// Package check implements the pre-simulation connectivity/well-formedness
// pass: it walks a circuit once and verifies every signal is driven
// exactly as required, with no latches or floating inputs.
//
// The pass never panics: it aggregates every violation it finds into a
// typed error so a calling program can report all of them at once rather
// than stopping at the first one.
package check

import (
	"fmt"
	"strings"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
)

// Category classifies one connectivity violation.
type Category int

const (
	// Unconnected: a signal that must be driven was never marked
	// connected.
	Unconnected Category = iota
	// MultiDriven: more than one component claims to drive the same
	// signal.
	MultiDriven
	// FloatingD: a DFF's D input was never connected.
	FloatingD
	// UnclockedDFF: a DFF has no clock, so its Q could never be
	// assigned on an edge.
	UnclockedDFF
	// DanglingLink: a link refers to a signal path that does not exist in
	// the tree.
	DanglingLink
)

func (c Category) String() string {
	switch c {
	case Unconnected:
		return "Unconnected"
	case MultiDriven:
		return "MultiDriven"
	case FloatingD:
		return "FloatingD"
	case UnclockedDFF:
		return "UnclockedDFF"
	case DanglingLink:
		return "DanglingLink"
	default:
		return "Unknown"
	}
}

// Violation is a single connectivity failure, carrying the fully
// qualified ($-joined) signal path that caused it.
type Violation struct {
	Category Category
	Path     string
	Reason   string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Category, v.Path, v.Reason)
}

// Error aggregates every violation found in one pass. Error implements the
// standard error interface so it composes with normal Go error handling,
// while still exposing the structured Violations slice for callers (such
// as the report package) that want to render a table instead of a single
// string.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("connectivity check failed with %d violation(s):\n%s",
		len(e.Violations), strings.Join(lines, "\n"))
}

// Run walks root once, verifying:
//  1. every signal with direction In (or otherwise read-and-not-driven) has
//     its connected flag set;
//  2. no signal is left both undriven and unconnected (Out/Local signals
//     must be driven by exactly one component's Connect);
//  3. no DFF has a floating D input or a missing clock;
//  4. every link declared in a combinational HDL form resolves to signals
//     that exist in the tree.
//
// It returns nil if the tree is well-formed, or a *Error aggregating every
// violation otherwise. Run never panics: a malformed tree is reported, not
// crashed on.
func Run(root block.Block) error {
	root.ConnectAll()

	var violations []Violation
	var links []hdl.LinkDetail
	walk(root, "top", &violations, &links)
	violations = append(violations, CheckLinks(root, links)...)

	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}

func walk(b block.Block, path string, out *[]Violation, links *[]hdl.LinkDetail) {
	if form := b.HDL(); form.Kind == block.HDLCombinatorial {
		*links = append(*links, hdl.Links(form.Statements)...)
	}

	intro, ok := b.(block.Introspectable)
	if !ok {
		return
	}

	for _, s := range intro.OwnSignals() {
		sigPath := block.JoinPath(path, s.Name())
		if !s.Connected() {
			*out = append(*out, Violation{
				Category: Unconnected,
				Path:     sigPath,
				Reason:   "signal is read but never connected to a driver",
			})
		}
		if drivers := s.Drivers(); len(drivers) > 1 {
			*out = append(*out, Violation{
				Category: MultiDriven,
				Path:     sigPath,
				Reason:   fmt.Sprintf("driven by %d components: %s", len(drivers), strings.Join(drivers, ", ")),
			})
		}
	}

	for _, dff := range intro.OwnDFFs() {
		if !dff.D.Connected() {
			*out = append(*out, Violation{
				Category: FloatingD,
				Path:     block.JoinPath(path, dff.D.Name()),
				Reason:   "DFF D input has no driver",
			})
		}
		if dff.Clk == nil {
			*out = append(*out, Violation{
				Category: UnclockedDFF,
				Path:     block.JoinPath(path, dff.Q.Name()),
				Reason:   "DFF has no clock, Q can never be assigned",
			})
		}
	}

	for _, c := range intro.ChildBlocks() {
		walk(c.Block, block.JoinPath(path, c.Name), out, links)
	}
}
