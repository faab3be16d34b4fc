// Package report renders the checker's violation list and a simulation
// run's per-step convergence summary as human-readable tables: one
// jedib0t/go-pretty table.Writer per report rather than hand-rolled
// fmt.Printf column alignment.
package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/samitbasu/gohdl/check"
	"github.com/samitbasu/gohdl/simulation"
)

// CheckReport renders every violation in err as a table, one row per
// violation, grouped implicitly by the order check.Run found them in. It
// returns "" for a nil error (a clean check has nothing to report).
func CheckReport(err error) string {
	if err == nil {
		return ""
	}
	cerr, ok := err.(*check.Error)
	if !ok {
		return err.Error()
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Connectivity Violations (%d)", len(cerr.Violations)))
	t.AppendHeader(table.Row{"#", "Category", "Path", "Reason"})
	for i, v := range cerr.Violations {
		t.AppendRow(table.Row{i + 1, v.Category.String(), v.Path, v.Reason})
	}
	return t.Render()
}

// Step is one reported rendezvous: the simulated time it occurred at, how
// many convergence iterations root.UpdateAll ran before settling, and
// whether it settled at all. A driver program accumulates these by
// wrapping its Sim with a CustomLogic counter (simulation.Sim has no
// built-in per-step instrumentation, since the bounded convergence loop
// is internal to dispatch) and feeds the result to ConvergenceReport once
// the run finishes.
type Step struct {
	Time       simulation.VTime
	Iterations int
	Converged  bool
}

// ConvergenceReport renders one row per Step: its simulated time, the
// iteration count the combinational update loop needed, and whether it
// converged within simulation.MaxConvergeIterations. A report containing
// any non-converged step flags the affected rows so the table surfaces an
// oscillating circuit at a glance instead of only failing deep inside the
// scheduler.
func ConvergenceReport(steps []Step) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Convergence Summary (%d steps)", len(steps)))
	t.AppendHeader(table.Row{"Step", "Time (ps)", "Iterations", "Status"})
	for i, s := range steps {
		status := "converged"
		if !s.Converged {
			status = "FAILED TO CONVERGE"
		}
		t.AppendRow(table.Row{i + 1, uint64(s.Time), s.Iterations, status})
	}
	worst := 0
	for _, s := range steps {
		if s.Iterations > worst {
			worst = s.Iterations
		}
	}
	t.AppendFooter(table.Row{"", "", "worst", worst})
	return t.Render()
}
