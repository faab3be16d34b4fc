package report_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/check"
	"github.com/samitbasu/gohdl/report"
	"github.com/samitbasu/gohdl/signal"
	"github.com/samitbasu/gohdl/simulation"
)

// leaky is a minimal component that declares an In signal and never
// connects it, so check.Run always reports exactly one Unconnected
// violation against it.
type leaky struct {
	*block.BaseBlock
	In *signal.Signal
}

func newLeaky() *leaky {
	l := &leaky{In: signal.New("in", signal.In, 1, signal.BitType(1))}
	l.BaseBlock = block.NewBaseBlock(l)
	l.AddSignal(l.In)
	return l
}

var _ = Describe("CheckReport", func() {
	It("renders nothing for a clean check", func() {
		Expect(report.CheckReport(nil)).To(Equal(""))
	})

	It("renders one row per violation, including category and path", func() {
		err := check.Run(newLeaky())
		Expect(err).To(HaveOccurred())

		out := report.CheckReport(err)
		Expect(out).To(ContainSubstring("Connectivity Violations (1)"))
		Expect(out).To(ContainSubstring("Unconnected"))
		Expect(out).To(ContainSubstring("top$in"))
	})
})

var _ = Describe("ConvergenceReport", func() {
	It("renders one row per step plus a worst-case footer", func() {
		steps := []report.Step{
			{Time: 0, Iterations: 1, Converged: true},
			{Time: 1000 * simulation.Picosecond, Iterations: 3, Converged: true},
			{Time: 2000 * simulation.Picosecond, Iterations: 100, Converged: false},
		}

		out := report.ConvergenceReport(steps)
		Expect(out).To(ContainSubstring("Convergence Summary (3 steps)"))
		Expect(out).To(ContainSubstring("FAILED TO CONVERGE"))
		Expect(strings.Count(out, "converged")).To(BeNumerically(">=", 2))
		Expect(out).To(ContainSubstring("WORST"))
		Expect(out).To(ContainSubstring("100"))
	})
})
