package widgets

import (
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/signal"
)

// Synchronizer is a two-flip-flop level synchronizer: D, driven from a
// different (or asynchronous) clock domain, is sampled into Q through two
// back-to-back registers clocked by Clk. This costs one destination clock
// of latency but makes a metastable capture vanishingly unlikely to
// propagate, the standard clock-domain-crossing idiom.
type Synchronizer struct {
	*block.BaseBlock

	Clk *signal.Clock
	D   *signal.Signal
	Q   *signal.Signal

	width int
	stage1 *signal.DFF
	stage2 *signal.DFF
}

// NewSynchronizer builds a width-N level synchronizer clocked by Clk.
func NewSynchronizer(width int) *Synchronizer {
	s := &Synchronizer{width: width}
	s.BaseBlock = block.NewBaseBlock(s)
	s.Clk = s.AddClock(signal.NewClock("clk"))
	s.stage1 = s.AddDFF("stage1", signal.NewDFF("stage1", width, s.Clk))
	s.stage2 = s.AddDFF("stage2", signal.NewDFF("stage2", width, s.Clk))
	s.D = s.AddSignal(signal.New("d", signal.In, width, signal.BitType(width)))
	s.Q = s.stage2.Q
	return s
}

func (s *Synchronizer) Connect() {
	s.Clk.Connect()
	s.D.Connect()
	s.stage1.D.Connect()
	s.stage1.Q.Connect()
	s.stage2.D.Connect()
	s.stage2.Q.Connect()
}

func (s *Synchronizer) Update() {
	s.stage1.D.SetNext(s.D.Val())
	s.stage1.Sample()
	s.stage2.D.SetNext(s.stage1.Q.Val())
	s.stage2.Sample()
}

// HDL renders the two-flop chain as a single clocked block. Deliberately
// two separate nonblocking assignments in declaration order rather than a
// shift-register loop: that is what keeps the metastability boundary at
// stage1 visually distinct from the settled output at stage2.
func (s *Synchronizer) HDL() block.HDLForm {
	return block.Custom(
		"  always @(posedge clk) begin\n" +
			"    stage1$q <= d;\n" +
			"    stage2$q <= stage1$q;\n" +
			"  end",
	)
}
