// Package widgets implements small reusable digital-logic primitives
// built on top of the block/signal core: a library of components, not
// core machinery.
package widgets

import (
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/signal"
)

// Counter is a width-N up-counter: Q increments by one on every rising
// edge of Clk, wrapping at 2^N.
type Counter struct {
	*block.BaseBlock

	Clk *signal.Clock
	Q   *signal.Signal

	width int
	reg   *signal.DFF
}

// NewCounter builds a Counter of the given bit width.
func NewCounter(width int) *Counter {
	c := &Counter{width: width}
	c.BaseBlock = block.NewBaseBlock(c)
	c.Clk = c.AddClock(signal.NewClock("clk"))
	c.reg = c.AddDFF("count", signal.NewDFF("count", width, c.Clk))
	c.Q = c.reg.Q
	return c
}

func (c *Counter) Connect() {
	// Clk is a primary input: by contract every Counter instance is driven
	// by an external clock source, so the component vouches for it here
	// rather than requiring every caller to connect it by hand.
	c.Clk.Connect()
	c.reg.D.Connect()
	c.reg.Q.Connect()
}

func (c *Counter) Update() {
	c.reg.D.SetNext(c.reg.Q.Val().AddUint(1))
	c.reg.Sample()
}

// HDL renders the synchronous increment directly, rather than lowering it
// through the combinational hdl.Stmt tree: a counter's next-state logic
// is simple enough that writing the always block by hand reads more
// naturally than building it statement by statement.
func (c *Counter) HDL() block.HDLForm {
	return block.Custom(
		"  always @(posedge clk) begin\n    count$q <= count$q + 1'b1;\n  end",
	)
}
