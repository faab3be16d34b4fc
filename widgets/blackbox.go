package widgets

import (
	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/signal"
)

// ClockBuffer models a vendor global clock buffer primitive: a pass-through
// in simulation, but emitted as a verbatim black-box module in Verilog
// rather than through the usual declare/body/endmodule shape, since the
// real implementation is a dedicated silicon primitive the synthesis
// toolchain recognizes by name.
type ClockBuffer struct {
	*block.BaseBlock

	I *signal.Signal
	O *signal.Signal
}

// NewClockBuffer builds a 1-bit ClockBuffer.
func NewClockBuffer() *ClockBuffer {
	c := &ClockBuffer{}
	c.BaseBlock = block.NewBaseBlock(c)
	c.I = c.AddSignal(signal.New("i", signal.In, 1, signal.BitType(1)))
	c.O = c.AddSignal(signal.New("o", signal.Out, 1, signal.BitType(1)))
	return c
}

func (c *ClockBuffer) Connect() {
	c.I.Connect()
	c.O.Connect()
}

func (c *ClockBuffer) Update() {
	c.O.SetNext(c.I.Val())
}

// HDL supplies the fixed, vendor-specific primitive text in place of any
// generated module body.
func (c *ClockBuffer) HDL() block.HDLForm {
	return block.Blackbox(
		"module clock_buffer_prim(input i, output o);\n" +
			"  BUFG bufg_inst(.I(i), .O(o));\n" +
			"endmodule",
	)
}

// DSPMultiplier is a registered 16x16->32 multiplier intended to map onto a
// vendor DSP-slice macro: the generated module's body is user-supplied glue
// instantiating the macro, and the macro's own declaration ("cores") is
// appended once at file scope rather than duplicated per instance.
type DSPMultiplier struct {
	*block.BaseBlock

	Clk *signal.Clock
	A   *signal.Signal
	B   *signal.Signal
	P   *signal.DFF
}

// NewDSPMultiplier builds a clocked 16x16->32 multiplier.
func NewDSPMultiplier() *DSPMultiplier {
	m := &DSPMultiplier{}
	m.BaseBlock = block.NewBaseBlock(m)
	m.Clk = m.AddClock(signal.NewClock("clk"))
	m.A = m.AddSignal(signal.New("a", signal.In, 16, signal.BitType(16)))
	m.B = m.AddSignal(signal.New("b", signal.In, 16, signal.BitType(16)))
	m.P = m.AddDFF("p", signal.NewDFF("p", 32, m.Clk))
	return m
}

func (m *DSPMultiplier) Connect() {
	m.Clk.Connect()
	m.A.Connect()
	m.B.Connect()
	m.P.D.Connect()
	m.P.Q.Connect()
}

func (m *DSPMultiplier) Update() {
	m.P.D.SetNext(bits.Mul16x16(m.A.Val(), m.B.Val()))
	m.P.Sample()
}

// HDL places an instantiation of the vendor macro inside the generated
// module (the glue) and declares the macro itself once at file scope (the
// cores text), rather than emitting an always-block multiplier that no
// synthesis tool would map onto the dedicated DSP silicon.
func (m *DSPMultiplier) HDL() block.HDLForm {
	return block.Wrapper(
		"  dsp_mult_core core_inst(.clk(clk), .a(a), .b(b), .p(p$q));",
		"module dsp_mult_core(input clk, input [15:0] a, input [15:0] b, output reg [31:0] p);\n"+
			"  always @(posedge clk) p <= a * b;\n"+
			"endmodule",
	)
}
