package verilog_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
	"github.com/samitbasu/gohdl/signal"
	"github.com/samitbasu/gohdl/verilog"
	"github.com/samitbasu/gohdl/widgets"
)

// chain composes two inverters back to back: chain.Out = !(!chain.In).
// The emitter must produce two distinct "top$knot_1"/"top$knot_2"
// modules and instantiate them under their own instance names.
type chain struct {
	*block.BaseBlock
	In, Out   *signal.Signal
	net       *signal.Signal
	knot1     *widgets.Inverter
	knot2     *widgets.Inverter
}

func newChain() *chain {
	c := &chain{
		In:  signal.New("in", signal.In, 1, signal.BitType(1)),
		Out: signal.New("out", signal.Out, 1, signal.BitType(1)),
		net: signal.New("net1", signal.Local, 1, signal.BitType(1)),
	}
	c.BaseBlock = block.NewBaseBlock(c)
	c.AddSignal(c.In)
	c.AddSignal(c.Out)
	c.AddSignal(c.net)
	c.knot1 = widgets.NewInverter()
	c.knot2 = widgets.NewInverter()
	c.AddChild("knot_1", c.knot1)
	c.AddChild("knot_2", c.knot2)
	return c
}

func (c *chain) Connect() {
	c.Out.Connect()
	c.knot1.A.Connect()
	c.knot2.A.Connect()
}

func (c *chain) Update() {
	c.knot1.A.SetNext(c.In.Val())
	c.knot2.A.SetNext(c.knot1.Y.Val())
	c.Out.SetNext(c.knot2.Y.Val())
}

// HDL declares the net-level wiring the Go-level Update above realizes in
// simulation: knot_1's input bound to the module's own "in" port, knot_2's
// input bound to the internal "net1" wire that knot_1's output also binds
// to, and knot_2's output bound straight through to the module's "out"
// port (making Out an OutputPassthrough rather than an output reg).
func (c *chain) HDL() block.HDLForm {
	b := hdl.NewBuilder()
	b.LinkTo("top", "top$knot_1$a", "in", hdl.Forward)
	b.LinkTo("top", "top$knot_1$y", "net1", hdl.Forward)
	b.LinkTo("top", "top$knot_2$a", "net1", hdl.Forward)
	b.LinkTo("top", "top$knot_2$y", "out", hdl.Forward)
	return block.Combinatorial(b.Build())
}

// encoder exercises constant-atom literal formatting (binary vs. hex by
// width) and enum-typed atom emission as localparams.
type encoder struct {
	*block.BaseBlock
	Sel   *signal.Signal
	Width *signal.Signal // 8 bits: multiple of four, hex
	Odd   *signal.Signal // 3 bits: not a multiple of four, binary
}

var selType = signal.EnumType("State", "Idle", "Run", "Done")

func newEncoder() *encoder {
	e := &encoder{
		Sel: signal.New("sel", signal.In, 2, selType),
	}
	e.BaseBlock = block.NewBaseBlock(e)
	e.AddSignal(e.Sel)
	e.Width = e.AddSignal(signal.NewConstant("width_const", bits.FromUint64(8, 0xAB), signal.BitType(8)))
	e.Odd = e.AddSignal(signal.NewConstant("odd_const", bits.FromUint64(3, 0x5), signal.BitType(3)))
	return e
}

func (e *encoder) Connect() {}
func (e *encoder) Update()  {}
func (e *encoder) HDL() block.HDLForm {
	return block.Combinatorial(nil)
}

// bridge has no submodules, so its one declared link cannot be absorbed
// into a submodule port binding and must surface as its own assign
// statement.
type bridge struct {
	*block.BaseBlock
	A *signal.Signal
}

func newBridge() *bridge {
	b := &bridge{A: signal.New("a", signal.Local, 1, signal.BitType(1))}
	b.BaseBlock = block.NewBaseBlock(b)
	b.AddSignal(b.A)
	return b
}

func (b *bridge) Connect() {}
func (b *bridge) Update()  {}
func (b *bridge) HDL() block.HDLForm {
	hb := hdl.NewBuilder()
	hb.LinkTo("top", "ext$shared", "a", hdl.Backward)
	return block.Combinatorial(hb.Build())
}

var _ = Describe("Gather and Emit", func() {
	It("emits one module per scope, named after its instantiating path", func() {
		c := newChain()
		defs := verilog.Gather(c, "top")
		Expect(defs).To(HaveKey("top"))
		Expect(defs).To(HaveKey("top$knot_1"))
		Expect(defs).To(HaveKey("top$knot_2"))

		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()

		Expect(text).To(ContainSubstring("module top$knot_1(a, y);"))
		Expect(text).To(ContainSubstring("module top$knot_2(a, y);"))
		Expect(text).To(ContainSubstring("top$knot_1 knot_1(.a(in), .y(net1));"))
		Expect(text).To(ContainSubstring("top$knot_2 knot_2(.a(net1), .y(out));"))
	})

	It("declares an internal net bridging two instances as a wire", func() {
		c := newChain()
		defs := verilog.Gather(c, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("wire net1;"))
	})

	It("reclassifies a submodule-driven output as output, not output reg", func() {
		c := newChain()
		defs := verilog.Gather(c, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()
		Expect(text).To(ContainSubstring("output out;"))
		Expect(text).NotTo(ContainSubstring("output reg out;"))
	})

	It("formats constant literals binary for non-multiple-of-4 widths and hex otherwise", func() {
		e := newEncoder()
		defs := verilog.Gather(e, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()
		Expect(text).To(ContainSubstring("localparam [7:0] width_const = 8'hab;"))
		Expect(text).To(ContainSubstring("localparam [2:0] odd_const = 3'b101;"))
	})

	It("emits an assign statement for a link not absorbed by a submodule port", func() {
		b := newBridge()
		defs := verilog.Gather(b, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("assign a = ext$shared;"))
	})

	It("emits a black-box module body verbatim, unwrapped", func() {
		uut := widgets.NewClockBuffer()
		defs := verilog.Gather(uut, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()
		Expect(text).To(ContainSubstring("module clock_buffer_prim(input i, output o);"))
		Expect(text).NotTo(ContainSubstring("module top("))
	})

	It("places wrapper glue inside the generated module and appends cores once at file scope", func() {
		uut := widgets.NewDSPMultiplier()
		defs := verilog.Gather(uut, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()
		Expect(text).To(ContainSubstring("module top("))
		Expect(text).To(ContainSubstring("  dsp_mult_core core_inst(.clk(clk), .a(a), .b(b), .p(p$q));"))
		Expect(strings.Count(text, "module dsp_mult_core")).To(Equal(1))
		Expect(text).To(ContainSubstring("endmodule\nmodule dsp_mult_core"))
	})

	It("emits enum labels as mangled localparams preserving declaration ordinal", func() {
		e := newEncoder()
		defs := verilog.Gather(e, "top")
		var out strings.Builder
		Expect(verilog.Emit(defs, "top", &out)).To(Succeed())
		text := out.String()
		Expect(text).To(ContainSubstring("localparam State$Idle = 0;"))
		Expect(text).To(ContainSubstring("localparam State$Run = 1;"))
		Expect(text).To(ContainSubstring("localparam State$Done = 2;"))
	})
})
