package widgets

import (
	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/hdl"
	"github.com/samitbasu/gohdl/signal"
)

// Inverter is a single-bit combinational NOT gate: Y = !A. Deliberately
// trivial; its purpose is exercising instance naming and module-shape
// emission in the verilog package, not interesting logic.
type Inverter struct {
	*block.BaseBlock

	A *signal.Signal
	Y *signal.Signal
}

// NewInverter builds a 1-bit Inverter.
func NewInverter() *Inverter {
	inv := &Inverter{}
	inv.BaseBlock = block.NewBaseBlock(inv)
	inv.A = inv.AddSignal(signal.New("a", signal.In, 1, signal.BitType(1)))
	inv.Y = inv.AddSignal(signal.New("y", signal.Out, 1, signal.BitType(1)))
	return inv
}

func (inv *Inverter) Connect() {
	inv.A.Connect()
	inv.Y.Connect()
}

func (inv *Inverter) Update() {
	inv.Y.SetNext(bits.FromBools([]bool{!inv.A.Val().Bit(0)}))
}

func (inv *Inverter) HDL() block.HDLForm {
	return block.Combinatorial([]hdl.Stmt{
		hdl.Assignment{Lhs: hdl.Sig("y"), Rhs: hdl.Un(hdl.Not, hdl.Sig("a"))},
	})
}
