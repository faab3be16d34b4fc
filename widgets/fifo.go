package widgets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/signal"
)

// SyncFIFO is a single-clock-domain FIFO of the given depth and data
// width: push on Write (while !Full), pop on Read (while !Empty). Storage
// is a ring of DFF-backed registers rather than a raw RAM primitive,
// matching how the rest of this package expresses state.
type SyncFIFO struct {
	*block.BaseBlock

	Clk      *signal.Clock
	DataIn   *signal.Signal
	Write    *signal.Signal
	Read     *signal.Signal
	DataOut  *signal.Signal
	Empty    *signal.Signal
	Full     *signal.Signal
	Count    *signal.Signal

	depth int
	width int
	slots []*signal.DFF
	head  *signal.DFF // read pointer
	tail  *signal.DFF // write pointer
	count *signal.DFF
}

// NewSyncFIFO builds a FIFO holding depth entries of the given bit width.
// depth need not be a power of two; pointers wrap via modulo.
func NewSyncFIFO(depth, width int) *SyncFIFO {
	f := &SyncFIFO{depth: depth, width: width}
	f.BaseBlock = block.NewBaseBlock(f)
	f.Clk = f.AddClock(signal.NewClock("clk"))

	ptrWidth := bitsFor(depth)
	f.slots = make([]*signal.DFF, depth)
	for i := 0; i < depth; i++ {
		f.slots[i] = f.AddDFF(slotName(i), signal.NewDFF(slotName(i), width, f.Clk))
	}
	f.head = f.AddDFF("head", signal.NewDFF("head", ptrWidth, f.Clk))
	f.tail = f.AddDFF("tail", signal.NewDFF("tail", ptrWidth, f.Clk))
	f.count = f.AddDFF("count", signal.NewDFF("count", ptrWidth+1, f.Clk))

	f.DataIn = f.AddSignal(signal.New("data_in", signal.In, width, signal.BitType(width)))
	f.Write = f.AddSignal(signal.New("write", signal.In, 1, signal.BitType(1)))
	f.Read = f.AddSignal(signal.New("read", signal.In, 1, signal.BitType(1)))
	f.DataOut = f.AddSignal(signal.New("data_out", signal.Out, width, signal.BitType(width)))
	f.Empty = f.AddSignal(signal.New("empty", signal.Out, 1, signal.BitType(1)))
	f.Full = f.AddSignal(signal.New("full", signal.Out, 1, signal.BitType(1)))
	f.Count = f.AddSignal(signal.New("count", signal.Out, ptrWidth+1, signal.BitType(ptrWidth+1)))
	return f
}

func slotName(i int) string { return "slot" + strconv.Itoa(i) }

// bitsFor returns the number of bits needed to hold values 0..n-1.
func bitsFor(n int) int {
	w := 1
	for (1 << w) < n {
		w++
	}
	return w
}

func (f *SyncFIFO) Connect() {
	f.Clk.Connect()
	f.DataIn.Connect()
	f.Write.Connect()
	f.Read.Connect()
	f.DataOut.Connect()
	f.Empty.Connect()
	f.Full.Connect()
	f.Count.Connect()
	for _, s := range f.slots {
		s.D.Connect()
		s.Q.Connect()
	}
	f.head.D.Connect()
	f.head.Q.Connect()
	f.tail.D.Connect()
	f.tail.Q.Connect()
	f.count.D.Connect()
	f.count.Q.Connect()
}

func (f *SyncFIFO) Update() {
	count := f.count.Q.Val().Index()
	head := f.head.Q.Val().Index()
	tail := f.tail.Q.Val().Index()
	depth := uint64(f.depth)

	empty := count == 0
	full := count == depth
	f.Empty.SetNext(bits.FromBools([]bool{empty}))
	f.Full.SetNext(bits.FromBools([]bool{full}))
	f.Count.SetNext(f.count.Q.Val())
	f.DataOut.SetNext(f.slots[head].Q.Val())

	doWrite := f.Write.Val().Bit(0) && !full
	doRead := f.Read.Val().Bit(0) && !empty

	for i, slot := range f.slots {
		if doWrite && uint64(i) == tail {
			slot.D.SetNext(f.DataIn.Val())
		} else {
			slot.D.SetNext(slot.Q.Val())
		}
		slot.Sample()
	}

	nextTail := tail
	if doWrite {
		nextTail = (tail + 1) % depth
	}
	f.tail.D.SetNext(bits.FromUint64(f.tail.Q.Val().Width(), nextTail))
	f.tail.Sample()

	nextHead := head
	if doRead {
		nextHead = (head + 1) % depth
	}
	f.head.D.SetNext(bits.FromUint64(f.head.Q.Val().Width(), nextHead))
	f.head.Sample()

	nextCount := count
	switch {
	case doWrite && !doRead:
		nextCount++
	case doRead && !doWrite:
		nextCount--
	}
	f.count.D.SetNext(bits.FromUint64(f.count.Q.Val().Width(), nextCount))
	f.count.Sample()
}

// HDL renders the ring-buffer update hand, mirroring Update's structure:
// a combinational mux reading the head-selected slot, continuous
// assignments for the status flags, and a clocked block that writes the
// tail-selected slot and advances the two pointers with wraparound at
// depth (not a power-of-two shift, since depth need not be one).
func (f *SyncFIFO) HDL() block.HDLForm {
	var sb strings.Builder

	sb.WriteString("  always @(*) begin\n    case (head$q)\n")
	for i := 0; i < f.depth; i++ {
		fmt.Fprintf(&sb, "      %d: data_out = %s$q;\n", i, slotName(i))
	}
	fmt.Fprintf(&sb, "      default: data_out = %d'b0;\n    endcase\n  end\n", f.width)

	fmt.Fprintf(&sb, "  assign empty = (count$q == 0);\n")
	fmt.Fprintf(&sb, "  assign full = (count$q == %d);\n", f.depth)
	sb.WriteString("  assign count = count$q;\n")

	sb.WriteString("  always @(posedge clk) begin\n")
	sb.WriteString("    if (write && !full) begin\n      case (tail$q)\n")
	for i := 0; i < f.depth; i++ {
		fmt.Fprintf(&sb, "        %d: %s$q <= data_in;\n", i, slotName(i))
	}
	sb.WriteString("      endcase\n")
	fmt.Fprintf(&sb, "      tail$q <= (tail$q == %d) ? 0 : tail$q + 1'b1;\n", f.depth-1)
	sb.WriteString("    end\n")
	sb.WriteString("    if (read && !empty) begin\n")
	fmt.Fprintf(&sb, "      head$q <= (head$q == %d) ? 0 : head$q + 1'b1;\n", f.depth-1)
	sb.WriteString("    end\n")
	sb.WriteString("    case ({write && !full, read && !empty})\n")
	sb.WriteString("      2'b10: count$q <= count$q + 1'b1;\n")
	sb.WriteString("      2'b01: count$q <= count$q - 1'b1;\n")
	sb.WriteString("      default: count$q <= count$q;\n")
	sb.WriteString("    endcase\n")
	sb.WriteString("  end")

	return block.Custom(sb.String())
}
