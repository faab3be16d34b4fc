package block_test

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/signal"
)

// leaf is a minimal combinational inverter: q = !a. It is a worked example
// of the self-dispatch embedding pattern BaseBlock requires.
type leaf struct {
	*block.BaseBlock
	A, Q *signal.Signal
}

func newLeaf(name string) *leaf {
	l := &leaf{
		A: signal.New(name+".a", signal.In, 1, signal.BitType(1)),
		Q: signal.New(name+".q", signal.Out, 1, signal.BitType(1)),
	}
	l.BaseBlock = block.NewBaseBlock(l)
	l.AddSignal(l.A)
	l.AddSignal(l.Q)
	return l
}

func (l *leaf) Update() {
	l.Q.SetNext(l.A.Val().Not())
}

func (l *leaf) Connect() {
	l.Q.Connect()
}

// composite chains two leaves back to back.
type composite struct {
	*block.BaseBlock
	In, Out    *signal.Signal
	first, second *leaf
}

func newComposite() *composite {
	c := &composite{
		In:  signal.New("in", signal.In, 1, signal.BitType(1)),
		Out: signal.New("out", signal.Out, 1, signal.BitType(1)),
	}
	c.BaseBlock = block.NewBaseBlock(c)
	c.AddSignal(c.In)
	c.AddSignal(c.Out)
	c.first = newLeaf("knot_1")
	c.second = newLeaf("knot_2")
	c.AddChild("knot_1", c.first)
	c.AddChild("knot_2", c.second)
	return c
}

func (c *composite) Connect() {
	c.Out.Connect()
	c.first.A.Connect()
	c.second.A.Connect()
}

func (c *composite) Update() {
	c.first.A.SetNext(c.In.Val())
	c.second.A.SetNext(c.first.Q.Val())
	c.Out.SetNext(c.second.Q.Val())
}

// recordingVisitor records the call sequence for assertions.
type recordingVisitor struct {
	events []string
	atoms  []block.Atom
}

func (r *recordingVisitor) StartScope(name string)     { r.events = append(r.events, "scope+"+name) }
func (r *recordingVisitor) EndScope()                  { r.events = append(r.events, "scope-") }
func (r *recordingVisitor) StartNamespace(name string) { r.events = append(r.events, "ns+"+name) }
func (r *recordingVisitor) EndNamespace()               { r.events = append(r.events, "ns-") }
func (r *recordingVisitor) Atom(a block.Atom)           { r.atoms = append(r.atoms, a) }

var _ = Describe("BaseBlock", func() {
	It("dispatches Update to the concrete component via self, not the default no-op", func() {
		l := newLeaf("x")
		l.A.SetNext(bits.FromUint64(1, 1))
		l.A.Commit()
		l.UpdateAll()
		Expect(l.Q.Val().Bit(0)).To(BeFalse())
	})

	It("propagates values through a composite's children once repeated UpdateAll calls settle", func() {
		c := newComposite()
		c.ConnectAll()
		c.In.SetNext(bits.FromUint64(1, 1))
		c.In.Commit()
		// Each UpdateAll moves a value one staged hop; repeat until nothing
		// changes.
		for i := 0; i < 10; i++ {
			c.UpdateAll()
			if !c.HasChanged() {
				break
			}
		}
		// in=1 -> knot_1.q=0 -> knot_2.q=1 -> out=1
		Expect(c.Out.Val().Bit(0)).To(BeTrue())
	})

	It("reports HasChanged only when a committed value actually differs", func() {
		l := newLeaf("y")
		l.UpdateAll() // settle q = !a once
		l.A.SetNext(bits.Zero(1))
		l.A.Commit()
		l.UpdateAll()
		Expect(l.HasChanged()).To(BeFalse(), "settling to the same value is not a change")

		l.A.SetNext(bits.FromUint64(1, 1))
		l.A.Commit()
		l.UpdateAll()
		Expect(l.HasChanged()).To(BeTrue())
	})

	It("visits scopes in declaration order and joins paths with $", func() {
		c := newComposite()
		v := &recordingVisitor{}
		c.Accept("top", v)
		Expect(v.events).To(Equal([]string{
			"scope+top", "scope+knot_1", "scope-", "scope+knot_2", "scope-", "scope-",
		}))
		Expect(block.JoinPath("top", "knot_1")).To(Equal("top$knot_1"))
	})

	It("drives a mocked Visitor through the exact expected scope ordering", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		v := NewMockVisitor(mockCtrl)
		v.EXPECT().Atom(gomock.Any()).AnyTimes()
		gomock.InOrder(
			v.EXPECT().StartScope("top"),
			v.EXPECT().StartScope("knot_1"),
			v.EXPECT().EndScope(),
			v.EXPECT().StartScope("knot_2"),
			v.EXPECT().EndScope(),
			v.EXPECT().EndScope(),
		)

		c := newComposite()
		c.Accept("top", v)
	})
})
