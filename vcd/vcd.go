// Package vcd implements the Value Change Dump trace format: Writer
// satisfies simulation.Tracer, walking a circuit via block.Visitor (the
// external-consumer contract, as opposed to the check/verilog packages'
// internal block.Introspectable walk) to emit a standard
// $timescale/$scope/$var header, an initial $dumpvars, and one #<time>
// block per reported change thereafter.
package vcd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tebeka/atexit"

	"github.com/samitbasu/gohdl/bits"
	"github.com/samitbasu/gohdl/block"
	"github.com/samitbasu/gohdl/simulation"
)

// Writer renders a circuit's signal changes as ASCII VCD. It satisfies
// simulation.Tracer; pass one to Sim.RunTraced.
type Writer struct {
	out    *bufio.Writer
	closer io.Closer

	idents map[string]string
	order  []string
	width  map[string]int
	last   map[string]bits.Bits
	nextID int
}

var _ simulation.Tracer = (*Writer)(nil)

// New wraps w as a VCD trace destination.
func New(w io.Writer) *Writer {
	return &Writer{
		out:    bufio.NewWriter(w),
		idents: map[string]string{},
		width:  map[string]int{},
		last:   map[string]bits.Bits{},
	}
}

// NewFile opens path for writing and registers it to be flushed and
// closed when the process exits, even via atexit.Exit rather than a
// plain return from main.
func NewFile(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := New(f)
	w.closer = f
	atexit.Register(func() { _ = w.Close() })
	return w, nil
}

// Close flushes any buffered output and closes the underlying file, if
// this Writer owns one (via NewFile).
func (w *Writer) Close() error {
	if err := w.out.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// identFor returns the stable short identifier code for the atom at
// path, registering one (in declaration order) on first use.
func (w *Writer) identFor(path string, width int) string {
	if id, ok := w.idents[path]; ok {
		return id
	}
	id := encodeIdent(len(w.order))
	w.idents[path] = id
	w.order = append(w.order, path)
	w.width[path] = width
	return id
}

// encodeIdent renders n as a VCD identifier code: a base-94 number over
// the printable ASCII range '!'..'~', least code first so "!", "\"", ...,
// "~", "!!", "!\"", ... matches the conventional VCD generator sequence.
func encodeIdent(n int) string {
	const base = 94
	digits := []byte{byte('!' + n%base)}
	n /= base
	for n > 0 {
		n--
		digits = append([]byte{byte('!' + n%base)}, digits...)
		n /= base
	}
	return string(digits)
}

// pathStack tracks the "$"-joined scope/namespace nesting a Visitor walk
// is currently inside, the same mangling block.JoinPath applies to
// instance paths elsewhere in the module.
type pathStack struct {
	segs []string
}

func (p *pathStack) push(name string) { p.segs = append(p.segs, name) }
func (p *pathStack) pop()             { p.segs = p.segs[:len(p.segs)-1] }
func (p *pathStack) path(leaf string) string {
	return block.JoinPath(append(append([]string(nil), p.segs...), leaf)...)
}

// headerVisitor walks the tree once, writing $scope/$var declarations and
// registering every atom's identifier code.
type headerVisitor struct {
	w    *Writer
	out  io.Writer
	path pathStack
}

func (v *headerVisitor) StartScope(name string) {
	fmt.Fprintf(v.out, "$scope module %s $end\n", name)
	v.path.push(name)
}
func (v *headerVisitor) EndScope() {
	fmt.Fprintln(v.out, "$upscope $end")
	v.path.pop()
}
func (v *headerVisitor) StartNamespace(name string) {
	fmt.Fprintf(v.out, "$scope module %s $end\n", name)
	v.path.push(name)
}
func (v *headerVisitor) EndNamespace() {
	fmt.Fprintln(v.out, "$upscope $end")
	v.path.pop()
}
func (v *headerVisitor) Atom(a block.Atom) {
	p := v.path.path(a.Name)
	id := v.w.identFor(p, a.Width)
	fmt.Fprintf(v.out, "$var wire %d %s %s $end\n", a.Width, id, a.Name)
}

// Header writes the VCD preamble: timescale, the nested $scope/$var
// declarations discovered by walking root, and $enddefinitions.
func (w *Writer) Header(root block.Block) {
	fmt.Fprintln(w.out, "$timescale 1ps $end")
	v := &headerVisitor{w: w, out: w.out}
	root.Accept("top", v)
	fmt.Fprintln(w.out, "$enddefinitions $end")
}

// valueVisitor walks the tree reading each atom's live value (via
// block.Atom.Ref) and either records it unconditionally (Dump) or only
// when it differs from the last value recorded for that path (Change).
type valueVisitor struct {
	w         *Writer
	out       io.Writer
	path      pathStack
	onlyDiff  bool
	wroteLine bool
}

func (v *valueVisitor) StartScope(name string)     { v.path.push(name) }
func (v *valueVisitor) EndScope()                  { v.path.pop() }
func (v *valueVisitor) StartNamespace(name string) { v.path.push(name) }
func (v *valueVisitor) EndNamespace()              { v.path.pop() }
func (v *valueVisitor) Atom(a block.Atom) {
	if a.Ref == nil {
		return
	}
	p := v.path.path(a.Name)
	val := a.Ref.Val()
	if v.onlyDiff {
		if prev, ok := v.w.last[p]; ok && prev.Width() == val.Width() && prev.Equal(val) {
			return
		}
	}
	v.w.last[p] = val
	fmt.Fprint(v.out, formatValue(val))
	fmt.Fprintln(v.out, v.w.identFor(p, a.Width))
	v.wroteLine = true
}

// formatValue renders one VCD value-change token: "0"/"1" for a 1-bit
// signal (no separating space before the identifier), "b<binary> " for
// anything wider.
func formatValue(v bits.Bits) string {
	if v.Width() == 1 {
		if v.Bit(0) {
			return "1"
		}
		return "0"
	}
	return fmt.Sprintf("b%b ", v)
}

// Dump writes the initial $dumpvars block, unconditionally recording
// every atom's current value.
func (w *Writer) Dump(root block.Block) {
	fmt.Fprintln(w.out, "$dumpvars")
	v := &valueVisitor{w: w, out: w.out}
	root.Accept("top", v)
	fmt.Fprintln(w.out, "$end")
}

// Change writes one #<time> block followed by every atom whose value has
// changed since the last Dump or Change call. The timestamp line is
// omitted entirely if nothing changed.
func (w *Writer) Change(time simulation.VTime, root block.Block) {
	v := &valueVisitor{w: w, onlyDiff: true}
	// Render into a scratch buffer first so the "#<time>" line is only
	// emitted when at least one atom actually changed.
	var sb stringWriter
	v.out = &sb
	root.Accept("top", v)
	if !v.wroteLine {
		return
	}
	fmt.Fprintf(w.out, "#%d\n", time)
	w.out.WriteString(sb.String())
}

// stringWriter is the minimal io.Writer a valueVisitor needs to stage its
// output before Change decides whether the timestamp line is warranted.
type stringWriter struct {
	data []byte
}

func (s *stringWriter) Write(p []byte) (int, error) {
	s.data = append(s.data, p...)
	return len(p), nil
}
func (s *stringWriter) String() string { return string(s.data) }
