// Package bits implements the fixed-width unsigned integer type that
// underlies every signal value in the circuit model: Bits.
//
// Go generics cannot carry an integer value as a type parameter (a type
// parameter must itself be a type), so width is carried as a runtime
// field rather than a compile-time one. Widths at or below ShortBits pack
// into a single machine word, wider values fall back to a bool-per-bit
// slice. The split is a storage heuristic only; every operation behaves
// identically either way.
package bits

import (
	"fmt"
	"math/bits"
	"strings"
)

// ShortBits is the platform machine-word width used as the short/long
// representation cutoff.
const ShortBits = 64

// Bits is a fixed-width unsigned integer. The zero value is not valid;
// use New, Zero, FromUint64, or FromBools to construct one.
type Bits struct {
	width int
	short uint64 // valid when width <= ShortBits, bits above width are zero
	long  []bool // valid when width > ShortBits, len(long) == width
}

// Width reports the bit width of b.
func (b Bits) Width() int {
	return b.width
}

func isShort(width int) bool {
	return width <= ShortBits
}

func truncMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

// Zero returns the zero value of the given width.
func Zero(width int) Bits {
	mustPositiveWidth(width)
	if isShort(width) {
		return Bits{width: width}
	}
	return Bits{width: width, long: make([]bool, width)}
}

// New is an alias for FromUint64, truncating the literal v to width bits.
func New(width int, v uint64) Bits {
	return FromUint64(width, v)
}

// FromUint64 constructs a Bits of the given width from a machine integer,
// truncating the value to width bits (zero-extending if v already fits).
func FromUint64(width int, v uint64) Bits {
	mustPositiveWidth(width)
	if isShort(width) {
		return Bits{width: width, short: v & truncMask(width)}
	}
	b := Bits{width: width, long: make([]bool, width)}
	for i := 0; i < width && i < 64; i++ {
		b.long[i] = (v>>uint(i))&1 == 1
	}
	return b
}

// FromBools constructs a Bits from a little-endian (LSB first) slice of
// booleans. The resulting width is len(bs).
func FromBools(bs []bool) Bits {
	width := len(bs)
	mustPositiveWidth(width)
	if isShort(width) {
		var v uint64
		for i, bit := range bs {
			if bit {
				v |= 1 << uint(i)
			}
		}
		return Bits{width: width, short: v}
	}
	long := make([]bool, width)
	copy(long, bs)
	return Bits{width: width, long: long}
}

func mustPositiveWidth(width int) {
	if width <= 0 {
		panic(fmt.Sprintf("bits: width must be positive, got %d", width))
	}
}

func (b Bits) mustIndex(i int) {
	if i < 0 || i >= b.width {
		panic(fmt.Sprintf("bits: index %d out of range for width %d", i, b.width))
	}
}

// Bit returns the value of bit i (0 is the least-significant bit).
func (b Bits) Bit(i int) bool {
	b.mustIndex(i)
	if b.long != nil {
		return b.long[i]
	}
	return (b.short>>uint(i))&1 == 1
}

// WithBit returns a copy of b with bit i set to v.
func (b Bits) WithBit(i int, v bool) Bits {
	b.mustIndex(i)
	if b.long != nil {
		out := make([]bool, b.width)
		copy(out, b.long)
		out[i] = v
		return Bits{width: b.width, long: out}
	}
	if v {
		return Bits{width: b.width, short: b.short | (1 << uint(i))}
	}
	return Bits{width: b.width, short: b.short &^ (1 << uint(i))}
}

// Slice extracts a width-wide subfield starting at the given bit offset.
// offset+width must not exceed b.Width().
func (b Bits) Slice(offset, width int) Bits {
	if offset < 0 || width <= 0 || offset+width > b.width {
		panic(fmt.Sprintf("bits: slice [%d:%d) out of range for width %d", offset, offset+width, b.width))
	}
	out := Zero(width)
	for i := 0; i < width; i++ {
		out = out.WithBit(i, b.Bit(offset+i))
	}
	return out
}

// SetSlice overwrites the width(v)-wide subfield of b starting at offset
// with v, mutating the receiver in place.
func (b *Bits) SetSlice(offset int, v Bits) {
	if offset < 0 || offset+v.width > b.width {
		panic(fmt.Sprintf("bits: set-slice [%d:%d) out of range for width %d", offset, offset+v.width, b.width))
	}
	for i := 0; i < v.width; i++ {
		*b = b.WithBit(offset+i, v.Bit(i))
	}
}

// Mask returns an all-ones value of the same width as b.
func (b Bits) Mask() Bits {
	if isShort(b.width) {
		return Bits{width: b.width, short: truncMask(b.width)}
	}
	long := make([]bool, b.width)
	for i := range long {
		long[i] = true
	}
	return Bits{width: b.width, long: long}
}

// Any reports whether any bit of b is set (reduce-or).
func (b Bits) Any() bool {
	if b.long != nil {
		for _, v := range b.long {
			if v {
				return true
			}
		}
		return false
	}
	return b.short != 0
}

// All reports whether every bit of b is set (reduce-and).
func (b Bits) All() bool {
	return b.Equal(b.Mask())
}

// Xor reduces b's bits with XOR, returning true for odd parity
// (reduce-xor).
func (b Bits) Xor() bool {
	if b.long != nil {
		parity := false
		for _, v := range b.long {
			if v {
				parity = !parity
			}
		}
		return parity
	}
	return bits.OnesCount64(b.short)%2 == 1
}

// Index converts a short (width <= ShortBits) Bits to a machine integer.
// Calling Index on a wide Bits is a programmer error and panics.
func (b Bits) Index() uint64 {
	if b.long != nil {
		panic("bits: Index called on a wide (>64 bit) value")
	}
	return b.short
}

// Equal reports whether a and b have the same width and value.
func (a Bits) Equal(b Bits) bool {
	return a.Compare(b) == 0
}

// Compare returns -1, 0, or 1 comparing a and b as unsigned integers.
// Panics if the widths differ.
func (a Bits) Compare(b Bits) int {
	a.mustSameWidth(b)
	if a.long == nil && b.long == nil {
		switch {
		case a.short < b.short:
			return -1
		case a.short > b.short:
			return 1
		default:
			return 0
		}
	}
	for i := a.width - 1; i >= 0; i-- {
		ab, bb := a.Bit(i), b.Bit(i)
		if ab == bb {
			continue
		}
		if !ab && bb {
			return -1
		}
		return 1
	}
	return 0
}

func (a Bits) mustSameWidth(b Bits) {
	if a.width != b.width {
		panic(fmt.Sprintf("bits: width mismatch %d vs %d", a.width, b.width))
	}
}

// Add returns a+b, wrapping at width(a) (two's-complement wraparound).
func (a Bits) Add(b Bits) Bits {
	a.mustSameWidth(b)
	if a.long == nil {
		return Bits{width: a.width, short: (a.short + b.short) & truncMask(a.width)}
	}
	return longArith(a, b, func(x, y uint64) uint64 { return x + y })
}

// AddUint truncates v to a's width and adds it to a.
func (a Bits) AddUint(v uint64) Bits {
	return a.Add(FromUint64(a.width, v))
}

// Sub returns a-b, wrapping at width(a).
func (a Bits) Sub(b Bits) Bits {
	a.mustSameWidth(b)
	if a.long == nil {
		return Bits{width: a.width, short: (a.short - b.short) & truncMask(a.width)}
	}
	return longArith(a, b, func(x, y uint64) uint64 { return x - y })
}

// longArith adds or subtracts wide values one bit at a time with a ripple
// carry/borrow; used only for the infrequent >64-bit path so clarity wins
// over speed.
func longArith(a, b Bits, combine func(x, y uint64) uint64) Bits {
	// combine is only probed to tell addition from subtraction; the
	// arithmetic itself is the ripple loop below.
	isAdd := combine(2, 1) == 3
	out := make([]bool, a.width)
	if isAdd {
		carry := false
		for i := 0; i < a.width; i++ {
			x, y := a.Bit(i), b.Bit(i)
			sum := x != y != carry
			newCarry := (x && y) || (x && carry) || (y && carry)
			out[i] = sum
			carry = newCarry
		}
	} else {
		borrow := false
		for i := 0; i < a.width; i++ {
			x, y := a.Bit(i), b.Bit(i)
			diff := x != y != borrow
			newBorrow := (!x && y) || (!x && borrow) || (y && borrow)
			out[i] = diff
			borrow = newBorrow
		}
	}
	return Bits{width: a.width, long: out}
}

// And returns the bitwise AND of a and b.
func (a Bits) And(b Bits) Bits {
	return a.bitwise(b, func(x, y bool) bool { return x && y })
}

// Or returns the bitwise OR of a and b.
func (a Bits) Or(b Bits) Bits {
	return a.bitwise(b, func(x, y bool) bool { return x || y })
}

// XorOp returns the bitwise XOR of a and b (named XorOp to avoid colliding
// with the Xor reduction method).
func (a Bits) XorOp(b Bits) Bits {
	return a.bitwise(b, func(x, y bool) bool { return x != y })
}

func (a Bits) bitwise(b Bits, op func(x, y bool) bool) Bits {
	a.mustSameWidth(b)
	if a.long == nil && b.long == nil {
		var v uint64
		for i := 0; i < a.width; i++ {
			if op((a.short>>uint(i))&1 == 1, (b.short>>uint(i))&1 == 1) {
				v |= 1 << uint(i)
			}
		}
		return Bits{width: a.width, short: v}
	}
	out := make([]bool, a.width)
	for i := 0; i < a.width; i++ {
		out[i] = op(a.Bit(i), b.Bit(i))
	}
	return Bits{width: a.width, long: out}
}

// Not returns the bitwise complement of b.
func (b Bits) Not() Bits {
	if b.long == nil {
		return Bits{width: b.width, short: (^b.short) & truncMask(b.width)}
	}
	out := make([]bool, b.width)
	for i, v := range b.long {
		out[i] = !v
	}
	return Bits{width: b.width, long: out}
}

// Shl returns b shifted left by n bits, wrapping at width(b) (bits shifted
// past the top are discarded).
func (b Bits) Shl(n int) Bits {
	if n < 0 {
		panic("bits: negative shift amount")
	}
	if b.long == nil {
		if n >= 64 {
			return Bits{width: b.width}
		}
		return Bits{width: b.width, short: (b.short << uint(n)) & truncMask(b.width)}
	}
	out := make([]bool, b.width)
	for i := b.width - 1; i >= n; i-- {
		out[i] = b.long[i-n]
	}
	return Bits{width: b.width, long: out}
}

// Shr returns b shifted right (logically) by n bits.
func (b Bits) Shr(n int) Bits {
	if n < 0 {
		panic("bits: negative shift amount")
	}
	if b.long == nil {
		if n >= 64 {
			return Bits{width: b.width}
		}
		return Bits{width: b.width, short: b.short >> uint(n)}
	}
	out := make([]bool, b.width)
	for i := 0; i < b.width-n; i++ {
		out[i] = b.long[i+n]
	}
	return Bits{width: b.width, long: out}
}

// Mul16x16 multiplies two 16-bit operands, producing a 32-bit result.
// Defined only for 16x16->32 to keep synthesis realistic, per spec.
// Panics if either operand is not exactly 16 bits wide.
func Mul16x16(a, b Bits) Bits {
	if a.width != 16 || b.width != 16 {
		panic(fmt.Sprintf("bits: Mul16x16 requires two 16-bit operands, got %d and %d", a.width, b.width))
	}
	return FromUint64(32, a.Index()*b.Index())
}

// Cast converts b to a new width, truncating or zero-extending from the
// least-significant bit.
func Cast(b Bits, newWidth int) Bits {
	mustPositiveWidth(newWidth)
	out := Zero(newWidth)
	n := newWidth
	if b.width < n {
		n = b.width
	}
	for i := 0; i < n; i++ {
		out = out.WithBit(i, b.Bit(i))
	}
	return out
}

// String renders b in binary, e.g. "8'b00000101".
func (b Bits) String() string {
	return fmt.Sprintf("%d'b%s", b.width, b.binaryDigits())
}

func (b Bits) binaryDigits() string {
	var sb strings.Builder
	for i := b.width - 1; i >= 0; i-- {
		if b.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Format implements fmt.Formatter, supporting %b (binary), %x (lower hex),
// and %X (upper hex) in addition to the default %v/%s (binary).
func (b Bits) Format(f fmt.State, verb rune) {
	switch verb {
	case 'x':
		fmt.Fprint(f, strings.ToLower(b.hexDigits()))
	case 'X':
		fmt.Fprint(f, strings.ToUpper(b.hexDigits()))
	case 'b':
		fmt.Fprint(f, b.binaryDigits())
	default:
		fmt.Fprint(f, b.String())
	}
}

func (b Bits) hexDigits() string {
	nibbles := (b.width + 3) / 4
	var sb strings.Builder
	for i := nibbles - 1; i >= 0; i-- {
		lo := i * 4
		hi := lo + 4
		if hi > b.width {
			hi = b.width
		}
		var v uint64
		for j := lo; j < hi; j++ {
			if b.Bit(j) {
				v |= 1 << uint(j-lo)
			}
		}
		sb.WriteString(fmt.Sprintf("%x", v))
	}
	return sb.String()
}
