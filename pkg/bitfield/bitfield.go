// Package bitfield implements the piece-availability bit vector used by
// the BitTorrent wire protocol. Bit index 0 is the most significant bit of
// byte 0, per BEP 3; that ordering is the wire contract, not a choice.
package bitfield

import (
	"bytes"
	"math/bits"
	"strings"
)

// Bitfield is a sequence of bits backed by a byte slice, MSB-first within
// each byte.
type Bitfield []byte

// New returns a Bitfield able to hold n bits, rounded up to whole bytes.
func New(n int) Bitfield {
	if n < 0 {
		n = 0
	}
	return make(Bitfield, (n+7)/8)
}

// FromBytes copies b into a new Bitfield.
func FromBytes(b []byte) Bitfield {
	bf := make(Bitfield, len(b))
	copy(bf, b)
	return bf
}

// FromIndices returns the smallest Bitfield with exactly the given bit
// indices set. Negative indices are ignored.
func FromIndices(indices ...int) Bitfield {
	highest := -1
	for _, i := range indices {
		if i > highest {
			highest = i
		}
	}

	bf := New(highest + 1)
	for _, i := range indices {
		bf.Set(i)
	}
	return bf
}

// ToBytes returns a copy of the underlying bytes.
func (bf Bitfield) ToBytes() []byte {
	out := make([]byte, len(bf))
	copy(out, bf)
	return out
}

// Has reports whether the bit at index is set. Out-of-range indices
// report false.
func (bf Bitfield) Has(index int) bool {
	byteIndex, offset := index/8, index%8
	if index < 0 || byteIndex >= len(bf) {
		return false
	}
	return bf[byteIndex]>>(7-offset)&1 != 0
}

// Set sets the bit at index. Out-of-range indices are ignored.
func (bf Bitfield) Set(index int) {
	byteIndex, offset := index/8, index%8
	if index < 0 || byteIndex >= len(bf) {
		return
	}
	bf[byteIndex] |= 1 << (7 - offset)
}

// Clear clears the bit at index. Out-of-range indices are ignored.
func (bf Bitfield) Clear(index int) {
	byteIndex, offset := index/8, index%8
	if index < 0 || byteIndex >= len(bf) {
		return
	}
	bf[byteIndex] &^= 1 << (7 - offset)
}

// Len returns the number of bits the Bitfield can hold.
func (bf Bitfield) Len() int { return len(bf) * 8 }

// Count returns the number of set bits.
func (bf Bitfield) Count() int {
	c := 0
	for _, b := range bf {
		c += bits.OnesCount8(b)
	}
	return c
}

// HighestSet returns the index of the highest set bit. ok is false when no
// bit is set.
func (bf Bitfield) HighestSet() (index int, ok bool) {
	for i := len(bf) - 1; i >= 0; i-- {
		if bf[i] == 0 {
			continue
		}
		return i*8 + 7 - bits.TrailingZeros8(bf[i]), true
	}
	return 0, false
}

// Indices returns the indices of all set bits in ascending order.
func (bf Bitfield) Indices() []int {
	out := make([]int, 0, bf.Count())
	for i, b := range bf {
		for b != 0 {
			off := bits.LeadingZeros8(b)
			out = append(out, i*8+off)
			b &^= 1 << (7 - off)
		}
	}
	return out
}

// Equals reports whether two bitfields have identical contents.
func (bf Bitfield) Equals(other Bitfield) bool {
	return bytes.Equal(bf, other)
}

// String renders the bitfield as '0'/'1' characters, MSB-first per byte.
func (bf Bitfield) String() string {
	var sb strings.Builder
	sb.Grow(bf.Len())
	for i := 0; i < bf.Len(); i++ {
		if bf.Has(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
