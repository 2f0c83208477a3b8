package fontir

import (
	"encoding/binary"
	"errors"

	"github.com/npillmayer/fontbridge/core/font/ot"
)

var errOffsetOverflow = errors.New("table too large for 16-bit offsets")

// buffer collects big-endian table data.
type buffer []byte

func (b *buffer) u8(x uint8) {
	*b = append(*b, x)
}

func (b *buffer) u16(x uint16) {
	*b = binary.BigEndian.AppendUint16(*b, x)
}

func (b *buffer) i16(x int16) {
	b.u16(uint16(x))
}

func (b *buffer) u32(x uint32) {
	*b = binary.BigEndian.AppendUint32(*b, x)
}

func (b *buffer) tag(t ot.Tag) {
	b.u32(uint32(t))
}

func (b *buffer) bytes(p []byte) {
	*b = append(*b, p...)
}

func (b *buffer) zeros(n int) {
	*b = append(*b, make([]byte, n)...)
}

// offset16 appends an offset, failing if it does not fit 16 bits.
func (b *buffer) offset16(off int) error {
	if off > 0xffff {
		return errOffsetOverflow
	}
	b.u16(uint16(off))
	return nil
}

func (b buffer) setU32(at int, x uint32) {
	binary.BigEndian.PutUint32(b[at:], x)
}

// searchParams returns the binary search helper fields used by several
// table headers, for n entries of unitSize bytes.
func searchParams(n, unitSize int) (searchRange, entrySelector, rangeShift uint16) {
	p, e := 1, 0
	for p*2 <= n {
		p *= 2
		e++
	}
	if n == 0 {
		p = 0
	}
	return uint16(p * unitSize), uint16(e), uint16((n - p) * unitSize)
}

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var w [4]byte
		copy(w[:], data[i:])
		sum += binary.BigEndian.Uint32(w[:])
	}
	return sum
}

func clampI16(x int) int16 {
	if x < -32768 {
		return -32768
	}
	if x > 32767 {
		return 32767
	}
	return int16(x)
}

func clampU16(x int) uint16 {
	if x < 0 {
		return 0
	}
	if x > 0xffff {
		return 0xffff
	}
	return uint16(x)
}
