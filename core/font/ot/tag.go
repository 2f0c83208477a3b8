package ot

import "fmt"

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate.
// Use ParseTag for input which has to be validated.
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// ParseTag decodes a tag from a string, checking it for well-formedness.
// A well-formed tag has exactly four bytes in the printable ASCII range
// 0x20–0x7E. It must not start with a space, and spaces are allowed only as
// trailing padding ("cvt " is fine, " cvt" and "c vt" are not).
func ParseTag(s string) (Tag, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("tag must be exactly 4 bytes long, has %d", len(s))
	}
	padding := false
	for i := 0; i < 4; i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e {
			return 0, fmt.Errorf("tag contains invalid byte 0x%02x at position %d", c, i)
		}
		if c == ' ' {
			if i == 0 {
				return 0, fmt.Errorf("tag must not start with a space")
			}
			padding = true
		} else if padding {
			return 0, fmt.Errorf("tag has a space followed by a non-space at position %d", i)
		}
	}
	return Tag(u32([]byte(s))), nil
}
