// File: message/checksum.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// 16-bit ones-complement folding used by IPv6 upper-layer checksums.

package message

import "math/bits"

// ChecksumUint16 adds a 16-bit value to a running checksum with end-around carry.
func ChecksumUint16(sum, v uint16) uint16 {
	r := sum + v
	if r < sum {
		r++
	}
	return r
}

// ChecksumBytes folds b into sum. b[0] is taken as the high byte of the first word.
func ChecksumBytes(sum uint16, b []byte) uint16 {
	for i, v := range b {
		if i&1 == 0 {
			sum = ChecksumUint16(sum, uint16(v)<<8)
		} else {
			sum = ChecksumUint16(sum, uint16(v))
		}
	}
	return sum
}

// UpdateChecksum folds payload bytes [offset, offset+length) into sum. Bytes at
// even payload offsets are high bytes, so contiguous ranges folded one call at
// a time give the same sum as one call over their union. The range is clamped
// to the payload.
func (m *Message) UpdateChecksum(sum uint16, offset, length int) uint16 {
	c := Checksum{sum: sum, odd: offset&1 == 1}
	c.AddMessage(m, offset, length)
	return c.sum
}

// Checksum accumulates a ones-complement sum across calls while tracking byte
// parity, so ranges may be split at any boundary.
type Checksum struct {
	sum uint16
	odd bool
}

// NewChecksum starts an accumulator from an existing running sum.
func NewChecksum(sum uint16) *Checksum { return &Checksum{sum: sum} }

// Write folds b. It never fails; the signature satisfies io.Writer.
func (c *Checksum) Write(b []byte) (int, error) {
	c.fold(b)
	return len(b), nil
}

// AddUint16 folds a big-endian 16-bit value.
func (c *Checksum) AddUint16(v uint16) {
	c.fold([]byte{byte(v >> 8), byte(v)})
}

// AddMessage folds payload bytes [offset, offset+length) of m and returns the
// number of bytes covered after clamping.
func (c *Checksum) AddMessage(m *Message, offset, length int) int {
	if offset < 0 || length <= 0 || offset >= m.length {
		return 0
	}
	length = min(length, m.length-offset)
	pos := m.reserved + offset
	for rem := length; rem > 0; {
		seg := m.segment(pos)
		if len(seg) > rem {
			seg = seg[:rem]
		}
		c.fold(seg)
		pos += len(seg)
		rem -= len(seg)
	}
	return length
}

// Sum16 returns the running sum.
func (c *Checksum) Sum16() uint16 { return c.sum }

func (c *Checksum) fold(b []byte) {
	if len(b) == 0 {
		return
	}
	if c.odd {
		c.sum = bits.ReverseBytes16(ChecksumBytes(bits.ReverseBytes16(c.sum), b))
	} else {
		c.sum = ChecksumBytes(c.sum, b)
	}
	if len(b)&1 == 1 {
		c.odd = !c.odd
	}
}
