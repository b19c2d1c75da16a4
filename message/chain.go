// File: message/chain.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Payload access over the buffer chain. Storage positions count from the first
// byte of the head slot, so payload offset o lives at storage position
// reserved+o.

package message

import "github.com/momentics/meshbuf/api"

// locate maps a storage position to a chain index and an offset inside that slot.
func (m *Message) locate(pos int) (int, int) {
	head := m.pool.headData
	if pos < head {
		return 0, pos
	}
	pos -= head
	return 1 + pos/m.pool.bodyData, pos % m.pool.bodyData
}

// segment returns the bytes from storage position pos to the end of its slot.
func (m *Message) segment(pos int) []byte {
	i, off := m.locate(pos)
	limit := m.pool.bodyData
	if i == 0 {
		limit = m.pool.headData
	}
	return m.pool.buffers.Bytes(m.chain[i])[off:limit]
}

func (m *Message) copyOut(pos int, dst []byte) {
	for len(dst) > 0 {
		n := copy(dst, m.segment(pos))
		dst = dst[n:]
		pos += n
	}
}

func (m *Message) copyIn(pos int, src []byte) {
	for len(src) > 0 {
		n := copy(m.segment(pos), src)
		src = src[n:]
		pos += n
	}
}

// SetLength grows or shrinks the payload to n bytes. Bytes 0..min(old,n) are
// preserved; on failure the message is unchanged.
func (m *Message) SetLength(n int) error {
	if n < 0 || m.reserved+n > MaxLength {
		return api.ErrInvalidArgs.WithContext("length", n)
	}
	if err := m.pool.resize(m, m.reserved+n); err != nil {
		return err
	}
	m.length = n
	if m.offset > n {
		m.offset = n
	}
	return nil
}

// Append copies buf to the end of the payload, growing the chain as needed.
func (m *Message) Append(buf []byte) error {
	old := m.length
	if err := m.SetLength(old + len(buf)); err != nil {
		return err
	}
	m.copyIn(m.reserved+old, buf)
	return nil
}

// Prepend copies buf in front of the payload using reserved header space only.
// The reservation made at creation time is never extended.
func (m *Message) Prepend(buf []byte) error {
	n := len(buf)
	if n > m.reserved {
		return api.ErrNoBuffers.WithContext("prepend", n).WithContext("reserved", m.reserved)
	}
	m.reserved -= n
	m.length += n
	m.offset += n
	m.copyIn(m.reserved, buf)
	return nil
}

// RemoveHeader strips n bytes from the front of the payload and returns them to
// the reserved header space. n is clamped to the payload length.
func (m *Message) RemoveHeader(n int) {
	if n <= 0 {
		return
	}
	if n > m.length {
		n = m.length
	}
	m.reserved += n
	m.length -= n
	if m.offset > n {
		m.offset -= n
	} else {
		m.offset = 0
	}
}

// Read copies up to len(buf) bytes starting at payload offset. Reading at or
// past the end yields 0.
func (m *Message) Read(offset int, buf []byte) int {
	if offset < 0 || offset >= m.length {
		return 0
	}
	n := min(len(buf), m.length-offset)
	m.copyOut(m.reserved+offset, buf[:n])
	return n
}

// Write overwrites existing payload bytes in place. It never extends the
// message; bytes past the current length are dropped.
func (m *Message) Write(offset int, buf []byte) int {
	if offset < 0 || offset >= m.length {
		return 0
	}
	n := min(len(buf), m.length-offset)
	m.copyIn(m.reserved+offset, buf[:n])
	return n
}

// CopyTo copies n bytes from this message at srcOffset into dst at dstOffset,
// clamped to both payload lengths.
func (m *Message) CopyTo(srcOffset, dstOffset, n int, dst *Message) int {
	if n <= 0 || srcOffset < 0 || dstOffset < 0 {
		return 0
	}
	n = min(n, m.length-srcOffset, dst.length-dstOffset)
	if n <= 0 {
		return 0
	}
	spos, dpos := m.reserved+srcOffset, dst.reserved+dstOffset
	for done := 0; done < n; {
		src := m.segment(spos)
		if rem := n - done; len(src) > rem {
			src = src[:rem]
		}
		c := copy(dst.segment(dpos), src)
		spos += c
		dpos += c
		done += c
	}
	return n
}

// Clone allocates an independent copy holding the first n payload bytes. Type,
// subtype, link security, priority and offset (clamped to n) are carried over.
func (m *Message) Clone(n int) (*Message, error) {
	if n < 0 || n > m.length {
		return nil, api.ErrInvalidArgs.WithContext("length", n)
	}
	c, err := m.pool.newMessage(m.typ, m.reserved, n, m.priority, m)
	if err != nil {
		return nil, err
	}
	m.CopyTo(0, 0, n, c)
	c.offset = min(m.offset, n)
	c.subType = m.subType
	c.linkSecurity = m.linkSecurity
	return c, nil
}

// CloneAll clones the whole payload.
func (m *Message) CloneAll() (*Message, error) { return m.Clone(m.length) }

// Bytes returns a copy of the payload.
func (m *Message) Bytes() []byte {
	out := make([]byte, m.length)
	m.copyOut(m.reserved, out)
	return out
}
