// File: message/childmask.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-width vector of indirect-transmission destinations still waiting for a
// copy of a message.

package message

// ChildMask is a bit vector sized once from Config.ChildMaskBits.
type ChildMask []byte

func newChildMask(bits int) ChildMask { return make(ChildMask, (bits+7)/8) }

// Get reports whether bit i is set. i must be below the configured width.
func (c ChildMask) Get(i int) bool { return c[i>>3]&(0x80>>(i&7)) != 0 }

// Set raises bit i.
func (c ChildMask) Set(i int) { c[i>>3] |= 0x80 >> (i & 7) }

// Clear lowers bit i.
func (c ChildMask) Clear(i int) { c[i>>3] &^= 0x80 >> (i & 7) }

// Any reports whether at least one bit is set.
func (c ChildMask) Any() bool {
	for _, b := range c {
		if b != 0 {
			return true
		}
	}
	return false
}

func (c ChildMask) reset() { clear(c) }

// ChildMask reports whether forwarding to child index i is pending.
func (m *Message) ChildMask(i int) bool { return m.childMask.Get(i) }

// SetChildMask schedules forwarding to child index i.
func (m *Message) SetChildMask(i int) { m.childMask.Set(i) }

// ClearChildMask unschedules forwarding to child index i.
func (m *Message) ClearChildMask(i int) { m.childMask.Clear(i) }

// IsChildPending reports whether forwarding is pending for any child.
func (m *Message) IsChildPending() bool { return m.childMask.Any() }
