// File: internal/reassembly/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reassembly

import (
	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/message"
	"k8s.io/klog/v2"
)

// DefaultTimeout is the reassembly lifetime in seconds.
const DefaultTimeout uint8 = 5

// Table holds messages under reassembly. Not safe for concurrent use.
type Table struct {
	pool    *message.Pool
	queue   *message.MessageQueue
	expired int64
	logger  klog.Logger
}

// Option customizes a Table.
type Option func(*Table)

// WithLogger replaces the default klog logger.
func WithLogger(l klog.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// New creates an empty table backed by a FIFO of p.
func New(p *message.Pool, opts ...Option) *Table {
	t := &Table{
		pool:   p,
		queue:  p.NewMessageQueue(),
		logger: klog.Background().WithName("reassembly"),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Insert takes ownership of m and tracks it under tag for timeout seconds.
func (t *Table) Insert(m *message.Message, tag uint32, timeout uint8) error {
	if timeout == 0 {
		return api.ErrInvalidArgs.WithContext("timeout", timeout)
	}
	if err := t.queue.Enqueue(m); err != nil {
		return err
	}
	m.SetDatagramTag(tag)
	m.SetTimeout(timeout)
	return nil
}

// Lookup returns the oldest entry carrying tag, or nil.
func (t *Table) Lookup(tag uint32) *message.Message {
	for m := t.queue.Head(); m != nil; m = m.Next() {
		if m.DatagramTag() == tag {
			return m
		}
	}
	return nil
}

// Remove hands m back to the caller, typically once the datagram is complete.
func (t *Table) Remove(m *message.Message) error {
	return t.queue.Dequeue(m)
}

// Tick decrements every timeout and frees the entries reaching zero. It returns
// the number of entries dropped.
func (t *Table) Tick() int {
	dropped := 0
	for m := t.queue.Head(); m != nil; {
		next := m.Next()
		m.DecrementTimeout()
		if m.Timeout() == 0 {
			t.logger.V(4).Info("reassembly timeout", "tag", m.DatagramTag(), "length", m.Length())
			t.pool.Free(m)
			dropped++
		}
		m = next
	}
	t.expired += int64(dropped)
	return dropped
}

// Len returns the number of entries and the slots they hold.
func (t *Table) Len() (entries, buffers int) { return t.queue.Info() }

// Expired returns the number of entries dropped by Tick so far.
func (t *Table) Expired() int64 { return t.expired }
