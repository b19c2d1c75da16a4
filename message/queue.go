// File: message/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO message queue over the intrusive next/prev links of the message arena.
// The list is circular: the head is the successor of the tail.

package message

import "github.com/momentics/meshbuf/api"

// Position selects where Enqueue places a message.
type Position int

const (
	PositionTail Position = iota
	PositionHead
)

// MessageQueue is a FIFO of messages. A message is held by at most one queue.
type MessageQueue struct {
	pool *Pool
	id   int
	tail int32
}

// Head returns the first message or nil.
func (q *MessageQueue) Head() *Message {
	if q.tail == noLink {
		return nil
	}
	return q.pool.at(q.pool.msgs[q.tail].next)
}

// Tail returns the last message or nil.
func (q *MessageQueue) Tail() *Message { return q.pool.at(q.tail) }

// Enqueue appends m to the tail.
func (q *MessageQueue) Enqueue(m *Message) error { return q.EnqueueAt(m, PositionTail) }

// EnqueueAt adds m at the head or tail.
func (q *MessageQueue) EnqueueAt(m *Message, pos Position) error {
	if m.pool != q.pool || !m.inUse {
		return api.ErrInvalidArgs.WithContext("queue", q.id)
	}
	if m.queue.kind != notQueued {
		return api.ErrAlreadyQueued.WithContext("queue", q.id)
	}
	m.queue = queueTag{kind: inFIFO, id: q.id}
	if q.tail == noLink {
		m.next, m.prev = m.index, m.index
		q.tail = m.index
		return nil
	}
	tail := &q.pool.msgs[q.tail]
	head := &q.pool.msgs[tail.next]
	m.next, m.prev = head.index, tail.index
	head.prev = m.index
	tail.next = m.index
	if pos == PositionTail {
		q.tail = m.index
	}
	return nil
}

// Dequeue removes m from the queue.
func (q *MessageQueue) Dequeue(m *Message) error {
	if m.pool != q.pool || m.queue.kind != inFIFO || m.queue.id != q.id {
		return api.ErrNotFound.WithContext("queue", q.id)
	}
	q.unlink(m)
	return nil
}

func (q *MessageQueue) unlink(m *Message) {
	if m.index == q.tail {
		q.tail = m.prev
		if q.tail == m.index {
			q.tail = noLink
		}
	}
	q.pool.msgs[m.prev].next = m.next
	q.pool.msgs[m.next].prev = m.prev
	m.next, m.prev = noLink, noLink
	m.queue = queueTag{}
}

// Info returns the number of queued messages and the slots they hold.
func (q *MessageQueue) Info() (messages, buffers int) {
	for m := q.Head(); m != nil; m = m.Next() {
		messages++
		buffers += len(m.chain)
	}
	return messages, buffers
}

// Len returns the number of queued messages.
func (q *MessageQueue) Len() int {
	n, _ := q.Info()
	return n
}

// IsEmpty reports whether the queue holds no message.
func (q *MessageQueue) IsEmpty() bool { return q.tail == noLink }
