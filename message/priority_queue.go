// File: message/priority_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Strict-priority queue. All classes share one circular list through the
// message next/prev links, ordered from the highest class to the lowest, FIFO
// inside a class. Only the per-class tails are recorded; the successor of the
// lowest non-empty class tail is the overall head.

package message

import "github.com/momentics/meshbuf/api"

// PriorityQueue orders messages by priority class, then by enqueue order.
type PriorityQueue struct {
	pool  *Pool
	id    int
	tails [api.NumPriorities]int32
}

// nextClass steps one class up, wrapping from the highest back to the lowest.
func nextClass(p api.Priority) api.Priority {
	if p == api.NumPriorities-1 {
		return 0
	}
	return p + 1
}

// firstTail returns the first non-empty class tail scanning upward from start
// with wrap-around, or noLink if the queue is empty.
func (pq *PriorityQueue) firstTail(start api.Priority) int32 {
	p := start
	for {
		if pq.tails[p] != noLink {
			return pq.tails[p]
		}
		p = nextClass(p)
		if p == start {
			return noLink
		}
	}
}

// Head returns the highest priority, oldest message or nil.
func (pq *PriorityQueue) Head() *Message {
	tail := pq.firstTail(api.PriorityLow)
	if tail == noLink {
		return nil
	}
	return pq.pool.at(pq.pool.msgs[tail].next)
}

// HeadForPriority returns the oldest message of class p or nil.
func (pq *PriorityQueue) HeadForPriority(p api.Priority) *Message {
	if !p.Valid() || pq.tails[p] == noLink {
		return nil
	}
	prevTail := pq.firstTail(nextClass(p))
	return pq.pool.at(pq.pool.msgs[prevTail].next)
}

// Tail returns the last message in traversal order or nil.
func (pq *PriorityQueue) Tail() *Message {
	return pq.pool.at(pq.firstTail(api.PriorityLow))
}

// Enqueue appends m to the tail of its priority class.
func (pq *PriorityQueue) Enqueue(m *Message) error {
	if m.pool != pq.pool || !m.inUse {
		return api.ErrInvalidArgs.WithContext("priorityQueue", pq.id)
	}
	if m.queue.kind != notQueued {
		return api.ErrAlreadyQueued.WithContext("priorityQueue", pq.id)
	}
	pq.link(m)
	return nil
}

// Dequeue removes m from the queue.
func (pq *PriorityQueue) Dequeue(m *Message) error {
	if m.pool != pq.pool || m.queue.kind != inPriority || m.queue.id != pq.id {
		return api.ErrNotFound.WithContext("priorityQueue", pq.id)
	}
	pq.unlink(m)
	return nil
}

// link splices m after the tail of its class, or after the tail of the next
// non-empty class when its own class is empty.
func (pq *PriorityQueue) link(m *Message) {
	p := m.priority
	m.queue = queueTag{kind: inPriority, id: pq.id, class: p}
	m.enqueueSeq = pq.pool.nextSeq()
	if t := pq.firstTail(p); t != noLink {
		tail := &pq.pool.msgs[t]
		next := &pq.pool.msgs[tail.next]
		m.next, m.prev = next.index, tail.index
		next.prev = m.index
		tail.next = m.index
	} else {
		m.next, m.prev = m.index, m.index
	}
	pq.tails[p] = m.index
}

func (pq *PriorityQueue) unlink(m *Message) {
	p := m.queue.class
	if pq.tails[p] == m.index {
		prev := m.prev
		if prev == m.index || pq.pool.msgs[prev].queue.class != p {
			prev = noLink
		}
		pq.tails[p] = prev
	}
	pq.pool.msgs[m.prev].next = m.next
	pq.pool.msgs[m.next].prev = m.prev
	m.next, m.prev = noLink, noLink
	m.queue = queueTag{}
}

// Info returns the number of queued messages and the slots they hold.
func (pq *PriorityQueue) Info() (messages, buffers int) {
	pq.each(func(m *Message) {
		messages++
		buffers += len(m.chain)
	})
	return messages, buffers
}

// Len returns the number of queued messages.
func (pq *PriorityQueue) Len() int {
	n, _ := pq.Info()
	return n
}

// IsEmpty reports whether the queue holds no message.
func (pq *PriorityQueue) IsEmpty() bool { return pq.firstTail(api.PriorityLow) == noLink }

// each visits messages in traversal order. fn must not relink the visited message.
func (pq *PriorityQueue) each(fn func(*Message)) {
	tail := pq.firstTail(api.PriorityLow)
	if tail == noLink {
		return
	}
	for i := pq.pool.msgs[tail].next; ; {
		m := &pq.pool.msgs[i]
		next := m.next
		fn(m)
		if i == tail {
			return
		}
		i = next
	}
}
