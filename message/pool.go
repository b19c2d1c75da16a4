// File: message/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// MessagePool: grants messages backed by a pool.BufferPool, sizes their chains
// and reclaims slots from queued low priority traffic under exhaustion.

package message

import (
	"cmp"
	"slices"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/pool"
	"k8s.io/klog/v2"
)

// Pool owns the message arena, the slot pool and every queue created from it.
type Pool struct {
	cfg      Config
	buffers  *pool.BufferPool
	headData int
	bodyData int

	msgs     []Message
	freeMsgs []int32
	live     int

	fifos []*MessageQueue
	prios []*PriorityQueue
	seq   uint64

	onEvict func(*Message)
	logger  klog.Logger

	reclaimRuns       int64
	reclaimFailures   int64
	reclaimedMessages int64
	reclaimedBuffers  int64
	allocFailures     int64
}

// Option customizes a Pool.
type Option func(*Pool)

// WithEvictHandler registers fn to observe messages reclaimed under pressure.
// fn runs after the message left its queue and before its slots are released;
// it must not retain the message.
func WithEvictHandler(fn func(*Message)) Option {
	return func(p *Pool) { p.onEvict = fn }
}

// WithLogger replaces the default klog logger.
func WithLogger(l klog.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// NewPool builds a message pool with cfg.NumBuffers slots.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bp, err := pool.New(pool.Config{NumBuffers: cfg.NumBuffers, SlotSize: cfg.BufferDataSize()})
	if err != nil {
		return nil, err
	}
	p := &Pool{
		cfg:      cfg,
		buffers:  bp,
		headData: cfg.HeadDataSize(),
		bodyData: cfg.BufferDataSize(),
		msgs:     make([]Message, cfg.NumBuffers),
		freeMsgs: make([]int32, 0, cfg.NumBuffers),
		logger:   klog.Background().WithName("msgpool"),
	}
	for i := cfg.NumBuffers - 1; i >= 0; i-- {
		m := &p.msgs[i]
		m.pool = p
		m.index = int32(i)
		m.next, m.prev = noLink, noLink
		m.childMask = newChildMask(cfg.ChildMaskBits)
		p.freeMsgs = append(p.freeMsgs, int32(i))
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Config returns the geometry the pool was built with.
func (p *Pool) Config() Config { return p.cfg }

// Close releases the slot arena. The pool must not be used afterwards.
func (p *Pool) Close() error { return p.buffers.Close() }

// New allocates a message with reserveHeader bytes of prepend space.
func (p *Pool) New(typ api.MessageType, reserveHeader int, priority api.Priority) (*Message, error) {
	m, err := p.newMessage(typ, reserveHeader, 0, priority, nil)
	if err != nil {
		return nil, err
	}
	m.linkSecurity = p.cfg.DefaultLinkSecurity
	return m, nil
}

// NewWithSettings allocates a message using s, or the configured defaults when s is nil.
func (p *Pool) NewWithSettings(typ api.MessageType, reserveHeader int, s *Settings) (*Message, error) {
	prio, sec := p.cfg.DefaultPriority, p.cfg.DefaultLinkSecurity
	if s != nil {
		prio, sec = s.Priority, s.LinkSecurity
	}
	m, err := p.newMessage(typ, reserveHeader, 0, prio, nil)
	if err != nil {
		return nil, err
	}
	m.linkSecurity = sec
	return m, nil
}

func (p *Pool) newMessage(typ api.MessageType, reserved, length int, prio api.Priority, exclude *Message) (*Message, error) {
	if reserved < 0 || length < 0 || reserved+length > MaxLength {
		return nil, api.ErrInvalidArgs.WithContext("reserved", reserved).WithContext("length", length)
	}
	if !prio.Valid() {
		return nil, api.ErrInvalidArgs.WithContext("priority", prio)
	}
	ids, err := p.acquire(p.cfg.BuffersFor(reserved+length), prio, exclude)
	if err != nil {
		return nil, err
	}
	idx := p.freeMsgs[len(p.freeMsgs)-1]
	p.freeMsgs = p.freeMsgs[:len(p.freeMsgs)-1]

	m := &p.msgs[idx]
	mask := m.childMask
	mask.reset()
	*m = Message{
		pool:      p,
		index:     idx,
		inUse:     true,
		chain:     append(m.chain[:0], ids...),
		reserved:  reserved,
		length:    length,
		typ:       typ,
		priority:  prio,
		next:      noLink,
		prev:      noLink,
		childMask: mask,
	}
	p.live++
	return m, nil
}

// Free unlinks m from any queue and returns its slots. Freeing an already freed
// handle is ignored.
func (p *Pool) Free(m *Message) {
	if m == nil || m.pool != p || !m.inUse {
		return
	}
	switch m.queue.kind {
	case inFIFO:
		p.logger.V(4).Info("freeing queued message", "queue", m.queue.id, "index", m.index)
		p.fifos[m.queue.id].unlink(m)
	case inPriority:
		p.logger.V(4).Info("freeing priority-queued message", "queue", m.queue.id, "index", m.index)
		p.prios[m.queue.id].unlink(m)
	}
	if err := p.buffers.ReleaseAll(m.chain); err != nil {
		p.logger.Error(err, "releasing message chain", "index", m.index)
	}
	m.chain = m.chain[:0]
	m.inUse = false
	m.length, m.reserved, m.offset = 0, 0, 0
	p.freeMsgs = append(p.freeMsgs, m.index)
	p.live--
}

// FreeBufferCount returns the number of unallocated slots.
func (p *Pool) FreeBufferCount() int { return p.buffers.FreeCount() }

// NewMessageQueue creates a FIFO registered with the pool.
func (p *Pool) NewMessageQueue() *MessageQueue {
	q := &MessageQueue{pool: p, id: len(p.fifos), tail: noLink}
	p.fifos = append(p.fifos, q)
	return q
}

// NewPriorityQueue creates a priority queue the pool may reclaim from.
func (p *Pool) NewPriorityQueue() *PriorityQueue {
	pq := &PriorityQueue{pool: p, id: len(p.prios)}
	for i := range pq.tails {
		pq.tails[i] = noLink
	}
	p.prios = append(p.prios, pq)
	return pq
}

func (p *Pool) at(i int32) *Message {
	if i == noLink {
		return nil
	}
	return &p.msgs[i]
}

func (p *Pool) nextSeq() uint64 {
	p.seq++
	return p.seq
}

// resize fits the chain of m to total storage bytes, all or nothing.
func (p *Pool) resize(m *Message, total int) error {
	need, have := p.cfg.BuffersFor(total), len(m.chain)
	switch {
	case need > have:
		ids, err := p.acquire(need-have, m.priority, m)
		if err != nil {
			return err
		}
		m.chain = append(m.chain, ids...)
	case need < have:
		if err := p.buffers.ReleaseAll(m.chain[need:]); err != nil {
			return err
		}
		m.chain = m.chain[:need]
	}
	return nil
}

// acquire takes n slots for a request at prio, reclaiming queued messages when
// the free list is short. exclude is never evicted.
func (p *Pool) acquire(n int, prio api.Priority, exclude *Message) ([]api.BufferID, error) {
	if deficit := n - p.buffers.FreeCount(); deficit > 0 {
		if err := p.reclaim(deficit, prio, exclude); err != nil {
			p.allocFailures++
			p.logger.V(4).Info("allocation failed", "buffers", n, "priority", prio, "free", p.buffers.FreeCount())
			return nil, err
		}
	}
	return p.buffers.AllocN(n)
}

// reclaim evicts queued messages at or below prio until need slots are freed.
// Victims are chosen lowest priority first, then oldest enqueue first. The plan
// is checked before anything is evicted, so a short plan changes nothing.
func (p *Pool) reclaim(need int, prio api.Priority, exclude *Message) error {
	p.reclaimRuns++
	var candidates []*Message
	for _, pq := range p.prios {
		pq.each(func(m *Message) {
			if m != exclude && !m.doNotEvict && m.priority <= prio {
				candidates = append(candidates, m)
			}
		})
	}
	slices.SortFunc(candidates, func(a, b *Message) int {
		if c := cmp.Compare(a.priority, b.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.enqueueSeq, b.enqueueSeq)
	})

	freed, k := 0, 0
	for ; k < len(candidates) && freed < need; k++ {
		freed += len(candidates[k].chain)
	}
	if freed < need {
		p.reclaimFailures++
		p.logger.V(2).Info("reclaim short", "need", need, "available", freed, "priority", prio)
		return api.ErrNoBuffers.WithContext("need", need).WithContext("reclaimable", freed)
	}

	for _, m := range candidates[:k] {
		p.prios[m.queue.id].unlink(m)
		if p.onEvict != nil {
			p.onEvict(m)
		}
		p.Free(m)
	}
	p.reclaimedMessages += int64(k)
	p.reclaimedBuffers += int64(freed)
	p.logger.V(2).Info("reclaimed buffers", "need", need, "freed", freed, "messages", k, "priority", prio)
	return nil
}

// Stats is a point-in-time view of pool usage.
type Stats struct {
	Buffers           api.BufferPoolStats
	LiveMessages      int
	ReclaimRuns       int64
	ReclaimFailures   int64
	ReclaimedMessages int64
	ReclaimedBuffers  int64
	AllocFailures     int64
}

// Stats snapshots the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Buffers:           p.buffers.Stats(),
		LiveMessages:      p.live,
		ReclaimRuns:       p.reclaimRuns,
		ReclaimFailures:   p.reclaimFailures,
		ReclaimedMessages: p.reclaimedMessages,
		ReclaimedBuffers:  p.reclaimedBuffers,
		AllocFailures:     p.allocFailures,
	}
}
