// Package simulate
// Author: momentics <momentics@gmail.com>
//
// Drives a message pool under send-queue pressure: background traffic fills
// the pool, network-control bursts force reclamation, and fragments age out of
// the reassembly table.
package simulate

import (
	"context"
	"errors"
	"math/rand"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/control"
	"github.com/momentics/meshbuf/internal/reassembly"
	"github.com/momentics/meshbuf/message"
	"k8s.io/klog/v2"
)

// Options tune one run.
type Options struct {
	Rounds            int   // ticks to simulate
	BurstSize         int   // network-control messages per round
	DrainPerRound     int   // messages transmitted from the send queue per round
	MaxPayload        int   // upper bound of a random payload
	FragmentsPerRound int   // fragments parked for reassembly per round
	ReassemblyTimeout uint8 // seconds before a fragment is dropped
	Seed              int64
}

// DefaultOptions returns a run that saturates the stock pool.
func DefaultOptions() Options {
	return Options{
		Rounds:            10,
		BurstSize:         3,
		DrainPerRound:     4,
		MaxPayload:        300,
		FragmentsPerRound: 2,
		ReassemblyTimeout: reassembly.DefaultTimeout,
		Seed:              1,
	}
}

// Report summarizes a run.
type Report struct {
	Rounds          int
	Background      int // low-priority messages queued
	BackgroundDrops int // background allocations refused
	NetSent         int // network-control messages allocated
	NetDropped      int // network-control allocations refused
	Transmitted     int // messages drained from the send queue
	Evicted         int // messages reclaimed by the pool
	Fragments       int // fragments parked for reassembly
	Reassembled     int // datagrams completed and delivered
	Expired         int // fragments dropped on timeout
	Stats           message.Stats
}

// Run executes opts against a fresh pool built from cfg. reg receives a
// snapshot after every round; probes, when set, are bound to the pool and
// their state is logged once the run completes. Both may be nil.
func Run(ctx context.Context, cfg message.Config, opts Options, reg *control.MetricsRegistry, probes *control.DebugProbes) (Report, error) {
	logger := klog.FromContext(ctx).WithName("simulate")
	var rep Report

	p, err := message.NewPool(cfg,
		message.WithLogger(logger),
		message.WithEvictHandler(func(*message.Message) { rep.Evicted++ }),
	)
	if err != nil {
		return rep, err
	}
	defer p.Close()
	if probes != nil {
		control.RegisterPoolProbes(probes, p)
	}

	s := &run{
		pool:  p,
		send:  p.NewPriorityQueue(),
		table: reassembly.New(p, reassembly.WithLogger(logger.WithName("reassembly"))),
		rng:   rand.New(rand.NewSource(opts.Seed)),
		opts:  opts,
		rep:   &rep,
	}
	var tag uint32
	for round := 0; round < opts.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		s.complete(round)
		for i := 0; i < opts.FragmentsPerRound; i++ {
			tag++
			if err := s.fragment(tag, round); err != nil {
				return rep, err
			}
		}
		if err := s.fill(); err != nil {
			return rep, err
		}
		if err := s.burst(); err != nil {
			return rep, err
		}
		s.drain()
		rep.Expired += s.table.Tick()
		rep.Rounds++

		if reg != nil {
			entries, _ := s.table.Len()
			reg.PublishPool(p.Stats())
			reg.PublishReassembly(entries, s.table.Expired())
		}
		logger.V(2).Info("round complete", "round", round, "free", p.FreeBufferCount(), "evicted", rep.Evicted)
	}
	rep.Stats = p.Stats()
	if probes != nil {
		logger.Info("final pool state", "state", probes.DumpState())
	}
	return rep, nil
}

type run struct {
	pool  *message.Pool
	send  *message.PriorityQueue
	table *reassembly.Table
	rng   *rand.Rand
	opts  Options
	rep   *Report

	// even tags get their last fragment completeAfter rounds after the first
	pending []pendingTag
}

const completeAfter = 2

type pendingTag struct {
	tag   uint32
	round int
}

func (s *run) payload() []byte {
	b := make([]byte, 1+s.rng.Intn(max(s.opts.MaxPayload, 1)))
	s.rng.Read(b)
	return b
}

// alloc creates a message carrying data. A nil message with nil error means
// the pool refused it.
func (s *run) alloc(typ api.MessageType, prio api.Priority, data []byte) (*message.Message, error) {
	m, err := s.pool.New(typ, 0, prio)
	if errors.Is(err, api.ErrNoBuffers) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := m.Append(data); err != nil {
		m.Free()
		if errors.Is(err, api.ErrNoBuffers) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *run) fragment(tag uint32, round int) error {
	m, err := s.alloc(api.TypeIPv6, api.PriorityNormal, s.payload())
	if err != nil || m == nil {
		return err
	}
	if err := s.table.Insert(m, tag, s.opts.ReassemblyTimeout); err != nil {
		m.Free()
		return err
	}
	s.rep.Fragments++
	if tag%2 == 0 {
		s.pending = append(s.pending, pendingTag{tag: tag, round: round})
	}
	return nil
}

// complete delivers the datagrams whose last fragment arrives this round. A
// datagram that cannot grow stays parked and ages out.
func (s *run) complete(round int) {
	keep := s.pending[:0]
	for _, pt := range s.pending {
		if pt.round+completeAfter > round {
			keep = append(keep, pt)
			continue
		}
		m := s.table.Lookup(pt.tag)
		if m == nil {
			continue
		}
		if err := m.Append(s.payload()); err != nil {
			continue
		}
		if err := s.table.Remove(m); err != nil {
			continue
		}
		m.Free()
		s.rep.Reassembled++
	}
	s.pending = keep
}

// fill queues evictable background traffic until free space runs out.
// Background traffic never reclaims, otherwise it would only evict itself.
func (s *run) fill() error {
	cfg := s.pool.Config()
	for {
		data := s.payload()
		if cfg.BuffersFor(len(data)) > s.pool.FreeBufferCount() {
			s.rep.BackgroundDrops++
			return nil
		}
		m, err := s.alloc(api.TypeIPv6, api.PriorityLow, data)
		if err != nil {
			return err
		}
		if m == nil {
			s.rep.BackgroundDrops++
			return nil
		}
		if err := s.send.Enqueue(m); err != nil {
			return err
		}
		s.rep.Background++
	}
}

func (s *run) burst() error {
	for i := 0; i < s.opts.BurstSize; i++ {
		m, err := s.alloc(api.TypeOther, api.PriorityNet, s.payload())
		if err != nil {
			return err
		}
		if m == nil {
			s.rep.NetDropped++
			continue
		}
		m.SetSubType(api.SubTypeMLEGeneral)
		m.SetDoNotEvict(true)
		if err := s.send.Enqueue(m); err != nil {
			return err
		}
		s.rep.NetSent++
	}
	return nil
}

// drain transmits from the head of the send queue.
func (s *run) drain() {
	for i := 0; i < s.opts.DrainPerRound; i++ {
		m := s.send.Head()
		if m == nil {
			return
		}
		m.SetTxSuccess(true)
		m.Free()
		s.rep.Transmitted++
	}
}
