// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-count slot allocator backing message buffer chains.

package pool

import (
	"github.com/eapache/queue"
	"github.com/momentics/meshbuf/api"
	"k8s.io/klog/v2"
)

// MaxBuffers is the largest slot count addressable by api.BufferID.
const MaxBuffers = 1 << 16

// Config fixes the pool geometry at construction time.
type Config struct {
	NumBuffers int // total slots
	SlotSize   int // bytes per slot
}

// BufferPool is a fixed array of same-size slots plus a free list.
type BufferPool struct {
	arena    []byte
	release  func() error
	slotSize int
	owned    []bool
	free     *queue.Queue // of api.BufferID

	totalAlloc int64
	totalFree  int64
	failures   int64
}

// New allocates the arena and threads every slot onto the free list.
func New(cfg Config) (*BufferPool, error) {
	if cfg.NumBuffers <= 0 || cfg.NumBuffers > MaxBuffers || cfg.SlotSize <= 0 {
		return nil, api.ErrInvalidArgs.
			WithContext("numBuffers", cfg.NumBuffers).
			WithContext("slotSize", cfg.SlotSize)
	}
	arena, release, err := allocArena(cfg.NumBuffers * cfg.SlotSize)
	if err != nil {
		klog.V(2).InfoS("arena mapping unavailable, using heap", "err", err)
		arena, release = make([]byte, cfg.NumBuffers*cfg.SlotSize), nil
	}
	bp := &BufferPool{
		arena:    arena,
		release:  release,
		slotSize: cfg.SlotSize,
		owned:    make([]bool, cfg.NumBuffers),
		free:     queue.New(),
	}
	for i := 0; i < cfg.NumBuffers; i++ {
		bp.free.Add(api.BufferID(i))
	}
	return bp, nil
}

// Alloc reserves a single slot.
func (bp *BufferPool) Alloc() (api.BufferID, error) {
	ids, err := bp.AllocN(1)
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AllocN reserves n slots. On failure the free list is left untouched.
func (bp *BufferPool) AllocN(n int) ([]api.BufferID, error) {
	if n < 0 {
		return nil, api.ErrInvalidArgs.WithContext("count", n)
	}
	if n > bp.free.Length() {
		bp.failures++
		return nil, api.ErrNoBuffers.WithContext("requested", n).WithContext("free", bp.free.Length())
	}
	if n == 0 {
		return nil, nil
	}
	ids := make([]api.BufferID, n)
	for i := range ids {
		id := bp.free.Remove().(api.BufferID)
		bp.owned[id] = true
		clear(bp.slot(id))
		ids[i] = id
	}
	bp.totalAlloc += int64(n)
	return ids, nil
}

// Release returns one slot to the free list.
func (bp *BufferPool) Release(id api.BufferID) error {
	if int(id) >= len(bp.owned) || !bp.owned[id] {
		return api.ErrInvalidArgs.WithContext("buffer", id)
	}
	bp.owned[id] = false
	bp.free.Add(id)
	bp.totalFree++
	return nil
}

// ReleaseAll returns every slot in ids. A bad or repeated id leaves the pool
// unchanged.
func (bp *BufferPool) ReleaseAll(ids []api.BufferID) error {
	for i, id := range ids {
		if int(id) >= len(bp.owned) || !bp.owned[id] {
			for _, done := range ids[:i] {
				bp.owned[done] = true
			}
			return api.ErrInvalidArgs.WithContext("buffer", id)
		}
		bp.owned[id] = false
	}
	for _, id := range ids {
		bp.free.Add(id)
	}
	bp.totalFree += int64(len(ids))
	return nil
}

// Bytes returns the storage of slot id.
func (bp *BufferPool) Bytes(id api.BufferID) []byte {
	return bp.slot(id)
}

func (bp *BufferPool) slot(id api.BufferID) []byte {
	off := int(id) * bp.slotSize
	return bp.arena[off : off+bp.slotSize : off+bp.slotSize]
}

// FreeCount reports the number of unallocated slots.
func (bp *BufferPool) FreeCount() int { return bp.free.Length() }

// Cap returns the total slot count.
func (bp *BufferPool) Cap() int { return len(bp.owned) }

// SlotSize returns bytes per slot.
func (bp *BufferPool) SlotSize() int { return bp.slotSize }

// Stats returns allocation counters.
func (bp *BufferPool) Stats() api.BufferPoolStats {
	free := bp.free.Length()
	return api.BufferPoolStats{
		Capacity:   len(bp.owned),
		SlotSize:   bp.slotSize,
		Free:       free,
		InUse:      len(bp.owned) - free,
		TotalAlloc: bp.totalAlloc,
		TotalFree:  bp.totalFree,
		Failures:   bp.failures,
	}
}

// Close releases the arena mapping. The pool must not be used afterwards.
func (bp *BufferPool) Close() error {
	if bp.release == nil {
		return nil
	}
	err := bp.release()
	bp.release = nil
	bp.arena = nil
	return err
}

var _ api.BufferPool = (*BufferPool)(nil)
