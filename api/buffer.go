// Package api
// Author: momentics
//
// Fixed-capacity buffer pooling contract.
//
// Buffers are identified by slot index; the pool never grows and never hands the
// same slot to two owners.

package api

// BufferID is the index of a slot inside a BufferPool arena.
type BufferID uint16

// BufferPool abstracts a statically bounded array of same-size slots.
type BufferPool interface {
	// AllocN reserves n slots, all or nothing.
	AllocN(n int) ([]BufferID, error)

	// ReleaseAll returns slots to the free list; slots must not be used afterwards.
	ReleaseAll(ids []BufferID) error

	// Bytes returns the storage of one slot.
	Bytes(id BufferID) []byte

	// FreeCount reports the number of unallocated slots.
	FreeCount() int

	// Stats exposes resource/accounting metrics for observability.
	Stats() BufferPoolStats
}

// BufferPoolStats aggregates buffer allocation/reuse stats.
type BufferPoolStats struct {
	Capacity   int
	SlotSize   int
	Free       int
	InUse      int
	TotalAlloc int64
	TotalFree  int64
	Failures   int64
}
