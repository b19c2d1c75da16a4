package pool_test

import (
	"errors"
	"testing"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/pool"
)

func newPool(t *testing.T, n, size int) *pool.BufferPool {
	t.Helper()
	bp, err := pool.New(pool.Config{NumBuffers: n, SlotSize: size})
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	t.Cleanup(func() { _ = bp.Close() })
	return bp
}

func TestBufferPool_InvalidConfig(t *testing.T) {
	cases := []pool.Config{
		{NumBuffers: 0, SlotSize: 8},
		{NumBuffers: 4, SlotSize: 0},
		{NumBuffers: pool.MaxBuffers + 1, SlotSize: 8},
	}
	for _, cfg := range cases {
		if _, err := pool.New(cfg); !errors.Is(err, api.ErrInvalidArgs) {
			t.Errorf("Expected ErrInvalidArgs for %+v, got %v", cfg, err)
		}
	}
}

func TestBufferPool_AllocRelease(t *testing.T) {
	bp := newPool(t, 4, 16)
	id, err := bp.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if got := len(bp.Bytes(id)); got != 16 {
		t.Errorf("Expected slot size 16, got %d", got)
	}
	copy(bp.Bytes(id), "hello")
	if bp.FreeCount() != 3 {
		t.Errorf("Expected 3 free, got %d", bp.FreeCount())
	}
	if err := bp.Release(id); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := bp.Release(id); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs on double release, got %v", err)
	}
	if bp.FreeCount() != 4 {
		t.Errorf("Expected 4 free, got %d", bp.FreeCount())
	}
}

func TestBufferPool_AllocNAllOrNothing(t *testing.T) {
	bp := newPool(t, 4, 8)
	ids, err := bp.AllocN(3)
	if err != nil {
		t.Fatalf("AllocN(3): %v", err)
	}
	if _, err := bp.AllocN(2); !errors.Is(err, api.ErrNoBuffers) {
		t.Fatalf("Expected ErrNoBuffers, got %v", err)
	}
	if bp.FreeCount() != 1 {
		t.Errorf("Failed AllocN must not consume slots: free=%d", bp.FreeCount())
	}
	if st := bp.Stats(); st.Failures != 1 || st.InUse != 3 {
		t.Errorf("Unexpected stats %+v", st)
	}
	if err := bp.ReleaseAll(ids); err != nil {
		t.Fatalf("ReleaseAll: %v", err)
	}
	if bp.FreeCount() != 4 {
		t.Errorf("Expected 4 free, got %d", bp.FreeCount())
	}
}

func TestBufferPool_ReleaseAllRejectsRepeats(t *testing.T) {
	bp := newPool(t, 4, 8)
	ids, _ := bp.AllocN(2)
	bad := []api.BufferID{ids[0], ids[1], ids[0]}
	if err := bp.ReleaseAll(bad); !errors.Is(err, api.ErrInvalidArgs) {
		t.Fatalf("Expected ErrInvalidArgs, got %v", err)
	}
	if bp.FreeCount() != 2 {
		t.Errorf("Rejected ReleaseAll must leave pool unchanged: free=%d", bp.FreeCount())
	}
	if err := bp.ReleaseAll(ids); err != nil {
		t.Errorf("ReleaseAll after rejection: %v", err)
	}
}

func TestBufferPool_SlotsAreZeroedAndDisjoint(t *testing.T) {
	bp := newPool(t, 2, 8)
	a, _ := bp.Alloc()
	b, _ := bp.Alloc()
	for i := range bp.Bytes(a) {
		bp.Bytes(a)[i] = 0xAA
	}
	for _, v := range bp.Bytes(b) {
		if v != 0 {
			t.Fatal("Slots overlap")
		}
	}
	_ = bp.Release(a)
	c, _ := bp.Alloc()
	for _, v := range bp.Bytes(c) {
		if v != 0 {
			t.Fatal("Expected reused slot to be zeroed")
		}
	}
}
