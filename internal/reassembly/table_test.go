package reassembly_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/internal/reassembly"
	"github.com/momentics/meshbuf/message"
	"k8s.io/klog/v2/ktesting"
)

func newTable(t *testing.T) (*message.Pool, *reassembly.Table) {
	t.Helper()
	cfg := message.DefaultConfig()
	cfg.NumBuffers = 8
	p, err := message.NewPool(cfg)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, reassembly.New(p)
}

// check fails the test when a setup step errors.
func check(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestTable_LookupAndRemove(t *testing.T) {
	p, tbl := newTable(t)
	a, _ := p.New(api.TypeIPv6, 0, api.PriorityNormal)
	b, _ := p.New(api.TypeIPv6, 0, api.PriorityNormal)
	if err := tbl.Insert(a, 7, reassembly.DefaultTimeout); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	check(t, tbl.Insert(b, 9, reassembly.DefaultTimeout))
	if err := tbl.Insert(a, 7, reassembly.DefaultTimeout); !errors.Is(err, api.ErrAlreadyQueued) {
		t.Errorf("Expected ErrAlreadyQueued, got %v", err)
	}
	if tbl.Lookup(9) != b || tbl.Lookup(1) != nil {
		t.Error("Lookup mismatch")
	}
	if err := tbl.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n, _ := tbl.Len(); n != 1 {
		t.Errorf("Expected 1 entry, got %d", n)
	}
	if err := tbl.Insert(b, 3, 0); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs for zero timeout, got %v", err)
	}
}

func TestTable_TickExpires(t *testing.T) {
	p, tbl := newTable(t)
	short, _ := p.New(api.TypeIPv6, 0, api.PriorityNormal)
	long, _ := p.New(api.TypeIPv6, 0, api.PriorityNormal)
	check(t, long.Append(make([]byte, 200)))
	check(t, tbl.Insert(short, 1, 1))
	check(t, tbl.Insert(long, 2, 3))

	if dropped := tbl.Tick(); dropped != 1 {
		t.Fatalf("Expected 1 drop, got %d", dropped)
	}
	if tbl.Lookup(1) != nil || tbl.Lookup(2) != long {
		t.Error("Expected only the long entry to survive")
	}
	tbl.Tick()
	if dropped := tbl.Tick(); dropped != 1 {
		t.Fatalf("Expected long entry to expire, got %d", dropped)
	}
	if p.FreeBufferCount() != 8 || tbl.Expired() != 2 {
		t.Errorf("Expected all buffers back: free=%d expired=%d", p.FreeBufferCount(), tbl.Expired())
	}
}

func TestTable_LogsThroughInjectedLogger(t *testing.T) {
	cfg := message.DefaultConfig()
	cfg.NumBuffers = 4
	p, err := message.NewPool(cfg)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	logger := ktesting.NewLogger(t, ktesting.NewConfig(ktesting.Verbosity(5), ktesting.BufferLogs(true)))
	tbl := reassembly.New(p, reassembly.WithLogger(logger))
	m, err := p.New(api.TypeIPv6, 0, api.PriorityNormal)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	check(t, tbl.Insert(m, 42, 1))
	if dropped := tbl.Tick(); dropped != 1 {
		t.Fatalf("Expected 1 drop, got %d", dropped)
	}
	underlier, ok := logger.GetSink().(ktesting.Underlier)
	if !ok {
		t.Fatal("Expected a ktesting sink")
	}
	if out := underlier.GetBuffer().String(); !strings.Contains(out, "reassembly timeout") {
		t.Errorf("Expected timeout logged to injected logger, got %q", out)
	}
}
