package simulate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/momentics/meshbuf/control"
	"github.com/momentics/meshbuf/internal/simulate"
	"github.com/momentics/meshbuf/message"
)

func TestRun_ForcesReclamation(t *testing.T) {
	reg := control.NewMetricsRegistry()
	cfg := message.DefaultConfig()
	rep, err := simulate.Run(context.Background(), cfg, simulate.DefaultOptions(), reg, control.NewDebugProbes())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Rounds != 10 {
		t.Errorf("Expected 10 rounds, got %d", rep.Rounds)
	}
	if rep.Background == 0 || rep.NetSent == 0 {
		t.Errorf("Expected traffic, got %+v", rep)
	}
	if rep.Evicted == 0 || rep.Stats.ReclaimedMessages != int64(rep.Evicted) {
		t.Errorf("Expected evictions to match stats: evicted=%d stats=%d", rep.Evicted, rep.Stats.ReclaimedMessages)
	}
	if rep.Fragments == 0 || rep.Expired == 0 {
		t.Errorf("Expected fragments to age out, got %d/%d", rep.Fragments, rep.Expired)
	}
	if rep.Reassembled == 0 || rep.Reassembled+rep.Expired > rep.Fragments {
		t.Errorf("Expected completed datagrams: fragments=%d reassembled=%d expired=%d", rep.Fragments, rep.Reassembled, rep.Expired)
	}
	b := rep.Stats.Buffers
	if b.Free+b.InUse != cfg.NumBuffers {
		t.Errorf("Buffer accounting broken: free=%d inUse=%d", b.Free, b.InUse)
	}
	if snap := reg.GetSnapshot(); snap[control.MetricReassemblyExpirations] != int64(rep.Expired) {
		t.Errorf("Expected published expirations %d, got %v", rep.Expired, snap[control.MetricReassemblyExpirations])
	}
}

func TestRun_Deterministic(t *testing.T) {
	opts := simulate.DefaultOptions()
	opts.Seed = 99
	a, err := simulate.Run(context.Background(), message.DefaultConfig(), opts, nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, _ := simulate.Run(context.Background(), message.DefaultConfig(), opts, nil, nil)
	if a != b {
		t.Errorf("Expected identical reports for one seed:\n%+v\n%+v", a, b)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := simulate.Run(ctx, message.DefaultConfig(), simulate.DefaultOptions(), nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	bad := message.DefaultConfig()
	bad.NumBuffers = 0
	if _, err := simulate.Run(context.Background(), bad, simulate.DefaultOptions(), nil, nil); err == nil {
		t.Error("Expected invalid config to fail")
	}
}
