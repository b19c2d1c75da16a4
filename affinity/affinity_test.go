//go:build linux
// +build linux

package affinity

import (
	"errors"
	"testing"

	"github.com/momentics/meshbuf/api"
)

func TestPin(t *testing.T) {
	if _, err := Pin(-1); !errors.Is(err, api.ErrInvalidArgs) {
		t.Errorf("Expected ErrInvalidArgs, got %v", err)
	}
	cpus, err := Allowed()
	if err != nil || len(cpus) == 0 {
		t.Skipf("affinity unavailable: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		unpin, err := Pin(cpus[0])
		if err != nil {
			done <- err
			return
		}
		defer unpin()
		now, err := Allowed()
		if err == nil && (len(now) != 1 || now[0] != cpus[0]) {
			t.Errorf("Expected only cpu %d, got %v", cpus[0], now)
		}
		done <- err
	}()
	if err := <-done; err != nil {
		t.Fatalf("Pin: %v", err)
	}
}
