// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug handler and probe reflector for internal inspection.

package control

import (
	"runtime"
	"sync"

	"github.com/momentics/meshbuf/message"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any)
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// RegisterPoolProbes exposes geometry and usage of p. Probes read the pool
// directly, so DumpState must run on the goroutine that owns p.
func RegisterPoolProbes(dp *DebugProbes, p *message.Pool) {
	dp.RegisterProbe("pool.config", func() any { return p.Config() })
	dp.RegisterProbe("pool.stats", func() any { return p.Stats() })
	dp.RegisterProbe("pool.free_buffers", func() any { return p.FreeBufferCount() })
	dp.RegisterProbe("runtime.cpus", func() any { return runtime.NumCPU() })
}
