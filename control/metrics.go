// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics registry. The stack goroutine publishes snapshots here;
// scrapers on other goroutines read them back.

package control

import (
	"sync"
	"time"

	"github.com/momentics/meshbuf/message"
)

// Registry keys published by PublishPool and PublishReassembly.
const (
	MetricBuffersCapacity       = "buffers_capacity"
	MetricBuffersFree           = "buffers_free"
	MetricBuffersInUse          = "buffers_in_use"
	MetricBufferAllocs          = "buffer_allocs_total"
	MetricBufferFrees           = "buffer_frees_total"
	MetricBufferAllocFailures   = "buffer_alloc_failures_total"
	MetricMessagesLive          = "messages_live"
	MetricMessageAllocFailures  = "message_alloc_failures_total"
	MetricReclaimRuns           = "reclaim_runs_total"
	MetricReclaimFailures       = "reclaim_failures_total"
	MetricReclaimedMessages     = "reclaimed_messages_total"
	MetricReclaimedBuffers      = "reclaimed_buffers_total"
	MetricReassemblyEntries     = "reassembly_entries"
	MetricReassemblyExpirations = "reassembly_expirations_total"
)

// MetricsRegistry holds the latest published values.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// PublishPool stores a pool snapshot under one lock.
func (mr *MetricsRegistry) PublishPool(st message.Stats) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.metrics[MetricBuffersCapacity] = st.Buffers.Capacity
	mr.metrics[MetricBuffersFree] = st.Buffers.Free
	mr.metrics[MetricBuffersInUse] = st.Buffers.InUse
	mr.metrics[MetricBufferAllocs] = st.Buffers.TotalAlloc
	mr.metrics[MetricBufferFrees] = st.Buffers.TotalFree
	mr.metrics[MetricBufferAllocFailures] = st.Buffers.Failures
	mr.metrics[MetricMessagesLive] = st.LiveMessages
	mr.metrics[MetricMessageAllocFailures] = st.AllocFailures
	mr.metrics[MetricReclaimRuns] = st.ReclaimRuns
	mr.metrics[MetricReclaimFailures] = st.ReclaimFailures
	mr.metrics[MetricReclaimedMessages] = st.ReclaimedMessages
	mr.metrics[MetricReclaimedBuffers] = st.ReclaimedBuffers
	mr.updated = time.Now()
}

// PublishReassembly stores the reassembly table occupancy.
func (mr *MetricsRegistry) PublishReassembly(entries int, expirations int64) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.metrics[MetricReassemblyEntries] = entries
	mr.metrics[MetricReassemblyExpirations] = expirations
	mr.updated = time.Now()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Updated returns the time of the last publish, zero if none.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}
