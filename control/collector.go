// control/collector.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus export of the metrics registry.

package control

import "github.com/prometheus/client_golang/prometheus"

const namespace = "meshbuf"

type metricDef struct {
	key  string
	help string
	kind prometheus.ValueType
}

var metricDefs = []metricDef{
	{MetricBuffersCapacity, "Buffers owned by the pool.", prometheus.GaugeValue},
	{MetricBuffersFree, "Buffers available for allocation.", prometheus.GaugeValue},
	{MetricBuffersInUse, "Buffers held by messages.", prometheus.GaugeValue},
	{MetricBufferAllocs, "Buffers handed out.", prometheus.CounterValue},
	{MetricBufferFrees, "Buffers returned.", prometheus.CounterValue},
	{MetricBufferAllocFailures, "Buffer requests refused for lack of space.", prometheus.CounterValue},
	{MetricMessagesLive, "Messages currently allocated.", prometheus.GaugeValue},
	{MetricMessageAllocFailures, "Message allocations or resizes that failed.", prometheus.CounterValue},
	{MetricReclaimRuns, "Reclamation passes started.", prometheus.CounterValue},
	{MetricReclaimFailures, "Reclamation passes that could not cover the deficit.", prometheus.CounterValue},
	{MetricReclaimedMessages, "Queued messages evicted to free space.", prometheus.CounterValue},
	{MetricReclaimedBuffers, "Buffers recovered by eviction.", prometheus.CounterValue},
	{MetricReassemblyEntries, "Datagrams waiting for reassembly.", prometheus.GaugeValue},
	{MetricReassemblyExpirations, "Reassembly entries dropped on timeout.", prometheus.CounterValue},
}

// Collector exports a MetricsRegistry. Keys never published are skipped.
type Collector struct {
	reg   *MetricsRegistry
	descs map[string]*prometheus.Desc
}

// NewCollector wraps reg; constLabels are attached to every series.
func NewCollector(reg *MetricsRegistry, constLabels prometheus.Labels) *Collector {
	c := &Collector{reg: reg, descs: make(map[string]*prometheus.Desc, len(metricDefs))}
	for _, d := range metricDefs {
		c.descs[d.key] = prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", d.key),
			d.help, nil, constLabels,
		)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range metricDefs {
		ch <- c.descs[d.key]
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.reg.GetSnapshot()
	for _, d := range metricDefs {
		v, ok := toFloat(snap[d.key])
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.descs[d.key], d.kind, v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

var _ prometheus.Collector = (*Collector)(nil)
