package input

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// latencySamples is the number of recent latencies kept for statistics.
const latencySamples = 1024

// Metrics counts interceptor decisions and measures how long each event
// took to handle. It is safe for concurrent use.
type Metrics struct {
	eventsTotal atomic.Uint64
	forwarded   atomic.Uint64
	swallowed   atomic.Uint64
	bindings    atomic.Uint64
	taps        atomic.Uint64
	reloads     atomic.Uint64

	// peak is the largest latency ever recorded, in nanoseconds.
	peak atomic.Int64

	mu      sync.Mutex
	recent  [latencySamples]time.Duration
	next    int
	sampled int

	started time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{started: time.Now()}
}

// RecordDecision records the outcome of one intercepted event.
func (m *Metrics) RecordDecision(t Trace) {
	m.eventsTotal.Add(1)
	if t.Decision == Swallow {
		m.swallowed.Add(1)
	} else {
		m.forwarded.Add(1)
	}
	switch t.Outcome {
	case OutcomeBinding:
		m.bindings.Add(1)
	case OutcomeTap:
		m.taps.Add(1)
	}
}

// RecordReload records a layer replacement.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// RecordLatency records how long one event took to handle.
func (m *Metrics) RecordLatency(latency time.Duration) {
	for {
		cur := m.peak.Load()
		if int64(latency) <= cur || m.peak.CompareAndSwap(cur, int64(latency)) {
			break
		}
	}

	m.mu.Lock()
	m.recent[m.next] = latency
	m.next = (m.next + 1) % latencySamples
	if m.sampled < latencySamples {
		m.sampled++
	}
	m.mu.Unlock()
}

// MetricsSnapshot holds a point-in-time view of metrics.
type MetricsSnapshot struct {
	EventsTotal uint64
	Forwarded   uint64
	Swallowed   uint64
	Bindings    uint64
	Taps        uint64
	Reloads     uint64

	// Statistics over the most recent events.
	AvgLatency time.Duration
	MaxLatency time.Duration
	P99Latency time.Duration

	// PeakLatency is the largest latency since start.
	PeakLatency time.Duration

	EventsPerSecond float64
	Uptime          time.Duration
}

// Snapshot returns a point-in-time view of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	recent := slices.Clone(m.recent[:m.sampled])
	m.mu.Unlock()

	snap := MetricsSnapshot{
		EventsTotal: m.eventsTotal.Load(),
		Forwarded:   m.forwarded.Load(),
		Swallowed:   m.swallowed.Load(),
		Bindings:    m.bindings.Load(),
		Taps:        m.taps.Load(),
		Reloads:     m.reloads.Load(),
		PeakLatency: time.Duration(m.peak.Load()),
		Uptime:      time.Since(m.started),
	}
	if snap.Uptime > 0 {
		snap.EventsPerSecond = float64(snap.EventsTotal) / snap.Uptime.Seconds()
	}
	snap.AvgLatency, snap.MaxLatency, snap.P99Latency = latencyStats(recent)
	return snap
}

// latencyStats returns the average, maximum and 99th percentile of samples.
// samples is sorted in place.
func latencyStats(samples []time.Duration) (avg, maxLat, p99 time.Duration) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	slices.Sort(samples)

	var sum time.Duration
	for _, s := range samples {
		sum += s
	}
	idx := min(len(samples)*99/100, len(samples)-1)
	return sum / time.Duration(len(samples)), samples[len(samples)-1], samples[idx]
}

// HealthStatus reports whether event handling stayed fast enough.
type HealthStatus struct {
	Healthy          bool
	PeakLatency      time.Duration
	LatencyThreshold time.Duration
	Message          string
}

// HealthCheck reports whether the peak latency stayed under threshold.
func (m *Metrics) HealthCheck(threshold time.Duration) HealthStatus {
	status := HealthStatus{
		Healthy:          true,
		PeakLatency:      time.Duration(m.peak.Load()),
		LatencyThreshold: threshold,
		Message:          "healthy",
	}
	if status.PeakLatency > threshold {
		status.Healthy = false
		status.Message = "latency threshold exceeded"
	}
	return status
}

// Timer measures the handling of one event.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// StartTimer starts timing an event.
func (m *Metrics) StartTimer() *Timer {
	return &Timer{start: time.Now(), metrics: m}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.RecordLatency(elapsed)
	return elapsed
}
