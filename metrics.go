package accesstoken

import "sync/atomic"

// MetricID indexes one counter in the manager's metric table.
type MetricID uint16

const (
	// MetricSessionCreated counts successful CreateSession calls.
	MetricSessionCreated MetricID = iota
	// MetricTokenResolved counts FindByToken calls that produced a live record.
	MetricTokenResolved
	// MetricTokenMissing counts guarded requests that carried no token.
	MetricTokenMissing
	// MetricTokenInvalid counts presented tokens that resolved to no session.
	MetricTokenInvalid
	// MetricSessionDead counts records destroyed by the gate's dead-check.
	MetricSessionDead
	// MetricFingerprintMismatch counts records destroyed for fingerprint drift.
	MetricFingerprintMismatch
	// MetricSessionDestroyed counts Destroy calls with a non-empty token.
	MetricSessionDestroyed
	// MetricSessionSaved counts post-handler saves that wrote content.
	MetricSessionSaved
	// MetricSessionRefreshed counts keep-alive TTL refreshes.
	MetricSessionRefreshed
	// MetricPostProcessFailed counts best-effort persistence failures after a
	// handler already produced its response.
	MetricPostProcessFailed

	// MetricCount is the table size; not itself a metric.
	MetricCount
)

// MetricsSnapshot is a point-in-time copy of all counters, indexed by
// [MetricID].
type MetricsSnapshot [MetricCount]uint64

// Get returns the counter value for id, or 0 for out-of-range IDs.
func (s MetricsSnapshot) Get(id MetricID) uint64 {
	if id >= MetricCount {
		return 0
	}
	return s[id]
}

type metricsTable struct {
	enabled  bool
	counters [MetricCount]atomic.Uint64
}

func newMetricsTable(cfg MetricsConfig) *metricsTable {
	return &metricsTable{enabled: cfg.Enabled}
}

func (t *metricsTable) inc(id MetricID) {
	if t == nil || !t.enabled || id >= MetricCount {
		return
	}
	t.counters[id].Add(1)
}

func (t *metricsTable) snapshot() MetricsSnapshot {
	var snap MetricsSnapshot
	if t == nil {
		return snap
	}
	for i := range t.counters {
		snap[i] = t.counters[i].Load()
	}
	return snap
}
