package store

import (
	"sync/atomic"
	"time"

	"github.com/heysubinoy/localkv/pkg/kv"
)

// Metrics holds timing statistics for backend operations.
// Uses atomic operations for thread-safe updates without locks.
type Metrics struct {
	GetCount    atomic.Uint64
	SetCount    atomic.Uint64
	DeleteCount atomic.Uint64
	ClearCount  atomic.Uint64
	ScanCount   atomic.Uint64
	ErrorCount  atomic.Uint64

	// Cumulative latencies in nanoseconds
	GetLatencyNs    atomic.Uint64
	SetLatencyNs    atomic.Uint64
	DeleteLatencyNs atomic.Uint64
	ClearLatencyNs  atomic.Uint64
	ScanLatencyNs   atomic.Uint64
}

// InstrumentedStore wraps any kv.Backend implementation with timing metrics.
// Len and Keys are both counted as scans.
type InstrumentedStore struct {
	backend kv.Backend
	metrics *Metrics
}

// Compile-time check to ensure InstrumentedStore implements kv.Backend.
var _ kv.Backend = (*InstrumentedStore)(nil)

// NewInstrumentedStore wraps a backend with instrumentation.
func NewInstrumentedStore(backend kv.Backend) *InstrumentedStore {
	return &InstrumentedStore{
		backend: backend,
		metrics: &Metrics{},
	}
}

// Get delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Get(key string) (string, bool, error) {
	start := time.Now()
	value, found, err := s.backend.Get(key)
	s.record(&s.metrics.GetCount, &s.metrics.GetLatencyNs, start, err)
	return value, found, err
}

// Set delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Set(key, value string) error {
	start := time.Now()
	err := s.backend.Set(key, value)
	s.record(&s.metrics.SetCount, &s.metrics.SetLatencyNs, start, err)
	return err
}

// Delete delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Delete(key string) error {
	start := time.Now()
	err := s.backend.Delete(key)
	s.record(&s.metrics.DeleteCount, &s.metrics.DeleteLatencyNs, start, err)
	return err
}

// Clear delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Clear() error {
	start := time.Now()
	err := s.backend.Clear()
	s.record(&s.metrics.ClearCount, &s.metrics.ClearLatencyNs, start, err)
	return err
}

// Len delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Len() (int, error) {
	start := time.Now()
	n, err := s.backend.Len()
	s.record(&s.metrics.ScanCount, &s.metrics.ScanLatencyNs, start, err)
	return n, err
}

// Keys delegates to the wrapped backend and records timing.
func (s *InstrumentedStore) Keys() ([]string, error) {
	start := time.Now()
	keys, err := s.backend.Keys()
	s.record(&s.metrics.ScanCount, &s.metrics.ScanLatencyNs, start, err)
	return keys, err
}

func (s *InstrumentedStore) record(count, latency *atomic.Uint64, start time.Time, err error) {
	elapsed := time.Since(start).Nanoseconds()

	count.Add(1)
	latency.Add(uint64(elapsed))
	if err != nil {
		s.metrics.ErrorCount.Add(1)
	}
}

// GetMetrics returns a snapshot of current metrics.
func (s *InstrumentedStore) GetMetrics() MetricsSnapshot {
	getCount := s.metrics.GetCount.Load()
	setCount := s.metrics.SetCount.Load()
	deleteCount := s.metrics.DeleteCount.Load()
	clearCount := s.metrics.ClearCount.Load()
	scanCount := s.metrics.ScanCount.Load()

	return MetricsSnapshot{
		GetCount:         getCount,
		SetCount:         setCount,
		DeleteCount:      deleteCount,
		ClearCount:       clearCount,
		ScanCount:        scanCount,
		ErrorCount:       s.metrics.ErrorCount.Load(),
		GetAvgLatency:    avgLatency(s.metrics.GetLatencyNs.Load(), getCount),
		SetAvgLatency:    avgLatency(s.metrics.SetLatencyNs.Load(), setCount),
		DeleteAvgLatency: avgLatency(s.metrics.DeleteLatencyNs.Load(), deleteCount),
		ClearAvgLatency:  avgLatency(s.metrics.ClearLatencyNs.Load(), clearCount),
		ScanAvgLatency:   avgLatency(s.metrics.ScanLatencyNs.Load(), scanCount),
	}
}

// ResetMetrics clears all metrics counters.
func (s *InstrumentedStore) ResetMetrics() {
	for _, c := range []*atomic.Uint64{
		&s.metrics.GetCount, &s.metrics.SetCount, &s.metrics.DeleteCount,
		&s.metrics.ClearCount, &s.metrics.ScanCount, &s.metrics.ErrorCount,
		&s.metrics.GetLatencyNs, &s.metrics.SetLatencyNs, &s.metrics.DeleteLatencyNs,
		&s.metrics.ClearLatencyNs, &s.metrics.ScanLatencyNs,
	} {
		c.Store(0)
	}
}

func avgLatency(totalNs, count uint64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	GetCount         uint64
	SetCount         uint64
	DeleteCount      uint64
	ClearCount       uint64
	ScanCount        uint64
	ErrorCount       uint64
	GetAvgLatency    time.Duration
	SetAvgLatency    time.Duration
	DeleteAvgLatency time.Duration
	ClearAvgLatency  time.Duration
	ScanAvgLatency   time.Duration
}
