package batch

import (
	"errors"
	"runtime"
)

// ErrMemoryPressure is returned by Monitor.Check when heap usage exceeds
// the configured threshold (spec.md §5: "advisory ... rejection of new
// batches with MemoryPressure error").
var ErrMemoryPressure = errors.New("batch: memory pressure")

// Monitor samples heap usage and advises its caller to throttle
// concurrency (Throttled) or reject new batches (Check). Both responses are
// advisory per spec.md §5; the Runner does not consult a Monitor itself,
// and nothing here is load-bearing for correctness.
type Monitor struct {
	maxHeapBytes uint64
}

// NewMonitor creates a Monitor that trips once heap usage exceeds
// maxHeapBytes. A zero value disables the check (Check always succeeds).
func NewMonitor(maxHeapBytes uint64) *Monitor {
	return &Monitor{maxHeapBytes: maxHeapBytes}
}

// Sample reports current heap usage in bytes.
func (m *Monitor) Sample() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc
}

// Check returns ErrMemoryPressure if the current sample exceeds the
// configured threshold. Callers use this to reject new batches or shrink
// max_concurrent_batches before starting the next round of AnalyzeAll.
func (m *Monitor) Check() error {
	if m.maxHeapBytes == 0 {
		return nil
	}
	if m.Sample() > m.maxHeapBytes {
		return ErrMemoryPressure
	}
	return nil
}

// Throttled reports a reduced max_concurrent_batches when under pressure,
// halving current down to a floor of 1.
func (m *Monitor) Throttled(current int) int {
	if m.Check() == nil {
		return current
	}
	if current <= 1 {
		return 1
	}
	return current / 2
}
