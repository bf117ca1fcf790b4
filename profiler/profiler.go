// Package profiler - Stage timings and counters for the detection pipeline.
package profiler

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultMaxSamples is the number of durations kept per operation.
const DefaultMaxSamples = 600

// Profiler tracks how long each pipeline stage takes and a few running counters. It is safe
// for concurrent use. A nil *Profiler records nothing.
type Profiler struct {
	mu         sync.RWMutex
	startTime  time.Time
	maxSamples int
	operations map[string]*TimeTracker
	counters   map[string]int64
}

// TimeTracker tracks operation timing statistics over a sliding window.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats summarizes one operation.
type OperationStats struct {
	Count   int64         `json:"count"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
}

// Snapshot is a point-in-time copy of all statistics.
type Snapshot struct {
	Uptime     time.Duration             `json:"uptime"`
	Goroutines int                       `json:"goroutines"`
	HeapAlloc  uint64                    `json:"heap_alloc"`
	Operations map[string]OperationStats `json:"operations"`
	Counters   map[string]int64          `json:"counters"`
}

// New creates a profiler keeping at most maxSamples durations per operation, or
// DefaultMaxSamples when maxSamples <= 0.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	return &Profiler{
		startTime:  time.Now(),
		maxSamples: maxSamples,
		operations: make(map[string]*TimeTracker),
		counters:   make(map[string]int64),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.RecordOperation(name, time.Since(start))
	}
}

// RecordOperation records the completion time of an operation.
func (p *Profiler) RecordOperation(name string, duration time.Duration) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operations[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		p.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > p.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Add increments a counter by delta.
func (p *Profiler) Add(name string, delta int64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters[name] += delta
}

// Snapshot returns the current statistics. Averages cover the sliding window, counts cover
// the profiler's lifetime.
func (p *Profiler) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{Operations: map[string]OperationStats{}, Counters: map[string]int64{}}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		Uptime:     time.Since(p.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		Operations: make(map[string]OperationStats, len(p.operations)),
		Counters:   make(map[string]int64, len(p.counters)),
	}
	for name, t := range p.operations {
		stats := OperationStats{Count: t.count, Min: t.minTime, Max: t.maxTime}
		if n := len(t.durations); n > 0 {
			stats.Average = t.totalTime / time.Duration(n)
		}
		s.Operations[name] = stats
	}
	for name, v := range p.counters {
		s.Counters[name] = v
	}
	return s
}

// Report renders the snapshot as one line per operation and counter, sorted by name.
func (p *Profiler) Report() string {
	s := p.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "uptime=%v goroutines=%d heap=%s\n", s.Uptime.Round(time.Millisecond), s.Goroutines, formatBytes(s.HeapAlloc))
	for _, name := range sortedKeys(s.Operations) {
		op := s.Operations[name]
		fmt.Fprintf(&b, "  %-12s n=%d avg=%v min=%v max=%v\n", name, op.Count, op.Average, op.Min, op.Max)
	}
	for _, name := range sortedKeys(s.Counters) {
		fmt.Fprintf(&b, "  %-12s %d\n", name, s.Counters[name])
	}
	return b.String()
}

// Start logs a report every interval until ctx is canceled.
func (p *Profiler) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Printf("📊 Pipeline status:\n%s", p.Report())
			}
		}
	}()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
