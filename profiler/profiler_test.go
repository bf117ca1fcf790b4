package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordOperation keeps count, min, max and a windowed average.
func TestRecordOperation(t *testing.T) {
	p := New(2)
	p.RecordOperation("inference", 10*time.Millisecond)
	p.RecordOperation("inference", 30*time.Millisecond)
	p.RecordOperation("inference", 50*time.Millisecond)

	op, ok := p.Snapshot().Operations["inference"]
	require.True(t, ok)
	assert.Equal(t, int64(3), op.Count)
	assert.Equal(t, 10*time.Millisecond, op.Min)
	assert.Equal(t, 50*time.Millisecond, op.Max)
	assert.Equal(t, 40*time.Millisecond, op.Average)
}

// TestStartOperation records the elapsed time.
func TestStartOperation(t *testing.T) {
	p := New(0)
	done := p.StartOperation("decode")
	time.Sleep(time.Millisecond)
	done()

	op := p.Snapshot().Operations["decode"]
	assert.Equal(t, int64(1), op.Count)
	assert.GreaterOrEqual(t, op.Min, time.Millisecond)
}

// TestCounters sums concurrent increments.
func TestCounters(t *testing.T) {
	p := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Add("detections", 2)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), p.Snapshot().Counters["detections"])
	assert.Contains(t, p.Report(), "detections")
}

// TestNilProfiler ignores every call.
func TestNilProfiler(t *testing.T) {
	var p *Profiler
	p.StartOperation("x")()
	p.Add("y", 1)
	assert.Empty(t, p.Snapshot().Operations)
	assert.NotEmpty(t, p.Report())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
}
