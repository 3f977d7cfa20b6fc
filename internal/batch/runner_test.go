package batch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestOf(n, concurrency int) *Manifest {
	m := &Manifest{Concurrency: concurrency, Dir: "/data"}
	for i := 0; i < n; i++ {
		m.Jobs = append(m.Jobs, Job{Input: "in.png", Output: "out.png"})
	}
	return m
}

func TestRunnerRespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32

	r := &Runner{Process: func(ctx context.Context, job Job) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}}

	report, err := r.Run(context.Background(), manifestOf(12, 3))
	require.NoError(t, err)
	assert.Equal(t, 12, report.Succeeded)
	assert.Empty(t, report.Failed)
	assert.NoError(t, report.Err())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunnerCollectsFailures(t *testing.T) {
	boom := errors.New("boom")
	var mu sync.Mutex
	var seen []string

	m := manifestOf(4, 2)
	m.Jobs[1].Input = "broken.png"

	r := &Runner{Process: func(ctx context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.Input)
		mu.Unlock()
		if job.Input == "/data/broken.png" {
			return boom
		}
		return nil
	}}

	report, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 1, report.Failed[0].Index)
	assert.ErrorIs(t, report.Err(), boom)
	assert.Contains(t, report.Err().Error(), "job 1 (/data/broken.png): boom")
	assert.Len(t, seen, 4)
	assert.Contains(t, seen, "/data/in.png")
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	r := &Runner{Process: func(ctx context.Context, job Job) error {
		calls.Add(1)
		cancel()
		return nil
	}}

	_, err := r.Run(ctx, manifestOf(50, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int32(50))
}

func TestRunnerProgress(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{
		Progress: &out,
		Process:  func(context.Context, Job) error { return nil },
	}

	report, err := r.Run(context.Background(), manifestOf(3, 1))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded)
	assert.Contains(t, out.String(), "processing")
}
