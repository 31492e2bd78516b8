package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNowSkipsOverlappingRuns(t *testing.T) {
	s := New()
	release := make(chan struct{})
	var runs atomic.Int32
	require.NoError(t, s.Register("ingest", "@every 1h", func(ctx context.Context) {
		runs.Add(1)
		<-release
	}))

	require.True(t, s.RunNow("ingest"))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	// the first run is still blocked, so this one must be skipped
	require.True(t, s.RunNow("ingest"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	close(release)
	require.NoError(t, s.Stop(context.Background()))

	require.True(t, s.RunNow("ingest"))
	s.wg.Wait()
	assert.Equal(t, int32(1), runs.Load(), "no runs after stop")
}

func TestRegisterValidation(t *testing.T) {
	s := New()
	noop := func(ctx context.Context) {}

	require.NoError(t, s.Register("retry", "@every 2m", noop))
	assert.Error(t, s.Register("retry", "@every 5m", noop))
	assert.Error(t, s.Register("bad", "not a spec", noop))
	assert.False(t, s.RunNow("missing"))
}

func TestStartSchedulesJobs(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Register("queue", "@every 1s", func(ctx context.Context) { runs.Add(1) }))
	s.Start()
	assert.False(t, s.NextRun("queue").IsZero())

	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
}

func TestStopHonoursDeadline(t *testing.T) {
	s := New()
	started := make(chan struct{})
	require.NoError(t, s.Register("slow", "@every 1h", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	}))
	require.True(t, s.RunNow("slow"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)
}
