package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEveryRunsImmediatelyAndOnTicks(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var runs atomic.Int32
	s.Every(context.Background(), "refresh", 20*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestCancelStopsOneTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var a, b atomic.Int32
	s.Every(context.Background(), "a", 20*time.Millisecond, func(context.Context) { a.Add(1) })
	s.Every(context.Background(), "b", 20*time.Millisecond, func(context.Context) { b.Add(1) })

	s.Cancel("a")
	frozen := a.Load()

	assert.Eventually(t, func() bool { return b.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	// Allow at most one in-flight run that raced the cancel.
	assert.LessOrEqual(t, a.Load(), frozen+1)
}

func TestReregisterReplacesTask(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var old, replacement atomic.Int32
	s.Every(context.Background(), "task", 20*time.Millisecond, func(context.Context) { old.Add(1) })
	s.Every(context.Background(), "task", 20*time.Millisecond, func(context.Context) { replacement.Add(1) })

	assert.Eventually(t, func() bool { return replacement.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	frozen := old.Load()
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, old.Load(), frozen+1, "replaced task must stop ticking")
}

func TestStopReleasesEverything(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int32
	s.Every(context.Background(), "x", 10*time.Millisecond, func(context.Context) { runs.Add(1) })
	s.Every(context.Background(), "y", 10*time.Millisecond, func(context.Context) { runs.Add(1) })

	s.Stop()
	frozen := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, frozen, runs.Load(), "no ticks after Stop")

	// Registering after Stop is a no-op, not a leak.
	s.Every(context.Background(), "z", 10*time.Millisecond, func(context.Context) { runs.Add(1) })
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, frozen, runs.Load())
}
