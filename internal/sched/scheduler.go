// Package sched owns the dashboard's periodic work.
//
// Refresh loops live here instead of being tied to whichever view happens
// to be mounted: every timer is registered by name, owned by the scheduler,
// and guaranteed released on Stop.
package sched

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs named functions on fixed intervals until stopped.
type Scheduler struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
	stopped bool
	logger  *zap.Logger
}

// New creates an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cancels: make(map[string]context.CancelFunc),
		logger:  logger,
	}
}

// Every runs fn immediately and then on each interval tick until the task
// is cancelled, the parent context ends, or the scheduler stops.
// Re-registering a name cancels the previous task first.
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if cancel, ok := s.cancels[name]; ok {
		cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	s.cancels[name] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		fn(taskCtx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn(taskCtx)
			case <-taskCtx.Done():
				s.logger.Debug("scheduled task stopped", zap.String("task", name))
				return
			}
		}
	}()
}

// Cancel stops one named task.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[name]; ok {
		cancel()
		delete(s.cancels, name)
	}
}

// Stop cancels every task and waits for their goroutines to finish. The
// scheduler is unusable afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for name, cancel := range s.cancels {
		cancel()
		delete(s.cancels, name)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
