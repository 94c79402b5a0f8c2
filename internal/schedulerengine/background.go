package schedulerengine

import (
	"context"
	"sync"
	"time"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
)

// JobFunc is one run of a periodic job
type JobFunc func(ctx context.Context)

type job struct {
	name      string
	interval  time.Duration
	fn        JobFunc
	immediate bool
}

// SchedulerEngine runs named jobs on fixed intervals until its context is
// cancelled or Stop is called.
type SchedulerEngine struct {
	logger primary.Logger
	jobs   []job

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSchedulerEngine(logger primary.Logger) *SchedulerEngine {
	return &SchedulerEngine{logger: logger}
}

// Every registers fn to run each interval. With runImmediately the first run
// happens at Start instead of after one interval. Jobs must be registered
// before Start.
func (s *SchedulerEngine) Every(name string, interval time.Duration, fn JobFunc, runImmediately bool) *SchedulerEngine {
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn, immediate: runImmediately})
	return s
}

// Start launches one goroutine per job
func (s *SchedulerEngine) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	for _, j := range s.jobs {
		if j.interval <= 0 {
			s.logger.Warn("Skipping job with non-positive interval", "job", j.name, "interval", j.interval)
			continue
		}
		s.wg.Add(1)
		go s.run(ctx, j)
	}
	s.logger.Info("Scheduler engine started", "jobs", len(s.jobs))
}

func (s *SchedulerEngine) run(ctx context.Context, j job) {
	defer s.wg.Done()

	if j.immediate {
		j.fn(ctx)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Job stopped", "job", j.name)
			return
		case <-ticker.C:
			j.fn(ctx)
		}
	}
}

// Stop cancels every job and waits for in-progress runs to return
func (s *SchedulerEngine) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
