package execution

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/core/services/costmodel"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

var _ IExecutionService = &ExecutionService{}

// Sleeper suspends for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Options tune the task pipeline
type Options struct {
	CacheTTL    time.Duration
	Fingerprint domain.FingerprintPolicy
	// TimeScale multiplies the simulated delay before suspending; 0 skips the wait
	TimeScale float64
}

// ExecutionService is the fog node task pipeline: cache lookup, then on a miss
// cost estimation, simulated occupancy and result caching.
type ExecutionService struct {
	nodeID  string
	cache   secondary.ResultCache
	model   costmodel.Model
	sampler secondary.ResourceSampler
	sink    secondary.MetricsSink
	metrics *metrics.WorkerMetrics
	logger  primary.Logger
	opts    Options
	sleep   Sleeper

	inFlight atomic.Int64
}

// NewExecutionService creates the pipeline for one fog node
func NewExecutionService(
	nodeID string,
	cache secondary.ResultCache,
	model costmodel.Model,
	sampler secondary.ResourceSampler,
	sink secondary.MetricsSink,
	workerMetrics *metrics.WorkerMetrics,
	logger primary.Logger,
	opts Options,
) *ExecutionService {
	return &ExecutionService{
		nodeID:  nodeID,
		cache:   cache,
		model:   model,
		sampler: sampler,
		sink:    sink,
		metrics: workerMetrics,
		logger:  logger,
		opts:    opts,
		sleep:   sleepContext,
	}
}

// WithSleeper replaces the occupancy wait
func (s *ExecutionService) WithSleeper(sleep Sleeper) *ExecutionService {
	s.sleep = sleep
	return s
}

func (s *ExecutionService) InFlight() int {
	return int(s.inFlight.Load())
}

// Execute processes a task
func (s *ExecutionService) Execute(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	if err := task.Validate(false); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
	}

	fingerprint := domain.Fingerprint(task, s.opts.Fingerprint)

	if result, ok := s.lookup(ctx, fingerprint); ok {
		taskMetrics := &domain.TaskMetrics{
			TaskID:    fingerprint,
			NodeID:    s.nodeID,
			FromCache: true,
			Delay:     0,
			Energy:    0,
			Result:    result,
			CacheHit:  true,
		}
		s.metrics.Tasks.WithLabelValues("hit").Inc()
		s.emit(ctx, taskMetrics)
		s.logger.Info("Task fetched from cache", "taskId", fingerprint)
		return taskMetrics, nil
	}

	delay, energy, err := s.occupy(ctx, task)
	if err != nil {
		return nil, err
	}

	result := fmt.Sprintf("Processed %s on fog node %s", task.TaskType, s.nodeID)

	// The work is done: store it even if the caller has gone away.
	if err := s.cache.Set(context.WithoutCancel(ctx), fingerprint, result, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache result", "taskId", fingerprint, "error", err)
	}

	taskMetrics := &domain.TaskMetrics{
		TaskID:    fingerprint,
		NodeID:    s.nodeID,
		FromCache: false,
		Delay:     delay,
		Energy:    energy,
		Result:    result,
		CacheHit:  false,
	}
	s.metrics.Tasks.WithLabelValues("miss").Inc()
	s.metrics.TaskDelay.Observe(delay)
	s.emit(ctx, taskMetrics)
	s.logger.Info("Task processed", "taskId", fingerprint, "delay", delay, "energy", energy)
	return taskMetrics, nil
}

// occupy holds an in-flight slot for the simulated delay. The queuing term sees
// the tasks that were already in flight when this one was admitted.
func (s *ExecutionService) occupy(ctx context.Context, task domain.TaskRequest) (float64, float64, error) {
	queued := int(s.inFlight.Add(1)) - 1
	s.metrics.InFlight.Inc()
	defer func() {
		s.inFlight.Add(-1)
		s.metrics.InFlight.Dec()
	}()

	delay := s.model.Delay(task.TaskSize, queued).Total()

	cpuStart := s.sampleCPU(ctx)
	wait := time.Duration(delay * s.opts.TimeScale * float64(time.Second))
	if err := s.sleep(ctx, wait); err != nil {
		return 0, 0, fmt.Errorf("task interrupted: %w", err)
	}
	cpuEnd := s.sampleCPU(ctx)

	return delay, s.model.Energy(delay, (cpuStart+cpuEnd)/2), nil
}

func (s *ExecutionService) lookup(ctx context.Context, fingerprint string) (string, bool) {
	result, found, err := s.cache.Get(ctx, fingerprint)
	if err != nil {
		s.logger.Warn("Cache lookup failed, treating as miss", "taskId", fingerprint, "error", err)
		return "", false
	}
	return result, found
}

func (s *ExecutionService) sampleCPU(ctx context.Context) float64 {
	pct, err := s.sampler.CPUPercent(ctx)
	if err != nil {
		s.logger.Warn("Failed to sample cpu", "error", err)
		return 0
	}
	return pct
}

func (s *ExecutionService) emit(ctx context.Context, taskMetrics *domain.TaskMetrics) {
	if s.sink == nil {
		return
	}
	if err := s.sink.RecordMetrics(context.WithoutCancel(ctx), *taskMetrics); err != nil {
		s.logger.Error("Failed to record task metrics", "taskId", taskMetrics.TaskID, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
