package reporter

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

var _ IStatusReporter = &StatusReporter{}

// StatusReporter samples the host and pushes status records to the manager
type StatusReporter struct {
	nodeID  string
	port    int
	cfg     *config.ReporterCfg
	sampler secondary.ResourceSampler
	queue   QueueSource
	pusher  secondary.StatusPusher
	metrics *metrics.WorkerMetrics
	logger  primary.Logger
	now     func() time.Time
}

func NewStatusReporter(
	nodeID string,
	port int,
	cfg *config.ReporterCfg,
	sampler secondary.ResourceSampler,
	queue QueueSource,
	pusher secondary.StatusPusher,
	workerMetrics *metrics.WorkerMetrics,
	logger primary.Logger,
) *StatusReporter {
	return &StatusReporter{
		nodeID:  nodeID,
		port:    port,
		cfg:     cfg,
		sampler: sampler,
		queue:   queue,
		pusher:  pusher,
		metrics: workerMetrics,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *StatusReporter) Snapshot(ctx context.Context) (domain.StatusRecord, error) {
	cpu, err := r.sampler.CPUPercent(ctx)
	if err != nil {
		return domain.StatusRecord{}, fmt.Errorf("failed to sample cpu: %w", err)
	}
	available, total, err := r.sampler.Memory(ctx)
	if err != nil {
		return domain.StatusRecord{}, fmt.Errorf("failed to sample memory: %w", err)
	}
	return domain.NewStatusRecord(r.nodeID, cpu, available, total, r.queue.InFlight(), r.port, r.now()), nil
}

// ReportOnce pushes one record. After MaxRetries failed attempts the record is
// dropped and ErrStatusPushFailure returned; the next period tries again.
func (r *StatusReporter) ReportOnce(ctx context.Context) error {
	record, err := r.Snapshot(ctx)
	if err != nil {
		r.metrics.StatusPushes.WithLabelValues("sample_error").Inc()
		r.logger.Error("Failed to gather status", "error", err)
		return fmt.Errorf("%w: %v", errs.ErrStatusPushFailure, err)
	}

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		lastErr = r.push(ctx, record)
		if lastErr == nil {
			r.metrics.StatusPushes.WithLabelValues("ok").Inc()
			r.logger.Debug("Status pushed", "nodeId", r.nodeID, "queueLength", *record.QueueLength, "attempt", attempt)
			return nil
		}
		r.metrics.StatusPushes.WithLabelValues("retry").Inc()
		r.logger.Warn("Status push failed", "attempt", attempt, "maxRetries", r.cfg.MaxRetries, "error", lastErr)

		if attempt == r.cfg.MaxRetries {
			break
		}
		if err := wait(ctx, r.cfg.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	r.metrics.StatusPushes.WithLabelValues("dropped").Inc()
	r.logger.Error("Dropping status update", "nodeId", r.nodeID, "error", lastErr)
	return fmt.Errorf("%w: %v", errs.ErrStatusPushFailure, lastErr)
}

// Run adapts ReportOnce to the scheduler engine
func (r *StatusReporter) Run(ctx context.Context) {
	_ = r.ReportOnce(ctx)
}

func (r *StatusReporter) push(ctx context.Context, record domain.StatusRecord) error {
	if r.cfg.PushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.PushTimeout)
		defer cancel()
	}
	return r.pusher.PushStatus(ctx, record)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
