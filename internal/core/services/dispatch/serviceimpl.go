package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/semaphore"

	"gitlab.com/fog-offload.net/internal/config"
	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/core/services/registry"
	"gitlab.com/fog-offload.net/internal/core/services/selector"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

var _ IDispatchService = &DispatchService{}

// DispatchService implements IDispatchService
type DispatchService struct {
	cfg       *config.DispatcherCfg
	registry  registry.IStatusRegistry
	selector  *selector.NodeSelector
	nodes     domain.NodeDirectory
	forwarder secondary.TaskForwarder
	audit     secondary.DispatchAuditSink
	metrics   *metrics.DispatcherMetrics
	logger    primary.Logger
	forwards  *semaphore.Weighted
	now       func() time.Time
}

func NewDispatchService(
	cfg *config.DispatcherCfg,
	statusRegistry registry.IStatusRegistry,
	nodeSelector *selector.NodeSelector,
	nodes domain.NodeDirectory,
	forwarder secondary.TaskForwarder,
	audit secondary.DispatchAuditSink,
	dispatcherMetrics *metrics.DispatcherMetrics,
	logger primary.Logger,
) *DispatchService {
	return &DispatchService{
		cfg:       cfg,
		registry:  statusRegistry,
		selector:  nodeSelector,
		nodes:     nodes,
		forwarder: forwarder,
		audit:     audit,
		metrics:   dispatcherMetrics,
		logger:    logger,
		forwards:  semaphore.NewWeighted(int64(cfg.MaxConcurrentForwards)),
		now:       time.Now,
	}
}

func (s *DispatchService) Offload(ctx context.Context, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	record := domain.NewDispatchRecord(task, s.now())

	if err := task.Validate(true); err != nil {
		err = fmt.Errorf("%w: %v", errs.ErrMalformedRequest, err)
		s.finish(ctx, record, domain.DispatchRejected, err)
		return nil, err
	}

	records, err := s.registry.Eligible(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to read status registry", "error", err)
		records = nil
	}

	candidates := s.selector.Rank(records)
	if len(candidates) == 0 {
		err := errs.ErrNoCapacity
		if len(records) > 0 {
			err = fmt.Errorf("%w: %d fresh nodes, none scorable", errs.ErrNoCapacity, len(records))
		}
		s.finish(ctx, record, domain.DispatchNoFogAvailable, err)
		return nil, err
	}

	attempts := 1
	if s.cfg.FailoverEnabled {
		attempts = s.cfg.MaxForwardAttempts
	}

	var lastErr error
	for _, candidate := range candidates {
		if len(record.Attempts) == attempts {
			break
		}
		node, ok := s.resolve(candidate.Record)
		if !ok {
			s.logger.Warn("No address for node, skipping", "nodeId", candidate.Record.NodeID)
			continue
		}

		attempt := domain.ForwardAttempt{NodeID: node.ID, URL: node.URL, Score: candidate.Score}
		record.FogNode = node.ID

		taskMetrics, err := s.forward(ctx, node, task)
		if err == nil {
			record.Attempts = append(record.Attempts, attempt)
			record.Response = taskMetrics
			s.finish(ctx, record, domain.DispatchOffloaded, nil)
			s.logger.Info("Task offloaded", "taskId", taskMetrics.TaskID, "nodeId", node.ID, "score", candidate.Score)
			return taskMetrics, nil
		}

		attempt.Error = err.Error()
		record.Attempts = append(record.Attempts, attempt)
		lastErr = err
		s.logger.Warn("Forward failed", "nodeId", node.ID, "attempt", len(record.Attempts), "error", err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: no ranked node has an address", errs.ErrNoCapacity)
		s.finish(ctx, record, domain.DispatchNoFogAvailable, lastErr)
		return nil, lastErr
	}
	s.finish(ctx, record, domain.DispatchFailed, lastErr)
	return nil, lastErr
}

func (s *DispatchService) Reject(ctx context.Context, task domain.TaskRequest, cause error) {
	s.finish(ctx, domain.NewDispatchRecord(task, s.now()), domain.DispatchRejected, cause)
}

func (s *DispatchService) Overview(ctx context.Context) ([]NodeOverview, error) {
	records, err := s.registry.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read status registry: %w", err)
	}

	now := s.now()
	views := make([]NodeOverview, 0, len(records))
	for _, rec := range records {
		age := rec.Age(now)
		view := NodeOverview{
			Record:     rec,
			Fresh:      age <= s.registry.Threshold(),
			AgeSeconds: age.Seconds(),
		}
		if score, err := s.selector.Score(rec); err == nil && !math.IsInf(score, 1) {
			view.Score = &score
			view.Selectable = view.Fresh
		}
		views = append(views, view)
	}
	return views, nil
}

// RefreshGauges publishes the fresh and stale node counts
func (s *DispatchService) RefreshGauges(ctx context.Context) {
	views, err := s.Overview(ctx)
	if err != nil {
		s.logger.Error("Failed to refresh registry gauges", "error", err)
		return
	}
	fresh := 0
	for _, v := range views {
		if v.Fresh {
			fresh++
		}
	}
	s.metrics.FreshNodes.Set(float64(fresh))
	s.metrics.StaleNodes.Set(float64(len(views) - fresh))
}

// resolve finds where to send a task for a status record. Nodes outside the
// directory fall back to localhost on the reported port.
func (s *DispatchService) resolve(rec domain.StatusRecord) (domain.Node, bool) {
	if node, ok := s.nodes.Lookup(rec.NodeID); ok {
		return node, true
	}
	if rec.Port > 0 {
		return domain.Node{ID: rec.NodeID, URL: fmt.Sprintf("http://localhost:%d", rec.Port), Port: rec.Port}, true
	}
	return domain.Node{}, false
}

func (s *DispatchService) forward(ctx context.Context, node domain.Node, task domain.TaskRequest) (*domain.TaskMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ForwardTimeout)
	defer cancel()

	if err := s.forwards.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: no forward slot: %v", errs.ErrForwardFailure, err)
	}
	defer s.forwards.Release(1)

	start := time.Now()
	taskMetrics, err := s.forwarder.Forward(ctx, node, task)
	s.metrics.ForwardLatency.WithLabelValues(node.ID).Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, errs.ErrForwardFailure) {
			err = fmt.Errorf("%w: %v", errs.ErrForwardFailure, err)
		}
		return nil, err
	}
	return taskMetrics, nil
}

// finish writes the single audit record of a request. The write outlives a
// cancelled request context.
func (s *DispatchService) finish(ctx context.Context, record domain.DispatchRecord, status domain.DispatchStatus, cause error) {
	record.Status = status
	if cause != nil {
		record.Error = cause.Error()
	}
	s.metrics.Dispatches.WithLabelValues(string(status)).Inc()

	if s.audit == nil {
		return
	}
	if err := s.audit.RecordDispatch(context.WithoutCancel(ctx), record); err != nil {
		s.logger.Error("Failed to record dispatch", "id", record.ID, "status", status, "error", err)
	}
}
