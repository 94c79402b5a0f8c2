package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/static/errs"
)

var _ IStatusRegistry = &StatusRegistry{}

// StatusRegistry keeps the latest status per fog node and filters by freshness.
// Records are never pruned: stale ones are skipped until the node reports again.
type StatusRegistry struct {
	statusRepo secondary.StatusRepository
	nodes      domain.NodeDirectory
	threshold  time.Duration
	logger     primary.Logger
}

// NewStatusRegistry creates a registry. A nil directory accepts any node id.
func NewStatusRegistry(
	statusRepo secondary.StatusRepository,
	nodes domain.NodeDirectory,
	threshold time.Duration,
	logger primary.Logger,
) *StatusRegistry {
	return &StatusRegistry{
		statusRepo: statusRepo,
		nodes:      nodes,
		threshold:  threshold,
		logger:     logger,
	}
}

func (s *StatusRegistry) Threshold() time.Duration {
	return s.threshold
}

// Update upserts a node's status
func (s *StatusRegistry) Update(ctx context.Context, record domain.StatusRecord, now time.Time) error {
	if record.NodeID == "" {
		return fmt.Errorf("%w: node_id is required", errs.ErrMalformedRequest)
	}
	if s.nodes != nil {
		if _, ok := s.nodes.Lookup(record.NodeID); !ok {
			return fmt.Errorf("%w: %s", errs.ErrUnknownNode, record.NodeID)
		}
	}

	record.ReceivedAt = now
	if err := s.statusRepo.SaveStatus(ctx, record); err != nil {
		s.logger.Error("Failed to save status", "nodeId", record.NodeID, "error", err)
		return fmt.Errorf("failed to save status: %w", err)
	}

	s.logger.Debug("Updated status", "nodeId", record.NodeID)
	return nil
}

// Eligible returns fresh records ordered by node id
func (s *StatusRegistry) Eligible(ctx context.Context, now time.Time) ([]domain.StatusRecord, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]domain.StatusRecord, 0, len(records))
	for _, rec := range records {
		if rec.Age(now) <= s.threshold {
			fresh = append(fresh, rec)
			continue
		}
		s.logger.Debug("Skipping stale fog node", "nodeId", rec.NodeID, "age", rec.Age(now).String())
	}
	return fresh, nil
}

// All returns every stored record ordered by node id
func (s *StatusRegistry) All(ctx context.Context) ([]domain.StatusRecord, error) {
	records, err := s.statusRepo.GetAllStatuses(ctx)
	if err != nil {
		s.logger.Error("Failed to get statuses", "error", err)
		return nil, fmt.Errorf("failed to get statuses: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].NodeID < records[j].NodeID })
	return records, nil
}
