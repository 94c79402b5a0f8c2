package memory

import (
	"context"
	"sync"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

var _ secondary.StatusRepository = (*StatusStore)(nil)

// StatusStore is an in-process status table, one record per node id
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.StatusRecord
}

func NewStatusStore() *StatusStore {
	return &StatusStore{statuses: make(map[string]domain.StatusRecord)}
}

func (s *StatusStore) SaveStatus(_ context.Context, record domain.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[record.NodeID] = record
	return nil
}

func (s *StatusStore) GetStatus(_ context.Context, nodeID string) (*domain.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.statuses[nodeID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *StatusStore) GetAllStatuses(_ context.Context) ([]domain.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StatusRecord, 0, len(s.statuses))
	for _, rec := range s.statuses {
		out = append(out, rec)
	}
	return out, nil
}
