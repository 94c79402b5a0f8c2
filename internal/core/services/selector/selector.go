package selector

import (
	"math"
	"sort"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/domain"
)

// Candidate is a scored, selectable fog node
type Candidate struct {
	Record domain.StatusRecord
	Score  float64
}

// NodeSelector ranks status records by weighted load, lowest first
type NodeSelector struct {
	weights domain.ScoringWeights
	logger  primary.Logger
}

// NewNodeSelector creates a selector using the given weights
func NewNodeSelector(weights domain.ScoringWeights, logger primary.Logger) *NodeSelector {
	return &NodeSelector{
		weights: weights,
		logger:  logger,
	}
}

func (s *NodeSelector) Weights() domain.ScoringWeights {
	return s.weights
}

// Score computes the load score of a record. Incomplete records score +Inf
// and return the reason.
func (s *NodeSelector) Score(rec domain.StatusRecord) (float64, error) {
	if err := rec.Complete(); err != nil {
		return math.Inf(1), err
	}
	memUsed := 1 - float64(*rec.MemoryAvailable)/float64(*rec.MemoryTotal)
	score := s.weights.CPU*(*rec.CPUUsage) +
		s.weights.Memory*memUsed*100 +
		s.weights.Queue*float64(*rec.QueueLength)
	if math.IsNaN(score) {
		return math.Inf(1), nil
	}
	return score, nil
}

// Rank scores every record and orders the selectable ones by ascending score,
// breaking ties by ascending node id. Records scoring +Inf are left out.
func (s *NodeSelector) Rank(records []domain.StatusRecord) []Candidate {
	ranked := make([]Candidate, 0, len(records))
	for _, rec := range records {
		score, err := s.Score(rec)
		if math.IsInf(score, 1) {
			s.logger.Warn("Excluding fog node from selection", "nodeId", rec.NodeID, "reason", err)
			continue
		}
		ranked = append(ranked, Candidate{Record: rec, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score < ranked[j].Score
		}
		return ranked[i].Record.NodeID < ranked[j].Record.NodeID
	})
	return ranked
}

// Select returns the best candidate, or false when none is selectable
func (s *NodeSelector) Select(records []domain.StatusRecord) (Candidate, bool) {
	ranked := s.Rank(records)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}
