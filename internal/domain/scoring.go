package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ScoringWeights weighs the three load signals of a status record
type ScoringWeights struct {
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	Queue  float64 `json:"queue"`
}

var (
	// WeightsCPUHeavy favours CPU headroom (manager default)
	WeightsCPUHeavy = ScoringWeights{CPU: 0.6, Memory: 0.3, Queue: 0.1}
	// WeightsEven spreads weight between CPU and memory
	WeightsEven = ScoringWeights{CPU: 0.4, Memory: 0.4, Queue: 0.2}
)

// ScoringPreset resolves a named weight preset
func ScoringPreset(name string) (ScoringWeights, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cpu":
		return WeightsCPUHeavy, nil
	case "even":
		return WeightsEven, nil
	default:
		return ScoringWeights{}, fmt.Errorf("unknown scoring preset %q", name)
	}
}

// ParseScoringWeights reads "cpu,memory,queue", e.g. "0.5,0.3,0.2"
func ParseScoringWeights(s string) (ScoringWeights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ScoringWeights{}, fmt.Errorf("expected 3 comma separated weights, got %q", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ScoringWeights{}, fmt.Errorf("invalid weight %q: %w", p, err)
		}
		if v < 0 {
			return ScoringWeights{}, fmt.Errorf("weight %q must not be negative", p)
		}
		vals[i] = v
	}
	return ScoringWeights{CPU: vals[0], Memory: vals[1], Queue: vals[2]}, nil
}
