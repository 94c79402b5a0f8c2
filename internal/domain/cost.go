package domain

import (
	"fmt"
	"strings"
)

// CostParams parameterises the simulated delay and energy model of a fog node
type CostParams struct {
	// QueueDelayPerTask is seconds added per task already in flight; 0 disables the term
	QueueDelayPerTask float64 `json:"queue_delay_per_task"`
	// Bandwidth is size units transmitted per second
	Bandwidth float64 `json:"bandwidth"`
	// PropagationDelay is a fixed per-task delay in seconds
	PropagationDelay float64 `json:"propagation_delay"`
	// ProcessingRate is size units processed per second
	ProcessingRate float64 `json:"processing_rate"`
	// EnergyCoefficient scales delay*cpu into energy units
	EnergyCoefficient float64 `json:"energy_coefficient"`
}

var (
	// CostQueued charges half a second per task already in flight
	CostQueued = CostParams{
		QueueDelayPerTask: 0.5,
		Bandwidth:         10,
		PropagationDelay:  0.1,
		ProcessingRate:    10,
		EnergyCoefficient: 0.5,
	}
	// CostDirect has no queuing term
	CostDirect = CostParams{
		QueueDelayPerTask: 0,
		Bandwidth:         10,
		PropagationDelay:  0.1,
		ProcessingRate:    10,
		EnergyCoefficient: 0.5,
	}
)

// CostPreset resolves a named cost model preset
func CostPreset(name string) (CostParams, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "queued":
		return CostQueued, nil
	case "direct":
		return CostDirect, nil
	default:
		return CostParams{}, fmt.Errorf("unknown cost preset %q", name)
	}
}

// Validate rejects parameter sets that would divide by zero or go negative
func (p CostParams) Validate() error {
	if p.Bandwidth <= 0 {
		return fmt.Errorf("bandwidth must be positive")
	}
	if p.ProcessingRate <= 0 {
		return fmt.Errorf("processing rate must be positive")
	}
	if p.QueueDelayPerTask < 0 || p.PropagationDelay < 0 || p.EnergyCoefficient < 0 {
		return fmt.Errorf("cost parameters must not be negative")
	}
	return nil
}
