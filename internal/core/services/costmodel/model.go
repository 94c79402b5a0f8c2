// Package costmodel estimates the simulated delay and energy of a task on a fog node.
package costmodel

import "gitlab.com/fog-offload.net/internal/domain"

// Breakdown itemises an estimated delay in seconds
type Breakdown struct {
	Queuing      float64
	Transmission float64
	Propagation  float64
	Processing   float64
}

// Total is the sum of all delay terms
func (b Breakdown) Total() float64 {
	return b.Queuing + b.Transmission + b.Propagation + b.Processing
}

// Model is a pure cost model over a parameter set
type Model struct {
	params domain.CostParams
}

func New(params domain.CostParams) Model {
	return Model{params: params}
}

func (m Model) Params() domain.CostParams {
	return m.params
}

// Delay estimates the delay of a task of the given size when queued tasks are
// already in flight on the node
func (m Model) Delay(size float64, queued int) Breakdown {
	if queued < 0 {
		queued = 0
	}
	return Breakdown{
		Queuing:      float64(queued) * m.params.QueueDelayPerTask,
		Transmission: size / m.params.Bandwidth,
		Propagation:  m.params.PropagationDelay,
		Processing:   size / m.params.ProcessingRate,
	}
}

// Energy converts a delay and the average CPU reading over the task into energy units
func (m Model) Energy(delay, avgCPU float64) float64 {
	return delay * avgCPU * m.params.EnergyCoefficient
}
