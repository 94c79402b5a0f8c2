// Package producer simulates an IoT device generating tasks at a bounded rate.
package producer

import (
	"math"
	"math/rand"

	"gitlab.com/fog-offload.net/internal/domain"
)

// Generator draws random tasks and waits
type Generator struct {
	rng *rand.Rand
}

// NewGenerator seeds the generator; seed 0 picks a random seed
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = rand.Int63()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Next draws a task: a known type, integral size in [10,100] and deadline in [5,30]
func (g *Generator) Next() domain.TaskRequest {
	return domain.TaskRequest{
		TaskType: domain.TaskTypes[g.rng.Intn(len(domain.TaskTypes))],
		TaskSize: float64(10 + g.rng.Intn(91)),
		Deadline: float64(5 + g.rng.Intn(26)),
	}
}

// Poisson draws a Poisson distributed count with mean lambda
func (g *Generator) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := g.rng.Float64()
	for p > limit {
		k++
		p *= g.rng.Float64()
	}
	return k
}
