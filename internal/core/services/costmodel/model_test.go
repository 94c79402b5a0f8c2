package costmodel

import (
	"math"
	"testing"

	"gitlab.com/fog-offload.net/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDirectModelSingleTask(t *testing.T) {
	m := New(domain.CostDirect)

	d := m.Delay(50, 0)
	if !almostEqual(d.Total(), 10.1) {
		t.Fatalf("delay = %v, want 10.1", d.Total())
	}
	if e := m.Energy(d.Total(), 10); !almostEqual(e, 50.5) {
		t.Fatalf("energy = %v, want 50.5", e)
	}
}

func TestQueuedModelChargesInFlightTasks(t *testing.T) {
	m := New(domain.CostQueued)

	idle := m.Delay(50, 0)
	busy := m.Delay(50, 3)
	if !almostEqual(busy.Queuing, 1.5) {
		t.Errorf("queuing = %v, want 1.5", busy.Queuing)
	}
	if !almostEqual(busy.Total()-idle.Total(), 1.5) {
		t.Errorf("busy-idle = %v, want 1.5", busy.Total()-idle.Total())
	}

	direct := New(domain.CostDirect).Delay(50, 3)
	if direct.Queuing != 0 {
		t.Errorf("direct model queuing = %v, want 0", direct.Queuing)
	}
}

func TestNegativeQueueIsClamped(t *testing.T) {
	m := New(domain.CostQueued)
	if q := m.Delay(10, -2).Queuing; q != 0 {
		t.Errorf("queuing = %v, want 0", q)
	}
}
