package domain

import (
	"errors"
	"time"
)

// StatusRecord is the load report a fog node pushes to the manager.
// Load fields are pointers so a missing field can be told apart from zero.
type StatusRecord struct {
	NodeID          string    `json:"node_id"`
	CPUUsage        *float64  `json:"cpu_usage_percent"`
	MemoryAvailable *uint64   `json:"memory_available"`
	MemoryTotal     *uint64   `json:"memory_total"`
	QueueLength     *int      `json:"queue_length"`
	Port            int       `json:"port"`
	Timestamp       time.Time `json:"timestamp"`
	ReceivedAt      time.Time `json:"received_at"`
}

var (
	ErrMissingCPU         = errors.New("cpu_usage_percent missing")
	ErrMissingMemory      = errors.New("memory_available or memory_total missing")
	ErrZeroMemoryTotal    = errors.New("memory_total is zero")
	ErrMissingQueueLength = errors.New("queue_length missing")
)

// Complete reports which required load field, if any, is absent
func (s StatusRecord) Complete() error {
	switch {
	case s.CPUUsage == nil:
		return ErrMissingCPU
	case s.MemoryAvailable == nil || s.MemoryTotal == nil:
		return ErrMissingMemory
	case *s.MemoryTotal == 0:
		return ErrZeroMemoryTotal
	case s.QueueLength == nil:
		return ErrMissingQueueLength
	}
	return nil
}

// Age is how long ago the manager received this record
func (s StatusRecord) Age(now time.Time) time.Duration {
	return now.Sub(s.ReceivedAt)
}

// NewStatusRecord builds a complete record from sampled values
func NewStatusRecord(nodeID string, cpu float64, memAvailable, memTotal uint64, queue, port int, at time.Time) StatusRecord {
	return StatusRecord{
		NodeID:          nodeID,
		CPUUsage:        &cpu,
		MemoryAvailable: &memAvailable,
		MemoryTotal:     &memTotal,
		QueueLength:     &queue,
		Port:            port,
		Timestamp:       at,
	}
}
