package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DispatchStatus is the outcome of one offload request at the manager
type DispatchStatus string

const (
	DispatchOffloaded      DispatchStatus = "offloaded"
	DispatchFailed         DispatchStatus = "failed"
	DispatchNoFogAvailable DispatchStatus = "no_fog_available"
	DispatchRejected       DispatchStatus = "rejected"
)

// ParseDispatchStatus accepts only the known outcomes
func ParseDispatchStatus(s string) (DispatchStatus, error) {
	switch st := DispatchStatus(s); st {
	case DispatchOffloaded, DispatchFailed, DispatchNoFogAvailable, DispatchRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown dispatch status %q", s)
	}
}

// ForwardAttempt records one try against one fog node
type ForwardAttempt struct {
	NodeID string  `json:"node_id"`
	URL    string  `json:"url"`
	Score  float64 `json:"score"`
	Error  string  `json:"error,omitempty"`
}

// DispatchRecord is the audit entry written once per offload request
type DispatchRecord struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	TaskType  string           `json:"task_type" db:"task_type"`
	TaskSize  float64          `json:"task_size" db:"task_size"`
	Deadline  float64          `json:"deadline" db:"deadline"`
	FogNode   string           `json:"fog_node,omitempty" db:"fog_node"`
	Status    DispatchStatus   `json:"status" db:"status"`
	Response  *TaskMetrics     `json:"response,omitempty" db:"-"`
	Error     string           `json:"error,omitempty" db:"error"`
	Attempts  []ForwardAttempt `json:"attempts,omitempty" db:"-"`
}

// NewDispatchRecord starts an audit entry for the given task
func NewDispatchRecord(task TaskRequest, now time.Time) DispatchRecord {
	return DispatchRecord{
		ID:        uuid.New(),
		CreatedAt: now,
		TaskType:  task.TaskType,
		TaskSize:  task.TaskSize,
		Deadline:  task.Deadline,
	}
}

// AuditFilter narrows an audit listing. Zero fields match everything; several
// statuses match any of them.
type AuditFilter struct {
	Statuses []DispatchStatus
	FogNode  string
	TaskType string
	Since    time.Time
}

// DispatchAuditTable names the columns of the dispatch audit table
type DispatchAuditTable struct {
	ID        string
	CreatedAt string
	TaskType  string
	TaskSize  string
	Deadline  string
	FogNode   string
	Status    string
	Response  string
	Error     string
	Attempts  string
}

func GetDispatchAuditTable() DispatchAuditTable {
	return DispatchAuditTable{
		ID:        "id",
		CreatedAt: "created_at",
		TaskType:  "task_type",
		TaskSize:  "task_size",
		Deadline:  "deadline",
		FogNode:   "fog_node",
		Status:    "status",
		Response:  "response",
		Error:     "error",
		Attempts:  "attempts",
	}
}

func (DispatchAuditTable) TableName() string {
	return "dispatch_audit"
}

// Columns lists every column in insert order
func (t DispatchAuditTable) Columns() []string {
	return []string{t.ID, t.CreatedAt, t.TaskType, t.TaskSize, t.Deadline, t.FogNode, t.Status, t.Response, t.Error, t.Attempts}
}

// TaskMetricsTable names the columns of the per-task metrics table
type TaskMetricsTable struct {
	RecordedAt string
	TaskID     string
	NodeID     string
	FromCache  string
	Delay      string
	Energy     string
	Result     string
	CacheHit   string
}

func GetTaskMetricsTable() TaskMetricsTable {
	return TaskMetricsTable{
		RecordedAt: "recorded_at",
		TaskID:     "task_id",
		NodeID:     "node_id",
		FromCache:  "from_cache",
		Delay:      "delay",
		Energy:     "energy",
		Result:     "result",
		CacheHit:   "cache_hit",
	}
}

func (TaskMetricsTable) TableName() string {
	return "task_metrics"
}
