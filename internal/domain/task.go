package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskRequest is a unit of work produced by an IoT device
type TaskRequest struct {
	TaskType string  `json:"task_type"`
	TaskSize float64 `json:"task_size"`
	Deadline float64 `json:"deadline"`
}

// Validate checks the fields the dispatcher needs before any scoring happens.
// requireDeadline is false on the worker side, where the deadline is optional.
func (t TaskRequest) Validate(requireDeadline bool) error {
	if strings.TrimSpace(t.TaskType) == "" {
		return fmt.Errorf("task_type is required")
	}
	if t.TaskSize <= 0 {
		return fmt.Errorf("task_size must be positive, got %v", t.TaskSize)
	}
	if t.Deadline < 0 {
		return fmt.Errorf("deadline must not be negative, got %v", t.Deadline)
	}
	if requireDeadline && t.Deadline == 0 {
		return fmt.Errorf("deadline is required")
	}
	return nil
}

// FingerprintPolicy decides which task attributes make up the cache key
type FingerprintPolicy struct {
	IncludeDeadline bool
}

// Fingerprint derives the cache key for a task: "<type>_<size>", with
// "_<deadline>" appended when the policy asks for it.
func Fingerprint(t TaskRequest, policy FingerprintPolicy) string {
	key := t.TaskType + "_" + formatNumber(t.TaskSize)
	if policy.IncludeDeadline {
		key += "_" + formatNumber(t.Deadline)
	}
	return key
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TaskMetrics is emitted by a worker for every task it answers, cached or not
type TaskMetrics struct {
	TaskID    string  `json:"task_id"`
	NodeID    string  `json:"node_id"`
	FromCache bool    `json:"from_cache"`
	Delay     float64 `json:"delay"`
	Energy    float64 `json:"energy"`
	Result    string  `json:"result"`
	CacheHit  bool    `json:"cache_hit"`
}

// TaskTypes lists the task types the device simulator generates
var TaskTypes = []string{"image_processing", "data_analysis", "video_streaming"}
