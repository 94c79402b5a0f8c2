package auditlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

var _ secondary.MetricsSink = (*MetricsLog)(nil)

// MetricsHeader is the column order of a fog node's metrics file
var MetricsHeader = []string{"task_id", "fog_node_number", "from_cache", "delay", "energy_consumption", "result", "cache_hit"}

// MetricsLog appends one CSV row per TaskMetrics emission
type MetricsLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// OpenMetricsLog opens path for appending and writes the header into an empty file
func OpenMetricsLog(path string) (*MetricsLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat metrics log: %w", err)
	}

	l := &MetricsLog{file: f, writer: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.writeRow(MetricsHeader); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

func (l *MetricsLog) RecordMetrics(_ context.Context, m domain.TaskMetrics) error {
	return l.writeRow([]string{
		m.TaskID,
		m.NodeID,
		strconv.FormatBool(m.FromCache),
		strconv.FormatFloat(m.Delay, 'f', -1, 64),
		strconv.FormatFloat(m.Energy, 'f', -1, 64),
		m.Result,
		strconv.FormatBool(m.CacheHit),
	})
}

func (l *MetricsLog) writeRow(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write metrics row: %w", err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush metrics row: %w", err)
	}
	return nil
}

func (l *MetricsLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Flush()
	return l.file.Close()
}
