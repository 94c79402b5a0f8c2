// Package auditlog writes the append-only audit files and fans records out to
// several sinks.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

var _ secondary.DispatchAuditSink = (*DispatchLog)(nil)

// DispatchLog appends one JSON object per line for every dispatch outcome
type DispatchLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenDispatchLog opens path for appending, creating it when absent
func OpenDispatchLog(path string) (*DispatchLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open dispatch log: %w", err)
	}
	return &DispatchLog{file: f}, nil
}

func (l *DispatchLog) RecordDispatch(_ context.Context, record domain.DispatchRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("failed to append dispatch record: %w", err)
	}
	return nil
}

func (l *DispatchLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
