package secondary

import (
	"context"

	"gitlab.com/fog-offload.net/internal/domain"
)

// DispatchAuditSink appends one record per offload outcome
type DispatchAuditSink interface {
	RecordDispatch(ctx context.Context, record domain.DispatchRecord) error
}

// MetricsSink appends one record per TaskMetrics emission
type MetricsSink interface {
	RecordMetrics(ctx context.Context, metrics domain.TaskMetrics) error
}
