package auditlog

import (
	"context"
	"errors"

	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
)

// DispatchTee writes every record to all sinks and joins their errors
type DispatchTee []secondary.DispatchAuditSink

func (t DispatchTee) RecordDispatch(ctx context.Context, record domain.DispatchRecord) error {
	var errs []error
	for _, sink := range t {
		if err := sink.RecordDispatch(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MetricsTee writes every emission to all sinks and joins their errors
type MetricsTee []secondary.MetricsSink

func (t MetricsTee) RecordMetrics(ctx context.Context, metrics domain.TaskMetrics) error {
	var errs []error
	for _, sink := range t {
		if err := sink.RecordMetrics(ctx, metrics); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
