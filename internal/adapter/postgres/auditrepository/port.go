// Package auditrepository stores the offload audit trail in PostgreSQL
package auditrepository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/ports/secondary"
	"gitlab.com/fog-offload.net/internal/domain"
	querybuilder "gitlab.com/fog-offload.net/internal/utils"
)

var (
	_ secondary.DispatchAuditSink = (*AuditRepository)(nil)
	_ secondary.MetricsSink       = (*AuditRepository)(nil)
)

// AuditRepository implements the audit sinks with PostgreSQL
type AuditRepository struct {
	db     *sqlx.DB
	schema string
	logger primary.Logger
	now    func() time.Time
}

// NewAuditRepository creates a new PostgreSQL audit repository
func NewAuditRepository(db *sqlx.DB, schema string, logger primary.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		schema: schema,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureSchema creates the audit tables when missing
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dispatch_audit (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			task_type TEXT NOT NULL,
			task_size DOUBLE PRECISION NOT NULL,
			deadline DOUBLE PRECISION NOT NULL,
			fog_node TEXT,
			status TEXT NOT NULL,
			response JSONB,
			error TEXT,
			attempts JSONB
		)`, r.schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.task_metrics (
			id BIGSERIAL PRIMARY KEY,
			recorded_at TIMESTAMPTZ NOT NULL,
			task_id TEXT NOT NULL,
			node_id TEXT NOT NULL,
			from_cache BOOLEAN NOT NULL,
			delay DOUBLE PRECISION NOT NULL,
			energy DOUBLE PRECISION NOT NULL,
			result TEXT NOT NULL,
			cache_hit BOOLEAN NOT NULL
		)`, r.schema),
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Error("Failed to create audit schema", "error", err)
			return fmt.Errorf("failed to create audit schema: %w", err)
		}
	}
	return nil
}

// RecordDispatch appends one dispatch outcome
func (r *AuditRepository) RecordDispatch(ctx context.Context, record domain.DispatchRecord) error {
	response, err := jsonOrNil(record.Response, record.Response == nil)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch response: %w", err)
	}
	attempts, err := jsonOrNil(record.Attempts, len(record.Attempts) == 0)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch attempts: %w", err)
	}

	tbl := domain.GetDispatchAuditTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.Columns()...).
		Into(tbl.TableName()).
		Values(
			record.ID,
			record.CreatedAt,
			record.TaskType,
			record.TaskSize,
			record.Deadline,
			record.FogNode,
			string(record.Status),
			response,
			record.Error,
			attempts,
		).Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save dispatch record", "id", record.ID, "error", err)
		return fmt.Errorf("failed to save dispatch record: %w", err)
	}
	return nil
}

// RecordMetrics appends one task metrics emission
func (r *AuditRepository) RecordMetrics(ctx context.Context, metrics domain.TaskMetrics) error {
	tbl := domain.GetTaskMetricsTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.RecordedAt, tbl.TaskID, tbl.NodeID, tbl.FromCache, tbl.Delay, tbl.Energy, tbl.Result, tbl.CacheHit).
		Into(tbl.TableName()).
		Values(r.now(), metrics.TaskID, metrics.NodeID, metrics.FromCache, metrics.Delay, metrics.Energy, metrics.Result, metrics.CacheHit).
		Build()

	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to save task metrics", "taskId", metrics.TaskID, "error", err)
		return fmt.Errorf("failed to save task metrics: %w", err)
	}
	return nil
}

type dispatchRow struct {
	ID        uuid.UUID      `db:"id"`
	CreatedAt time.Time      `db:"created_at"`
	TaskType  string         `db:"task_type"`
	TaskSize  float64        `db:"task_size"`
	Deadline  float64        `db:"deadline"`
	FogNode   sql.NullString `db:"fog_node"`
	Status    string         `db:"status"`
	Response  []byte         `db:"response"`
	Error     sql.NullString `db:"error"`
	Attempts  []byte         `db:"attempts"`
}

// ListRecent returns the newest dispatch records matching filter first
func (r *AuditRepository) ListRecent(ctx context.Context, filter domain.AuditFilter, limit int) ([]domain.DispatchRecord, error) {
	tbl := domain.GetDispatchAuditTable()
	qb := querybuilder.NewQueryBuilder(r.schema).
		Select(tbl.Columns()...).
		From(tbl.TableName())

	if filter.FogNode != "" {
		qb.Where(tbl.FogNode+" = ?", filter.FogNode)
	}
	if filter.TaskType != "" {
		qb.And(tbl.TaskType+" = ?", filter.TaskType)
	}
	if !filter.Since.IsZero() {
		qb.And(tbl.CreatedAt+" >= ?", filter.Since)
	}
	if len(filter.Statuses) > 0 {
		qb.AndGroup(func(g querybuilder.QueryBuilder) {
			for _, st := range filter.Statuses {
				g.Or(tbl.Status+" = ?", string(st))
			}
		})
	}

	query, args := qb.OrderBy(tbl.CreatedAt, false).Limit(limit).Build()

	var rows []dispatchRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to list dispatch records", "error", err)
		return nil, fmt.Errorf("failed to list dispatch records: %w", err)
	}

	records := make([]domain.DispatchRecord, 0, len(rows))
	for _, row := range rows {
		record := domain.DispatchRecord{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			TaskType:  row.TaskType,
			TaskSize:  row.TaskSize,
			Deadline:  row.Deadline,
			FogNode:   row.FogNode.String,
			Status:    domain.DispatchStatus(row.Status),
			Error:     row.Error.String,
		}
		if len(row.Response) > 0 {
			var m domain.TaskMetrics
			if err := json.Unmarshal(row.Response, &m); err != nil {
				return nil, fmt.Errorf("failed to decode response of %s: %w", row.ID, err)
			}
			record.Response = &m
		}
		if len(row.Attempts) > 0 {
			if err := json.Unmarshal(row.Attempts, &record.Attempts); err != nil {
				return nil, fmt.Errorf("failed to decode attempts of %s: %w", row.ID, err)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func jsonOrNil(v interface{}, empty bool) (interface{}, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}
