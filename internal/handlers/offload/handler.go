package offload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/services/dispatch"
	"gitlab.com/fog-offload.net/internal/domain"
	"gitlab.com/fog-offload.net/internal/handlers"
	"gitlab.com/fog-offload.net/internal/handlers/response"
	"gitlab.com/fog-offload.net/internal/validation"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditLister reads back the dispatch audit trail
type AuditLister interface {
	ListRecent(ctx context.Context, filter domain.AuditFilter, limit int) ([]domain.DispatchRecord, error)
}

// OffloadHandler is the manager's task ingress
type OffloadHandler struct {
	dispatchService dispatch.IDispatchService
	validator       *validation.Validator
	audit           AuditLister
	logger          primary.Logger
}

// NewOffloadHandler creates a new offload handler. audit may be nil when no
// queryable audit store is configured.
func NewOffloadHandler(dispatchService dispatch.IDispatchService, validator *validation.Validator, audit AuditLister, logger primary.Logger) *OffloadHandler {
	return &OffloadHandler{
		dispatchService: dispatchService,
		validator:       validator,
		audit:           audit,
		logger:          logger,
	}
}

// RegisterRoutes registers the API routes for OffloadHandler
func (h *OffloadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/offload_task", h.OffloadTask).Methods("POST")
	router.HandleFunc("/audit", h.GetAudit).Methods("GET")
}

// OffloadTask handles task offloading requests from devices
func (h *OffloadHandler) OffloadTask(w http.ResponseWriter, r *http.Request) {
	body, err := handlers.ReadBody(w, r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	task, err := h.validator.DecodeTask(validation.KindTaskRequest, body)
	if err != nil {
		// Keep whatever fields did decode for the audit record.
		var partial domain.TaskRequest
		_ = json.Unmarshal(body, &partial)
		h.dispatchService.Reject(r.Context(), partial, err)
		h.logger.Warn("Rejected task", "error", err)
		response.WriteServiceError(w, err)
		return
	}

	metrics, err := h.dispatchService.Offload(r.Context(), task)
	if err != nil {
		h.logger.Warn("Failed to offload task", "taskType", task.TaskType, "error", err)
		response.WriteServiceError(w, err)
		return
	}

	response.WriteSuccess(w, metrics)
}

// GetAudit returns the newest dispatch records, optionally narrowed by
// status (comma separated), node, task_type and since (RFC 3339)
func (h *OffloadHandler) GetAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		response.WriteError(w, http.StatusNotFound, "audit store is not configured")
		return
	}

	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.audit.ListRecent(r.Context(), filter, limit)
	if err != nil {
		h.logger.Error("Failed to list audit records", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to list audit records")
		return
	}
	response.WriteSuccess(w, map[string]interface{}{"records": records})
}

func parseAuditFilter(r *http.Request) (domain.AuditFilter, error) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		FogNode:  q.Get("node"),
		TaskType: q.Get("task_type"),
	}

	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := domain.ParseDispatchStatus(strings.TrimSpace(part))
			if err != nil {
				return domain.AuditFilter{}, err
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}

	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.AuditFilter{}, fmt.Errorf("since must be an RFC 3339 time")
		}
		filter.Since = since
	}
	return filter, nil
}
