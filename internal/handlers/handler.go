package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/services/dispatch"
	"gitlab.com/fog-offload.net/internal/core/services/registry"
	"gitlab.com/fog-offload.net/internal/handlers/response"
	"gitlab.com/fog-offload.net/internal/metrics"
	"gitlab.com/fog-offload.net/internal/validation"
)

const maxBodyBytes = 1 << 20

// ReadBody reads a request body up to a fixed limit
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// StatusHandler receives fog node status reports
type StatusHandler struct {
	registry  registry.IStatusRegistry
	dispatch  dispatch.IDispatchService
	validator *validation.Validator
	metrics   *metrics.DispatcherMetrics
	logger    primary.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(
	statusRegistry registry.IStatusRegistry,
	dispatchService dispatch.IDispatchService,
	validator *validation.Validator,
	dispatcherMetrics *metrics.DispatcherMetrics,
	logger primary.Logger,
) *StatusHandler {
	return &StatusHandler{
		registry:  statusRegistry,
		dispatch:  dispatchService,
		validator: validator,
		metrics:   dispatcherMetrics,
		logger:    logger,
	}
}

// RegisterRoutes registers the API routes for StatusHandler
func (h *StatusHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/status_update", h.UpdateStatus).Methods("POST")
	router.HandleFunc("/workers", h.GetWorkers).Methods("GET")
}

// UpdateStatus handles status pushes
func (h *StatusHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	body, err := ReadBody(w, r)
	if err != nil {
		h.metrics.StatusUpdates.WithLabelValues("rejected").Inc()
		response.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	record, err := h.validator.DecodeStatus(body)
	if err != nil {
		h.metrics.StatusUpdates.WithLabelValues("rejected").Inc()
		h.logger.Warn("Rejected status update", "error", err)
		response.WriteServiceError(w, err)
		return
	}

	if err := h.registry.Update(r.Context(), record, time.Now()); err != nil {
		h.metrics.StatusUpdates.WithLabelValues("rejected").Inc()
		h.logger.Warn("Failed to update status", "nodeId", record.NodeID, "error", err)
		response.WriteServiceError(w, err)
		return
	}

	h.metrics.StatusUpdates.WithLabelValues("ok").Inc()
	h.logger.Info("Updated status from fog node", "nodeId", record.NodeID)
	response.WriteSuccess(w, map[string]string{"status": "updated"})
}

// GetWorkers lists every fog node the manager has heard from
func (h *StatusHandler) GetWorkers(w http.ResponseWriter, r *http.Request) {
	views, err := h.dispatch.Overview(r.Context())
	if err != nil {
		h.logger.Error("Failed to get workers", "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to get workers")
		return
	}
	response.WriteSuccess(w, map[string]interface{}{
		"workers":                     views,
		"staleness_threshold_seconds": h.registry.Threshold().Seconds(),
	})
}
