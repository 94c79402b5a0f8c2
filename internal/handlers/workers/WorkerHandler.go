package workers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/fog-offload.net/internal/core/ports/primary"
	"gitlab.com/fog-offload.net/internal/core/services/execution"
	"gitlab.com/fog-offload.net/internal/handlers"
	"gitlab.com/fog-offload.net/internal/handlers/response"
	"gitlab.com/fog-offload.net/internal/static/errs"
	"gitlab.com/fog-offload.net/internal/validation"
)

// ApiHandler serves a fog node's task endpoint
type ApiHandler struct {
	NodeID           string
	ExecutionService execution.IExecutionService
	Validator        *validation.Validator
	logger           primary.Logger
}

func NewHandler(nodeID string, executionService execution.IExecutionService, validator *validation.Validator, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		NodeID:           nodeID,
		ExecutionService: executionService,
		Validator:        validator,
		logger:           logger,
	}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/offload_task", api.OffloadTask).Methods("POST")
	r.HandleFunc("/queue", api.GetQueue).Methods("GET")
}

func (api *ApiHandler) OffloadTask(w http.ResponseWriter, r *http.Request) {
	body, err := handlers.ReadBody(w, r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	task, err := api.Validator.DecodeTask(validation.KindWorkerTask, body)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	metrics, err := api.ExecutionService.Execute(r.Context(), task)
	if err != nil {
		if errors.Is(err, errs.ErrMalformedRequest) {
			response.WriteServiceError(w, err)
			return
		}
		api.logger.Error("Failed to process task", "taskType", task.TaskType, "error", err)
		response.WriteError(w, http.StatusInternalServerError, "Failed to process task")
		return
	}

	response.WriteSuccess(w, metrics)
}

func (api *ApiHandler) GetQueue(w http.ResponseWriter, _ *http.Request) {
	response.WriteSuccess(w, map[string]interface{}{
		"node_id":      api.NodeID,
		"queue_length": api.ExecutionService.InFlight(),
	})
}
