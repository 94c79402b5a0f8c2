package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.com/fog-offload.net/internal/static/errs"
)

type ErrorMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError answers with {"status":"error","message":...}
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorMessage{Status: "error", Message: message})
}

// WriteServiceError maps a service error onto its HTTP status
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteError(w, StatusFor(err), err.Error())
}

func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor classifies the offload error taxonomy
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMalformedRequest), errors.Is(err, errs.ErrUnknownNode):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNoCapacity):
		return http.StatusServiceUnavailable
	case errors.Is(err, errs.ErrForwardFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
