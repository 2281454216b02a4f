package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/swarmgate/swarmgate/internal/domain"
	"github.com/swarmgate/swarmgate/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

type errorResponse struct {
	Error    string                     `json:"error"`
	Decision *service.AdmissionDecision `json:"decision,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeAdmissionError maps an admission rejection to a status code and echoes
// the full decision so callers can distinguish retryable rejections.
func writeAdmissionError(w http.ResponseWriter, admErr *service.AdmissionError) {
	status := http.StatusBadRequest
	switch admErr.Decision.Reason {
	case service.ReasonOverCapacity:
		status = http.StatusUnprocessableEntity
	case service.ReasonBusy:
		status = http.StatusConflict
	case service.ReasonBudgetExceeded:
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, errorResponse{Error: admErr.Error(), Decision: &admErr.Decision})
}

func writeDomainError(w http.ResponseWriter, err error, fallbackMsg string) {
	var admErr *service.AdmissionError
	switch {
	case errors.As(err, &admErr):
		writeAdmissionError(w, admErr)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, fallbackMsg)
	case errors.Is(err, domain.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
		writeError(w, http.StatusBadRequest, msg)
	case errors.Is(err, domain.ErrOrphanCompletion):
		writeError(w, http.StatusNotFound, "no open coordination with that id; event recorded as orphan")
	case errors.Is(err, domain.ErrPersistence):
		slog.Error("state persistence failed", "error", err)
		writeError(w, http.StatusInternalServerError, "state was updated but could not be persisted")
	default:
		slog.Error("unhandled domain error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeInternalError logs the actual error server-side and returns a generic message to the client.
func writeInternalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
