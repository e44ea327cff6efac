package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fbz-tec/docvault/core/db"
	"github.com/fbz-tec/docvault/core/documents"
	"github.com/fbz-tec/docvault/core/uploads"
	"github.com/fbz-tec/docvault/internal/logger"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// requestError is a client mistake detected before reaching the service.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// statusFor maps an error onto the HTTP status returned to clients.
func statusFor(err error) int {
	var reqErr *requestError
	var valErr *documents.ValidationError

	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, documents.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, uploads.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, uploads.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, uploads.ErrEmptyFile):
		return http.StatusBadRequest
	case db.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var valErr *documents.ValidationError
	if errors.As(err, &valErr) {
		body.Fields = valErr.Fields
	}

	switch {
	case status == http.StatusServiceUnavailable:
		logger.Warn("Database unavailable: %v", err)
		body.Error = "database unavailable"
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed: %v", err)
		body.Error = "internal server error"
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Writing response: %v", err)
	}
}
