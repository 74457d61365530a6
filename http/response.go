package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/rcindex"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Details: details,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// errorCodes is checked in order; the first match wins.
var errorCodes = []struct {
	target error
	status int
	code   string
}{
	{rcindex.ErrInvalidInput, http.StatusBadRequest, "invalid_path"},
	{rcindex.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{rcindex.ErrTimeout, http.StatusInternalServerError, "timeout"},
	{rcindex.ErrFetch, http.StatusInternalServerError, "fetch_failed"},
	{rcindex.ErrBinaryNotFound, http.StatusInternalServerError, "binary_not_found"},
	{rcindex.ErrSpawn, http.StatusInternalServerError, "execution_failed"},
	{rcindex.ErrExecution, http.StatusInternalServerError, "execution_failed"},
	{rcindex.ErrParse, http.StatusInternalServerError, "parse_failed"},
	{rcindex.ErrConfig, http.StatusInternalServerError, "config_failed"},
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			WriteError(w, ec.status, ec.code, err.Error())
			return
		}
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

// WriteHTML writes an HTML page
func WriteHTML(w http.ResponseWriter, code int, page string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, err := io.WriteString(w, page)
	return err
}
