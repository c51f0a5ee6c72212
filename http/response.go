package http

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sagarc03/h2server"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes an error response: JSON for clients that accept it, an
// HTML page otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	if !wantsJSON(r) {
		writeErrorPage(w, code, message)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, h2server.ErrNotFound), errors.Is(err, h2server.ErrNoRouteMatched):
		slog.Debug("not found", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusNotFound, "not_found", "The requested URL was not found on this server")
	case errors.Is(err, h2server.ErrInvalidInput):
		slog.Debug("bad request", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusBadRequest, "invalid_path", "Invalid path")
	case errors.Is(err, ErrPayloadTooLarge), errors.As(err, &maxBytes):
		WriteError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
	case errors.Is(err, fs.ErrPermission):
		slog.Warn("permission denied", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusForbidden, "forbidden", "Permission denied")
	case errors.Is(err, h2server.ErrUpstream):
		slog.Error("proxy error", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusBadGateway, "bad_gateway", "Upstream server unavailable")
	case errors.Is(err, context.Canceled):
		slog.Debug("request canceled", "path", r.URL.Path)
	default:
		slog.Error("request error", "path", r.URL.Path, "error", err)
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func wantsJSON(r *http.Request) bool {
	if r == nil {
		return false
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
