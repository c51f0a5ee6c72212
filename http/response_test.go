package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/h2server"
	h2http "github.com/sagarc03/h2server/http"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		errCode string
	}{
		{name: "not found", err: fmt.Errorf("serve: %w", h2server.ErrNotFound), code: http.StatusNotFound, errCode: "not_found"},
		{name: "no route matched", err: h2server.ErrNoRouteMatched, code: http.StatusNotFound, errCode: "not_found"},
		{name: "invalid input", err: h2server.ErrInvalidInput, code: http.StatusBadRequest, errCode: "invalid_path"},
		{name: "payload too large", err: h2http.ErrPayloadTooLarge, code: http.StatusRequestEntityTooLarge, errCode: "payload_too_large"},
		{name: "max bytes", err: &http.MaxBytesError{Limit: 10}, code: http.StatusRequestEntityTooLarge, errCode: "payload_too_large"},
		{name: "permission", err: fmt.Errorf("open: %w", fs.ErrPermission), code: http.StatusForbidden, errCode: "forbidden"},
		{name: "upstream", err: fmt.Errorf("proxy: %w", h2server.ErrUpstream), code: http.StatusBadGateway, errCode: "bad_gateway"},
		{name: "handler fault", err: h2server.ErrHandlerFault, code: http.StatusInternalServerError, errCode: "internal_error"},
		{name: "unknown", err: errors.New("boom"), code: http.StatusInternalServerError, errCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()

			h2http.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp h2http.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.errCode, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestHandleError_HTMLPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("Accept", "text/html,application/json;q=0.9")
	rec := httptest.NewRecorder()

	h2http.HandleError(rec, req, h2server.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<h1>404 Not Found</h1>")
}

func TestHandleError_Canceled(t *testing.T) {
	rec := httptest.NewRecorder()

	h2http.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("dispatch: %w", context.Canceled))

	assert.Equal(t, 0, rec.Body.Len())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := h2http.WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}
