package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/h2server"
	h2http "github.com/sagarc03/h2server/http"
)

func TestForwarder_Forward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, r.Method+" "+r.URL.RequestURI()+" "+r.Header.Get("X-Custom")+" "+string(body)+" "+r.Header.Get("X-Forwarded-For"))
	}))
	t.Cleanup(upstream.Close)

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/items?page=2", strings.NewReader("payload"))
	req.Header.Set("X-Custom", "kept")
	rec := httptest.NewRecorder()

	err = h2http.NewForwarder(nil).Forward(rec, req, target)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Upstream"))
	assert.Equal(t, "POST /api/items?page=2 kept payload 192.0.2.1", rec.Body.String())
}

func TestForwarder_TargetPathPrefix(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	t.Cleanup(upstream.Close)

	target, err := url.Parse(upstream.URL + "/backend")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, h2http.NewForwarder(nil).Forward(rec, httptest.NewRequest(http.MethodGet, "/users", nil), target))
	assert.Equal(t, "/backend/users", rec.Body.String())
}

func TestForwarder_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	upstream.Close()

	rec := httptest.NewRecorder()
	err = h2http.NewForwarder(nil).Forward(rec, httptest.NewRequest(http.MethodGet, "/", nil), target)

	require.Error(t, err)
	assert.ErrorIs(t, err, h2server.ErrUpstream)
	assert.Equal(t, 0, rec.Body.Len())
}
