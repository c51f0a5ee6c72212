package h2server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/h2server"
)

var defaultPages = []string{"index.html", "index.htm"}

func TestPathResolver_Resolve(t *testing.T) {
	probe := newMemProbe(
		"/index.html",
		"/app.js",
		"/static/app.js",
		"/static/logo.png",
		"/static/assets/dir/keep.txt",
		"/docs/about.html",
		"/static/docs/index.html",
		"/static/docs/about.html",
		"/blog/index.html",
		"/static/blog/index.htm",
		"/empty/other.txt",
		"/static/empty/notes.txt",
		"/nooverlay/page.txt",
	)

	tests := []struct {
		name    string
		logical string
		want    string
	}{
		{name: "primary file is never shadowed", logical: "/app.js", want: "/app.js"},
		{name: "missing asset served from overlay", logical: "/logo.png", want: "/static/logo.png"},
		{name: "overlay directory is not an asset", logical: "/assets/dir", want: "/assets/dir"},
		{name: "missing everywhere stays unchanged", logical: "/missing.css", want: "/missing.css"},
		{name: "overlay default page fills directory", logical: "/docs/", want: "/static/docs/index.html"},
		{name: "primary default page wins", logical: "/", want: "/"},
		{name: "later default page from overlay", logical: "/blog/", want: "/static/blog/index.htm"},
		{name: "overlay directory without default pages", logical: "/empty/", want: "/empty/"},
		{name: "no overlay directory", logical: "/nooverlay/", want: "/nooverlay/"},
	}

	resolver := h2server.NewPathResolver(probe, "/static", defaultPages)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(context.Background(), tt.logical)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathResolver_IndexFallbackOrder(t *testing.T) {
	probe := newMemProbe(
		"/docs/about.html",
		"/static/docs/index.html",
	)

	resolver := h2server.NewPathResolver(probe, "/static", []string{"index.html", "about.html"})

	got, err := resolver.Resolve(context.Background(), "/docs/")
	require.NoError(t, err)
	assert.Equal(t, "/static/docs/index.html", got)
}

func TestPathResolver_NoOverlay(t *testing.T) {
	probe := new(SpyProbe)
	resolver := h2server.NewPathResolver(probe, "", defaultPages)

	got, err := resolver.Resolve(context.Background(), "/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "/logo.png", got)

	probe.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
}

func TestPathResolver_ProbeErrors(t *testing.T) {
	ctx := context.Background()
	denied := errors.New("permission denied")

	t.Run("primary stat failure is not absence", func(t *testing.T) {
		probe := new(SpyProbe)
		probe.On("Stat", ctx, "/secret.txt").Return(h2server.KindAbsent, denied)

		got, err := h2server.NewPathResolver(probe, "/static", defaultPages).Resolve(ctx, "/secret.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, h2server.ErrProbe)
		assert.ErrorIs(t, err, denied)
		assert.Equal(t, "/secret.txt", got)

		probe.AssertNotCalled(t, "Stat", ctx, "/static/secret.txt")
	})

	t.Run("overlay stat failure leaves path unchanged", func(t *testing.T) {
		probe := new(SpyProbe)
		probe.On("Stat", ctx, "/logo.png").Return(h2server.KindAbsent, nil)
		probe.On("Stat", ctx, "/static/logo.png").Return(h2server.KindAbsent, denied)

		got, err := h2server.NewPathResolver(probe, "/static", defaultPages).Resolve(ctx, "/logo.png")
		assert.ErrorIs(t, err, h2server.ErrProbe)
		assert.Equal(t, "/logo.png", got)
		probe.AssertExpectations(t)
	})

	t.Run("primary listing failure", func(t *testing.T) {
		probe := new(SpyProbe)
		probe.On("Stat", ctx, "/docs").Return(h2server.KindDirectory, nil)
		probe.On("ReadDir", ctx, "/docs").Return([]string(nil), denied)

		got, err := h2server.NewPathResolver(probe, "/static", defaultPages).Resolve(ctx, "/docs/")
		assert.ErrorIs(t, err, h2server.ErrProbe)
		assert.Equal(t, "/docs/", got)
	})
}

func TestPathResolver_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	probe := new(SpyProbe)
	got, err := h2server.NewPathResolver(probe, "/static", defaultPages).Resolve(ctx, "/logo.png")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "/logo.png", got)
	probe.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
}

func TestOverlayHandler(t *testing.T) {
	srv := &h2server.Server{
		RootDir:      "/srv",
		DefaultPages: defaultPages,
		Probe:        newMemProbe("/static/logo.png"),
	}
	req := h2server.NewRequest(httptest.NewRequest(http.MethodGet, "/logo.png", nil))
	rec := httptest.NewRecorder()

	err := h2server.OverlayHandler("/static")(context.Background(), req, rec, srv)
	require.NoError(t, err)
	assert.Equal(t, "/static/logo.png", req.Path)
	assert.Equal(t, "/logo.png", req.HTTP.URL.Path)
	assert.Equal(t, 0, rec.Body.Len())
}
