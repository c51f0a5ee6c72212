package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/h2server"
)

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers" yaml:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" yaml:"max_age"`
}

// DefaultMetricsPath is used when metrics are enabled without a path.
const DefaultMetricsPath = "/_h2server/metrics"

type HandlerConfig struct {
	// RootPath mounts the site below a URL prefix such as /app/.
	RootPath string
	CORS     CORSConfig
	// Metrics is optional; MetricsPath is where it is scraped.
	Metrics     *Metrics
	MetricsPath string
}

// Handler exposes a route table over HTTP.
type Handler struct {
	config HandlerConfig
	table  *h2server.RouteTable
	server *h2server.Server
}

// NewHandler creates a new Handler for the given route table and server configuration.
func NewHandler(config *HandlerConfig, table *h2server.RouteTable, server *h2server.Server) *Handler {
	return &Handler{
		config: *config,
		table:  table,
		server: server,
	}
}

// Router returns an http.Handler with the middleware stack and the dispatch
// route. Everything below RootPath is walked through the route table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		HandleError(w, r, h2server.ErrNotFound)
	})

	if h.config.Metrics != nil {
		path := h.config.MetricsPath
		if path == "" {
			path = DefaultMetricsPath
		}
		r.Method(http.MethodGet, path, h.config.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(PathValidationMiddleware)
		r.Use(MaxContentLength(h.server.MaxContentLength))

		prefix := strings.TrimSuffix(h2server.CleanPath(h.config.RootPath), "/")
		if prefix == "" {
			r.Handle("/*", http.HandlerFunc(h.handleDispatch))
			return
		}

		r.Get(prefix, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, prefix+"/", http.StatusMovedPermanently)
		})
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.HandlerFunc(h.handleDispatch)))
	})

	return r
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	req := h2server.NewRequest(r)

	err := h.table.Dispatch(r.Context(), req, ww, h.server)
	if h.config.Metrics != nil {
		h.config.Metrics.ObserveDispatch(err)
	}
	if err == nil {
		return
	}

	if ww.Status() != 0 || ww.BytesWritten() > 0 {
		h.server.Log().Warn("route failed after response started", "path", req.Path, "err", err)
		return
	}

	HandleError(ww, r, err)
}
