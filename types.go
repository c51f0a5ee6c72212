package h2server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// ProbeKind is the outcome of a successful filesystem probe.
type ProbeKind int

const (
	KindAbsent ProbeKind = iota
	KindFile
	KindDirectory
	KindOther
)

func (k ProbeKind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Probe answers existence and type queries for logical paths below the served root.
//
// Stat must report absence as (KindAbsent, nil). Any other failure (permission,
// I/O, sandbox escape) is returned as an error wrapping ErrProbe so callers never
// mistake a broken disk for a missing file.
type Probe interface {
	Stat(ctx context.Context, name string) (ProbeKind, error)
	ReadDir(ctx context.Context, name string) ([]string, error)
	Open(ctx context.Context, name string) (*os.File, error)
}

// FileExists reports whether name is a regular file. Probe errors count as false.
func FileExists(ctx context.Context, p Probe, name string) bool {
	kind, err := p.Stat(ctx, name)
	return err == nil && kind == KindFile
}

// DirectoryExists reports whether name is a directory. Probe errors count as false.
func DirectoryExists(ctx context.Context, p Probe, name string) bool {
	kind, err := p.Stat(ctx, name)
	return err == nil && kind == KindDirectory
}

// Matcher tests a logical path against a route pattern.
type Matcher interface {
	Match(pattern, name string) bool
}

// PatternValidator is implemented by matchers that can reject malformed patterns
// when a route table is built.
type PatternValidator interface {
	ValidatePattern(pattern string) error
}

// Renderer renders a physical file into the response.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, file string) error
}

// Forwarder relays a request to an upstream target.
type Forwarder interface {
	Forward(w http.ResponseWriter, r *http.Request, target *url.URL) error
}

// HandlerFunc is a route handler. It may rewrite req.Path for later routes.
type HandlerFunc func(ctx context.Context, req *Request, w http.ResponseWriter, srv *Server) error

// Request is the per-request dispatch context threaded through a route walk.
// It belongs to one in-flight request and must not be retained after it completes.
type Request struct {
	// Path is the logical request path. Handlers may rewrite it.
	Path string
	// Matched reports whether any route pattern has matched so far.
	Matched bool
	// Route is the pattern of the route currently running.
	Route string
	// HTTP is the wire request.
	HTTP *http.Request
}

// NewRequest creates a dispatch context for r with its cleaned URL path.
func NewRequest(r *http.Request) *Request {
	return &Request{
		Path: CleanPath(r.URL.Path),
		HTTP: r,
	}
}

// Server holds configuration shared read-only by every request.
type Server struct {
	RootDir          string
	OverlayDir       string
	DefaultPages     []string
	DirectoryList    bool
	MaxContentLength int64
	Probe            Probe
	Logger           *slog.Logger
}

// Validate checks the fields every handler relies on.
func (s *Server) Validate() error {
	if s.RootDir == "" {
		return fmt.Errorf("validate server: %w: root directory cannot be empty", ErrInvalidInput)
	}
	if s.Probe == nil {
		return fmt.Errorf("validate server: %w: probe cannot be nil", ErrInvalidInput)
	}
	if s.MaxContentLength < 0 {
		return fmt.Errorf("validate server: %w: max content length cannot be negative", ErrInvalidInput)
	}
	for _, page := range s.DefaultPages {
		if page == "" || page != path.Base(page) {
			return fmt.Errorf("validate server: %w: invalid default page %q", ErrInvalidInput, page)
		}
	}
	return nil
}

// MapPath maps a logical path to a physical path inside RootDir.
// It reports false when the server has no root or the path is not valid.
func (s *Server) MapPath(logical string) (string, bool) {
	if s.RootDir == "" || !IsValidPath(logical) {
		return "", false
	}
	rel := path.Clean("/" + logical)
	return filepath.Join(s.RootDir, filepath.FromSlash(rel)), true
}

// Log returns the server logger, falling back to slog.Default.
func (s *Server) Log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
