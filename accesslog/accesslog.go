// Package accesslog prints one human-readable line per request, in the
// style of classic development servers:
//
//	[Tue, 14 Oct 2026 09:12:01 GMT] 127.0.0.1 GET /index.html Mozilla/5.0 ...
//
// Method and URL are coloured cyan when the output is a terminal.
package accesslog

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sagarc03/h2server"
)

const localFormat = "2006-01-02 15:04:05 -0700"

// Options configures the access log.
type Options struct {
	// UTC formats timestamps as HTTP dates in UTC.
	UTC bool
	// IncludeIP adds X-Forwarded-For or the remote address.
	IncludeIP bool
	// Out defaults to color.Output.
	Out io.Writer
}

// Logger writes access log lines.
type Logger struct {
	utc       bool
	includeIP bool
	out       io.Writer
	cyan      func(a ...any) string
	now       func() time.Time
}

// New creates an access logger.
func New(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = color.Output
	}
	return &Logger{
		utc:       opts.UTC,
		includeIP: opts.IncludeIP,
		out:       out,
		cyan:      color.New(color.FgCyan).SprintFunc(),
		now:       time.Now,
	}
}

// Log writes the line for r.
func (l *Logger) Log(r *http.Request) {
	now := l.now()
	date := now.Format(localFormat)
	if l.utc {
		date = now.UTC().Format(http.TimeFormat)
	}

	ip := ""
	if l.includeIP {
		ip = clientIP(r)
	}

	_, err := fmt.Fprintf(l.out, "[%s] %s %s %s %s\n",
		date, ip, l.cyan(r.Method), l.cyan(r.URL.RequestURI()), r.UserAgent())
	if err != nil {
		fmt.Fprintln(os.Stderr, "access log:", err)
	}
}

// Handler returns a route handler that logs the request and lets the walk continue.
func (l *Logger) Handler() h2server.HandlerFunc {
	return func(_ context.Context, req *h2server.Request, _ http.ResponseWriter, _ *h2server.Server) error {
		l.Log(req.HTTP)
		return nil
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
