package h2server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"runtime/debug"

	"github.com/sagarc03/h2server/matcher"
)

// Route is an immutable entry of a RouteTable.
type Route struct {
	// Pattern is the matcher expression. An empty pattern matches every path.
	Pattern string
	// ProxyTarget forwards requests the root cannot resolve. Implies Break.
	ProxyTarget *url.URL
	// OverlayDir enables overlay resolution before Handler runs.
	OverlayDir string
	// RewriteTarget redirects every matching request. Implies Break.
	RewriteTarget string
	// Break stops the walk after this route.
	Break bool
	// Handler runs when the pattern matches. It may be nil for routes that only
	// resolve, proxy, redirect or stop the walk.
	Handler HandlerFunc
}

type compiledRoute struct {
	Route
	handler  HandlerFunc
	terminal bool
}

// RouteTable walks an ordered list of routes for each request.
type RouteTable struct {
	routes    []compiledRoute
	matcher   Matcher
	fallback  HandlerFunc
	forwarder Forwarder
}

// RouteTableOption configures a RouteTable.
type RouteTableOption func(*RouteTable)

// WithMatcher replaces the default glob matcher.
func WithMatcher(m Matcher) RouteTableOption {
	return func(t *RouteTable) {
		t.matcher = m
	}
}

// WithFallback sets the handler that runs when the walk ends without a response,
// typically the file server.
func WithFallback(h HandlerFunc) RouteTableOption {
	return func(t *RouteTable) {
		t.fallback = h
	}
}

// WithForwarder sets the collaborator used by routes with a ProxyTarget.
func WithForwarder(f Forwarder) RouteTableOption {
	return func(t *RouteTable) {
		t.forwarder = f
	}
}

// NewRouteTable validates routes and derives their terminal flags once.
func NewRouteTable(routes []Route, opts ...RouteTableOption) (*RouteTable, error) {
	t := &RouteTable{matcher: matcher.Glob{}}
	for _, opt := range opts {
		opt(t)
	}

	validator, _ := t.matcher.(PatternValidator)

	t.routes = make([]compiledRoute, 0, len(routes))
	for i, r := range routes {
		if r.Pattern != "" && validator != nil {
			if err := validator.ValidatePattern(r.Pattern); err != nil {
				return nil, fmt.Errorf("new route table: route %d: %w: %w", i, ErrInvalidInput, err)
			}
		}

		if r.Handler == nil && r.OverlayDir == "" && r.ProxyTarget == nil && r.RewriteTarget == "" && !r.Break {
			return nil, fmt.Errorf("new route table: route %d (%s): %w: route does nothing", i, r.Pattern, ErrInvalidInput)
		}

		if r.ProxyTarget != nil && t.forwarder == nil {
			return nil, fmt.Errorf("new route table: route %d (%s): %w: proxy target without forwarder", i, r.Pattern, ErrInvalidInput)
		}

		t.routes = append(t.routes, compiledRoute{
			Route:    r,
			handler:  composeHandler(r),
			terminal: r.Break || r.ProxyTarget != nil || r.RewriteTarget != "",
		})
	}

	return t, nil
}

func composeHandler(r Route) HandlerFunc {
	if r.OverlayDir == "" {
		return r.Handler
	}
	overlay := OverlayHandler(r.OverlayDir)
	if r.Handler == nil {
		return overlay
	}
	next := r.Handler
	return func(ctx context.Context, req *Request, w http.ResponseWriter, srv *Server) error {
		if err := overlay(ctx, req, w, srv); err != nil && !errors.Is(err, ErrProbe) {
			return err
		} else if err != nil {
			srv.Log().Warn("overlay resolution abandoned", "path", req.Path, "err", err)
		}
		return next(ctx, req, w, srv)
	}
}

// Len returns the number of routes.
func (t *RouteTable) Len() int {
	return len(t.routes)
}

// Terminal reports whether the route at index i ends the walk.
func (t *RouteTable) Terminal(i int) bool {
	return t.routes[i].terminal
}

// Dispatch walks the table for one request.
//
// Routes are evaluated in declaration order against the current req.Path and
// matching handlers run sequentially. The walk stops after the first terminal
// route. The first route to write owns the response; later writes are dropped.
// When nothing responded the fallback runs, and if it does not respond either
// Dispatch returns ErrNoRouteMatched.
//
// Handler failures are returned as ErrHandlerFault (panics included), except
// for errors wrapping ErrNotFound, ErrUpstream, ErrInvalidInput or
// fs.ErrPermission which pass through unchanged. Errors wrapping ErrProbe are
// logged and the walk continues.
func (t *RouteTable) Dispatch(ctx context.Context, req *Request, w http.ResponseWriter, srv *Server) error {
	state := newCommitState(ctx, w)
	log := srv.Log()

	for i := range t.routes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dispatch %s: %w", req.Path, err)
		}

		route := &t.routes[i]
		if route.Pattern != "" && !t.matcher.Match(route.Pattern, req.Path) {
			continue
		}

		req.Matched = true
		req.Route = route.Pattern
		rw := state.writerFor(i)

		if route.handler != nil {
			if err := t.run(ctx, route.handler, req, rw, srv); err != nil {
				if !errors.Is(err, ErrProbe) {
					return t.handlerError(route.Pattern, err)
				}
				log.Warn("probe failed", "route", route.Pattern, "path", req.Path, "err", err)
			}
		}

		if !state.committed() {
			if err := t.terminate(ctx, route, req, rw, srv); err != nil {
				return err
			}
		}

		if route.terminal {
			log.Debug("route walk stopped", "route", route.Pattern, "path", req.Path)
			break
		}
	}

	if !state.committed() && t.fallback != nil {
		rw := state.writerFor(len(t.routes))
		if err := t.run(ctx, t.fallback, req, rw, srv); err != nil {
			return t.handlerError("fallback", err)
		}
	}

	if !state.committed() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dispatch %s: %w", req.Path, err)
		}
		return fmt.Errorf("dispatch %s: %w", req.Path, ErrNoRouteMatched)
	}

	return nil
}

// terminate applies the built-in redirect and proxy behaviour of a route.
func (t *RouteTable) terminate(ctx context.Context, route *compiledRoute, req *Request, w http.ResponseWriter, srv *Server) error {
	if route.RewriteTarget != "" {
		http.Redirect(w, req.HTTP, route.RewriteTarget, http.StatusFound)
		return nil
	}

	if route.ProxyTarget == nil {
		return nil
	}

	kind, err := srv.Probe.Stat(ctx, req.Path)
	if err != nil {
		srv.Log().Warn("probe failed, not proxying", "path", req.Path, "err", err)
		return nil
	}
	if kind == KindFile || kind == KindDirectory {
		return nil
	}

	srv.Log().Debug("proxying request", "path", req.Path, "target", route.ProxyTarget.String())
	if err := t.forwarder.Forward(w, req.HTTP, route.ProxyTarget); err != nil {
		return fmt.Errorf("proxy %s: %w", req.Path, err)
	}
	return nil
}

// run invokes h and converts a panic into ErrHandlerFault.
func (t *RouteTable) run(ctx context.Context, h HandlerFunc, req *Request, w http.ResponseWriter, srv *Server) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			srv.Log().Error("route handler panicked", "route", req.Route, "path", req.Path, "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: panic: %v", ErrHandlerFault, rec)
		}
	}()
	return h(ctx, req, w, srv)
}

func (t *RouteTable) handlerError(route string, err error) error {
	switch {
	case errors.Is(err, ErrHandlerFault),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUpstream),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("route %s: %w", route, err)
	default:
		return fmt.Errorf("route %s: %w: %w", route, ErrHandlerFault, err)
	}
}

// RenderRoute builds a terminal route that hands the file behind req.Path to r.
func RenderRoute(pattern string, r Renderer) Route {
	return Route{
		Pattern: pattern,
		Break:   true,
		Handler: func(ctx context.Context, req *Request, w http.ResponseWriter, srv *Server) error {
			file, ok := srv.MapPath(req.Path)
			if !ok {
				return fmt.Errorf("render %s: %w", req.Path, ErrInvalidInput)
			}

			kind, err := srv.Probe.Stat(ctx, req.Path)
			if err != nil {
				return fmt.Errorf("render %s: %w", req.Path, err)
			}
			if kind != KindFile {
				return fmt.Errorf("render %s: %w", req.Path, ErrNotFound)
			}

			return r.Render(w, req.HTTP, file)
		},
	}
}
