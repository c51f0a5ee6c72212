package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/sagarc03/h2server"
)

// Forwarder relays requests to an upstream with httputil.ReverseProxy.
type Forwarder struct {
	transport http.RoundTripper
}

// NewForwarder creates a forwarder. A nil transport uses http.DefaultTransport.
func NewForwarder(transport http.RoundTripper) *Forwarder {
	return &Forwarder{transport: transport}
}

// Forward sends the original request (method, headers, body, URL) to target and
// relays the upstream response verbatim. Transport failures wrap
// h2server.ErrUpstream and leave the response untouched when nothing was
// written yet, so the caller can answer with 502.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, target *url.URL) error {
	var upstreamErr error

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: f.transport,
		ErrorHandler: func(_ http.ResponseWriter, _ *http.Request, err error) {
			upstreamErr = err
		},
	}

	proxy.ServeHTTP(w, r)

	if upstreamErr == nil {
		return nil
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(upstreamErr, &maxBytes):
		return fmt.Errorf("forward to %s: %w", target.Host, upstreamErr)
	case errors.Is(upstreamErr, context.Canceled):
		return fmt.Errorf("forward to %s: %w", target.Host, upstreamErr)
	default:
		return fmt.Errorf("forward to %s: %w: %w", target.Host, h2server.ErrUpstream, upstreamErr)
	}
}
