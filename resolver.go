package h2server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// PathResolver rewrites logical paths into an overlay directory when the
// primary tree lacks an asset or a default page.
type PathResolver struct {
	probe        Probe
	overlay      string
	defaultPages []string
}

// NewPathResolver creates a resolver for the given overlay. An empty overlay
// disables resolution.
func NewPathResolver(probe Probe, overlayDir string, defaultPages []string) *PathResolver {
	overlay := ""
	if overlayDir != "" {
		overlay = JoinPath(overlayDir)
	}
	return &PathResolver{
		probe:        probe,
		overlay:      overlay,
		defaultPages: defaultPages,
	}
}

// Resolve returns the path that should serve logical.
//
// The returned path is always usable: on any failure it is logical unchanged.
// A non-nil error wraps ErrProbe and means resolution was abandoned; callers
// log it and let the file-serving fallback decide the outcome.
func (p *PathResolver) Resolve(ctx context.Context, logical string) (string, error) {
	if p.overlay == "" || p.probe == nil {
		return logical, nil
	}
	if err := ctx.Err(); err != nil {
		return logical, fmt.Errorf("resolve %s: %w: %w", logical, ErrProbe, err)
	}

	primary := JoinPath(logical)
	overlay := JoinPath(p.overlay, logical)

	kind, err := p.probe.Stat(ctx, primary)
	if err != nil {
		return logical, probeError(logical, "stat primary", err)
	}

	switch kind {
	case KindDirectory:
		return p.resolveIndex(ctx, logical, primary, overlay)
	case KindAbsent:
		return p.resolveAsset(ctx, logical, overlay)
	default:
		return logical, nil
	}
}

// resolveIndex picks the first default page missing from the primary directory
// but present as a file in the overlay directory.
func (p *PathResolver) resolveIndex(ctx context.Context, logical, primary, overlay string) (string, error) {
	entries, err := p.probe.ReadDir(ctx, primary)
	if err != nil {
		return logical, probeError(logical, "list primary", err)
	}

	overlayKind, err := p.probe.Stat(ctx, overlay)
	if err != nil {
		return logical, probeError(logical, "stat overlay", err)
	}
	if overlayKind != KindDirectory {
		return logical, nil
	}

	overlayEntries, err := p.probe.ReadDir(ctx, overlay)
	if err != nil {
		return logical, probeError(logical, "list overlay", err)
	}

	for _, page := range p.defaultPages {
		if slices.Contains(entries, page) || !slices.Contains(overlayEntries, page) {
			continue
		}
		candidate := JoinPath(overlay, page)
		if FileExists(ctx, p.probe, candidate) {
			return candidate, nil
		}
	}

	return logical, nil
}

// resolveAsset rewrites a missing primary path to its overlay twin when that is a file.
func (p *PathResolver) resolveAsset(ctx context.Context, logical, overlay string) (string, error) {
	kind, err := p.probe.Stat(ctx, overlay)
	if err != nil {
		return logical, probeError(logical, "stat overlay", err)
	}
	if kind != KindFile {
		return logical, nil
	}
	return overlay, nil
}

// OverlayHandler returns a route handler that resolves req.Path against
// overlayDir using the server's probe and default pages.
func OverlayHandler(overlayDir string) HandlerFunc {
	return func(ctx context.Context, req *Request, _ http.ResponseWriter, srv *Server) error {
		resolver := NewPathResolver(srv.Probe, overlayDir, srv.DefaultPages)
		resolved, err := resolver.Resolve(ctx, req.Path)
		if resolved != req.Path {
			srv.Log().Debug("overlay rewrite", "from", req.Path, "to", resolved)
			req.Path = resolved
		}
		return err
	}
}

func probeError(logical, op string, err error) error {
	if errors.Is(err, ErrProbe) {
		return fmt.Errorf("resolve %s: %s: %w", logical, op, err)
	}
	return fmt.Errorf("resolve %s: %s: %w: %w", logical, op, ErrProbe, err)
}
