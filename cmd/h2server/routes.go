package main

import (
	"fmt"
	"net/url"

	"github.com/sagarc03/h2server"
	"github.com/sagarc03/h2server/config"
)

// routeDeps are the collaborators the built-in routes hand requests to.
type routeDeps struct {
	accessLog h2server.HandlerFunc
	templates h2server.Renderer
	scripts   h2server.Renderer
}

// buildRoutes lays out the route table in priority order:
//
//  1. request log on every path, when enabled
//  2. routes declared in the config file
//  3. catch-all overlay, proxy and redirect from --static, --proxy and --redirect
//  4. template and script rendering by extension
//
// The file server runs afterwards as the table fallback.
func buildRoutes(cfg *config.Config, deps routeDeps) ([]h2server.Route, error) {
	var routes []h2server.Route

	if cfg.Log.Requests && deps.accessLog != nil {
		routes = append(routes, h2server.Route{Pattern: "**", Handler: deps.accessLog})
	}

	for i, rc := range cfg.Routes {
		target, err := parseProxy(rc.Proxy)
		if err != nil {
			return nil, fmt.Errorf("route %d (%s): %w", i, rc.Match, err)
		}
		routes = append(routes, h2server.Route{
			Pattern:       rc.Match,
			ProxyTarget:   target,
			OverlayDir:    rc.Static,
			RewriteTarget: rc.Redirect,
			Break:         rc.Break,
		})
	}

	if cfg.Files.Static != "" || cfg.Proxy != "" || cfg.Redirect != "" {
		target, err := parseProxy(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		routes = append(routes, h2server.Route{
			Pattern:       "**",
			ProxyTarget:   target,
			OverlayDir:    cfg.Files.Static,
			RewriteTarget: cfg.Redirect,
		})
	}

	if cfg.Render.TemplateExt != "" && deps.templates != nil {
		routes = append(routes, h2server.RenderRoute("*"+cfg.Render.TemplateExt, deps.templates))
	}
	if cfg.Render.ScriptExt != "" && deps.scripts != nil {
		routes = append(routes, h2server.RenderRoute("*"+cfg.Render.ScriptExt, deps.scripts))
	}

	return routes, nil
}

func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w: %w", raw, h2server.ErrInvalidInput, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse proxy %q: %w: scheme and host are required", raw, h2server.ErrInvalidInput)
	}
	return u, nil
}
