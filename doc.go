// Package h2server provides the routing and path-resolution engine of a local
// development web server.
//
// A request is walked through an ordered RouteTable. Every route whose pattern
// matches the current logical path runs its handler, strictly one after the
// other. Handlers may rewrite the logical path, so a catch-all route can
// normalise a request before later, extension-specific routes decide how to
// render it. The walk stops at the first terminal ("break") route.
//
// # Key Components
//
//   - RouteTable: ordered routes with match, fallthrough and break semantics
//   - PathResolver: two-tier overlay resolution of index pages and missing assets
//   - Request: the per-request dispatch context threaded through the walk
//   - Server: read-only configuration shared by all handlers
//   - Probe: tri-state filesystem queries (see the filesystem package)
//
// # Overlay Resolution
//
// The overlay directory is a logical directory below the root. It only fills
// gaps: a file present in the primary tree is never shadowed.
//
//	/docs/           primary has about.html, overlay has index.html
//	                 => /static/docs/index.html
//	/logo.png        absent from primary, present in overlay
//	                 => /static/logo.png
//	/app.tmpl        present in primary
//	                 => /app.tmpl (unchanged)
//
// # Example Usage
//
//	table, err := h2server.NewRouteTable([]h2server.Route{
//	    {Pattern: "**", OverlayDir: "/static"},
//	    h2server.RenderRoute("*.tmpl", templates),
//	}, h2server.WithFallback(files.Serve))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = table.Dispatch(ctx, h2server.NewRequest(r), w, srv)
//
// See the http package for the chi based HTTP surface and cmd/h2server for
// the command line.
package h2server
