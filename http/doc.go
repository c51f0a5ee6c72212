// Package http provides the HTTP surface of h2server.
//
// It wires a h2server.RouteTable into a chi router and supplies the
// collaborators the route table hands off to.
//
// # Features
//
//   - Request ids (X-Request-Id, UUID) and debug request logging
//   - Path validation and a maximum request body length
//   - Optional CORS and Prometheus metrics
//   - File-serving fallback with default pages and directory listings
//   - Reverse proxy forwarding with 502 on upstream failure
//   - HTML error pages, JSON errors for clients that accept application/json
//   - Mounting the site below a URL prefix
//
// # Error Mapping
//
//	h2server.ErrNotFound, ErrNoRouteMatched  404
//	h2server.ErrInvalidInput                 400
//	fs.ErrPermission                         403
//	ErrPayloadTooLarge, http.MaxBytesError   413
//	h2server.ErrUpstream                     502
//	anything else (ErrHandlerFault)          500
//
// # Usage
//
//	files := http.NewFileServer()
//	table, err := h2server.NewRouteTable(routes,
//	    h2server.WithFallback(files.Serve),
//	    h2server.WithForwarder(http.NewForwarder(nil)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handler := http.NewHandler(&http.HandlerConfig{}, table, srv)
//	server := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
package http
