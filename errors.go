package h2server

import "errors"

var (
	// ErrNotFound is returned when nothing exists at a logical path
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a path or route fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrProbe is returned when a filesystem probe fails for a reason other than absence
	ErrProbe = errors.New("probe failed")
	// ErrNoRouteMatched is returned when the route walk produced no response
	ErrNoRouteMatched = errors.New("no route matched")
	// ErrUpstream is returned when a proxy target cannot be reached
	ErrUpstream = errors.New("upstream unavailable")
	// ErrHandlerFault is returned when a route handler fails unexpectedly
	ErrHandlerFault = errors.New("handler fault")
	// ErrResponseCommitted is returned by writes after another route already responded
	ErrResponseCommitted = errors.New("response already committed")
)
