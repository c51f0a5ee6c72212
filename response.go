package h2server

import (
	"context"
	"net/http"
)

// commitState records which route, if any, has started the response.
type commitState struct {
	w      http.ResponseWriter
	ctx    context.Context
	owner  int
	status int
}

func newCommitState(ctx context.Context, w http.ResponseWriter) *commitState {
	return &commitState{w: w, ctx: ctx, owner: -1}
}

func (c *commitState) committed() bool {
	return c.owner >= 0
}

// writerFor returns the response view handed to the route at index turn.
func (c *commitState) writerFor(turn int) *routeWriter {
	return &routeWriter{state: c, turn: turn}
}

// routeWriter commits the response to the first route that writes. Writes from
// any other route are dropped, as are writes after the client went away.
type routeWriter struct {
	state *commitState
	turn  int
}

func (w *routeWriter) Header() http.Header {
	return w.state.w.Header()
}

func (w *routeWriter) allowed() bool {
	if w.state.ctx.Err() != nil {
		return false
	}
	return w.state.owner < 0 || w.state.owner == w.turn
}

func (w *routeWriter) WriteHeader(code int) {
	if !w.allowed() {
		return
	}
	if w.state.owner < 0 {
		w.state.owner = w.turn
		w.state.status = code
		w.state.w.WriteHeader(code)
	}
}

func (w *routeWriter) Write(b []byte) (int, error) {
	if err := w.state.ctx.Err(); err != nil {
		return 0, err
	}
	if !w.allowed() {
		return 0, ErrResponseCommitted
	}
	if w.state.owner < 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.state.w.Write(b)
}

// Flush lets streaming handlers such as the reverse proxy push partial responses.
func (w *routeWriter) Flush() {
	if !w.allowed() || w.state.owner < 0 {
		return
	}
	if f, ok := w.state.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *routeWriter) Unwrap() http.ResponseWriter {
	return w.state.w
}
