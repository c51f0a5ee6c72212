package http

import "errors"

// ErrPayloadTooLarge is returned when a request body exceeds the configured limit.
var ErrPayloadTooLarge = errors.New("payload too large")
