package omdb

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the upstream answered with a body that does
// not match the expected schema.
var ErrMalformedResponse = errors.New("malformed response")

// TransportError reports a failed upstream call: network failure, non-2xx
// status or an unparseable body. Upstream "not found" is never a TransportError.
type TransportError struct {
	Op         string // "search", "lookup", "lookup by title"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("omdb %s: http status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("omdb %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
