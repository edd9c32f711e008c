package aiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrMalformed is returned when the AI server responds but the payload has
// an unusable shape.
var ErrMalformed = errors.New("ai server response malformed")

// UpstreamError reports a failed call to the AI server: the server was
// unreachable, returned a non-2xx status, or timed out.
type UpstreamError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("ai server %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ai server %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// upstreamErr wraps a transport failure, classifying timeouts so callers can
// distinguish 504 from 502.
func upstreamErr(op string, err error) *UpstreamError {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var ne net.Error
	if !timeout && errors.As(err, &ne) && ne.Timeout() {
		timeout = true
	}
	return &UpstreamError{Op: op, Timeout: timeout, Err: err}
}
