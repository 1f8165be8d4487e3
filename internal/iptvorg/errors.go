// SPDX-License-Identifier: MIT

package iptvorg

import (
	"errors"
	"fmt"
)

// ErrUpstream is wrapped by every error the client returns, so callers can
// treat all upstream failures uniformly when deciding on cache fallback.
var ErrUpstream = errors.New("iptv-org upstream error")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// DecodeError reports a response body that is not valid JSON of the
// expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return ErrUpstream }
