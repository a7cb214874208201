// Package netutil classifies network failures seen while talking to
// external HTTP APIs.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether err looks transient enough that repeating
// the request may succeed: timeouts, dial failures, and errors the net
// package itself flags as temporary.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if inner := urlErr.Err; inner != nil && !errors.Is(inner, err) {
			return ShouldRetry(inner)
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if inner, ok := opErr.Err.(net.Error); ok && (inner.Timeout() || inner.Temporary()) {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return true
	}

	return false
}
