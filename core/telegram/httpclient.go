package telegram

import (
	"net"
	"net/http"
	"time"

	"relaybot/core/telegram/netutil"
)

const (
	httpDialTimeout     = 5 * time.Second
	httpTLSHandshake    = 5 * time.Second
	httpIdleConnTimeout = 30 * time.Second
	httpResponseHeader  = 5 * time.Second
	httpClientTimeout   = 30 * time.Second
	httpKeepAlive       = 30 * time.Second
	httpRetryAttempts   = 3
	httpRetryBackoff    = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// The same client shape serves the external lookup and translation APIs.
func BuildHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: httpDialTimeout, KeepAlive: httpKeepAlive}
	return &http.Client{
		Timeout: httpClientTimeout,
		Transport: &retryTransport{
			maxRetries: httpRetryAttempts,
			backoff:    httpRetryBackoff,
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       httpIdleConnTimeout,
				TLSHandshakeTimeout:   httpTLSHandshake,
				ResponseHeaderTimeout: httpResponseHeader,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
}

// retryTransport repeats transient transport failures with linear backoff.
// Requests with a non-replayable body are never retried.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	var lastErr error
	attempts := t.maxRetries + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptReq, err := t.requestForAttempt(req, attempt)
		if err != nil {
			return nil, err
		}
		if attemptReq == nil {
			return nil, lastErr
		}

		resp, err := base.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}
		if err := t.sleep(req, attempt); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// requestForAttempt returns the request to send. Retries need a fresh
// body; nil with no error means the body cannot be replayed.
func (t *retryTransport) requestForAttempt(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 {
		return req, nil
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
		return clone, nil
	}
	if req.Body != nil {
		return nil, nil
	}
	return clone, nil
}

func (t *retryTransport) sleep(req *http.Request, attempt int) error {
	delay := t.backoff * time.Duration(attempt)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return req.Context().Err()
	case <-timer.C:
		return nil
	}
}
