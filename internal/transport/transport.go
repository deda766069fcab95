// Package transport provides the HTTP round trippers shared by the vehicle
// list provider and the decode client.
package transport

import (
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
	"github.com/google/uuid"

	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/version"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// LoggingTransport stamps each request with a request id and user agent and
// logs it with credentials redacted.
type LoggingTransport struct {
	Inner http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	inner := t.Inner
	if inner == nil {
		inner = http.DefaultTransport
	}

	// RoundTrip must not modify the caller's request.
	req = req.Clone(req.Context())
	xreqid := req.Header.Get(RequestIDHeader)
	if xreqid == "" {
		xreqid = uuid.New().String()
		req.Header.Set(RequestIDHeader, xreqid)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	logging.LogHTTPRequest(xreqid, req.Method, req.URL)
	start := time.Now()

	resp, err := inner.RoundTrip(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	logging.LogHTTPResponse(xreqid, status, time.Since(start), err)

	return resp, err
}

// NewClient returns a client that logs every request and never retries.
// Timeout zero means no client-side deadline.
func NewClient(inner http.RoundTripper, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingTransport{Inner: inner},
		Timeout:   timeout,
	}
}

// NewRetryingClient returns a client that retries temporary network errors and
// 502/503 responses up to three times with jittered exponential backoff.
// Only idempotent reads should use it.
func NewRetryingClient(inner http.RoundTripper, timeout time.Duration) *http.Client {
	if inner == nil {
		inner = http.DefaultTransport
	}
	retryTransport := rehttp.NewTransport(
		inner,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(3),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(502, 503),
			),
		),
		rehttp.ExpJitterDelay(100*time.Millisecond, 1*time.Second),
	)

	return &http.Client{
		Transport: &LoggingTransport{Inner: retryTransport},
		Timeout:   timeout,
	}
}
