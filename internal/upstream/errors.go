// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("upstream: resource not found")
	ErrForbidden           = errors.New("upstream: access forbidden")
	ErrUpstreamUnavailable = errors.New("upstream: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("upstream: internal error (5xx)")
	ErrUpstreamBadResponse = errors.New("upstream: invalid response format or malformed data")
	ErrTimeout             = errors.New("upstream: request timed out")
)

// maxBodySnippet bounds the response body kept on an Error.
const maxBodySnippet = 256

// Error wraps a sentinel with the request context it happened in.
type Error struct {
	Sentinel  error
	Upstream  string // "mirakurun" | "epgstation"
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", e.Upstream, e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// wrapError classifies a transport error or non-2xx status.
func wrapError(upstream, op string, err error, status int, body []byte) error {
	sentinel := classify(err, status)
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet] + "..."
	}
	return &Error{
		Sentinel:  sentinel,
		Upstream:  upstream,
		Operation: op,
		Status:    status,
		Body:      snippet,
		Err:       err,
	}
}

func classify(err error, status int) error {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ErrTimeout
		}
		return ErrUpstreamUnavailable
	}
	switch {
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrForbidden
	case status >= 500:
		return ErrUpstreamError
	default:
		return ErrUpstreamBadResponse
	}
}

// statusLabel maps an error to the metrics status label.
func statusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
