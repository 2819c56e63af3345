// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapError_Sentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		sentinel error
	}{
		{"HTTP 404", nil, http.StatusNotFound, ErrNotFound},
		{"HTTP 403", nil, http.StatusForbidden, ErrForbidden},
		{"HTTP 401", nil, http.StatusUnauthorized, ErrForbidden},
		{"HTTP 500", nil, http.StatusInternalServerError, ErrUpstreamError},
		{"HTTP 503", nil, http.StatusServiceUnavailable, ErrUpstreamError},
		{"HTTP 400", nil, http.StatusBadRequest, ErrUpstreamBadResponse},
		{"Network Timeout", &net.DNSError{IsTimeout: true}, 0, ErrTimeout},
		{"Context Timeout", context.DeadlineExceeded, 0, ErrTimeout},
		{"Connection refused", errors.New("dial tcp: connection refused"), 0, ErrUpstreamUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := wrapError("mirakurun", "test", tc.err, tc.status, nil)
			assert.ErrorIs(t, wrapped, tc.sentinel)

			var upErr *Error
			require.True(t, errors.As(wrapped, &upErr))
			assert.Equal(t, "test", upErr.Operation)
			assert.Equal(t, "mirakurun", upErr.Upstream)
			assert.Equal(t, tc.status, upErr.Status)
		})
	}
}

func TestWrapError_TruncatesBody(t *testing.T) {
	body := []byte(strings.Repeat("x", 1000))
	err := wrapError("epgstation", "reserves", nil, 500, body)

	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Len(t, upErr.Body, maxBodySnippet+3)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ok":
			assert.Equal(t, "false", r.URL.Query().Get("isHalfWidth"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"value": 42}`))
		case "/api/broken":
			_, _ = w.Write([]byte(`{"value": `))
		case "/api/fail":
			http.Error(w, "tuner exploded", http.StatusInternalServerError)
		case "/api/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New("mirakurun", srv.URL+"/", 5*time.Second)
	assert.Equal(t, srv.URL, c.BaseURL())
	assert.Equal(t, "mirakurun", c.Name())

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "ok", "/api/ok", url.Values{"isHalfWidth": {"false"}}, &out))
	assert.Equal(t, 42, out.Value)

	err := c.GetJSON(context.Background(), "broken", "/api/broken", nil, &out)
	assert.ErrorIs(t, err, ErrUpstreamBadResponse)

	err = c.GetJSON(context.Background(), "fail", "/api/fail", nil, &out)
	assert.ErrorIs(t, err, ErrUpstreamError)
	assert.Contains(t, err.Error(), "tuner exploded")

	err = c.GetJSON(context.Background(), "missing", "/api/missing", nil, &out)
	assert.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c.GetJSON(ctx, "slow", "/api/slow", nil, &out)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGetJSON_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New("epgstation", base, time.Second)
	var out map[string]any
	err := c.GetJSON(context.Background(), "reserves", "/api/reserves", nil, &out)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
