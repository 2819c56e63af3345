// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package upstream is the JSON-over-HTTP plumbing shared by the EPG provider
// and recording scheduler clients.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/ManuGH/epgnotify/internal/metrics"
	"github.com/ManuGH/epgnotify/internal/netutil"
)

// maxResponseBytes caps a decoded response. A week of programs for every
// service of a multi-tuner setup stays well under this.
const maxResponseBytes = 256 * 1024 * 1024

// Client performs GET requests against one upstream base URL.
type Client struct {
	name string
	base string
	http *http.Client
}

// New creates a client for the named upstream.
func New(name, base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		name: name,
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Name returns the upstream name used in errors, logs and metrics.
func (c *Client) Name() string { return c.name }

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string { return c.base }

// GetJSON issues GET {base}{path}?{query} and decodes the JSON body into dst.
func (c *Client) GetJSON(ctx context.Context, op, path string, query url.Values, dst any) (err error) {
	logger := log.WithComponentFromContext(ctx, c.name)
	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(c.name, op, statusLabel(err), time.Since(start))
	}()

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Sentinel: ErrUpstreamUnavailable, Upstream: c.name, Operation: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return wrapError(c.name, op, err, 0, nil)
	}
	defer func() { _ = res.Body.Close() }()

	body := io.LimitReader(res.Body, maxResponseBytes)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, maxBodySnippet+1))
		return wrapError(c.name, op, nil, res.StatusCode, snippet)
	}

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return wrapError(c.name, op, ctxErr, 0, nil)
		}
		return &Error{
			Sentinel:  ErrUpstreamBadResponse,
			Upstream:  c.name,
			Operation: op,
			Status:    res.StatusCode,
			Err:       fmt.Errorf("decode: %w", err),
		}
	}

	logger.Debug().
		Str(log.FieldEvent, "upstream.fetched").
		Str("operation", op).
		Str(log.FieldBaseURL, netutil.MaskURL(c.base)).
		Dur("duration", time.Since(start)).
		Msg("upstream request completed")
	return nil
}
