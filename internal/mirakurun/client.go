// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package mirakurun fetches services and programs from a Mirakurun tuner server.
package mirakurun

import (
	"context"
	"time"

	"github.com/ManuGH/epgnotify/internal/epg"
	"github.com/ManuGH/epgnotify/internal/upstream"
)

// Name identifies this upstream in logs, errors and metrics.
const Name = "mirakurun"

// Client talks to the Mirakurun REST API.
type Client struct {
	up *upstream.Client
}

// New creates a client for the Mirakurun instance at base (e.g. http://tuner:40772).
func New(base string, timeout time.Duration) *Client {
	return &Client{up: upstream.New(Name, base, timeout)}
}

// Upstream exposes the shared transport (name, base URL and http.Client).
func (c *Client) Upstream() *upstream.Client { return c.up }

// Services returns every service known to the tuner server.
func (c *Client) Services(ctx context.Context) ([]epg.Service, error) {
	var out []epg.Service
	if err := c.up.GetJSON(ctx, "services", "/api/services", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &upstream.Error{Sentinel: upstream.ErrUpstreamBadResponse, Upstream: Name, Operation: "services", Body: "null"}
	}
	return out, nil
}

// Programs returns every program in the tuner server's EPG.
func (c *Client) Programs(ctx context.Context) ([]epg.Program, error) {
	var out []epg.Program
	if err := c.up.GetJSON(ctx, "programs", "/api/programs", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &upstream.Error{Sentinel: upstream.ErrUpstreamBadResponse, Upstream: Name, Operation: "programs", Body: "null"}
	}
	return out, nil
}
