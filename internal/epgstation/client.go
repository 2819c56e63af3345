// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package epgstation reads the reservation list of an EPGStation recorder.
package epgstation

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ManuGH/epgnotify/internal/upstream"
)

// Name identifies this upstream in logs, errors and metrics.
const Name = "epgstation"

// Reserve is one scheduled recording.
type Reserve struct {
	ID         int64  `json:"id"`
	ProgramID  *int64 `json:"programId,omitempty"` // nil for manual time reservations
	RuleID     *int64 `json:"ruleId,omitempty"`
	IsSkip     bool   `json:"isSkip"`
	IsConflict bool   `json:"isConflict"`
	IsOverlap  bool   `json:"isOverlap"`
	Name       string `json:"name,omitempty"`
	StartAt    int64  `json:"startAt"`
	EndAt      int64  `json:"endAt"`
}

// Reserves is the reservation list response.
type Reserves struct {
	Reserves []Reserve `json:"reserves"`
	Total    int       `json:"total"`
}

// HasProgram reports whether any reservation targets programID.
func (r Reserves) HasProgram(programID int64) bool {
	for _, res := range r.Reserves {
		if res.ProgramID != nil && *res.ProgramID == programID {
			return true
		}
	}
	return false
}

// apiError is the body EPGStation returns instead of a list on failure.
type apiError struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
}

// Client talks to the EPGStation v2 REST API.
type Client struct {
	up *upstream.Client
}

// New creates a client for the EPGStation instance at base (e.g. http://recorder:8888).
func New(base string, timeout time.Duration) *Client {
	return &Client{up: upstream.New(Name, base, timeout)}
}

// Upstream exposes the shared transport (name, base URL and http.Client).
func (c *Client) Upstream() *upstream.Client { return c.up }

// Reserves returns every pending reservation.
func (c *Client) Reserves(ctx context.Context) (Reserves, error) {
	var body struct {
		Reserves *[]Reserve `json:"reserves"`
		Total    int        `json:"total"`
		apiError
	}
	q := url.Values{"isHalfWidth": {"false"}}
	if err := c.up.GetJSON(ctx, "reserves", "/api/reserves", q, &body); err != nil {
		return Reserves{}, err
	}
	if body.Reserves == nil {
		detail := "missing reserves"
		if body.Code != nil {
			detail = fmt.Sprintf("code %d: %s", *body.Code, body.Message)
		}
		return Reserves{}, &upstream.Error{
			Sentinel:  upstream.ErrUpstreamBadResponse,
			Upstream:  Name,
			Operation: "reserves",
			Body:      detail,
		}
	}
	return Reserves{Reserves: *body.Reserves, Total: body.Total}, nil
}
