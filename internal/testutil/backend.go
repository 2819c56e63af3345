// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package testutil provides fakes shared by tests that span several packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ManuGH/epgnotify/internal/epg"
	"github.com/ManuGH/epgnotify/internal/epgstation"
)

// Backend serves the Mirakurun and EPGStation endpoints epgnotify reads from
// a single httptest server. A non-zero Status makes every endpoint fail.
type Backend struct {
	Services []epg.Service
	Programs []epg.Program
	Reserves epgstation.Reserves
	Status   int

	hits atomic.Int64
}

// Hits returns the number of requests served so far.
func (b *Backend) Hits() int64 { return b.hits.Load() }

// Start launches the server and registers its shutdown with t.
func (b *Backend) Start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/services", func(w http.ResponseWriter, _ *http.Request) {
		b.respond(w, b.Services)
	})
	mux.HandleFunc("GET /api/programs", func(w http.ResponseWriter, _ *http.Request) {
		b.respond(w, b.Programs)
	})
	mux.HandleFunc("GET /api/reserves", func(w http.ResponseWriter, _ *http.Request) {
		b.respond(w, b.Reserves)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (b *Backend) respond(w http.ResponseWriter, v any) {
	b.hits.Add(1)
	if b.Status != 0 {
		http.Error(w, http.StatusText(b.Status), b.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
