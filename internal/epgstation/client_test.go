// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epgstation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/epgnotify/internal/upstream"
)

func TestReserves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reserves", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("isHalfWidth"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reserves":[
			{"id":1,"programId":3273601024001,"isSkip":false,"isConflict":false,"isOverlap":false,"name":"ドラマ","startAt":1,"endAt":2},
			{"id":2,"isSkip":false,"isConflict":true,"isOverlap":false,"startAt":3,"endAt":4}
		],"total":2}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	res, err := c.Reserves(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Reserves, 2)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.HasProgram(3273601024001))
	assert.False(t, res.HasProgram(2))
	assert.Nil(t, res.Reserves[1].ProgramID)
}

func TestReservesEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reserves":[],"total":0}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL, time.Second).Reserves(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Reserves)
	assert.False(t, res.HasProgram(1))
}

func TestReservesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":500,"message":"database locked"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Reserves(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrUpstreamBadResponse)
	assert.Contains(t, err.Error(), "database locked")
}

func TestReservesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Reserves(context.Background())
	assert.ErrorIs(t, err, upstream.ErrUpstreamError)
}

func TestReservesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	c.Upstream().WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond})
	assert.Equal(t, srv.URL, c.Upstream().BaseURL(), "trailing slash is trimmed")

	_, err := c.Reserves(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrTimeout)

	var upErr *upstream.Error
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, Name, upErr.Upstream)
	assert.Equal(t, "reserves", upErr.Operation)
}
