// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextWithRunID(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		runID string
		want  string
	}{
		{
			name:  "nil context",
			ctx:   nil,
			runID: "run-123",
			want:  "run-123",
		},
		{
			name:  "background context",
			ctx:   context.Background(),
			runID: "run-456",
			want:  "run-456",
		},
		{
			name:  "empty run ID",
			ctx:   context.Background(),
			runID: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRunID(tt.ctx, tt.runID)
			if got := RunIDFromContext(ctx); got != tt.want {
				t.Errorf("RunIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunIDFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), runIDKey, 123)
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("RunIDFromContext() = %q, want empty", got)
	}
	if got := RunIDFromContext(nil); got != "" { //nolint:staticcheck // nil context is handled explicitly
		t.Errorf("RunIDFromContext(nil) = %q, want empty", got)
	}
}

func TestWithComponentFromContext(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test", Version: "v0.0.0"})
	t.Cleanup(func() { Configure(Config{}) })

	ctx := ContextWithRunID(context.Background(), "run-789")
	logger := WithComponentFromContext(ctx, "selection")
	logger.Info().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}

	want := map[string]string{
		FieldService:   "test",
		FieldVersion:   "v0.0.0",
		FieldComponent: "selection",
		FieldRunID:     "run-789",
		FieldEvent:     "test.event",
		"message":      "hello",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("field %s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestFromContextFallsBackToBase(t *testing.T) {
	t.Setenv("LOG_SERVICE", "")
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	l := FromContext(ContextWithRunID(context.Background(), "run-1"))
	l.Info().Msg("fallback")

	if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"run-1"`)) {
		t.Errorf("expected run_id in output, got %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"service":"epgnotify"`)) {
		t.Errorf("expected default service name, got %q", buf.String())
	}
}
