// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds small filesystem helpers shared by the output writers.
package fsutil

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ManuGH/epgnotify/internal/log"
	"github.com/google/renameio/v2"
)

// WriteAtomic streams write into a pending file next to path and replaces
// path only after write succeeds. Readers never observe a partial file.
func WriteAtomic(ctx context.Context, path string, write func(io.Writer) error) error {
	logger := log.FromContext(ctx)

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str(log.FieldPath, path).Msg("cleanup pending file")
		}
	}()

	if err := write(pendingFile); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	// CloseAtomicallyReplace: fsync + rename (durable + atomic)
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", path, err)
	}
	return nil
}

// WriteFileAtomic is WriteAtomic for an in-memory payload.
func WriteFileAtomic(ctx context.Context, path string, data []byte) error {
	return WriteAtomic(ctx, path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}
