// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// WriteFile writes the master playlist to path atomically: readers see either
// the previous file or the complete new one.
func WriteFile(path string, items []Item, logger zerolog.Logger) error {
	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending playlist file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending playlist file")
		}
	}()

	if err := WriteM3U(pendingFile, items); err != nil {
		return fmt.Errorf("write playlist data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace playlist file: %w", err)
	}
	return nil
}
