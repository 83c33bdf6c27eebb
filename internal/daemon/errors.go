// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingManager is returned when a daemon app is created without a manager.
	ErrMissingManager = errors.New("manager is required")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrMissingRelay is returned when the manager has no relay server to run.
	ErrMissingRelay = errors.New("relay server is required")

	// ErrKeyUnavailable is returned when the decryption key cannot be fetched at startup.
	ErrKeyUnavailable = errors.New("decryption key unavailable")
)
