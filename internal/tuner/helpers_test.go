// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tuner_test

import "time"

const (
	testTimeout = 2 * time.Second
	tick        = 5 * time.Millisecond
)
