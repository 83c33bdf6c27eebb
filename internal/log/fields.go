// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldChannelID = "channel_id"
	FieldSegment   = "segment"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath     = "path"
	FieldBaseURL  = "base_url"
	FieldUpstream = "upstream"

	// Result fields
	FieldStatus   = "status"
	FieldBytes    = "bytes"
	FieldDuration = "duration_ms"
	FieldCount    = "count"
)
