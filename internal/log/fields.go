// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldChannelID = "channel_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Path / URL fields
	FieldPath      = "path"
	FieldCachePath = "cache_path"
	FieldURL       = "url"
)
