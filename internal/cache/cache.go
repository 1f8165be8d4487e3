// SPDX-License-Identifier: MIT

// Package cache persists the raw upstream payload between refreshes.
//
// A payload past its TTL is still loadable: the refresh path uses expired
// payloads as a fallback when the upstream is unreachable.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNoPayload is returned by Load when nothing has ever been saved.
var ErrNoPayload = errors.New("cache: no payload stored")

// Store persists one opaque payload together with its save time.
type Store interface {
	// Load returns the stored payload and the time it was saved.
	// Returns ErrNoPayload when the store is empty.
	Load(ctx context.Context) ([]byte, time.Time, error)

	// Save replaces the stored payload.
	Save(ctx context.Context, data []byte) error
}

// Fresh reports whether a payload saved at savedAt is still within ttl.
func Fresh(savedAt time.Time, ttl time.Duration) bool {
	if savedAt.IsZero() {
		return false
	}
	return time.Since(savedAt) < ttl
}
