// SPDX-License-Identifier: MIT

package catalog

import "sync/atomic"

// Store publishes catalog snapshots to concurrent readers. Current returns
// nil until the first Publish; callers treat that as "catalog not ready".
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the latest snapshot, or nil before the first publish.
func (st *Store) Current() *Snapshot {
	return st.current.Load()
}

// Publish atomically replaces the current snapshot.
func (st *Store) Publish(s *Snapshot) {
	st.current.Store(s)
}

// Ready reports whether a snapshot has been published.
func (st *Store) Ready() bool {
	return st.current.Load() != nil
}
