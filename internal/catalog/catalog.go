// SPDX-License-Identifier: MIT

// Package catalog holds the in-memory channel catalog built from the
// iptv-org dataset. Snapshots are immutable; readers never need locks.
package catalog

import (
	"sort"
	"time"

	"github.com/canalview/canalview/internal/iptvorg"
)

// Channel is a TV channel that has at least one playable stream.
type Channel struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Stream is one playable source for a channel.
type Stream struct {
	Channel   string `json:"channel"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Quality   string `json:"quality,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Snapshot is one consistent view of the catalog.
type Snapshot struct {
	builtAt    time.Time
	channels   map[string]Channel
	streams    map[string][]Stream
	countries  []string
	categories []string
}

// Build converts a raw payload into a snapshot, applying the catalog rules:
// streams without channel ID or URL are dropped, streams referencing unknown
// channels are dropped, and a channel with an empty name falls back to its ID.
func Build(p iptvorg.Payload) *Snapshot {
	s := &Snapshot{
		builtAt:  time.Now(),
		channels: make(map[string]Channel, len(p.Channels)),
		streams:  make(map[string][]Stream),
	}

	countrySet := map[string]struct{}{}
	categorySet := map[string]struct{}{}

	for _, c := range p.Channels {
		if c.ID == "" {
			continue
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		s.channels[c.ID] = Channel{
			ID:         c.ID,
			Name:       name,
			Country:    c.Country,
			Categories: c.Categories,
		}
		if c.Country != "" {
			countrySet[c.Country] = struct{}{}
		}
		for _, cat := range c.Categories {
			categorySet[cat] = struct{}{}
		}
	}

	for _, st := range p.Streams {
		if st.Channel == "" || st.URL == "" {
			continue
		}
		if _, ok := s.channels[st.Channel]; !ok {
			continue
		}
		s.streams[st.Channel] = append(s.streams[st.Channel], Stream{
			Channel:   st.Channel,
			URL:       st.URL,
			Title:     st.Title,
			Quality:   st.Quality,
			Referrer:  st.Referrer,
			UserAgent: st.UserAgent,
		})
	}

	s.countries = sortedKeys(countrySet)
	s.categories = sortedKeys(categorySet)
	return s
}

// BuiltAt reports when the snapshot was assembled.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Channel looks up a channel by ID.
func (s *Snapshot) Channel(id string) (Channel, bool) {
	c, ok := s.channels[id]
	return c, ok
}

// Streams returns the streams of a channel, in payload order.
func (s *Snapshot) Streams(id string) []Stream {
	return s.streams[id]
}

// Countries returns the sorted country vocabulary.
func (s *Snapshot) Countries() []string { return s.countries }

// Categories returns the sorted category vocabulary.
func (s *Snapshot) Categories() []string { return s.categories }

// Len returns the number of channels in the snapshot (listed or not).
func (s *Snapshot) Len() int { return len(s.channels) }

// StreamCount returns the total number of kept streams.
func (s *Snapshot) StreamCount() int {
	n := 0
	for _, v := range s.streams {
		n += len(v)
	}
	return n
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
