// SPDX-License-Identifier: MIT

// Package iptvorg is a client for the public iptv-org dataset API.
package iptvorg

// Channel is one entry of channels.json.
type Channel struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Stream is one entry of streams.json.
type Stream struct {
	Channel   string `json:"channel"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Quality   string `json:"quality,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Payload is the merged dataset as persisted in the cache. The shape matches
// the upstream documents so cached payloads stay readable across versions.
type Payload struct {
	Channels []Channel `json:"channels"`
	Streams  []Stream  `json:"streams"`
}
