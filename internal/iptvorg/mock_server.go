// SPDX-License-Identifier: MIT

package iptvorg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

// MockServer serves canned channels/streams documents for tests.
type MockServer struct {
	*httptest.Server

	channels     []Channel
	streams      []Stream
	failChannels atomic.Bool
	failStreams  atomic.Bool
	hits         atomic.Int64
}

// NewMockServer starts a test server with the given dataset.
func NewMockServer(channels []Channel, streams []Stream) *MockServer {
	ms := &MockServer{channels: channels, streams: streams}
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.json", func(w http.ResponseWriter, r *http.Request) {
		ms.hits.Add(1)
		if ms.failChannels.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		writeJSON(w, ms.channels)
	})
	mux.HandleFunc("/streams.json", func(w http.ResponseWriter, r *http.Request) {
		ms.hits.Add(1)
		if ms.failStreams.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		writeJSON(w, ms.streams)
	})
	ms.Server = httptest.NewServer(mux)
	return ms
}

// ChannelsURL returns the mock channels.json endpoint.
func (ms *MockServer) ChannelsURL() string { return ms.URL + "/channels.json" }

// StreamsURL returns the mock streams.json endpoint.
func (ms *MockServer) StreamsURL() string { return ms.URL + "/streams.json" }

// SetFailing toggles 502 responses for both documents.
func (ms *MockServer) SetFailing(fail bool) {
	ms.failChannels.Store(fail)
	ms.failStreams.Store(fail)
}

// Hits returns the number of requests served.
func (ms *MockServer) Hits() int64 { return ms.hits.Load() }

// Client returns a client pointed at the mock server.
func (ms *MockServer) Client(opts Options) *Client {
	return New(ms.ChannelsURL(), ms.StreamsURL(), opts)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
