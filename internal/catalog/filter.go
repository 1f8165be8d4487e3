// SPDX-License-Identifier: MIT

package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter narrows the catalog listing. Zero values mean "no restriction".
type Filter struct {
	Query    string // matches name or ID, case- and diacritic-insensitive
	Country  string // exact country code
	Category string // channel must carry this category
}

// Entry pairs a channel with its streams for listing.
type Entry struct {
	Channel Channel  `json:"channel"`
	Streams []Stream `json:"streams"`
}

// List returns the channels that have streams and match the filter,
// sorted by folded channel name. Channels without any stream never appear.
func (s *Snapshot) List(f Filter) []Entry {
	q := Fold(strings.TrimSpace(f.Query))

	out := make([]Entry, 0, 64)
	for id, ch := range s.channels {
		streams := s.streams[id]
		if len(streams) == 0 {
			continue
		}
		if f.Country != "" && ch.Country != f.Country {
			continue
		}
		if f.Category != "" && !contains(ch.Categories, f.Category) {
			continue
		}
		if q != "" && !strings.Contains(Fold(ch.Name), q) && !strings.Contains(Fold(ch.ID), q) {
			continue
		}
		out = append(out, Entry{Channel: ch, Streams: streams})
	}

	sort.Slice(out, func(i, j int) bool {
		ni, nj := Fold(out[i].Channel.Name), Fold(out[j].Channel.Name)
		if ni == nj {
			return out[i].Channel.ID < out[j].Channel.ID
		}
		return ni < nj
	})
	return out
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips combining marks so "Canción" matches "cancion".
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
