// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.Record(ctx, Entry{ChannelID: "CanalOnce.mx", ChannelName: "Canal Once", StreamIndex: 0, WatchedAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Record(ctx, Entry{ChannelID: "AztecaUno.mx", ChannelName: "Azteca Uno", StreamIndex: 1, WatchedAt: now}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "AztecaUno.mx", entries[0].ChannelID)
	assert.Equal(t, 1, entries[0].StreamIndex)
}

func TestRecentDeduplicatesByChannel(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Record(ctx, Entry{
			ChannelID:   "CanalOnce.mx",
			ChannelName: "Canal Once",
			StreamIndex: i,
			WatchedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.Record(ctx, Entry{ChannelID: "TVE.es", ChannelName: "TVE", StreamIndex: 0, WatchedAt: base.Add(-time.Minute)}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CanalOnce.mx", entries[0].ChannelID)
	assert.Equal(t, 2, entries[0].StreamIndex, "newest watch of the channel wins")
	assert.Equal(t, "TVE.es", entries[1].ChannelID)
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Record(ctx, Entry{ChannelID: id, ChannelName: id, StreamIndex: 0}))
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
