// SPDX-License-Identifier: MIT
package playlist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteM3U(t *testing.T) {
	var buf bytes.Buffer
	items := []Item{
		{Name: "Canal Once", TvgID: "CanalOnce.mx", TvgChNo: 1, Group: "general", URL: "https://example.com/once.m3u8"},
		{Name: "Azteca Uno", TvgID: "AztecaUno.mx", TvgChNo: 2, Group: "general", URL: "https://example.com/azteca.m3u8"},
	}
	require.NoError(t, WriteM3U(&buf, items))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "#EXTM3U", lines[0])
	assert.Equal(t, `#EXTINF:-1 tvg-chno="1" tvg-id="CanalOnce.mx" group-title="general",Canal Once`, lines[1])
	assert.Equal(t, "https://example.com/once.m3u8", lines[2])
	assert.Contains(t, lines[3], "AztecaUno.mx")
}

func TestWriteM3UEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteM3U(&buf, nil))
	assert.Equal(t, "#EXTM3U\n", buf.String())
}
