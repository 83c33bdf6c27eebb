// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteM3UTable(t *testing.T) {
	tests := []struct {
		name   string
		items  []Item
		expect string
	}{
		{
			name:   "empty catalog",
			expect: "#EXTM3U",
		},
		{
			name: "entries in order",
			items: []Item{
				{Name: "Hits 1", Logo: "https://cdn/a", Group: "Pop", URL: "/listen/hits1"},
				{Name: "Talk", Logo: "https://cdn/b", URL: "/listen/talk"},
			},
			expect: "#EXTM3U\n" +
				"#EXTINF:-1 tvg-logo=\"https://cdn/a\" group-title=\"Pop\",Hits 1\n/listen/hits1\n" +
				"#EXTINF:-1 tvg-logo=\"https://cdn/b\" group-title=\"\",Talk\n/listen/talk",
		},
		{
			name:   "quotes and line breaks cannot break the entry",
			items:  []Item{{Name: "A\nB", Group: `Rock "n" Roll`, URL: "/listen/x"}},
			expect: "#EXTM3U\n#EXTINF:-1 tvg-logo=\"\" group-title=\"Rock 'n' Roll\",A B\n/listen/x",
		},
		{
			name:   "titles are NFC normalized",
			items:  []Item{{Name: "Café", URL: "/listen/c"}},
			expect: "#EXTM3U\n#EXTINF:-1 tvg-logo=\"\" group-title=\"\",Café\n/listen/c",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, WriteM3U(&b, tc.items))
			assert.Equal(t, tc.expect, b.String())
			assert.Equal(t, len(tc.items), strings.Count(b.String(), "#EXTINF:"))
		})
	}
}
