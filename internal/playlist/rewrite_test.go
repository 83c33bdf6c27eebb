// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const upstreamKey = "https://api.example.com/playback/key/v1/00000000-0000-0000-0000-000000000000"

func TestRewriteSubPlaylist(t *testing.T) {
	in := strings.Join([]string{
		"#EXTM3U",
		"#EXT-X-TARGETDURATION:10",
		`#EXT-X-KEY:METHOD=AES-128,URI="` + upstreamKey + `"`,
		"#EXTINF:10,",
		"segmentA.aac",
		`#EXT-X-KEY:METHOD=AES-128,URI="` + upstreamKey + `"`,
		"#EXTINF:10,",
		"segmentB.aac",
		"",
	}, "\n")

	out := string(RewriteSubPlaylist([]byte(in), upstreamKey, "7"))

	assert.NotContains(t, out, "api.example.com")
	assert.Equal(t, 2, strings.Count(out, `URI="/key/1"`))
	assert.Contains(t, strings.Split(out, "\n"), "7/segmentA.aac")
	assert.Contains(t, strings.Split(out, "\n"), "7/segmentB.aac")
	assert.True(t, strings.HasSuffix(out, "\n"), "trailing newline preserved")
	assert.True(t, strings.HasPrefix(out, "#EXTM3U\n#EXT-X-TARGETDURATION:10\n"))
}

func TestRewriteSubPlaylistLeavesOtherLines(t *testing.T) {
	in := "#EXTM3U\r\n#EXT-X-MEDIA-SEQUENCE:5\r\nseg.aac\r\nother.ts\r\n"
	out := string(RewriteSubPlaylist([]byte(in), "", "ch"))
	assert.Equal(t, "#EXTM3U\r\n#EXT-X-MEDIA-SEQUENCE:5\r\nch/seg.aac\r\nother.ts\r\n", out)
}
