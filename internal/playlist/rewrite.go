// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playlist

import (
	"strings"
)

// KeyPath is the local path the decryption key is served under.
const KeyPath = "/key/1"

// SegmentSuffix identifies media segment lines in a media playlist.
const SegmentSuffix = ".aac"

// RewriteSubPlaylist maps an upstream media playlist onto local paths: every
// occurrence of upstreamKeyURL becomes KeyPath and every segment line is
// prefixed with "{channelID}/". Line endings are preserved.
func RewriteSubPlaylist(body []byte, upstreamKeyURL, channelID string) []byte {
	s := string(body)
	if upstreamKeyURL != "" {
		s = strings.ReplaceAll(s, upstreamKeyURL, KeyPath)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.HasSuffix(strings.TrimRight(line, " \t\r"), SegmentSuffix) {
			lines[i] = channelID + "/" + line
		}
	}
	return []byte(strings.Join(lines, "\n"))
}
