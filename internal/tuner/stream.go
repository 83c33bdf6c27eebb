// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package tuner

import (
	"fmt"
	"net/url"
	"strings"
)

// StreamInfo locates the live HLS stream of one channel on the CDN.
type StreamInfo struct {
	ChannelID string
	// BaseURL is the primary stream URL up to (excluding) its last "/".
	BaseURL      string
	PlaylistName string
	// QualityPlaylistPath is the selected variant, relative to BaseURL.
	QualityPlaylistPath string
	SegmentPathPrefix   string
	// HLSTag is the directory of QualityPlaylistPath; segments live under it.
	HLSTag string
}

// PlaylistURL is the top-level (multi-variant) playlist.
func (s StreamInfo) PlaylistURL() string {
	return s.BaseURL + "/" + s.PlaylistName
}

// QualityURL is the selected variant's media playlist.
func (s StreamInfo) QualityURL() string {
	return s.BaseURL + "/" + s.QualityPlaylistPath
}

// SegmentURL is the CDN location of a media segment. The name is escaped as a
// single path element.
func (s StreamInfo) SegmentURL(segment string) string {
	segment = url.PathEscape(segment)
	if s.HLSTag == "" {
		return s.BaseURL + "/" + segment
	}
	return s.BaseURL + "/" + s.HLSTag + "/" + segment
}

// splitPrimary derives BaseURL, PlaylistName and SegmentPathPrefix from the
// primary stream URL.
func splitPrimary(primary string) (base, name, prefix string, err error) {
	i := strings.LastIndex(primary, "/")
	if i <= 0 || i == len(primary)-1 {
		return "", "", "", fmt.Errorf("primary stream URL %q has no playlist name", redactQuery(primary))
	}
	base, name = primary[:i], primary[i+1:]
	parts := strings.Split(base, "/")
	if len(parts) >= 2 {
		prefix = parts[len(parts)-2]
	}
	return base, name, prefix, nil
}

func redactQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
