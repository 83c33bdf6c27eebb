// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"errors"
	"strings"

	"github.com/ManuGH/sxm2hls/internal/playlist"
)

// ErrNotFound marks a request path that matches no relay route.
var ErrNotFound = errors.New("no relay route for path")

type routeKind int

const (
	routeUnknown routeKind = iota
	routeMaster
	routeSegment
	routeKey
	routeListen
)

func (k routeKind) String() string {
	switch k {
	case routeMaster:
		return "master"
	case routeSegment:
		return "segment"
	case routeKey:
		return "key"
	case routeListen:
		return "listen"
	default:
		return "unknown"
	}
}

const listenPrefix = "/listen/"

type route struct {
	kind      routeKind
	channelID string
	segment   string
}

// classify maps a request path onto a route. Suffix checks run in a fixed
// order, so "/listen/x.m3u8" is the master playlist and "/listen/42/s.aac"
// is a segment of channel 42.
func classify(path string) route {
	switch {
	case strings.HasSuffix(path, ".m3u8"):
		return route{kind: routeMaster}
	case strings.HasSuffix(path, playlist.SegmentSuffix):
		parts := strings.Split(path, "/")
		if len(parts) < 3 || parts[len(parts)-2] == "" {
			return route{}
		}
		// A decoded '?' or '#' would turn the segment into a different upstream resource.
		if strings.ContainsAny(parts[len(parts)-1], "?#") {
			return route{}
		}
		return route{kind: routeSegment, channelID: parts[len(parts)-2], segment: parts[len(parts)-1]}
	case strings.HasSuffix(path, playlist.KeyPath):
		return route{kind: routeKey}
	case strings.HasPrefix(path, listenPrefix):
		id := path[strings.LastIndexByte(path, '/')+1:]
		if id == "" {
			return route{}
		}
		return route{kind: routeListen, channelID: id}
	}
	return route{}
}
