// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/playlist"
	"github.com/ManuGH/sxm2hls/internal/telemetry"
)

const (
	contentTypeAudio = "audio/x-aac"
	contentTypeKey   = "application/octet-stream"
)

// serve dispatches on the raw request path.
func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	rt := classify(r.URL.Path)

	ctx, span := telemetry.Tracer("sxm2hls.relay").Start(r.Context(), "sxm2hls.relay."+rt.kind.String())
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.HTTPRouteKey, rt.kind.String()))
	if rt.channelID != "" {
		span.SetAttributes(telemetry.ChannelAttributes(rt.channelID, s.tuner.Has(rt.channelID))...)
	}

	var (
		body        []byte
		contentType string
		err         error
	)
	switch rt.kind {
	case routeMaster:
		body, err = s.masterPlaylist(ctx)
		contentType = playlist.ContentType
	case routeSegment:
		body, err = s.segment(ctx, rt.channelID, rt.segment)
		contentType = contentTypeAudio
	case routeKey:
		body, contentType = s.key, contentTypeKey
	case routeListen:
		body, err = s.mediaPlaylist(ctx, rt.channelID)
		contentType = playlist.ContentType
	default:
		err = ErrNotFound
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "relay request failed")
		s.respondError(w, r, rt, err)
		return
	}
	span.SetStatus(codes.Ok, "")

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// respondError answers with a bare 500; upstream detail stays in the log.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, rt route, err error) {
	logger := xglog.WithContext(r.Context(), s.logger)
	ev := logger.Warn()
	if rt.kind == routeUnknown {
		ev = logger.Debug()
	}
	ev.Err(err).
		Str(xglog.FieldEvent, "relay.failed").
		Str("route", rt.kind.String()).
		Str(xglog.FieldChannelID, rt.channelID).
		Str(xglog.FieldPath, r.URL.Path).
		Msg("relay request failed")
	w.WriteHeader(http.StatusInternalServerError)
}

func (s *Server) masterPlaylist(ctx context.Context) ([]byte, error) {
	channels, err := s.catalog.Channels(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := playlist.WriteM3U(&buf, playlist.Items(channels)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) mediaPlaylist(ctx context.Context, channelID string) ([]byte, error) {
	info, err := s.tuner.StreamInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}
	body, err := s.upstream.Fetch(ctx, "playlist.media", info.QualityURL())
	if err != nil {
		return nil, err
	}
	return playlist.RewriteSubPlaylist(body, s.keyURL, channelID), nil
}

func (s *Server) segment(ctx context.Context, channelID, segment string) ([]byte, error) {
	info, err := s.tuner.StreamInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.upstream.Fetch(ctx, "segment", info.SegmentURL(segment))
}
