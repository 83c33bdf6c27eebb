// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package key fetches the stream decryption key served to players at /key/1.
package key

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// Path is the upstream key endpoint. The same absolute URL appears in media
// playlists as the EXT-X-KEY URI.
const Path = "playback/key/v1/00000000-0000-0000-0000-000000000000"

// DecryptionKey is the raw AES key. It is read-only once fetched.
type DecryptionKey []byte

// Requester performs authenticated JSON API calls.
type Requester interface {
	DoJSON(ctx context.Context, req upstream.Request, out any) error
}

// Fetch retrieves and decodes the decryption key.
func Fetch(ctx context.Context, api Requester) (DecryptionKey, error) {
	var resp struct {
		Key string `json:"key"`
	}
	err := api.DoJSON(ctx, upstream.Request{
		Operation: "key",
		Method:    http.MethodGet,
		Path:      Path,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch decryption key: %w", err)
	}
	if resp.Key == "" {
		return nil, upstream.NewError(upstream.ErrResolution, "key", 0, fmt.Errorf("response has no key"))
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Key)
	if err != nil {
		return nil, upstream.NewError(upstream.ErrDecode, "key", 0, err)
	}
	return DecryptionKey(raw), nil
}
