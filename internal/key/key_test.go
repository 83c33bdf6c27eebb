// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package key_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sxm2hls/internal/key"
	"github.com/ManuGH/sxm2hls/internal/session"
	"github.com/ManuGH/sxm2hls/internal/upstream"
	"github.com/ManuGH/sxm2hls/internal/upstream/upstreamtest"
)

func newAuth(t *testing.T, srv *upstreamtest.Server) *session.Authenticator {
	t.Helper()
	client, err := upstream.New(srv.BaseURL(), upstream.Options{})
	require.NoError(t, err)
	return session.New(client, session.Credentials{Username: "u", Password: "p"})
}

func TestFetchDecodesKey(t *testing.T) {
	srv := upstreamtest.New()
	defer srv.Close()
	srv.HandleLoginChain("tok")
	want := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	srv.HandleJSON("/"+key.Path, http.StatusOK, map[string]string{"key": base64.StdEncoding.EncodeToString(want)})

	got, err := key.Fetch(context.Background(), newAuth(t, srv))
	require.NoError(t, err)
	assert.Equal(t, key.DecryptionKey(want), got)
	assert.Equal(t, "Bearer tok", srv.LastAuthorization("/"+key.Path))
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		sentinel error
	}{
		{"upstream error", http.StatusInternalServerError, map[string]string{}, upstream.ErrUpstreamStatus},
		{"missing key", http.StatusOK, map[string]string{}, upstream.ErrResolution},
		{"not base64", http.StatusOK, map[string]string{"key": "!!!"}, upstream.ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstreamtest.New()
			defer srv.Close()
			srv.HandleLoginChain("tok")
			srv.HandleJSON("/"+key.Path, tt.status, tt.body)

			_, err := key.Fetch(context.Background(), newAuth(t, srv))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}
