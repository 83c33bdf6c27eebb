// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"

	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// Do sends an authenticated API request. A 401 invalidates the session,
// reruns the login chain once and retries the request once.
func (a *Authenticator) Do(ctx context.Context, req upstream.Request) ([]byte, error) {
	return a.withCredential(ctx, func(token string) ([]byte, error) {
		r := req
		r.Bearer = token
		return a.transport.Do(ctx, r)
	})
}

// DoJSON is Do followed by decoding the body into out.
func (a *Authenticator) DoJSON(ctx context.Context, req upstream.Request, out any) error {
	body, err := a.Do(ctx, req)
	if err != nil {
		return err
	}
	return upstream.DecodeJSON(req.Operation, body, out)
}

// Fetch downloads an absolute URL with the session credential, with the same
// single retry on 401 as Do.
func (a *Authenticator) Fetch(ctx context.Context, operation, rawURL string) ([]byte, error) {
	return a.withCredential(ctx, func(token string) ([]byte, error) {
		return a.transport.Fetch(ctx, operation, rawURL, token)
	})
}

func (a *Authenticator) withCredential(ctx context.Context, call func(token string) ([]byte, error)) ([]byte, error) {
	token, generation, err := a.ensure(ctx)
	if err != nil {
		return nil, err
	}
	body, err := call(token)
	if !upstream.IsUnauthorized(err) {
		return body, err
	}

	a.logger.Info().Err(err).Msg("upstream rejected credential, re-authenticating")
	token, err = a.reauthenticate(ctx, generation)
	if err != nil {
		return nil, err
	}
	return call(token)
}
