// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session owns the upstream login state machine and the bearer
// credential, and offers the authenticated request helpers every other
// component goes through.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/sxm2hls/internal/log"
	"github.com/ManuGH/sxm2hls/internal/metrics"
	"github.com/ManuGH/sxm2hls/internal/upstream"
)

// State is the coarse login state.
type State int

const (
	StateUnauthenticated State = iota
	StateDeviceRegistered
	StateAnonymousGranted
	StateCredentialVerified
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDeviceRegistered:
		return "device_registered"
	case StateAnonymousGranted:
		return "anonymous_granted"
	case StateCredentialVerified:
		return "credential_verified"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Upstream API methods used by the login chain.
const (
	pathDevice        = "device/v1/devices"
	pathAnonymous     = "session/v1/sessions/anonymous"
	pathPassword      = "identity/v1/identities/authenticate/password"
	pathAuthenticated = "session/v1/sessions/authenticated"

	deviceSDKVersion = "7.74.0"
	tenantHeader     = "x-sxm-tenant"
	tenant           = "sxm"
)

// Transport is the subset of *upstream.Client the authenticator needs.
type Transport interface {
	Do(ctx context.Context, req upstream.Request) ([]byte, error)
	Fetch(ctx context.Context, operation, rawURL, bearer string) ([]byte, error)
	UserAgent() string
}

// Credentials are the account handle and password.
type Credentials struct {
	Username string
	Password string
}

// Authenticator drives the login chain and holds the current credential.
// mu is held across the whole chain so concurrent re-authentications coalesce.
type Authenticator struct {
	transport Transport
	logger    zerolog.Logger

	mu         sync.Mutex
	creds      Credentials
	state      State
	grant      Grant
	generation uint64
}

// New creates an unauthenticated Authenticator.
func New(transport Transport, creds Credentials) *Authenticator {
	return &Authenticator{
		transport: transport,
		creds:     creds,
		logger:    xglog.WithComponent("session"),
	}
}

// State returns the current login state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Authenticated reports whether an authenticated credential is held.
func (a *Authenticator) Authenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authenticatedLocked()
}

func (a *Authenticator) authenticatedLocked() bool {
	return a.state == StateAuthenticated && a.grant.Token != ""
}

// EnsureAuthenticated returns true when a credential is already held or the
// full chain completes. On failure the session is reset to Unauthenticated.
func (a *Authenticator) EnsureAuthenticated(ctx context.Context) (bool, error) {
	_, _, err := a.ensure(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate drops the credential and returns to Unauthenticated.
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invalidateLocked()
}

// SetCredentials replaces the account credentials and invalidates the session.
func (a *Authenticator) SetCredentials(creds Credentials) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.creds == creds {
		return
	}
	a.creds = creds
	a.invalidateLocked()
	a.logger.Info().Str(xglog.FieldEvent, "session.credentials_changed").Msg("account credentials replaced, session invalidated")
}

func (a *Authenticator) invalidateLocked() {
	if a.state != StateUnauthenticated {
		a.transition(StateUnauthenticated)
	}
	a.grant = Grant{}
}

func (a *Authenticator) ensure(ctx context.Context) (string, uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.authenticatedLocked() {
		return a.grant.Token, a.generation, nil
	}
	if err := a.loginLocked(ctx); err != nil {
		return "", 0, err
	}
	return a.grant.Token, a.generation, nil
}

// reauthenticate reruns the chain after a 401 unless another caller already
// replaced the credential that was rejected (stale generation).
func (a *Authenticator) reauthenticate(ctx context.Context, staleGeneration uint64) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != staleGeneration && a.authenticatedLocked() {
		return a.grant.Token, nil
	}
	metrics.RecordReauthentication()
	a.invalidateLocked()
	if err := a.loginLocked(ctx); err != nil {
		return "", err
	}
	return a.grant.Token, nil
}

// loginLocked runs all four transitions. Caller must hold mu.
func (a *Authenticator) loginLocked(ctx context.Context) error {
	a.invalidateLocked()
	steps := []struct {
		name string
		next State
		run  func(context.Context) error
	}{
		{"device.register", StateDeviceRegistered, a.registerDevice},
		{"session.anonymous", StateAnonymousGranted, a.grantAnonymous},
		{"identity.password", StateCredentialVerified, a.verifyCredentials},
		{"session.authenticated", StateAuthenticated, a.upgradeSession},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			metrics.RecordAuthStep(step.name, "failure")
			a.invalidateLocked()
			a.logger.Warn().
				Err(err).
				Str(xglog.FieldEvent, "session.login_failed").
				Str(xglog.FieldOperation, step.name).
				Msg("login chain aborted")
			return upstream.NewError(upstream.ErrAuthChain, step.name, upstream.StatusOf(err), err)
		}
		metrics.RecordAuthStep(step.name, "success")
		a.transition(step.next)
	}
	a.generation++
	a.logger.Info().Str(xglog.FieldEvent, "session.authenticated").Msg("upstream session authenticated")
	return nil
}

func (a *Authenticator) transition(next State) {
	a.logger.Debug().
		Str(xglog.FieldOldState, a.state.String()).
		Str(xglog.FieldNewState, next.String()).
		Msg("session state transition")
	a.state = next
}

// post sends one login step. The current grant is attached when present.
func (a *Authenticator) post(ctx context.Context, operation, path string, body any, withTenant bool) ([]byte, error) {
	req := upstream.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Bearer:    a.grant.Token,
	}
	if withTenant {
		req.Header = http.Header{}
		req.Header.Set(tenantHeader, tenant)
	}
	return a.transport.Do(ctx, req)
}

func (a *Authenticator) registerDevice(ctx context.Context) error {
	sdk := map[string]string{
		"browserVersion": deviceSDKVersion,
		"userAgent":      a.transport.UserAgent(),
		"sdk":            "web",
		"app":            "web",
		"sdkVersion":     deviceSDKVersion,
		"appVersion":     deviceSDKVersion,
	}
	body, err := a.post(ctx, "device.register", pathDevice, map[string]any{
		"devicePlatform":   "web-desktop",
		"deviceAttributes": map[string]any{"browser": sdk},
		"grantVersion":     "v2",
	}, true)
	if err != nil {
		return err
	}
	g := grantFrom(body)
	if !g.Valid() {
		return missingField("device.register", "grant", body)
	}
	a.grant = g
	return nil
}

func (a *Authenticator) grantAnonymous(ctx context.Context) error {
	body, err := a.post(ctx, "session.anonymous", pathAnonymous, struct{}{}, true)
	if err != nil {
		return err
	}
	g := grantFrom(body)
	if !g.Valid() {
		return missingField("session.anonymous", "accessToken", body)
	}
	a.grant = g
	return nil
}

func (a *Authenticator) verifyCredentials(ctx context.Context) error {
	body, err := a.post(ctx, "identity.password", pathPassword, map[string]string{
		"handle":   a.creds.Username,
		"password": a.creds.Password,
	}, false)
	if err != nil {
		return err
	}
	var probe map[string]any
	if err := upstream.DecodeJSON("identity.password", body, &probe); err != nil {
		return err
	}
	if g := grantFrom(body); g.Valid() {
		a.grant = g
	}
	return nil
}

func (a *Authenticator) upgradeSession(ctx context.Context) error {
	body, err := a.post(ctx, "session.authenticated", pathAuthenticated, struct{}{}, false)
	if err != nil {
		return err
	}
	var p struct {
		SessionType string `json:"sessionType"`
	}
	if err := upstream.DecodeJSON("session.authenticated", body, &p); err != nil {
		return err
	}
	if p.SessionType != "authenticated" {
		return missingField("session.authenticated", "sessionType", body)
	}
	if g := grantFrom(body); g.Valid() {
		a.grant = g
	}
	if a.grant.Token == "" {
		return missingField("session.authenticated", "accessToken", body)
	}
	return nil
}

func missingField(operation, field string, body []byte) error {
	var probe any
	if err := upstream.DecodeJSON(operation, body, &probe); err != nil {
		return err
	}
	return upstream.NewError(upstream.ErrResolution, operation, 0, fmt.Errorf("field %q missing", field))
}
