// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sxm2hls/internal/health"
)

// fakeRelay blocks in Start until Shutdown, or fails immediately with startErr.
type fakeRelay struct {
	startErr error

	mu       sync.Mutex
	started  chan struct{}
	stop     chan struct{}
	shutdown int
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeRelay) Start() error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return nil
}

func (f *fakeRelay) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown++
	if f.shutdown == 1 {
		close(f.stop)
	}
	return nil
}

func (f *fakeRelay) shutdownCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func TestNewManagerValidates(t *testing.T) {
	_, err := NewManager(ManagerConfig{})
	assert.ErrorIs(t, err, ErrMissingRelay)

	_, err = NewManager(ManagerConfig{Relay: newFakeRelay(), AdminAddr: "127.0.0.1:0"})
	assert.Error(t, err)
}

func TestManagerStopsOnContextCancel(t *testing.T) {
	relay := newFakeRelay()
	m, err := NewManager(ManagerConfig{Relay: relay})
	require.NoError(t, err)

	var order []string
	m.RegisterShutdownHook("first", func(context.Context) error { order = append(order, "first"); return nil })
	m.RegisterShutdownHook("second", func(context.Context) error { order = append(order, "second"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	<-relay.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}
	assert.Equal(t, 1, relay.shutdownCalls())
	assert.Equal(t, []string{"second", "first"}, order, "hooks run LIFO")
	assert.NoError(t, m.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestManagerRelayFailureShutsDown(t *testing.T) {
	relay := newFakeRelay()
	relay.startErr = errors.New("address in use")
	m, err := NewManager(ManagerConfig{Relay: relay})
	require.NoError(t, err)

	err = m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
	assert.Equal(t, 1, relay.shutdownCalls())
}

func TestManagerHookErrorsAreJoined(t *testing.T) {
	relay := newFakeRelay()
	m, err := NewManager(ManagerConfig{Relay: relay})
	require.NoError(t, err)
	m.RegisterShutdownHook("flush", func(context.Context) error { return errors.New("flush failed") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hook flush")
}

func TestManagerShutdownBeforeStart(t *testing.T) {
	m, err := NewManager(ManagerConfig{Relay: newFakeRelay()})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManagerServesAdminEndpoints(t *testing.T) {
	hm := health.NewManager("test")
	hm.RegisterChecker(health.FlagChecker("key", func() bool { return false }, health.StatusUnhealthy, "missing"))

	relay := newFakeRelay()
	m, err := NewManager(ManagerConfig{
		Relay:        relay,
		AdminAddr:    "127.0.0.1:0",
		AdminHandler: AdminHandler(hm),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()
	<-relay.started
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	base := "http://" + m.AdminAddr()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(base + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(base + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = client.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
	client.CloseIdleConnections()
}
