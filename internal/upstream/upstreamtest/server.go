// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package upstreamtest provides a configurable fake of the streaming service's
// API and CDN for tests. Every request is counted per path.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// API paths served by the fake login chain.
const (
	PathDevice        = "/device/v1/devices"
	PathAnonymous     = "/session/v1/sessions/anonymous"
	PathPassword      = "/identity/v1/identities/authenticate/password"
	PathAuthenticated = "/session/v1/sessions/authenticated"
	PathTune          = "/playback/play/v1/tuneSource"
	PathKeyPrefix     = "/playback/key/v1/"
)

// Server is an httptest server with per-path handlers and call counters.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	calls    map[string]int
	lastAuth map[string]string
	total    int
}

// New starts an empty fake upstream. Unregistered paths answer 404.
func New() *Server {
	s := &Server{
		routes:   make(map[string]http.HandlerFunc),
		calls:    make(map[string]int),
		lastAuth: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.URL.Path]++
	s.total++
	s.lastAuth[r.URL.Path] = r.Header.Get("Authorization")
	h, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle registers h for an exact path, replacing any previous handler.
func (s *Server) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = h
}

// HandleJSON registers a fixed JSON response.
func (s *Server) HandleJSON(path string, status int, body any) {
	s.Handle(path, JSON(status, body))
}

// HandleText registers a fixed plain-text/binary response.
func (s *Server) HandleText(path string, status int, body string) {
	s.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// JSON returns a handler writing body as JSON with the given status.
func JSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// HandleLoginChain installs successful responses for the four login steps.
// The final session token is token.
func (s *Server) HandleLoginChain(token string) {
	s.HandleJSON(PathDevice, http.StatusCreated, map[string]any{"grant": "device-grant"})
	s.HandleJSON(PathAnonymous, http.StatusCreated, map[string]any{"accessToken": "anonymous-token"})
	s.HandleJSON(PathPassword, http.StatusOK, map[string]any{"identityId": "user-1"})
	s.HandleJSON(PathAuthenticated, http.StatusCreated, map[string]any{
		"sessionType": "authenticated",
		"accessToken": token,
	})
}

// Calls returns how many requests hit path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// CallsWithPrefix sums the calls of every path starting with prefix.
func (s *Server) CallsWithPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p, c := range s.calls {
		if strings.HasPrefix(p, prefix) {
			n += c
		}
	}
	return n
}

// Total returns the number of requests received on any path.
func (s *Server) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// LastAuthorization returns the Authorization header of the latest request to path.
func (s *Server) LastAuthorization(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth[path]
}

// BaseURL returns the API root with a trailing slash.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}
