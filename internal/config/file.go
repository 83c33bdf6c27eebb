// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the YAML layout. Zero values mean "not set".
type FileConfig struct {
	Account struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"account"`
	Listen struct {
		IP   string `yaml:"ip"`
		Port int    `yaml:"port"`
	} `yaml:"listen"`
	Upstream struct {
		BaseURL   string        `yaml:"baseURL"`
		CDNURL    string        `yaml:"cdnURL"`
		UserAgent string        `yaml:"userAgent"`
		RateLimit *float64      `yaml:"rateLimit"`
		RateBurst int           `yaml:"rateBurst"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"upstream"`
	Stream struct {
		Bitrate string `yaml:"bitrate"`
	} `yaml:"stream"`
	Relay struct {
		RateLimit int `yaml:"rateLimit"`
	} `yaml:"relay"`
	Admin struct {
		ListenAddr string `yaml:"listenAddr"`
	} `yaml:"admin"`
	Tracing struct {
		Enabled      *bool    `yaml:"enabled"`
		Exporter     string   `yaml:"exporter"`
		Endpoint     string   `yaml:"endpoint"`
		SamplingRate *float64 `yaml:"samplingRate"`
	} `yaml:"tracing"`
	PlaylistPath string `yaml:"playlistPath"`
	LogLevel     string `yaml:"logLevel"`
}

// loadFile loads configuration from a YAML file with STRICT parsing.
// Unknown fields will cause a fatal error to prevent misconfiguration.
func loadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

// mergeFileConfig copies every key set in src over dst. Credentials expand ${VAR}.
func mergeFileConfig(dst *AppConfig, src *FileConfig) {
	if src.Account.Username != "" {
		dst.Account.Username = os.ExpandEnv(src.Account.Username)
	}
	if src.Account.Password != "" {
		dst.Account.Password = os.ExpandEnv(src.Account.Password)
	}
	if src.Listen.IP != "" {
		dst.Listen.IP = src.Listen.IP
	}
	if src.Listen.Port != 0 {
		dst.Listen.Port = src.Listen.Port
	}
	if src.Upstream.BaseURL != "" {
		dst.Upstream.BaseURL = src.Upstream.BaseURL
	}
	if src.Upstream.CDNURL != "" {
		dst.Upstream.CDNURL = src.Upstream.CDNURL
	}
	if src.Upstream.UserAgent != "" {
		dst.Upstream.UserAgent = src.Upstream.UserAgent
	}
	if src.Upstream.RateLimit != nil {
		dst.Upstream.RateLimit = *src.Upstream.RateLimit
	}
	if src.Upstream.RateBurst != 0 {
		dst.Upstream.RateBurst = src.Upstream.RateBurst
	}
	if src.Upstream.Timeout != 0 {
		dst.Upstream.Timeout = src.Upstream.Timeout
	}
	if src.Stream.Bitrate != "" {
		dst.Stream.Bitrate = src.Stream.Bitrate
	}
	if src.Relay.RateLimit != 0 {
		dst.Relay.RateLimit = src.Relay.RateLimit
	}
	if src.Admin.ListenAddr != "" {
		dst.Admin.ListenAddr = src.Admin.ListenAddr
	}
	if src.Tracing.Enabled != nil {
		dst.Tracing.Enabled = *src.Tracing.Enabled
	}
	if src.Tracing.Exporter != "" {
		dst.Tracing.Exporter = src.Tracing.Exporter
	}
	if src.Tracing.Endpoint != "" {
		dst.Tracing.Endpoint = src.Tracing.Endpoint
	}
	if src.Tracing.SamplingRate != nil {
		dst.Tracing.SamplingRate = *src.Tracing.SamplingRate
	}
	if src.PlaylistPath != "" {
		dst.PlaylistPath = src.PlaylistPath
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}
