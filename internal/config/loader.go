// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "fmt"

// Loader builds an AppConfig from defaults, an optional YAML file and the environment.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a loader. An empty configPath means ENV-only configuration.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Path returns the YAML file path, possibly empty.
func (l *Loader) Path() string { return l.configPath }

// Load resolves and validates the configuration.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version
	cfg.ConfigPath = l.configPath

	if l.configPath != "" {
		fileCfg, err := loadFile(l.configPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
		mergeFileConfig(&cfg, fileCfg)
	}

	mergeEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
