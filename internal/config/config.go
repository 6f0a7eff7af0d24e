/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user-editable writedown configuration from a YAML
// file in the user scope. Environment variables are read-only overrides at
// runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MetricsConfig holds the constants used for derived statistics.
type MetricsConfig struct {
	WordsPerPage   int `yaml:"words_per_page"`
	WordsPerMinute int `yaml:"words_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// AppConfig is the persisted configuration.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Metrics       MetricsConfig `yaml:"metrics"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Metrics:       MetricsConfig{WordsPerPage: 250, WordsPerMinute: 275},
		Logging:       LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvWordsPerPage   = "WD_WORDS_PER_PAGE"
	EnvWordsPerMinute = "WD_WORDS_PER_MINUTE"
	EnvLogLevel       = "WD_LOG_LEVEL"
	EnvLogFormat      = "WD_LOG_FORMAT"
	EnvLogFile        = "WD_LOG_FILE"
)

// Path returns the config file location in the user scope, honoring
// WD_CONFIG_DIR for tests and portable setups.
func Path() (string, error) {
	if dir := os.Getenv("WD_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "config.yaml"), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "writedown", "config.yaml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run; defaults apply.
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Save writes the config file, creating the directory as needed.
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvWordsPerPage); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Metrics.WordsPerPage = n
		}
	}
	if v := os.Getenv(EnvWordsPerMinute); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Metrics.WordsPerMinute = n
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

func (c *AppConfig) normalize() {
	if c.Metrics.WordsPerPage <= 0 {
		c.Metrics.WordsPerPage = 250
	}
	if c.Metrics.WordsPerMinute <= 0 {
		c.Metrics.WordsPerMinute = 275
	}
}
