/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	t.Setenv("WD_CONFIG_DIR", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Metrics.WordsPerPage != 250 || cfg.Metrics.WordsPerMinute != 275 {
		t.Fatalf("unexpected default metrics: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default logging: %+v", cfg.Logging)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("WD_CONFIG_DIR", t.TempDir())
	cfg := Defaults()
	cfg.Metrics.WordsPerPage = 300
	cfg.Logging.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Metrics.WordsPerPage != 300 || got.Logging.Level != "debug" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WD_CONFIG_DIR", dir)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("metrics:\n  words_per_page: 400\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Metrics.WordsPerPage != 400 {
		t.Fatalf("file value not applied: %+v", cfg.Metrics)
	}
	if cfg.Metrics.WordsPerMinute != 275 {
		t.Fatalf("unset value lost its default: %+v", cfg.Metrics)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WD_CONFIG_DIR", t.TempDir())
	t.Setenv(EnvWordsPerPage, "500")
	t.Setenv(EnvLogLevel, "warn")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Metrics.WordsPerPage != 500 {
		t.Fatalf("env metric override ignored: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("env logging override ignored: %+v", cfg.Logging)
	}
}

func TestBadEnvValuesIgnored(t *testing.T) {
	t.Setenv("WD_CONFIG_DIR", t.TempDir())
	t.Setenv(EnvWordsPerPage, "banana")
	t.Setenv(EnvWordsPerMinute, "-3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Metrics.WordsPerPage != 250 || cfg.Metrics.WordsPerMinute != 275 {
		t.Fatalf("bad env values applied: %+v", cfg.Metrics)
	}
}

func TestLoadParseError(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WD_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("metrics: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
