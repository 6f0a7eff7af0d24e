/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package project locates and loads the Writedown source files of a writing
// project. Discovery prefers an index.wd at the root (which typically pulls
// the rest in via @include), then falls back to every .wd file under the
// root. A writedown.json manifest, when present, pins the source list and
// metric constants instead.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"writedown/internal/ast"
	applog "writedown/internal/log"
	"writedown/internal/parser"
)

const IndexFileName = "index.wd"

// ErrNoSources is returned when discovery finds nothing to parse.
var ErrNoSources = errors.New("no writedown sources found")

// Discover returns the source files for the project at root, in parse order.
func Discover(root string) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		root = "."
	}

	if m, err := LoadManifest(root); err != nil {
		return nil, err
	} else if m != nil && len(m.Sources) > 0 {
		var paths []string
		for _, pattern := range m.Sources {
			matches, err := filepath.Glob(filepath.Join(root, pattern))
			if err != nil {
				return nil, fmt.Errorf("manifest source pattern %q: %w", pattern, err)
			}
			paths = append(paths, matches...)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: manifest sources matched nothing under %s", ErrNoSources, root)
		}
		return paths, nil
	}

	index := filepath.Join(root, IndexFileName)
	if _, err := os.Stat(index); err == nil {
		return []string{index}, nil
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".wd") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: under %s", ErrNoSources, root)
	}
	sort.Strings(paths)
	return paths, nil
}

// Load discovers and parses the project at root. File-level read failures
// are returned per file and do not abort the batch.
func Load(root string) (*ast.Document, []ast.Diagnostic, []error) {
	l := applog.WithOperation(applog.WithComponent("project"), "load")
	paths, err := Discover(root)
	if err != nil {
		return ast.NewDocument(), nil, []error{err}
	}
	l.Debug("sources discovered", slog.Int("count", len(paths)))
	return parser.ParseFiles(paths)
}

// Init scaffolds a starter novel project at path. It refuses to write into a
// non-empty directory.
func Init(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read project root: %w", err)
	}
	if len(entries) != 0 {
		return fmt.Errorf("%s is not empty: refusing to write into a non-empty directory", path)
	}

	files := map[string]string{
		IndexFileName: "@title: Your Novel\n" +
			"@author: Your Name\n" +
			"@include: characters.wd\n" +
			"@include: places.wd\n" +
			"@include: part1/index.wd\n",
		"characters.wd": "@character: Hero\n",
		"places.wd":     "@place: The Place\n",
		filepath.Join("part1", "index.wd"): "# part 1\n" +
			"@include: ch1.wd\n",
		filepath.Join("part1", "ch1.wd"): "## chapter 1\n" +
			"### scene 1\n" +
			"@location: The Place\n" +
			"It all started when Hero walked...\n",
	}
	for name, content := range files {
		full := filepath.Join(path, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", full, err)
		}
	}
	applog.WithComponent("project").Info("project initialized", slog.String("path", path))
	return nil
}
