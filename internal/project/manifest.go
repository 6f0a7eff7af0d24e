/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"writedown/internal/report"
)

const ManifestFileName = "writedown.json"

// Manifest is the optional project manifest. Sources are glob patterns
// relative to the project root, parsed in the listed order.
type Manifest struct {
	Name    string   `json:"name"`
	Author  string   `json:"author,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Metrics struct {
		WordsPerPage   int `json:"words_per_page,omitempty"`
		WordsPerMinute int `json:"words_per_minute,omitempty"`
	} `json:"metrics,omitempty"`
}

const manifestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"author": {"type": "string"},
		"sources": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"metrics": {
			"type": "object",
			"properties": {
				"words_per_page": {"type": "integer", "minimum": 1},
				"words_per_minute": {"type": "integer", "minimum": 1}
			},
			"additionalProperties": false
		}
	},
	"additionalProperties": false
}`

// LoadManifest reads and validates the manifest at root. It returns
// (nil, nil) when no manifest exists.
func LoadManifest(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate manifest %s: %w", path, err)
	}
	if !res.Valid() {
		var msgs []string
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("manifest %s is invalid: %s", path, strings.Join(msgs, "; "))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Metrics returns the metric constants for the project at root: values pinned
// by the manifest win over the given defaults, field by field.
func Metrics(root string, def report.Metrics) (report.Metrics, error) {
	m, err := LoadManifest(root)
	if err != nil {
		return def, err
	}
	if m == nil {
		return def, nil
	}
	if m.Metrics.WordsPerPage > 0 {
		def.WordsPerPage = m.Metrics.WordsPerPage
	}
	if m.Metrics.WordsPerMinute > 0 {
		def.WordsPerMinute = m.Metrics.WordsPerMinute
	}
	return def, nil
}
