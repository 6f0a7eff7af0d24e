/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package search

import (
	"context"
	"strings"
	"testing"

	"writedown/internal/parser"
)

func buildIndex(t *testing.T) *Index {
	t.Helper()
	doc, diags := parser.Parse(`# part 1 The Climb
## chapter 1 Base Camp
The expedition reached the glacier at dawn.
They pitched the tents in silence.
## chapter 2 The Ridge
The glacier groaned beneath them all night.`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	ix, err := Build(context.Background(), doc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestSearchMatchesProse(t *testing.T) {
	ix := buildIndex(t)
	results, err := ix.Search(context.Background(), Query{Text: "glacier"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if !strings.Contains(results[0].Snippet, "[glacier]") {
		t.Fatalf("snippet not highlighted: %q", results[0].Snippet)
	}
	if results[0].Line != 3 {
		t.Fatalf("unexpected line: %+v", results[0])
	}
	if !strings.Contains(results[0].Path, "Chapter 1: Base Camp") {
		t.Fatalf("unexpected path: %q", results[0].Path)
	}
}

func TestSearchPathFilter(t *testing.T) {
	ix := buildIndex(t)
	results, err := ix.Search(context.Background(), Query{
		Text: "glacier",
		Path: "Part 1: The Climb > Chapter 2",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Path, "Chapter 2") {
		t.Fatalf("path filter failed: %+v", results)
	}
}

func TestSearchNoMatch(t *testing.T) {
	ix := buildIndex(t)
	results, err := ix.Search(context.Background(), Query{Text: "volcano"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

func TestSearchEmptyTextScans(t *testing.T) {
	ix := buildIndex(t)
	results, err := ix.Search(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all 3 blocks, got %+v", results)
	}
}

func TestSearchLimitAndOffset(t *testing.T) {
	ix := buildIndex(t)
	page1, err := ix.Search(context.Background(), Query{Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page2, err := ix.Search(context.Background(), Query{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page1) != 2 || len(page2) != 1 {
		t.Fatalf("pagination wrong: %d + %d", len(page1), len(page2))
	}
}

func TestBuildNilDocument(t *testing.T) {
	if _, err := Build(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}
