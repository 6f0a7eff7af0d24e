/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package report

import (
	"testing"

	"writedown/internal/ast"
)

func proseNode(texts ...string) *ast.StructuralNode {
	n := &ast.StructuralNode{Kind: ast.Chapter}
	for _, s := range texts {
		n.Prose = append(n.Prose, ast.ProseBlock{Text: s})
	}
	return n
}

func TestWordAndCharCounts(t *testing.T) {
	n := proseNode("one two  three", "four")
	if got := OwnWords(n); got != 4 {
		t.Fatalf("OwnWords = %d, want 4", got)
	}
	// 14 runes in the first block, 4 in the second, whitespace included.
	if got := OwnChars(n); got != 18 {
		t.Fatalf("OwnChars = %d, want 18", got)
	}
}

func TestSubtreeCountsSumPostOrder(t *testing.T) {
	parent := proseNode("alpha beta")
	childA := proseNode("gamma")
	childB := proseNode("delta epsilon zeta")
	grand := proseNode("eta")
	childB.Children = append(childB.Children, grand)
	parent.Children = append(parent.Children, childA, childB)

	if got := Words(parent); got != 7 {
		t.Fatalf("Words = %d, want 7", got)
	}
	if got := Words(childB); got != 4 {
		t.Fatalf("Words(childB) = %d, want 4", got)
	}
	if got := OwnWords(parent); got != 2 {
		t.Fatalf("OwnWords = %d, want 2", got)
	}
	wantChars := len("alpha beta") + len("gamma") + len("delta epsilon zeta") + len("eta")
	if got := Chars(parent); got != wantChars {
		t.Fatalf("Chars = %d, want %d", got, wantChars)
	}
}

func TestCharsCountRunesNotBytes(t *testing.T) {
	n := proseNode("héllo wörld")
	if got := OwnChars(n); got != 11 {
		t.Fatalf("OwnChars = %d, want 11", got)
	}
}

func TestPagesRoundToNearest(t *testing.T) {
	m := DefaultMetrics
	cases := []struct{ words, pages int }{
		{0, 0},
		{124, 0},
		{125, 1},
		{250, 1},
		{326, 1},
		{375, 2},
		{1000, 4},
	}
	for _, tc := range cases {
		if got := m.Pages(tc.words); got != tc.pages {
			t.Fatalf("Pages(%d) = %d, want %d", tc.words, got, tc.pages)
		}
	}
}

func TestReadingTime(t *testing.T) {
	m := DefaultMetrics
	if got := m.ReadingSeconds(326); got != 71 {
		t.Fatalf("ReadingSeconds(326) = %d, want 71", got)
	}
	if got := m.ReadingSeconds(275); got != 60 {
		t.Fatalf("ReadingSeconds(275) = %d, want 60", got)
	}
	if got := FormatReading(71); got != "0:01:11" {
		t.Fatalf("FormatReading(71) = %q", got)
	}
	if got := FormatReading(3723); got != "1:02:03" {
		t.Fatalf("FormatReading(3723) = %q", got)
	}
	if got := FormatReading(0); got != "0:00:00" {
		t.Fatalf("FormatReading(0) = %q", got)
	}
}

func TestZeroMetricsFallBackToDefaults(t *testing.T) {
	var m Metrics
	if got := m.Pages(250); got != 1 {
		t.Fatalf("zero-value Pages(250) = %d, want 1", got)
	}
	if got := m.ReadingSeconds(275); got != 60 {
		t.Fatalf("zero-value ReadingSeconds(275) = %d, want 60", got)
	}
}

func TestSessionWordsClaimedRangeOnly(t *testing.T) {
	n := proseNode("before before", "one two three", "four five", "after")
	child := proseNode("child prose never counts")
	n.Children = append(n.Children, child)

	s := &ast.Session{Node: n, From: 1, To: 3}
	if got := SessionWords(s); got != 5 {
		t.Fatalf("SessionWords = %d, want 5", got)
	}

	open := &ast.Session{Node: n, From: 3, To: -1}
	if got := SessionWords(open); got != 1 {
		t.Fatalf("open SessionWords = %d, want 1", got)
	}

	empty := &ast.Session{Node: n, From: 4, To: 4}
	if got := SessionWords(empty); got != 0 {
		t.Fatalf("empty SessionWords = %d, want 0", got)
	}
}
