/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"writedown/internal/ast"
)

// Metrics holds the constants used to derive page counts and reading time.
type Metrics struct {
	WordsPerPage   int
	WordsPerMinute int
}

// DefaultMetrics uses industry-average constants.
var DefaultMetrics = Metrics{WordsPerPage: 250, WordsPerMinute: 275}

func (m Metrics) orDefault() Metrics {
	if m.WordsPerPage <= 0 {
		m.WordsPerPage = DefaultMetrics.WordsPerPage
	}
	if m.WordsPerMinute <= 0 {
		m.WordsPerMinute = DefaultMetrics.WordsPerMinute
	}
	return m
}

// Pages estimates the page count for the given wordcount, rounded to the
// nearest whole page.
func (m Metrics) Pages(words int) int {
	m = m.orDefault()
	return int(math.Round(float64(words) / float64(m.WordsPerPage)))
}

// ReadingSeconds estimates reading time in seconds, rounded to the nearest
// second.
func (m Metrics) ReadingSeconds(words int) int {
	m = m.orDefault()
	return int(math.Round(float64(words) * 60 / float64(m.WordsPerMinute)))
}

// FormatReading renders a second count as H:MM:SS.
func FormatReading(seconds int) string {
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

// OwnWords counts the words in the node's own prose blocks only.
func OwnWords(n *ast.StructuralNode) int {
	total := 0
	for _, block := range n.Prose {
		total += len(strings.Fields(block.Text))
	}
	return total
}

// Words counts the words in the node's subtree: its own prose plus the word
// counts of all its children, summed post-order.
func Words(n *ast.StructuralNode) int {
	total := OwnWords(n)
	for _, c := range n.Children {
		total += Words(c)
	}
	return total
}

// OwnChars counts all characters, whitespace included, in the node's own
// prose blocks.
func OwnChars(n *ast.StructuralNode) int {
	total := 0
	for _, block := range n.Prose {
		total += utf8.RuneCountInString(block.Text)
	}
	return total
}

// Chars counts characters over the node's subtree.
func Chars(n *ast.StructuralNode) int {
	total := OwnChars(n)
	for _, c := range n.Children {
		total += Chars(c)
	}
	return total
}

// SessionWords counts the words of exactly the session's claimed prose range.
// Descendant prose never contributes.
func SessionWords(s *ast.Session) int {
	to := s.To
	if to < 0 || to > len(s.Node.Prose) {
		to = len(s.Node.Prose)
	}
	total := 0
	for _, block := range s.Node.Prose[s.From:to] {
		total += len(strings.Fields(block.Text))
	}
	return total
}
