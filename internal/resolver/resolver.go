/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package resolver counts literal occurrences of declared character and place
// names within manuscript prose.
//
// Matching is case-sensitive and whole-word: a definition's canonical name and
// each of its aliases count only where they are not embedded in a longer word.
// Counts cover a node's own prose blocks exclusively, never its descendants',
// which is why container nodes usually report no occurrences at all.
package resolver

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"writedown/internal/ast"
)

// Occurrences maps a definition's canonical name to its occurrence count
// within one node's own prose. Zero counts are omitted.
type Occurrences map[string]int

// Counts maps each structural node to its occurrence tally.
type Counts map[*ast.StructuralNode]Occurrences

// Characters tallies character-name occurrences per structural node.
func Characters(doc *ast.Document) Counts { return resolve(doc, doc.Characters) }

// Places tallies place-name occurrences per structural node.
func Places(doc *ast.Document) Counts { return resolve(doc, doc.Places) }

func resolve(doc *ast.Document, defs []*ast.Definition) Counts {
	counts := Counts{}
	doc.Walk(func(n *ast.StructuralNode) bool {
		occ := Occurrences{}
		for _, def := range defs {
			total := 0
			for _, name := range def.Names() {
				for _, block := range n.Prose {
					total += countWord(block.Text, name)
				}
			}
			if total > 0 {
				occ[def.Name] += total
			}
		}
		if len(occ) > 0 {
			counts[n] = occ
		}
		return true
	})
	return counts
}

// countWord counts whole-word, case-sensitive occurrences of name in text.
// Names may span multiple words; the boundary check applies at both ends.
func countWord(text, name string) int {
	if name == "" {
		return 0
	}
	count, off := 0, 0
	for {
		i := strings.Index(text[off:], name)
		if i < 0 {
			return count
		}
		start := off + i
		end := start + len(name)
		if !wordRuneBefore(text, start) && !wordRuneAt(text, end) {
			count++
		}
		off = end
	}
}

func wordRuneBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordRuneAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// NameCount pairs a definition with its occurrence count for ordered output.
type NameCount struct {
	Def   *ast.Definition
	Count int
}

// Ordered returns the non-zero counts for one node ordered by descending
// count, ties broken by declaration order.
func Ordered(occ Occurrences, defs []*ast.Definition) []NameCount {
	var out []NameCount
	for _, def := range defs {
		if c, ok := occ[def.Name]; ok {
			out = append(out, NameCount{Def: def, Count: c})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
