/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a parsed document into the supported output
// formats: writedown markup, plain text, stripped text, a debug dump, and
// PDF (final and draft proof). Every renderer is a read-only consumer of the
// document tree.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"writedown/internal/ast"
)

// Markup serializes the document back to Writedown markup. The output parses
// to a tree equal in structure, titles, numbers, tags, status, targets,
// definitions, and session ranges; blank-line layout is normalized.
func Markup(w io.Writer, doc *ast.Document) error {
	bw := bufio.NewWriter(w)

	if doc.Title != "" {
		fmt.Fprintf(bw, "@title: %s\n", doc.Title)
	}
	if doc.Author != "" {
		fmt.Fprintf(bw, "@author: %s\n", doc.Author)
	}
	writeDefinitions(bw, "character", doc.Characters)
	writeDefinitions(bw, "place", doc.Places)

	// Document-level prose and annotations come before the first heading so
	// they reattach to the root on reparse.
	writeBody(bw, doc.Root)

	for _, n := range doc.Root.Children {
		writeNode(bw, n)
	}
	return bw.Flush()
}

func writeDefinitions(w *bufio.Writer, kind string, defs []*ast.Definition) {
	for _, def := range defs {
		names := strings.Join(def.Names(), ", ")
		fmt.Fprintf(w, "@%s: %s\n", kind, names)
		if def.Description != "" {
			fmt.Fprintln(w, def.Description)
		}
		fmt.Fprintln(w)
	}
}

func writeNode(w *bufio.Writer, n *ast.StructuralNode) {
	fmt.Fprintln(w)
	w.WriteString(strings.Repeat("#", n.Depth))
	if n.Kind != ast.Unlabeled {
		fmt.Fprintf(w, " %s", n.Kind)
		if n.Number > 0 {
			fmt.Fprintf(w, " %d", n.Number)
		}
	}
	if n.Title != "" {
		fmt.Fprintf(w, " %s", n.Title)
	}
	fmt.Fprintln(w)

	writeBody(w, n)
	for _, c := range n.Children {
		writeNode(w, c)
	}
}

// writeBody emits a node's own directives, prose, and session markers. Prose
// and sessions interleave by claimed range so the ranges survive a reparse.
func writeBody(w *bufio.Writer, n *ast.StructuralNode) {
	if n.Status != "" {
		fmt.Fprintf(w, "@status: %s\n", n.Status)
	}
	if len(n.Tags) > 0 {
		fmt.Fprintf(w, "@tag: %s\n", strings.Join(n.Tags, " "))
	}
	if n.HasTarget {
		fmt.Fprintf(w, "@target: %d\n", n.Target)
	}
	for _, note := range n.Notes {
		if note.Kind == ast.InfoTag {
			continue // already emitted via the tag set
		}
		fmt.Fprintf(w, "@%s: %s\n", note.Kind, note.Text)
	}

	// A @session marker implies the end of the previous session, so an
	// explicit @end is only needed when a session closes with prose after it
	// and no successor session opening at the same block.
	for i := 0; i <= len(n.Prose); i++ {
		if closedAt(n, i) && !startsAt(n, i) {
			fmt.Fprintln(w, "@end:")
		}
		for _, s := range n.Sessions {
			if s.From == i {
				writeSession(w, s)
			}
		}
		if i < len(n.Prose) {
			fmt.Fprintln(w, n.Prose[i].Text)
		}
	}
}

func startsAt(n *ast.StructuralNode, i int) bool {
	for _, s := range n.Sessions {
		if s.From == i {
			return true
		}
	}
	return false
}

func closedAt(n *ast.StructuralNode, i int) bool {
	for _, s := range n.Sessions {
		if s.To == i && i < len(n.Prose) {
			return true
		}
	}
	return false
}

func writeSession(w *bufio.Writer, s *ast.Session) {
	parts := []string{}
	if !s.Date.IsZero() {
		parts = append(parts, s.Date.Format("1/2/2006"))
	}
	if s.Target > 0 {
		parts = append(parts, fmt.Sprintf("%d", s.Target))
	}
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	fmt.Fprintf(w, "@session: %s\n", strings.Join(parts, " "))
}
