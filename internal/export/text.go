/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"io"

	"writedown/internal/ast"
)

// Text renders a plain-text reading view: title, author, headings, prose.
// Annotations and definitions are omitted.
func Text(w io.Writer, doc *ast.Document) error {
	bw := bufio.NewWriter(w)
	if doc.Title != "" {
		fmt.Fprintln(bw, doc.Title)
	}
	if doc.Author != "" {
		fmt.Fprintf(bw, "by %s\n", doc.Author)
	}
	var walk func(n *ast.StructuralNode)
	walk = func(n *ast.StructuralNode) {
		if n.Kind != ast.DocumentKind {
			// Scene breaks read as blank separation, not as headings.
			if n.Kind == ast.Scene {
				fmt.Fprintln(bw)
			} else {
				fmt.Fprintf(bw, "\n%s\n", n.Heading())
			}
		}
		for _, block := range n.Prose {
			fmt.Fprintln(bw, block.Text)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Root)
	return bw.Flush()
}

// Strip renders only the manuscript prose with all markup removed.
func Strip(w io.Writer, doc *ast.Document) error {
	bw := bufio.NewWriter(w)
	var walk func(n *ast.StructuralNode)
	walk = func(n *ast.StructuralNode) {
		for _, block := range n.Prose {
			fmt.Fprintln(bw, block.Text)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Root)
	return bw.Flush()
}

// Dump renders the full tree with provenance for troubleshooting.
func Dump(w io.Writer, doc *ast.Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "document title=%q author=%q characters=%d places=%d sessions=%d\n",
		doc.Title, doc.Author, len(doc.Characters), len(doc.Places), len(doc.Sessions))
	var walk func(n *ast.StructuralNode, indent string)
	walk = func(n *ast.StructuralNode, indent string) {
		if n.Kind != ast.DocumentKind {
			fmt.Fprintf(bw, "%s%s [%s:%d-%d]", indent, n.Heading(), n.Span.Source, n.Span.Start, n.Span.End)
			if n.Status != "" {
				fmt.Fprintf(bw, " status=%s", n.Status)
			}
			if n.HasTarget {
				fmt.Fprintf(bw, " target=%d", n.Target)
			}
			if len(n.Tags) > 0 {
				fmt.Fprintf(bw, " tags=%v", n.Tags)
			}
			fmt.Fprintln(bw)
		}
		for _, note := range n.Notes {
			fmt.Fprintf(bw, "%s  %s: %s [%s]\n", indent, note.Kind, note.Text, note.Pos)
		}
		for _, s := range n.Sessions {
			fmt.Fprintf(bw, "%s  %s claims prose %d..%d [%s]\n", indent, s, s.From, s.To, s.Pos)
		}
		fmt.Fprintf(bw, "%s  prose: %d block(s)\n", indent, len(n.Prose))
		for _, c := range n.Children {
			walk(c, indent+"  ")
		}
	}
	walk(doc.Root, "")
	return bw.Flush()
}
