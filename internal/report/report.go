/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package report computes derived views over a parsed document.
//
// Every function here is a pure, read-only tree walk: nothing mutates the
// document, results are recomputed from the tree on each call, and the
// functions may run concurrently against one document without locking.
// Rows are returned in document order for external formatting.
package report

import (
	"errors"
	"fmt"
	"strings"

	"writedown/internal/ast"
	"writedown/internal/resolver"
)

// ErrNodeNotFound is returned by path-scoped queries when no structural node
// matches the requested path.
var ErrNodeNotFound = errors.New("node not found")

// Row identifies one structural node within a report. Level is the node's
// distance from the document root, independent of the heading marker depth,
// so skipped heading levels still render as a contiguous outline.
type Row struct {
	Node  *ast.StructuralNode
	Level int
}

func walkRows(doc *ast.Document, fn func(Row)) {
	var rec func(n *ast.StructuralNode, level int)
	rec = func(n *ast.StructuralNode, level int) {
		fn(Row{Node: n, Level: level})
		for _, c := range n.Children {
			rec(c, level+1)
		}
	}
	rec(doc.Root, 0)
}

// Info is the flat tally summary of a document.
type Info struct {
	Title      string
	Author     string
	Structure  map[ast.Kind]int
	Characters int
	Places     int
	Notes      map[ast.InfoKind]int
	Sessions   int
}

// Summarize tallies structural node kinds, definition kinds, and annotation
// kinds across the whole tree.
func Summarize(doc *ast.Document) Info {
	info := Info{
		Title:      doc.Title,
		Author:     doc.Author,
		Structure:  map[ast.Kind]int{},
		Notes:      map[ast.InfoKind]int{},
		Characters: len(doc.Characters),
		Places:     len(doc.Places),
		Sessions:   len(doc.Sessions),
	}
	doc.Walk(func(n *ast.StructuralNode) bool {
		if n.Kind != ast.DocumentKind {
			info.Structure[n.Kind]++
		}
		for _, note := range n.Notes {
			info.Notes[note.Kind]++
		}
		return true
	})
	return info
}

// WordcountRow carries the subtree aggregates for one node.
type WordcountRow struct {
	Row
	Words   int
	Chars   int
	Pages   int
	Reading int // seconds
}

// Wordcount computes subtree word/character counts, page estimates and
// reading time for every structural node. Pass the zero Metrics for the
// default constants.
func Wordcount(doc *ast.Document, m Metrics) []WordcountRow {
	m = m.orDefault()
	var rows []WordcountRow
	walkRows(doc, func(r Row) {
		w := Words(r.Node)
		rows = append(rows, WordcountRow{
			Row:     r,
			Words:   w,
			Chars:   Chars(r.Node),
			Pages:   m.Pages(w),
			Reading: m.ReadingSeconds(w),
		})
	})
	return rows
}

// MentionRow lists name occurrences within one node's own prose. Mentions is
// empty for nodes whose own prose references no declared name, container
// nodes included.
type MentionRow struct {
	Row
	Mentions []resolver.NameCount
}

// Characters reports per-node character mentions, ordered by descending count
// then declaration order.
func Characters(doc *ast.Document) []MentionRow {
	return mentions(doc, resolver.Characters(doc), doc.Characters)
}

// Locations reports per-node place mentions.
func Locations(doc *ast.Document) []MentionRow {
	return mentions(doc, resolver.Places(doc), doc.Places)
}

func mentions(doc *ast.Document, counts resolver.Counts, defs []*ast.Definition) []MentionRow {
	var rows []MentionRow
	walkRows(doc, func(r Row) {
		rows = append(rows, MentionRow{Row: r, Mentions: resolver.Ordered(counts[r.Node], defs)})
	})
	return rows
}

// StatusRow carries a node's own literal status; empty when none was set.
type StatusRow struct {
	Row
	Status string
}

// Status reports the literal status per node. Statuses are never inherited.
func Status(doc *ast.Document) []StatusRow {
	var rows []StatusRow
	walkRows(doc, func(r Row) {
		rows = append(rows, StatusRow{Row: r, Status: r.Node.Status})
	})
	return rows
}

// TagsRow carries a node's own tags in insertion order.
type TagsRow struct {
	Row
	Tags []string
}

// Tags reports the literal tag set per node.
func Tags(doc *ast.Document) []TagsRow {
	var rows []TagsRow
	walkRows(doc, func(r Row) {
		rows = append(rows, TagsRow{Row: r, Tags: r.Node.Tags})
	})
	return rows
}

// TargetRow compares a node's own target against its subtree wordcount.
// HasTarget is false, and Delta meaningless, when no target was declared at
// exactly this node; descendant targets never propagate upward.
type TargetRow struct {
	Row
	Target    int
	HasTarget bool
	Actual    int
	Delta     int
}

// Targets reports target/actual/delta per node.
func Targets(doc *ast.Document) []TargetRow {
	var rows []TargetRow
	walkRows(doc, func(r Row) {
		row := TargetRow{Row: r, Actual: Words(r.Node)}
		if r.Node.HasTarget {
			row.Target, row.HasTarget = r.Node.Target, true
			row.Delta = row.Actual - row.Target
		}
		rows = append(rows, row)
	})
	return rows
}

// SessionRow carries one writing session with its computed wordcount.
type SessionRow struct {
	Session   *ast.Session
	Target    int
	HasTarget bool
	Actual    int
	Delta     int
}

// Sessions reports every session in document order. Actual counts only the
// session's claimed prose range.
func Sessions(doc *ast.Document) []SessionRow {
	var rows []SessionRow
	for _, s := range doc.Sessions {
		row := SessionRow{Session: s, Actual: SessionWords(s)}
		if s.Target > 0 {
			row.Target, row.HasTarget = s.Target, true
			row.Delta = row.Actual - row.Target
		}
		rows = append(rows, row)
	}
	return rows
}

// TodoRow carries a node's directly-owned todos. Rows exist only for nodes
// whose subtree contains at least one todo; everything else, intermediate
// ancestors included, is pruned.
type TodoRow struct {
	Row
	Todos []ast.InfoNode
}

// Todos reports the pruned todo view in document order.
func Todos(doc *ast.Document) []TodoRow {
	var rows []TodoRow
	var rec func(n *ast.StructuralNode, level int)
	rec = func(n *ast.StructuralNode, level int) {
		if !hasTodo(n) {
			return
		}
		var own []ast.InfoNode
		for _, note := range n.Notes {
			if note.Kind == ast.InfoTodo {
				own = append(own, note)
			}
		}
		rows = append(rows, TodoRow{Row: Row{Node: n, Level: level}, Todos: own})
		for _, c := range n.Children {
			rec(c, level+1)
		}
	}
	rec(doc.Root, 0)
	return rows
}

func hasTodo(n *ast.StructuralNode) bool {
	for _, note := range n.Notes {
		if note.Kind == ast.InfoTodo {
			return true
		}
	}
	for _, c := range n.Children {
		if hasTodo(c) {
			return true
		}
	}
	return false
}

// Find resolves a path of the form "Part 1/Chapter 2/Scene 1" against the
// tree. Each segment matches a child's heading or bare title,
// case-insensitively. It returns ErrNodeNotFound when no node matches.
func Find(doc *ast.Document, path string) (*ast.StructuralNode, error) {
	cur := doc.Root
	for _, seg := range strings.Split(path, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		var next *ast.StructuralNode
		for _, c := range cur.Children {
			if strings.EqualFold(c.Heading(), seg) || strings.EqualFold(c.Title, seg) {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// WordcountAt computes the wordcount aggregates for the subtree at path.
func WordcountAt(doc *ast.Document, path string, m Metrics) (WordcountRow, error) {
	n, err := Find(doc, path)
	if err != nil {
		return WordcountRow{}, err
	}
	m = m.orDefault()
	w := Words(n)
	return WordcountRow{
		Row:     Row{Node: n},
		Words:   w,
		Chars:   Chars(n),
		Pages:   m.Pages(w),
		Reading: m.ReadingSeconds(w),
	}, nil
}
