/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ast defines the document tree produced by parsing Writedown markup.
//
// A Document is built once by the parser and is read-only afterwards. Because
// no query mutates the tree, a Document may be shared across any number of
// concurrent report queries without locking.
package ast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Position identifies a line in an input source.
type Position struct {
	Source string // file path, or "string" for in-memory input
	Line   int    // 1-based
}

func (p Position) String() string { return fmt.Sprintf("%s:%d", p.Source, p.Line) }

// Span covers a contiguous line range within one source.
type Span struct {
	Source string
	Start  int // 1-based, inclusive
	End    int // inclusive
}

// Diagnostic is a non-fatal problem found while lexing or parsing.
// The parse always returns a best-effort tree alongside its diagnostics.
type Diagnostic struct {
	Pos     Position
	Message string
}

func (d Diagnostic) String() string { return fmt.Sprintf("%s: %s", d.Pos, d.Message) }

// Kind classifies a structural node.
type Kind int

const (
	Unlabeled Kind = iota // heading without a recognized level label
	DocumentKind
	Act
	Part
	Chapter
	Scene
	Section
)

var kindNames = map[Kind]string{
	Unlabeled:    "unlabeled",
	DocumentKind: "document",
	Act:          "act",
	Part:         "part",
	Chapter:      "chapter",
	Scene:        "scene",
	Section:      "section",
}

func (k Kind) String() string { return kindNames[k] }

// Rank orders the labeled kinds from outermost to innermost. Unlabeled and
// DocumentKind have no rank; Rank returns 0 for them.
func (k Kind) Rank() int {
	switch k {
	case Act:
		return 1
	case Part:
		return 2
	case Chapter:
		return 3
	case Scene:
		return 4
	case Section:
		return 5
	}
	return 0
}

// KindFromLabel maps a heading label to its Kind. The second result is false
// when the label is not a structural level name.
func KindFromLabel(label string) (Kind, bool) {
	switch strings.ToLower(label) {
	case "act":
		return Act, true
	case "part":
		return Part, true
	case "chapter":
		return Chapter, true
	case "scene":
		return Scene, true
	case "section":
		return Section, true
	}
	return Unlabeled, false
}

// ProseBlock is one line of manuscript text owned by a single structural node.
type ProseBlock struct {
	Pos  Position
	Text string
}

// InfoKind classifies an inline annotation.
type InfoKind int

const (
	InfoLocation InfoKind = iota
	InfoTag
	InfoTodo
	InfoComment
	InfoNote
)

var infoNames = map[InfoKind]string{
	InfoLocation: "location",
	InfoTag:      "tag",
	InfoTodo:     "todo",
	InfoComment:  "comment",
	InfoNote:     "note",
}

func (k InfoKind) String() string { return infoNames[k] }

// InfoNode is an inline annotation attached to the nearest enclosing
// structural node, in encounter order.
type InfoNode struct {
	Kind InfoKind
	Text string
	Pos  Position
}

// Session marks a writing session. It claims the owning node's prose blocks
// in the half-open index range [From, To); the actual wordcount over that
// range is always computed on demand, never stored.
type Session struct {
	Node   *StructuralNode
	Pos    Position
	Date   time.Time // zero when no date was given
	Title  string
	Target int // 0 when no target was given
	From   int
	To     int
}

func (s *Session) String() string {
	parts := []string{"Session"}
	if !s.Date.IsZero() {
		parts = append(parts, s.Date.Format("1/2/2006"))
	}
	if s.Title != "" {
		parts = append(parts, s.Title)
	}
	return strings.Join(parts, " ")
}

// StructuralNode is a manuscript division: an act, part, chapter, scene,
// section, an unlabeled heading, or the document-level pseudo root.
//
// Status, Tags and Target are literal own-node values; they are never
// inherited from or summed with descendants. Parent is a non-owning
// back-reference used only for upward traversal.
type StructuralNode struct {
	Kind      Kind
	Number    int // 0 when the heading carried no sequence number
	Title     string
	Depth     int
	Span      Span
	Parent    *StructuralNode
	Children  []*StructuralNode
	Prose     []ProseBlock
	Status    string
	Tags      []string // set semantics, insertion order preserved
	Target    int
	HasTarget bool
	Notes     []InfoNode
	Sessions  []*Session
}

// Heading returns a display label for the node, e.g. "Part 1: The Fall",
// "Chapter 2", or the bare title for unlabeled headings.
func (n *StructuralNode) Heading() string {
	if n.Kind == DocumentKind {
		return "Document"
	}
	if n.Kind == Unlabeled {
		if n.Title != "" {
			return n.Title
		}
		return "Untitled"
	}
	var b strings.Builder
	b.WriteString(strings.ToUpper(kindNames[n.Kind][:1]) + kindNames[n.Kind][1:])
	if n.Number > 0 {
		b.WriteString(" " + strconv.Itoa(n.Number))
	}
	if n.Title != "" {
		if n.Number > 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(n.Title)
	}
	return b.String()
}

// Path returns the structural lineage of the node from the outermost ancestor
// down to the node itself, in the form "Part 1 > Chapter 2 > Scene 1".
func (n *StructuralNode) Path() string {
	var names []string
	for cur := n; cur != nil && cur.Kind != DocumentKind; cur = cur.Parent {
		names = append(names, cur.Heading())
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " > ")
}

// Walk visits the node and all its descendants in document order. Traversal
// stops when fn returns false for a node's subtree.
func (n *StructuralNode) Walk(fn func(*StructuralNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Definition declares a character or place. The canonical name is unique
// (case-sensitive) within a Document; duplicate declarations merge their
// aliases and description into the first one.
type Definition struct {
	Name        string
	Aliases     []string
	Description string
	Pos         Position
}

// Names returns the canonical name followed by all aliases.
func (d *Definition) Names() []string {
	return append([]string{d.Name}, d.Aliases...)
}

// Document is the root of a parsed manuscript. Root is a pseudo structural
// node of kind DocumentKind; the document's top-level nodes are its children,
// and prose or annotations appearing before any heading attach to it.
type Document struct {
	Title      string
	Author     string
	Root       *StructuralNode
	Characters []*Definition // declaration order
	Places     []*Definition // declaration order
	Sessions   []*Session    // document order
}

// NewDocument returns an empty document with an initialized root node.
func NewDocument() *Document {
	return &Document{Root: &StructuralNode{Kind: DocumentKind}}
}

// Walk visits every structural node in document order, starting at the root.
func (d *Document) Walk(fn func(*StructuralNode) bool) { d.Root.Walk(fn) }

// Character looks up a character definition by canonical name or alias.
func (d *Document) Character(name string) *Definition { return lookup(d.Characters, name) }

// Place looks up a place definition by canonical name or alias.
func (d *Document) Place(name string) *Definition { return lookup(d.Places, name) }

func lookup(defs []*Definition, name string) *Definition {
	for _, def := range defs {
		if def.Name == name {
			return def
		}
		for _, a := range def.Aliases {
			if a == name {
				return def
			}
		}
	}
	return nil
}
