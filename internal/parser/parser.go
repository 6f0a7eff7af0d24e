/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package parser builds the Writedown document tree from classified lines.
//
// The builder consumes the lexer stream once, maintaining a stack of open
// structural nodes keyed by depth. It never aborts on malformed content:
// problems are collected as diagnostics and the best-effort tree is returned,
// because manuscripts are edited incrementally and must stay parseable
// mid-edit. Only I/O failures are reported as errors, and when parsing a
// batch of files such a failure is fatal for that file only.
package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"writedown/internal/ast"
	"writedown/internal/lexer"
	applog "writedown/internal/log"
)

// ErrInput marks I/O-level failures (unreadable file, include resolution).
// Content problems never produce errors, only diagnostics.
var ErrInput = errors.New("input error")

// Valid status labels. Anything else is accepted but flagged.
var knownStatuses = map[string]bool{"new": true, "draft": true, "revision": true, "done": true}

// StringSource is the position source used for in-memory input.
const StringSource = "string"

// Parse parses in-memory Writedown content. Include directives cannot be
// resolved for string input and are reported as diagnostics.
func Parse(input string) (*ast.Document, []ast.Diagnostic) {
	b := newBuilder(nil)
	b.consume(StringSource, strings.NewReader(input))
	b.endFile()
	return b.finish()
}

// ParseFile parses a single file. The returned error wraps ErrInput and is
// non-nil only when the file cannot be read.
func ParseFile(path string) (*ast.Document, []ast.Diagnostic, error) {
	doc, diags, errs := ParseFiles([]string{path})
	if len(errs) > 0 {
		return doc, diags, errs[0]
	}
	return doc, diags, nil
}

// ParseFiles parses the given files in order into one document. Structural
// nodes may span file boundaries; open sessions are closed at the end of each
// file. An unreadable file contributes an ErrInput-wrapped error and the
// remaining files are still parsed.
func ParseFiles(paths []string) (*ast.Document, []ast.Diagnostic, []error) {
	l := applog.WithComponent("parser")
	b := newBuilder(func(path string) (io.ReadCloser, error) { return os.Open(path) })
	var errs []error
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			l.Warn("skipping unreadable file", slog.String("path", path), slog.Any("err", err))
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInput, path, err))
			continue
		}
		b.consume(path, f)
		f.Close()
		b.endFile()
	}
	doc, diags := b.finish()
	return doc, diags, errs
}

type builder struct {
	doc   *ast.Document
	stack []*ast.StructuralNode // stack[0] is always the document root
	diags []ast.Diagnostic
	seqs  map[*ast.StructuralNode]map[ast.Kind]int
	open  func(path string) (io.ReadCloser, error)
	// active character/place declaration collecting description prose
	pending   *ast.Definition
	including map[string]bool
	done      bool
}

func newBuilder(open func(string) (io.ReadCloser, error)) *builder {
	doc := ast.NewDocument()
	return &builder{
		doc:       doc,
		stack:     []*ast.StructuralNode{doc.Root},
		seqs:      map[*ast.StructuralNode]map[ast.Kind]int{},
		open:      open,
		including: map[string]bool{},
	}
}

func (b *builder) top() *ast.StructuralNode { return b.stack[len(b.stack)-1] }

func (b *builder) report(pos ast.Position, format string, args ...any) {
	b.diags = append(b.diags, ast.Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// consume feeds one source into the builder. It recurses for includes.
func (b *builder) consume(source string, r io.Reader) {
	sc := lexer.New(source, r)
	for sc.Scan() {
		ln := sc.Line()
		switch ln.Class {
		case lexer.Blank:
			b.pending = nil
		case lexer.Heading:
			b.heading(ln)
		case lexer.Directive:
			b.directive(ln)
		case lexer.Prose:
			b.prose(ln)
		}
		if ln.Class != lexer.Blank {
			b.extendSpans(ln.Pos)
		}
	}
	if err := sc.Err(); err != nil {
		b.report(ast.Position{Source: source, Line: 0}, "read failed: %v", err)
	}
	b.diags = append(b.diags, sc.Diagnostics()...)
}

// extendSpans covers every open node through pos within its own source.
func (b *builder) extendSpans(pos ast.Position) {
	for _, n := range b.stack {
		if n.Span.Source == pos.Source && pos.Line > n.Span.End {
			n.Span.End = pos.Line
		}
	}
}

func (b *builder) heading(ln lexer.Line) {
	b.pending = nil

	// Close nodes at the same or deeper levels; equal depth opens a sibling,
	// not a nested child. Levels may be skipped in either direction.
	for len(b.stack) > 1 && b.top().Depth >= ln.Level {
		b.pop()
	}

	parent := b.top()
	number, title := splitNumber(ln.Title)
	node := &ast.StructuralNode{
		Kind:   ln.Label,
		Title:  title,
		Depth:  ln.Level,
		Parent: parent,
		Span:   ast.Span{Source: ln.Pos.Source, Start: ln.Pos.Line, End: ln.Pos.Line},
	}
	node.Number = b.sequence(parent, node, number, ln.Pos)
	if anc := nearestLabeled(parent); anc != nil && ln.Label != ast.Unlabeled &&
		anc.Kind.Rank() > ln.Label.Rank() {
		b.report(ln.Pos, "%s nested inside %s", ln.Label, anc.Kind)
	}
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, node)
}

func nearestLabeled(n *ast.StructuralNode) *ast.StructuralNode {
	for ; n != nil && n.Kind != ast.DocumentKind; n = n.Parent {
		if n.Kind != ast.Unlabeled {
			return n
		}
	}
	return nil
}

// sequence assigns or checks the heading's number within its parent and kind,
// flagging duplicates, regressions, and gaps.
func (b *builder) sequence(parent, node *ast.StructuralNode, number int, pos ast.Position) int {
	if node.Kind == ast.Unlabeled {
		return number
	}
	seq, ok := b.seqs[parent]
	if !ok {
		seq = map[ast.Kind]int{}
		b.seqs[parent] = seq
	}
	prev := seq[node.Kind]
	if number == 0 {
		seq[node.Kind] = prev + 1
		return prev + 1
	}
	switch {
	case prev > 0 && number < prev:
		b.report(pos, "%s %d: sequence is less than previous %s %d", node.Kind, number, node.Kind, prev)
	case prev > 0 && number == prev:
		b.report(pos, "%s %d: sequence repeats previous %s %d", node.Kind, number, node.Kind, prev)
	case prev > 0 && number > prev+1:
		b.report(pos, "%s %d: sequence leaves a gap after %s %d", node.Kind, number, node.Kind, prev)
	}
	seq[node.Kind] = number
	return number
}

// splitNumber separates an optional leading sequence number from a heading
// title: "3 The Meeting" -> (3, "The Meeting").
func splitNumber(s string) (int, string) {
	first, rest, _ := strings.Cut(s, " ")
	if n, err := strconv.Atoi(first); err == nil && n > 0 {
		return n, strings.TrimSpace(rest)
	}
	return 0, s
}

func (b *builder) prose(ln lexer.Line) {
	if b.pending != nil {
		if b.pending.Description != "" {
			b.pending.Description += "\n"
		}
		b.pending.Description += strings.TrimSpace(ln.Text)
		return
	}
	cur := b.top()
	cur.Prose = append(cur.Prose, ast.ProseBlock{Pos: ln.Pos, Text: ln.Text})
}

func (b *builder) directive(ln lexer.Line) {
	b.pending = nil
	cur := b.top()

	switch ln.Directive {
	case lexer.DirTitle:
		b.doc.Title = ln.Payload
	case lexer.DirAuthor:
		b.doc.Author = ln.Payload
	case lexer.DirStatus:
		if !knownStatuses[ln.Payload] {
			b.report(ln.Pos, "unknown status %q", ln.Payload)
		}
		cur.Status = ln.Payload // last one wins
	case lexer.DirTag:
		for _, tag := range strings.Fields(ln.Payload) {
			if !contains(cur.Tags, tag) {
				cur.Tags = append(cur.Tags, tag)
			}
		}
		cur.Notes = append(cur.Notes, ast.InfoNode{Kind: ast.InfoTag, Text: ln.Payload, Pos: ln.Pos})
	case lexer.DirTarget:
		n, err := strconv.Atoi(ln.Payload)
		if err != nil || n < 0 {
			b.report(ln.Pos, "target is not a wordcount: %q", ln.Payload)
			return
		}
		cur.Target, cur.HasTarget = n, true // last one wins
	case lexer.DirCharacter:
		b.define(&b.doc.Characters, ln)
	case lexer.DirPlace:
		b.define(&b.doc.Places, ln)
	case lexer.DirSession:
		b.closeSession(cur)
		s := parseSession(ln)
		s.Node = cur
		s.From, s.To = len(cur.Prose), -1
		cur.Sessions = append(cur.Sessions, s)
		b.doc.Sessions = append(b.doc.Sessions, s)
	case lexer.DirEnd:
		for i := len(b.stack) - 1; i >= 0; i-- {
			if b.closeSession(b.stack[i]) {
				break
			}
		}
	case lexer.DirTodo:
		cur.Notes = append(cur.Notes, ast.InfoNode{Kind: ast.InfoTodo, Text: ln.Payload, Pos: ln.Pos})
	case lexer.DirComment:
		cur.Notes = append(cur.Notes, ast.InfoNode{Kind: ast.InfoComment, Text: ln.Payload, Pos: ln.Pos})
	case lexer.DirNote:
		cur.Notes = append(cur.Notes, ast.InfoNode{Kind: ast.InfoNote, Text: ln.Payload, Pos: ln.Pos})
	case lexer.DirLocation:
		cur.Notes = append(cur.Notes, ast.InfoNode{Kind: ast.InfoLocation, Text: ln.Payload, Pos: ln.Pos})
	case lexer.DirInclude:
		b.include(ln)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// define creates or merges a character/place declaration. Subsequent prose
// lines up to the next blank line or directive become its description.
func (b *builder) define(registry *[]*ast.Definition, ln lexer.Line) {
	names := strings.Split(ln.Payload, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	name, aliases := names[0], names[1:]
	if name == "" {
		b.report(ln.Pos, "@%s declaration has no name", ln.Directive)
		return
	}

	for _, def := range *registry {
		if def.Name == name {
			// Duplicate declaration: merge, do not discard.
			b.report(ln.Pos, "duplicate %s %q (first declared at %s)", ln.Directive, name, def.Pos)
			for _, a := range aliases {
				if a != "" && !contains(def.Aliases, a) {
					def.Aliases = append(def.Aliases, a)
				}
			}
			b.pending = def
			return
		}
	}

	def := &ast.Definition{Name: name, Pos: ln.Pos}
	for _, a := range aliases {
		if a != "" && !contains(def.Aliases, a) {
			def.Aliases = append(def.Aliases, a)
		}
	}
	*registry = append(*registry, def)
	b.pending = def
}

// parseSession reads "@session: [M/D/YYYY] [target] [title]"; a first token
// that is neither a date nor a number starts the title.
func parseSession(ln lexer.Line) *ast.Session {
	s := &ast.Session{Pos: ln.Pos}
	rest := ln.Payload
	if first, tail, _ := strings.Cut(rest, " "); first != "" {
		if d, err := time.Parse("1/2/2006", first); err == nil {
			s.Date = d
			rest = strings.TrimSpace(tail)
		}
	}
	if first, tail, _ := strings.Cut(rest, " "); first != "" {
		if n, err := strconv.Atoi(first); err == nil && n >= 0 {
			s.Target = n
			rest = strings.TrimSpace(tail)
		}
	}
	s.Title = rest
	return s
}

func (b *builder) closeSession(n *ast.StructuralNode) bool {
	if len(n.Sessions) == 0 {
		return false
	}
	last := n.Sessions[len(n.Sessions)-1]
	if last.To >= 0 {
		return false
	}
	last.To = len(n.Prose)
	return true
}

func (b *builder) include(ln lexer.Line) {
	if ln.Pos.Source == StringSource || b.open == nil {
		b.report(ln.Pos, "@include cannot be resolved for string input")
		return
	}
	path := filepath.Join(filepath.Dir(ln.Pos.Source), ln.Payload)
	if b.including[path] {
		b.report(ln.Pos, "@include cycle: %s", path)
		return
	}
	f, err := b.open(path)
	if err != nil {
		b.report(ln.Pos, "@include %s: %v", ln.Payload, err)
		return
	}
	defer f.Close()
	b.including[path] = true
	b.consume(path, f)
	delete(b.including, path)
}

func (b *builder) pop() {
	n := b.top()
	b.closeSession(n)
	b.stack = b.stack[:len(b.stack)-1]
}

// endFile closes sessions left open by the current file; structural nodes may
// span files and stay open.
func (b *builder) endFile() {
	b.pending = nil
	for _, n := range b.stack {
		b.closeSession(n)
	}
}

// finish closes every open node and resolves location references against the
// places registry. The returned document must not be mutated afterwards.
func (b *builder) finish() (*ast.Document, []ast.Diagnostic) {
	if b.done {
		return b.doc, b.diags
	}
	b.done = true
	for len(b.stack) > 1 {
		b.pop()
	}
	b.closeSession(b.doc.Root)

	b.doc.Walk(func(n *ast.StructuralNode) bool {
		for _, note := range n.Notes {
			if note.Kind != ast.InfoLocation {
				continue
			}
			name, _, _ := strings.Cut(note.Text, ",")
			if b.doc.Place(strings.TrimSpace(name)) == nil {
				b.report(note.Pos, "location %q does not match any @place", strings.TrimSpace(name))
			}
		}
		return true
	})
	return b.doc, b.diags
}
