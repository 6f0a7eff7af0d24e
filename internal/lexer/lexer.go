/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package lexer turns raw Writedown source lines into classified line records.
//
// Supported syntax:
//   - Headings: one or more leading '#' characters encode the nesting level,
//     optionally followed by a level label (act, part, chapter, scene,
//     section) and a title: "## chapter 3 The Meeting". A heading whose first
//     word is not a level label is unlabeled and the whole rest is the title.
//   - Directives: "@kind: payload" at the start of a line. "//" is shorthand
//     for "@comment:".
//   - Blank lines and everything else is prose.
//
// A malformed directive line (unknown kind, or a missing payload where one is
// required) is classified as prose and recorded as a diagnostic; a single bad
// line never aborts the lexer.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"writedown/internal/ast"
)

// Class tags a classified line record.
type Class int

const (
	Blank Class = iota
	Prose
	Heading
	Directive
)

// DirectiveKind enumerates every directive the grammar recognizes.
type DirectiveKind int

const (
	DirTitle DirectiveKind = iota
	DirAuthor
	DirStatus
	DirTag
	DirCharacter
	DirPlace
	DirSession
	DirTarget
	DirTodo
	DirComment
	DirNote
	DirLocation
	DirInclude
	DirEnd
)

var dirNames = map[string]DirectiveKind{
	"title":     DirTitle,
	"author":    DirAuthor,
	"status":    DirStatus,
	"tag":       DirTag,
	"character": DirCharacter,
	"place":     DirPlace,
	"session":   DirSession,
	"target":    DirTarget,
	"todo":      DirTodo,
	"comment":   DirComment,
	"note":      DirNote,
	"location":  DirLocation,
	"include":   DirInclude,
	"end":       DirEnd,
}

// Directives that are meaningless without a payload.
var needsPayload = map[DirectiveKind]bool{
	DirTitle:     true,
	DirAuthor:    true,
	DirStatus:    true,
	DirTag:       true,
	DirCharacter: true,
	DirPlace:     true,
	DirTarget:    true,
	DirTodo:      true,
	DirLocation:  true,
	DirInclude:   true,
}

func (k DirectiveKind) String() string {
	for name, kind := range dirNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Line is one classified line record.
type Line struct {
	Class Class
	Pos   ast.Position

	// Heading fields.
	Level int
	Label ast.Kind // ast.Unlabeled when the heading carries no level label
	Title string

	// Directive fields.
	Directive DirectiveKind
	Payload   string

	// Prose text (also set for headings/directives with the raw line).
	Text string
}

var (
	reHeading   = regexp.MustCompile(`^(#+)\s*(.*)$`)
	reDirective = regexp.MustCompile(`^@([A-Za-z]+):\s*(.*)$`)
	reShorthand = regexp.MustCompile(`^//\s*(.*)$`)
)

// Scanner lazily classifies lines read from r. A Scanner is single-use;
// construct a new one to restart the sequence.
type Scanner struct {
	source string
	sc     *bufio.Scanner
	line   Line
	lineNo int
	diags  []ast.Diagnostic
}

// New returns a Scanner classifying the lines of r, attributing positions to
// the given source identifier (a file path, or "string" for in-memory input).
func New(source string, r io.Reader) *Scanner {
	return &Scanner{source: source, sc: bufio.NewScanner(r)}
}

// Scan advances to the next line record. It returns false at end of input or
// on a read error (see Err).
func (s *Scanner) Scan() bool {
	if !s.sc.Scan() {
		return false
	}
	s.lineNo++
	s.line = s.classify(strings.TrimRight(s.sc.Text(), "\r"))
	return true
}

// Line returns the record produced by the last call to Scan.
func (s *Scanner) Line() Line { return s.line }

// Err returns the first read error encountered, if any.
func (s *Scanner) Err() error { return s.sc.Err() }

// Diagnostics returns the problems recorded so far, in encounter order.
func (s *Scanner) Diagnostics() []ast.Diagnostic { return s.diags }

func (s *Scanner) pos() ast.Position { return ast.Position{Source: s.source, Line: s.lineNo} }

func (s *Scanner) classify(raw string) Line {
	trim := strings.TrimSpace(raw)
	if trim == "" {
		return Line{Class: Blank, Pos: s.pos()}
	}

	if m := reHeading.FindStringSubmatch(trim); m != nil {
		label := ast.Unlabeled
		rest := strings.TrimSpace(m[2])
		if first, tail, _ := strings.Cut(rest, " "); first != "" {
			if k, ok := ast.KindFromLabel(first); ok {
				label = k
				rest = strings.TrimSpace(tail)
			}
		}
		return Line{Class: Heading, Pos: s.pos(), Level: len(m[1]), Label: label, Title: rest, Text: raw}
	}

	if m := reShorthand.FindStringSubmatch(trim); m != nil {
		return Line{Class: Directive, Pos: s.pos(), Directive: DirComment, Payload: strings.TrimSpace(m[1]), Text: raw}
	}

	if m := reDirective.FindStringSubmatch(trim); m != nil {
		kind, ok := dirNames[strings.ToLower(m[1])]
		if !ok {
			s.report(fmt.Sprintf("unknown directive @%s", m[1]))
			return Line{Class: Prose, Pos: s.pos(), Text: raw}
		}
		payload := strings.TrimSpace(m[2])
		if payload == "" && needsPayload[kind] {
			s.report(fmt.Sprintf("directive @%s requires a payload", m[1]))
			return Line{Class: Prose, Pos: s.pos(), Text: raw}
		}
		return Line{Class: Directive, Pos: s.pos(), Directive: kind, Payload: payload, Text: raw}
	}

	if strings.HasPrefix(trim, "@") {
		s.report("malformed directive line (expected @kind: payload)")
		return Line{Class: Prose, Pos: s.pos(), Text: raw}
	}

	return Line{Class: Prose, Pos: s.pos(), Text: raw}
}

func (s *Scanner) report(msg string) {
	s.diags = append(s.diags, ast.Diagnostic{Pos: s.pos(), Message: msg})
}
