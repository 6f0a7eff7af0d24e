/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package lexer

import (
	"strings"
	"testing"

	"writedown/internal/ast"
)

func scanAll(t *testing.T, input string) ([]Line, []ast.Diagnostic) {
	t.Helper()
	sc := New("string", strings.NewReader(input))
	var lines []Line
	for sc.Scan() {
		lines = append(lines, sc.Line())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return lines, sc.Diagnostics()
}

func TestClassifyBasicLines(t *testing.T) {
	input := `@title: My Book

# part 1 The Fall
Some prose here.
## chapter
More prose.`

	lines, diags := scanAll(t, input)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}

	if lines[0].Class != Directive || lines[0].Directive != DirTitle || lines[0].Payload != "My Book" {
		t.Fatalf("unexpected title line: %+v", lines[0])
	}
	if lines[1].Class != Blank {
		t.Fatalf("expected blank line, got %+v", lines[1])
	}
	if lines[2].Class != Heading || lines[2].Level != 1 || lines[2].Label != ast.Part || lines[2].Title != "1 The Fall" {
		t.Fatalf("unexpected heading: %+v", lines[2])
	}
	if lines[3].Class != Prose || lines[3].Text != "Some prose here." {
		t.Fatalf("unexpected prose: %+v", lines[3])
	}
	if lines[4].Class != Heading || lines[4].Level != 2 || lines[4].Label != ast.Chapter || lines[4].Title != "" {
		t.Fatalf("unexpected bare chapter heading: %+v", lines[4])
	}
}

func TestHeadingWithoutLevelLabel(t *testing.T) {
	lines, diags := scanAll(t, "### The Interlude")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	ln := lines[0]
	if ln.Class != Heading || ln.Level != 3 || ln.Label != ast.Unlabeled || ln.Title != "The Interlude" {
		t.Fatalf("unexpected unlabeled heading: %+v", ln)
	}
}

func TestCommentShorthand(t *testing.T) {
	lines, _ := scanAll(t, "// remember to fix this paragraph")
	ln := lines[0]
	if ln.Class != Directive || ln.Directive != DirComment {
		t.Fatalf("expected comment directive, got %+v", ln)
	}
	if ln.Payload != "remember to fix this paragraph" {
		t.Fatalf("unexpected payload: %q", ln.Payload)
	}
}

func TestUnknownDirectiveBecomesProse(t *testing.T) {
	lines, diags := scanAll(t, "@frobnicate: something")
	if lines[0].Class != Prose {
		t.Fatalf("expected prose fallback, got %+v", lines[0])
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "unknown directive @frobnicate") {
		t.Fatalf("expected unknown-directive diagnostic, got %+v", diags)
	}
}

func TestMissingPayloadBecomesProse(t *testing.T) {
	lines, diags := scanAll(t, "@tag:")
	if lines[0].Class != Prose {
		t.Fatalf("expected prose fallback, got %+v", lines[0])
	}
	if len(diags) != 1 || !strings.Contains(diags[0].Message, "requires a payload") {
		t.Fatalf("expected missing-payload diagnostic, got %+v", diags)
	}
}

func TestEndAndCommentNeedNoPayload(t *testing.T) {
	lines, diags := scanAll(t, "@end:\n@comment:")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if lines[0].Directive != DirEnd || lines[1].Directive != DirComment {
		t.Fatalf("unexpected directives: %+v", lines)
	}
}

func TestMalformedAtLine(t *testing.T) {
	lines, diags := scanAll(t, "@not a directive")
	if lines[0].Class != Prose {
		t.Fatalf("expected prose fallback, got %+v", lines[0])
	}
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %+v", diags)
	}
}

func TestEmailInProseIsNotADirective(t *testing.T) {
	// An @ mid-line is ordinary prose; only line-leading @ can be a directive.
	lines, diags := scanAll(t, "Write to alice@example.com for details.")
	if lines[0].Class != Prose || len(diags) != 0 {
		t.Fatalf("expected plain prose, got %+v / %+v", lines[0], diags)
	}
}

func TestPositionsAndCRLF(t *testing.T) {
	lines, _ := scanAll(t, "first\r\nsecond\r\n")
	if lines[0].Text != "first" || lines[1].Text != "second" {
		t.Fatalf("carriage returns not stripped: %+v", lines)
	}
	if lines[0].Pos.Line != 1 || lines[1].Pos.Line != 2 || lines[1].Pos.Source != "string" {
		t.Fatalf("unexpected positions: %+v", lines)
	}
}

func TestDirectiveKindIsCaseInsensitive(t *testing.T) {
	lines, diags := scanAll(t, "@Title: Ups and Downs")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if lines[0].Directive != DirTitle || lines[0].Payload != "Ups and Downs" {
		t.Fatalf("unexpected line: %+v", lines[0])
	}
}
