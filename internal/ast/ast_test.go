/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ast

import "testing"

func TestKindStringMatchesVocabulary(t *testing.T) {
	cases := map[Kind]string{
		Unlabeled:    "unlabeled",
		DocumentKind: "document",
		Act:          "act",
		Part:         "part",
		Chapter:      "chapter",
		Scene:        "scene",
		Section:      "section",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestKindFromLabelRoundTrips(t *testing.T) {
	for _, kind := range []Kind{Act, Part, Chapter, Scene, Section} {
		got, ok := KindFromLabel(kind.String())
		if !ok || got != kind {
			t.Fatalf("KindFromLabel(%q) = %v, %v", kind.String(), got, ok)
		}
	}
	if _, ok := KindFromLabel("unlabeled"); ok {
		t.Fatalf("unlabeled is not a level label")
	}
}

func TestKindRankOrdering(t *testing.T) {
	order := []Kind{Act, Part, Chapter, Scene, Section}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s does not rank above %s", order[i-1], order[i])
		}
	}
	if Unlabeled.Rank() != 0 || DocumentKind.Rank() != 0 {
		t.Fatalf("unranked kinds must report 0")
	}
}

func TestHeading(t *testing.T) {
	cases := []struct {
		node StructuralNode
		want string
	}{
		{StructuralNode{Kind: Part, Number: 1, Title: "The Fall"}, "Part 1: The Fall"},
		{StructuralNode{Kind: Chapter, Number: 2}, "Chapter 2"},
		{StructuralNode{Kind: Scene, Title: "Dawn"}, "Scene Dawn"},
		{StructuralNode{Kind: Unlabeled, Title: "Interlude"}, "Interlude"},
		{StructuralNode{Kind: Unlabeled}, "Untitled"},
		{StructuralNode{Kind: DocumentKind}, "Document"},
	}
	for _, tc := range cases {
		if got := tc.node.Heading(); got != tc.want {
			t.Fatalf("Heading() = %q, want %q", got, tc.want)
		}
	}
}

func TestPath(t *testing.T) {
	root := &StructuralNode{Kind: DocumentKind}
	part := &StructuralNode{Kind: Part, Number: 1, Title: "The Fall", Parent: root}
	ch := &StructuralNode{Kind: Chapter, Number: 2, Parent: part}
	if got := ch.Path(); got != "Part 1: The Fall > Chapter 2" {
		t.Fatalf("Path() = %q", got)
	}
}
