/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package search provides full-text search over a document's prose using an
// in-memory SQLite FTS5 index. The index is derived state: it is built fresh
// from the tree, never persisted, and discarded with the document.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"

	"writedown/internal/ast"
)

// Query describes an in-document search request. Text uses SQLite FTS5
// syntax (simple terms, phrases in quotes, AND/OR/NOT). Path restricts
// matches to nodes whose structural path starts with the given prefix.
// Limit/Offset implement pagination; a default limit applies when zero.
type Query struct {
	Text   string
	Path   string
	Limit  int
	Offset int
}

// Result is a single matching prose block. Snippet highlights FTS matches
// with [ ] markers when full-text search was used.
type Result struct {
	Path    string
	Source  string
	Line    int
	Snippet string
}

// Index is a disposable full-text index over one document.
type Index struct {
	db *sql.DB
}

// Build indexes every prose block of the document into an in-memory SQLite
// database. Callers must Close the index when done.
func Build(ctx context.Context, doc *ast.Document) (*Index, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	schema := `
CREATE TABLE blocks (
	block_id INTEGER PRIMARY KEY,
	path     TEXT NOT NULL,
	source   TEXT NOT NULL,
	line     INTEGER NOT NULL,
	text     TEXT NOT NULL
);
CREATE VIRTUAL TABLE fts_blocks USING fts5(text, content='blocks', content_rowid='block_id');
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("begin index load: %w", err)
	}
	var insertErr error
	doc.Walk(func(n *ast.StructuralNode) bool {
		path := n.Path()
		for _, block := range n.Prose {
			var res sql.Result
			res, insertErr = tx.ExecContext(ctx,
				"INSERT INTO blocks(path, source, line, text) VALUES(?,?,?,?)",
				path, block.Pos.Source, block.Pos.Line, block.Text)
			if insertErr != nil {
				return false
			}
			var id int64
			if id, insertErr = res.LastInsertId(); insertErr != nil {
				return false
			}
			if _, insertErr = tx.ExecContext(ctx,
				"INSERT INTO fts_blocks(rowid, text) VALUES(?,?)", id, block.Text); insertErr != nil {
				return false
			}
		}
		return true
	})
	if insertErr != nil {
		tx.Rollback()
		db.Close()
		return nil, fmt.Errorf("load index: %w", insertErr)
	}
	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, fmt.Errorf("commit index load: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the in-memory database.
func (ix *Index) Close() error { return ix.db.Close() }

// Search runs the query. When q.Text is empty it falls back to a plain scan
// with filters applied.
func (ix *Index) Search(ctx context.Context, q Query) ([]Result, error) {
	var (
		sb   strings.Builder
		args []any
	)
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT b.path, b.source, b.line, snippet(fts_blocks, 0, '[', ']', '…', 10)\n")
		sb.WriteString("FROM fts_blocks JOIN blocks b ON fts_blocks.rowid = b.block_id\n")
		sb.WriteString("WHERE fts_blocks MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT b.path, b.source, b.line, b.text FROM blocks b WHERE 1=1\n")
	}
	if p := strings.TrimSpace(q.Path); p != "" {
		sb.WriteString(" AND b.path LIKE ?\n")
		args = append(args, p+"%")
	}
	sb.WriteString(" ORDER BY b.block_id LIMIT ? OFFSET ?")
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, q.Offset)

	rows, err := ix.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Path, &r.Source, &r.Line, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
