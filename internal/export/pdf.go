/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"log/slog"

	"github.com/jung-kurt/gofpdf"

	"writedown/internal/ast"
	applog "writedown/internal/log"
)

// PDFOptions controls PDF export behavior. Units are points.
// Built-in Helvetica is used for portability; font embedding can come later.
type PDFOptions struct {
	FontSize   float64
	LineHeight float64
	Draft      bool // draft proofing layout: DRAFT banner, line provenance
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.FontSize == 0 {
		o.FontSize = 11
	}
	if o.LineHeight == 0 {
		o.LineHeight = 16
	}
	return o
}

// PDF renders the document to a PDF file at outPath.
func PDF(doc *ast.Document, outPath string, opt PDFOptions) error {
	opt = opt.withDefaults()
	l := applog.WithOperation(applog.WithComponent("export"), "pdf")

	pdf := gofpdf.New("P", "pt", "A4", "")
	title := doc.Title
	if title == "" {
		title = "Document"
	}
	pdf.SetTitle(title, true)
	pdf.SetMargins(72, 72, 72)

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetFont("Helvetica", "", 9)
		if opt.Draft {
			pdf.CellFormat(0, 12, "DRAFT", "", 0, "L", false, 0, "")
		}
		pdf.CellFormat(0, 12, title, "", 1, "R", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-40)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 12, fmt.Sprintf("- %d -", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// Title page.
	pdf.AddPage()
	pdf.SetY(260)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 30, title, "", "C", false)
	if doc.Author != "" {
		pdf.SetFont("Helvetica", "", 14)
		pdf.MultiCell(0, 20, "by "+doc.Author, "", "C", false)
	}

	for _, n := range doc.Root.Children {
		writePDFNode(pdf, n, 0, opt)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		l.Error("pdf output failed", slog.String("path", outPath), slog.Any("err", err))
		return fmt.Errorf("write pdf %s: %w", outPath, err)
	}
	l.Info("pdf written", slog.String("path", outPath))
	return nil
}

// Draft renders the draft proofing PDF: same layout as PDF with a DRAFT
// banner and per-node source provenance in the margin notes.
func Draft(doc *ast.Document, outPath string, opt PDFOptions) error {
	opt.Draft = true
	return PDF(doc, outPath, opt)
}

func writePDFNode(pdf *gofpdf.Fpdf, n *ast.StructuralNode, level int, opt PDFOptions) {
	switch n.Kind {
	case ast.Act, ast.Part:
		pdf.AddPage()
		pdf.SetY(200)
		pdf.Bookmark(n.Heading(), level, -1)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 24, n.Heading(), "", "C", false)
	case ast.Chapter:
		pdf.AddPage()
		pdf.Bookmark(n.Heading(), level, -1)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 20, n.Heading(), "", "L", false)
		pdf.Ln(8)
	case ast.Scene:
		// Scene breaks render as a separator, not a heading.
		pdf.SetFont("Helvetica", "", opt.FontSize)
		pdf.MultiCell(0, opt.LineHeight, "* * *", "", "C", false)
	case ast.Section, ast.Unlabeled:
		pdf.Bookmark(n.Heading(), level, -1)
		pdf.SetFont("Helvetica", "B", opt.FontSize+1)
		pdf.MultiCell(0, opt.LineHeight, n.Heading(), "", "L", false)
		pdf.Ln(4)
	}

	if opt.Draft && n.Kind != ast.DocumentKind {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 10, fmt.Sprintf("%s:%d status=%s", n.Span.Source, n.Span.Start, orDash(n.Status)), "", "L", false)
	}

	pdf.SetFont("Helvetica", "", opt.FontSize)
	for _, block := range n.Prose {
		pdf.MultiCell(0, opt.LineHeight, block.Text, "", "L", false)
	}
	if len(n.Prose) > 0 {
		pdf.Ln(opt.LineHeight / 2)
	}

	for _, c := range n.Children {
		writePDFNode(pdf, c, level+1, opt)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
