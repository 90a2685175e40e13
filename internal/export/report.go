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
	"io"
	"strconv"

	"bzwparse/internal/world"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReportOptions controls the PDF summary report.
type ReportOptions struct {
	Title  string
	Author string // omitted when empty
}

// WriteReportPDF renders a one-page A4 summary of a map: objects per kind,
// world size and link problems. Units are millimetres.
func WriteReportPDF(w io.Writer, s world.Summary, opt ReportOptions) error {
	title := opt.Title
	if title == "" {
		title = "Map report"
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	// Core fonts are cp1252; translate so map names with accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	if s.WorldSize > 0 {
		pdf.CellFormat(0, 7, "World size: "+strconv.FormatFloat(s.WorldSize, 'f', -1, 64), "", 1, "L", false, 0, "")
	}
	if s.Diagnostics > 0 {
		pdf.CellFormat(0, 7, fmt.Sprintf("Skipped during parsing: %d", s.Diagnostics), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// kinds table
	caser := cases.Title(language.English, cases.NoLower)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(80, 8, "Object", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Count", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, k := range s.Kinds() {
		pdf.CellFormat(80, 7, tr(caser.String(k)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, strconv.Itoa(s.Counts[k]), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, strconv.Itoa(s.Total()), "1", 1, "R", false, 0, "")

	if probs := s.Validate(); len(probs) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Link problems", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, p := range probs {
			pdf.MultiCell(0, 6, tr(p.String()), "", "L", false)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
