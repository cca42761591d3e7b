/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes print artifacts: single-label PNGs and A4
// sheet PDFs with the label repeated for home printing.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/render"
	"golabelmaker/internal/sheet"
)

// SheetOptions controls the A4 sheet PDF.
// All physical values are millimeters.
type SheetOptions struct {
	MarginMM  float64 // page margin; default 10
	SpacingMM float64 // gap between labels; default 4
	CutMarks  bool    // dashed outlines as cutting aid
	Count     int     // labels to place; 0 fills the page
	DPI       int     // raster resolution of each label; default 300
}

func (o *SheetOptions) defaults() {
	if o.MarginMM <= 0 {
		o.MarginMM = 10
	}
	if o.SpacingMM < 0 {
		o.SpacingMM = 0
	} else if o.SpacingMM == 0 {
		o.SpacingMM = 4
	}
	if o.DPI <= 0 {
		o.DPI = 300
	}
}

// WriteSheetPDF renders the label once at print resolution and places
// it repeatedly on an A4 page. Orientation follows the layout that
// fits more labels. The document state is never modified; a failed
// export leaves no partial file behind the returned error.
func WriteSheetPDF(st *domain.State, r *render.Renderer, w io.Writer, opt SheetOptions) error {
	opt.defaults()
	labelW, labelH := st.LabelWidthMM, st.LabelHeightMM
	if labelW <= 0 || labelH <= 0 {
		return fmt.Errorf("sheet export: document has no physical label size")
	}

	// One raster shared by every placement.
	pxPerMM := float64(opt.DPI) / 25.4
	mult := labelW * pxPerMM / st.Width
	var img bytes.Buffer
	if err := r.EncodePNG(st, &img, mult); err != nil {
		return fmt.Errorf("sheet export: render label: %w", err)
	}

	layout := sheet.Calculate(labelW, labelH, opt.MarginMM, opt.SpacingMM)
	positions := sheet.Positions(layout, labelW, labelH)
	if opt.Count > 0 && opt.Count < len(positions) {
		positions = positions[:opt.Count]
	}

	orient := "P"
	if layout.Orientation == sheet.Landscape {
		orient = "L"
	}
	pdf := gofpdf.New(orient, "mm", "A4", "")
	pdf.SetTitle("Label sheet", false)
	pdf.AddPage()

	imgOpt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("label", imgOpt, bytes.NewReader(img.Bytes()))
	for _, p := range positions {
		pdf.ImageOptions("label", p.X, p.Y, labelW, labelH, false, imgOpt, 0, "")
	}

	if opt.CutMarks {
		pdf.SetDrawColor(150, 150, 150)
		pdf.SetLineWidth(0.1)
		pdf.SetDashPattern([]float64{1, 1}, 0)
		for _, p := range positions {
			pdf.Rect(p.X, p.Y, labelW, labelH, "D")
		}
		pdf.SetDashPattern([]float64{}, 0)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("sheet export: write pdf: %w", err)
	}
	return nil
}

// WriteSheetPDFFile is WriteSheetPDF to a file path, creating parent
// directories as needed.
func WriteSheetPDFFile(st *domain.State, r *render.Renderer, outPath string, opt SheetOptions) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WriteSheetPDF(st, r, f, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return err
	}
	return f.Close()
}
