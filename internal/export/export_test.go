/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/render"
)

func labelState() *domain.State {
	st := domain.NewState(90, 120, 1)
	o := domain.NewObject(domain.KindRect)
	o.Left, o.Top, o.Width, o.Height = 10, 10, 60, 40
	o.Fill = "#aa3344"
	st.Append(o)
	return st
}

func TestWritePNGResolution(t *testing.T) {
	st := labelState()
	r := render.New(nil, nil)
	var buf bytes.Buffer
	if err := WritePNG(st, r, &buf, PNGOptions{DPI: 300}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// 90mm at 300dpi is about 1063px.
	wantW := int(math.Round(90 * 300 / 25.4))
	if diff := img.Bounds().Dx() - wantW; diff < -2 || diff > 2 {
		t.Fatalf("width %d, want about %d", img.Bounds().Dx(), wantW)
	}
	// Aspect ratio follows the label.
	ratio := float64(img.Bounds().Dy()) / float64(img.Bounds().Dx())
	if math.Abs(ratio-120.0/90.0) > 0.01 {
		t.Fatalf("aspect ratio %v", ratio)
	}
}

func TestWritePNGFileCleansUpOnFailure(t *testing.T) {
	st := &domain.State{} // no dimensions: render must fail
	r := render.New(nil, nil)
	path := filepath.Join(t.TempDir(), "out", "label.png")
	if err := WritePNGFile(st, r, path, PNGOptions{}); err == nil {
		t.Fatal("empty document exported")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("partial file left behind")
	}
}

func TestWriteSheetPDF(t *testing.T) {
	st := labelState()
	r := render.New(nil, nil)
	var buf bytes.Buffer
	err := WriteSheetPDF(st, r, &buf, SheetOptions{MarginMM: 10, SpacingMM: 4, CutMarks: true, DPI: 150})
	if err != nil {
		t.Fatalf("WriteSheetPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a PDF: %.8s", buf.Bytes())
	}
}

func TestWriteSheetPDFRequiresPhysicalSize(t *testing.T) {
	st := &domain.State{Width: 300, Height: 400}
	r := render.New(nil, nil)
	var buf bytes.Buffer
	if err := WriteSheetPDF(st, r, &buf, SheetOptions{}); err == nil {
		t.Fatal("document without label size exported")
	}
}

func TestWriteSheetPDFFile(t *testing.T) {
	st := labelState()
	r := render.New(nil, nil)
	path := filepath.Join(t.TempDir(), "sheets", "a4.pdf")
	if err := WriteSheetPDFFile(st, r, path, SheetOptions{Count: 2}); err != nil {
		t.Fatalf("WriteSheetPDFFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty pdf written")
	}
}
