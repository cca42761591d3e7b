/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golabelmaker/internal/domain"
)

func TestAddTextResolvesFieldDefaults(t *testing.T) {
	s := newTestSession(t)
	o := s.AddText(domain.FieldBeerName, "", nil)
	if o.Text != "Beer Name" {
		t.Fatalf("placeholder not applied: %q", o.Text)
	}
	if o.FontFamily != "Playfair Display" || o.FontSize != 24 || o.FontWeight != "bold" || o.TextAlign != "center" {
		t.Fatalf("beerName defaults not resolved: %+v", o)
	}
	if got := s.Selection(); len(got) != 1 || got[0] != o.ID {
		t.Fatalf("new text not selected: %v", got)
	}
	if o.Width <= 0 || o.Height <= 0 {
		t.Fatalf("text not measured: %vx%v", o.Width, o.Height)
	}
}

func TestAddTextOverrideWins(t *testing.T) {
	s := newTestSession(t)
	size := 40.0
	o := s.AddText(domain.FieldBeerName, "Stout", &domain.TextStylePatch{FontSize: &size})
	if o.FontSize != 40 {
		t.Fatalf("override lost: %v", o.FontSize)
	}
	if o.FontFamily != "Playfair Display" {
		t.Fatalf("field default lost under override: %q", o.FontFamily)
	}
}

func TestAddTextUnknownFieldBecomesCustom(t *testing.T) {
	s := newTestSession(t)
	o := s.AddText(domain.FieldType("banana"), "", nil)
	if o.FieldType != domain.FieldCustom {
		t.Fatalf("unknown field not coerced: %q", o.FieldType)
	}
}

func TestAddShapeRejectsNonShapes(t *testing.T) {
	s := newTestSession(t)
	if _, err := s.AddShape(domain.KindText, "", ""); err == nil {
		t.Fatal("text accepted as shape")
	}
	if _, err := s.AddShape(domain.KindImage, "", ""); err == nil {
		t.Fatal("image accepted as shape")
	}
	if len(s.Snapshot().Objects) != 0 {
		t.Fatal("rejected shape still added")
	}
}

func TestAddShapeColors(t *testing.T) {
	s := newTestSession(t)
	o, err := s.AddShape(domain.KindRect, "#ff0000", "#00ff00")
	if err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	if o.Fill != "#ff0000" || o.Stroke != "#00ff00" {
		t.Fatalf("colors not applied: fill=%q stroke=%q", o.Fill, o.Stroke)
	}
	d, err := s.AddShape(domain.KindCircle, "", "")
	if err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	if d.Fill != "#cccccc" {
		t.Fatalf("default fill missing: %q", d.Fill)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestAddImageForeground(t *testing.T) {
	s := newTestSession(t)
	p := s.AddImage("logo.png", encodePNG(t, 8, 4), false)
	o, err := p.Wait()
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	if o.Kind != domain.KindImage || o.Width != 8 || o.Height != 4 {
		t.Fatalf("image object mismatch: %+v", o)
	}
	if o.ScaleX != 0.5 || o.ScaleY != 0.5 {
		t.Fatalf("foreground image not half scale: %v/%v", o.ScaleX, o.ScaleY)
	}
	if got := s.Selection(); len(got) != 1 || got[0] != o.ID {
		t.Fatalf("image not selected: %v", got)
	}
	if _, ok := s.bitmap(o.ID); !ok {
		t.Fatal("decoded bitmap not cached")
	}
}

func TestAddImageBackgroundCoversCanvas(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	p := s.AddImage("bg.png", encodePNG(t, 10, 10), true)
	o, err := p.Wait()
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	st := s.Snapshot()
	if st.Objects[0].ID != o.ID {
		t.Fatal("background image not at the bottom of the z-order")
	}
	if o.Width*o.ScaleX < st.Width || o.Height*o.ScaleY < st.Height {
		t.Fatalf("background does not cover canvas: %v x %v", o.Width*o.ScaleX, o.Height*o.ScaleY)
	}
	for _, id := range s.Selection() {
		if id == o.ID {
			t.Fatal("background image must not be selected")
		}
	}
}

func TestAddImageDecodeFailureLeavesStateUntouched(t *testing.T) {
	s := newTestSession(t)
	p := s.AddImage("broken.png", []byte("not an image"), false)
	if _, err := p.Wait(); err == nil {
		t.Fatal("decode failure not reported")
	}
	if len(s.Snapshot().Objects) != 0 {
		t.Fatal("failed decode still inserted an object")
	}
	if s.CanUndo() {
		t.Fatal("failed decode polluted history")
	}
}

func TestUpdateStyleAcrossSelection(t *testing.T) {
	s := newTestSession(t)
	a := s.AddText(domain.FieldBeerName, "A", nil)
	b := s.AddText(domain.FieldBeerStyle, "B", nil)
	s.AddShape(domain.KindRect, "", "") // not text capable, must be skipped
	s.SelectAll()

	fill := "#ff0000"
	n := s.UpdateStyle(domain.TextStylePatch{Fill: &fill})
	if n != 2 {
		t.Fatalf("touched %d, want 2", n)
	}
	st := s.Snapshot()
	if st.ByID(a.ID).Fill != "#ff0000" || st.ByID(b.ID).Fill != "#ff0000" {
		t.Fatal("fill not applied to all text")
	}
}

func TestUpdateImageStyleRebuildsFilterList(t *testing.T) {
	s := newTestSession(t)
	p := s.AddImage("x.png", encodePNG(t, 4, 4), false)
	o, err := p.Wait()
	if err != nil {
		t.Fatalf("AddImage: %v", err)
	}
	s.Select(o.ID)

	gray := true
	bright := 0.4
	if n := s.UpdateImageStyle(FilterPatch{Grayscale: &gray, Brightness: &bright}); n != 1 {
		t.Fatalf("touched %d, want 1", n)
	}
	got := s.Snapshot().ByID(o.ID)
	if got.FilterValues.Brightness != 0.4 || !got.FilterValues.Grayscale {
		t.Fatalf("filter values not merged: %+v", got.FilterValues)
	}
	if len(got.Filters) != 2 {
		t.Fatalf("filter list not rebuilt: %v", got.Filters)
	}

	// Clamp out-of-range values.
	over := 9.0
	s.UpdateImageStyle(FilterPatch{Contrast: &over})
	got = s.Snapshot().ByID(o.ID)
	if got.FilterValues.Contrast != 1 {
		t.Fatalf("contrast not clamped: %v", got.FilterValues.Contrast)
	}
}

func TestUpdateCurveEnableDisable(t *testing.T) {
	s := newTestSession(t)
	o := s.AddText(domain.FieldBreweryName, "Arc Brew", nil)
	s.Select(o.ID)
	flatW, flatH := o.Width, o.Height

	if n := s.UpdateCurve(true, 100, 120, false); n != 1 {
		t.Fatalf("curve enable touched %d", n)
	}
	got := s.Snapshot().ByID(o.ID)
	if !got.Curved || got.CurveRadius != 100 || got.CurveAngle != 120 {
		t.Fatalf("curve attributes not set: %+v", got)
	}
	if got.PathData == "" {
		t.Fatal("arc path not derived")
	}
	if got.Width == flatW && got.Height == flatH {
		t.Fatal("curved box not taken from the arc")
	}

	if n := s.UpdateCurve(false, 0, 0, false); n != 1 {
		t.Fatalf("curve disable touched %d", n)
	}
	got = s.Snapshot().ByID(o.ID)
	if got.Curved || got.CurveRadius != 0 || got.CurveAngle != 0 || got.PathData != "" {
		t.Fatalf("curve attributes not cleared: %+v", got)
	}
	if got.Width != flatW || got.Height != flatH {
		t.Fatalf("flat box not restored: %vx%v want %vx%v", got.Width, got.Height, flatW, flatH)
	}
}

func TestUpdateCurveDegenerateArcStraightens(t *testing.T) {
	s := newTestSession(t)
	o := s.AddText(domain.FieldBreweryName, "X", nil)
	s.Select(o.ID)
	if n := s.UpdateCurve(true, 80, 120, true); n != 1 {
		t.Fatalf("curve enable touched %d", n)
	}

	// a zero radius is a straighten, not a skip: the old curve must
	// not survive it
	if n := s.UpdateCurve(true, 0, 120, false); n != 1 {
		t.Fatalf("zero radius touched %d, want 1", n)
	}
	got := s.Snapshot().ByID(o.ID)
	if got.Curved || got.CurveRadius != 0 || got.CurveFlip || got.PathData != "" {
		t.Fatalf("zero radius left stale curve state: %+v", got)
	}

	s.UpdateCurve(true, 80, 120, false)
	if n := s.UpdateCurve(true, 50, -10, false); n != 1 {
		t.Fatalf("negative sweep touched %d, want 1", n)
	}
	if got := s.Snapshot().ByID(o.ID); got.Curved {
		t.Fatalf("negative sweep left the text curved: %+v", got)
	}
}

func TestSetFieldTextIgnoresSelection(t *testing.T) {
	s := newTestSession(t)
	a := s.AddText(domain.FieldBeerName, "old", nil)
	b := s.AddText(domain.FieldBeerName, "old", nil)
	s.AddText(domain.FieldVolume, "0.5l", nil)
	s.ClearSelection()

	if n := s.SetFieldText(domain.FieldBeerName, "Doppelbock"); n != 2 {
		t.Fatalf("touched %d, want 2", n)
	}
	st := s.Snapshot()
	if st.ByID(a.ID).Text != "Doppelbock" || st.ByID(b.ID).Text != "Doppelbock" {
		t.Fatal("field text not applied")
	}
	if n := s.SetFieldText(domain.FieldIBU, "IBU 60"); n != 0 {
		t.Fatalf("absent field touched %d", n)
	}
}

func TestDeleteSelected(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddShape(domain.KindRect, "", "")
	b, _ := s.AddShape(domain.KindCircle, "", "")
	s.Select(a.ID)
	if n := s.DeleteSelected(); n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
	st := s.Snapshot()
	if st.ByID(a.ID) != nil || st.ByID(b.ID) == nil {
		t.Fatal("wrong object deleted")
	}
	if len(s.Selection()) != 0 {
		t.Fatal("selection not cleared after delete")
	}
}

func TestDuplicateSelected(t *testing.T) {
	s := newTestSession(t)
	o, _ := s.AddShape(domain.KindRect, "", "")
	s.Select(o.ID)
	ids := s.DuplicateSelected()
	if len(ids) != 1 {
		t.Fatalf("duplicated %d, want 1", len(ids))
	}
	if ids[0] == o.ID {
		t.Fatal("duplicate shares identity with original")
	}
	st := s.Snapshot()
	dup := st.ByID(ids[0])
	orig := st.ByID(o.ID)
	if dup.Left != orig.Left+20 || dup.Top != orig.Top+20 {
		t.Fatalf("duplicate offset wrong: (%v,%v) vs (%v,%v)", dup.Left, dup.Top, orig.Left, orig.Top)
	}
	if got := s.Selection(); len(got) != 1 || got[0] != ids[0] {
		t.Fatalf("duplicates not selected: %v", got)
	}
}

func TestZOrderOps(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddShape(domain.KindRect, "", "")
	b, _ := s.AddShape(domain.KindCircle, "", "")
	c, _ := s.AddShape(domain.KindLine, "", "")

	order := func() []string {
		st := s.Snapshot()
		out := make([]string, len(st.Objects))
		for i, o := range st.Objects {
			out[i] = o.ID
		}
		return out
	}

	s.Select(a.ID)
	if !s.BringForward() {
		t.Fatal("BringForward failed")
	}
	if got := order(); got[1] != a.ID {
		t.Fatalf("order after forward: %v", got)
	}

	if !s.BringToFront() {
		t.Fatal("BringToFront failed")
	}
	if got := order(); got[2] != a.ID {
		t.Fatalf("order after to-front: %v", got)
	}

	s.Select(c.ID)
	if !s.SendBackward() {
		t.Fatal("SendBackward failed")
	}
	if got := order(); got[0] != c.ID && got[1] != c.ID {
		t.Fatalf("order after backward: %v", got)
	}

	s.Select(a.ID)
	if !s.SendToBack() {
		t.Fatal("SendToBack failed")
	}
	if got := order(); got[0] != a.ID {
		t.Fatalf("order after to-back: %v", got)
	}
	_ = b
}
