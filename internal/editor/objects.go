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
	"fmt"
	"image"
	"math"
	"sort"

	"log/slog"

	"github.com/google/uuid"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/textlayout"

	// Decoders for the accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Default sizes for freshly added shapes, in canvas px.
const (
	defaultRectW      = 120.0
	defaultRectH      = 80.0
	defaultCircleR    = 50.0
	defaultLineLength = 150.0
)

func specFor(o *domain.Object) textlayout.FontSpec {
	return textlayout.FontSpec{
		Family: o.FontFamily,
		Size:   o.FontSize,
		Weight: o.FontWeight,
		Italic: o.FontStyle == "italic",
	}
}

// measureLocked refreshes a text object's box from its content and
// style. Curved text takes its box from the arc instead.
func (s *Session) measureLocked(o *domain.Object) {
	if !o.TextCapable() {
		return
	}
	if o.Curved {
		arc := textlayout.ArcPath(o.CurveRadius, o.CurveAngle, o.CurveFlip)
		b := arc.Bounds(o.FontSize)
		o.Width = b.W
		o.Height = b.H
		o.PathData = arc.SVG()
		return
	}
	w, h := textlayout.Measure(s.fonts, o.Text, specFor(o), o.LineHeight, o.CharSpacing)
	o.Width = w
	o.Height = h
}

// AddText adds a text element for the given field. Empty text falls
// back to the field's placeholder; the style resolves from the global
// default, the field defaults and the optional override, in that
// order. The new element is centered and becomes the selection.
func (s *Session) AddText(ft domain.FieldType, text string, override *domain.TextStylePatch) *domain.Object {
	if !domain.KnownField(ft) {
		ft = domain.FieldCustom
	}
	o := domain.NewObject(domain.KindText)
	o.FieldType = ft
	if text == "" {
		text = domain.Placeholder(ft)
	}
	o.Text = text
	domain.StyleFor(ft, override).CopyToObject(o)

	s.mu.Lock()
	s.measureLocked(o)
	o.Left = (s.state.Width - o.Width) / 2
	o.Top = (s.state.Height - o.Height) / 2
	s.state.Append(o)
	s.sel = []string{o.ID}
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	return o
}

// AddShape adds a rect, circle or line with default dimensions,
// centered on the canvas, and selects it. Empty fill/stroke fall back
// to neutral defaults.
func (s *Session) AddShape(kind domain.Kind, fill, stroke string) (*domain.Object, error) {
	o := domain.NewObject(kind)
	s.mu.Lock()
	cx, cy := s.state.Width/2, s.state.Height/2
	switch kind {
	case domain.KindRect:
		o.Width, o.Height = defaultRectW, defaultRectH
		o.Left, o.Top = cx-o.Width/2, cy-o.Height/2
		o.Fill = "#cccccc"
	case domain.KindCircle:
		o.Radius = defaultCircleR
		o.Left, o.Top = cx-o.Radius, cy-o.Radius
		o.Fill = "#cccccc"
	case domain.KindLine:
		o.X1, o.Y1 = cx-defaultLineLength/2, cy
		o.X2, o.Y2 = cx+defaultLineLength/2, cy
		o.Left, o.Top = o.X1, o.Y1
		o.Stroke = "#000000"
		o.StrokeWidth = 2
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("add shape: unsupported kind %q", kind)
	}
	if fill != "" {
		o.Fill = fill
	}
	if stroke != "" {
		o.Stroke = stroke
	}
	s.state.Append(o)
	s.sel = []string{o.ID}
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	return o, nil
}

// PendingImage is the in-flight result of an asynchronous image add.
type PendingImage struct {
	done chan struct{}
	obj  *domain.Object
	err  error
}

// Wait blocks until decoding finished and the object (if any) was
// inserted into the document.
func (p *PendingImage) Wait() (*domain.Object, error) {
	<-p.done
	return p.obj, p.err
}

// AddImage decodes image data off the mutating goroutine and inserts
// the resulting object when done. As a background it is scaled to
// cover the canvas and placed at the bottom of the z-order without
// being selected; otherwise it lands centered at half size and becomes
// the selection. A failed decode leaves the document untouched.
func (s *Session) AddImage(name string, data []byte, background bool) *PendingImage {
	p := &PendingImage{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			p.err = fmt.Errorf("decode image %q: %w", name, err)
			s.log.Warn("image decode failed", slog.String("name", name), slog.Any("err", err))
			return
		}
		b := img.Bounds()
		iw, ih := float64(b.Dx()), float64(b.Dy())
		if iw <= 0 || ih <= 0 {
			p.err = fmt.Errorf("decode image %q: empty bitmap", name)
			return
		}

		o := domain.NewObject(domain.KindImage)
		o.Name = name
		o.Src = name
		o.Width, o.Height = iw, ih

		s.mu.Lock()
		cw, ch := s.state.Width, s.state.Height
		if background {
			f := math.Max(cw/iw, ch/ih)
			o.ScaleX, o.ScaleY = f, f
			o.Left = (cw - iw*f) / 2
			o.Top = (ch - ih*f) / 2
			s.state.Prepend(o)
		} else {
			o.ScaleX, o.ScaleY = 0.5, 0.5
			o.Left = (cw - iw*0.5) / 2
			o.Top = (ch - ih*0.5) / 2
			s.state.Append(o)
			s.sel = []string{o.ID}
		}
		s.bmu.Lock()
		s.bitmaps[o.ID] = img
		s.bmu.Unlock()
		s.commitLocked()
		s.mu.Unlock()

		s.log.Info("image added",
			slog.String("name", name),
			slog.String("format", format),
			slog.Bool("background", background))
		p.obj = o
		s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	}()
	return p
}

// AttachImageData re-decodes bitmap data for an existing image object,
// typically after loading a document whose session bitmap cache is
// empty. The object's geometry is not changed and nothing is committed.
func (s *Session) AttachImageData(id string, data []byte) error {
	s.mu.Lock()
	o := s.state.ByID(id)
	s.mu.Unlock()
	if o == nil || o.Kind != domain.KindImage {
		return fmt.Errorf("attach image: no image object %q", id)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("attach image %q: %w", id, err)
	}
	s.bmu.Lock()
	s.bitmaps[id] = img
	s.bmu.Unlock()
	s.emit(EventObjectsChanged)
	return nil
}

// UpdateText replaces the content of the selected text elements and
// refreshes their boxes.
func (s *Session) UpdateText(text string) int {
	s.mu.Lock()
	n := 0
	for _, o := range s.selectedLocked() {
		if !o.TextCapable() {
			continue
		}
		o.Text = text
		s.measureLocked(o)
		n++
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// SetFieldText updates every text element bound to the given field,
// regardless of selection. Returns the number of elements touched.
func (s *Session) SetFieldText(ft domain.FieldType, text string) int {
	s.mu.Lock()
	n := 0
	for _, o := range s.state.Objects {
		if !o.TextCapable() || o.FieldType != ft {
			continue
		}
		o.Text = text
		s.measureLocked(o)
		n++
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// UpdateStyle applies a partial style update to the selected text
// elements and re-measures them.
func (s *Session) UpdateStyle(patch domain.TextStylePatch) int {
	s.mu.Lock()
	n := 0
	for _, o := range s.selectedLocked() {
		if !o.TextCapable() {
			continue
		}
		patch.ApplyToObject(o)
		s.measureLocked(o)
		n++
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// FilterPatch is a partial image filter update. Nil fields leave the
// current value untouched.
type FilterPatch struct {
	Brightness *float64
	Contrast   *float64
	Saturation *float64
	Blur       *float64
	Grayscale  *bool
	Sepia      *bool
	Invert     *bool
}

func (p FilterPatch) apply(fv *domain.FilterValues) {
	if p.Brightness != nil {
		fv.Brightness = clampUnit(*p.Brightness)
	}
	if p.Contrast != nil {
		fv.Contrast = clampUnit(*p.Contrast)
	}
	if p.Saturation != nil {
		fv.Saturation = clampUnit(*p.Saturation)
	}
	if p.Blur != nil {
		fv.Blur = math.Max(0, math.Min(1, *p.Blur))
	}
	if p.Grayscale != nil {
		fv.Grayscale = *p.Grayscale
	}
	if p.Sepia != nil {
		fv.Sepia = *p.Sepia
	}
	if p.Invert != nil {
		fv.Invert = *p.Invert
	}
}

func clampUnit(v float64) float64 { return math.Max(-1, math.Min(1, v)) }

// UpdateImageStyle applies a filter patch to the selected image
// elements. The object's active filter list is rebuilt from the merged
// values so renderers apply filters in a stable order.
func (s *Session) UpdateImageStyle(patch FilterPatch) int {
	s.mu.Lock()
	n := 0
	for _, o := range s.selectedLocked() {
		if o.Kind != domain.KindImage {
			continue
		}
		patch.apply(&o.FilterValues)
		o.Filters = o.FilterValues.ActiveFilters()
		n++
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// UpdateCurve bends or straightens the selected text elements. When
// enabled, the element's box and path are derived from the arc; when
// disabled — or when the arc is degenerate (radius or sweep not above
// zero) — every curve attribute is cleared and the box is measured
// flat again.
func (s *Session) UpdateCurve(enabled bool, radius, sweep float64, flip bool) int {
	s.mu.Lock()
	n := 0
	for _, o := range s.selectedLocked() {
		if !o.TextCapable() {
			continue
		}
		if enabled && radius > 0 && sweep > 0 {
			o.Curved = true
			o.CurveRadius = radius
			o.CurveAngle = sweep
			o.CurveFlip = flip
		} else {
			o.Curved = false
			o.CurveRadius = 0
			o.CurveAngle = 0
			o.CurveFlip = false
			o.PathData = ""
		}
		s.measureLocked(o)
		n++
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// DeleteSelected removes the selected objects and their cached
// bitmaps. Returns the number removed.
func (s *Session) DeleteSelected() int {
	s.mu.Lock()
	n := 0
	for _, id := range s.sel {
		if s.state.Remove(id) {
			s.bmu.Lock()
			delete(s.bitmaps, id)
			s.bmu.Unlock()
			n++
		}
	}
	s.sel = s.sel[:0]
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	}
	return n
}

// DuplicateSelected clones the selected objects with fresh identities,
// offset by a fixed nudge, and makes the clones the new selection.
// Cached bitmaps are shared with the originals.
func (s *Session) DuplicateSelected() []string {
	const offset = 20.0
	s.mu.Lock()
	var ids []string
	for _, src := range s.selectedLocked() {
		c := src.Clone()
		c.ID = uuid.NewString()
		c.MoveBy(offset, offset)
		s.state.Append(c)
		s.bmu.Lock()
		if img, ok := s.bitmaps[src.ID]; ok {
			s.bitmaps[c.ID] = img
		}
		s.bmu.Unlock()
		ids = append(ids, c.ID)
	}
	if len(ids) > 0 {
		s.sel = append(s.sel[:0], ids...)
		s.commitLocked()
	}
	s.mu.Unlock()
	if len(ids) > 0 {
		s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	}
	return ids
}

// zOrderOp applies a per-object stacking move across the selection.
// Order matters: moving several objects forward must start from the
// topmost one so they do not leapfrog each other.
func (s *Session) zOrderOp(descending bool, move func(id string) bool) bool {
	s.mu.Lock()
	idx := make([]int, 0, len(s.sel))
	for _, id := range s.sel {
		if i := s.state.IndexOf(id); i >= 0 {
			idx = append(idx, i)
		}
	}
	if descending {
		sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	} else {
		sort.Ints(idx)
	}
	ids := make([]string, len(idx))
	for i, j := range idx {
		ids[i] = s.state.Objects[j].ID
	}
	changed := false
	for _, id := range ids {
		if move(id) {
			changed = true
		}
	}
	if changed {
		s.commitLocked()
	}
	s.mu.Unlock()
	if changed {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return changed
}

// BringForward moves the selection one step up the z-order.
func (s *Session) BringForward() bool {
	return s.zOrderOp(true, func(id string) bool { return s.state.BringForward(id) })
}

// SendBackward moves the selection one step down the z-order.
func (s *Session) SendBackward() bool {
	return s.zOrderOp(false, func(id string) bool { return s.state.SendBackward(id) })
}

// BringToFront moves the selection to the top, preserving its internal order.
func (s *Session) BringToFront() bool {
	return s.zOrderOp(false, func(id string) bool { return s.state.BringToFront(id) })
}

// SendToBack moves the selection to the bottom, preserving its internal order.
func (s *Session) SendToBack() bool {
	return s.zOrderOp(true, func(id string) bool { return s.state.SendToBack(id) })
}
