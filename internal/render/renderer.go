/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render rasterizes label documents. Objects are drawn bottom
// to top into a gg context at a caller-chosen resolution multiplier;
// the document is never modified by rendering.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	gtext "github.com/gogpu/gg/text"

	"golabelmaker/internal/domain"
	applog "golabelmaker/internal/log"
	"golabelmaker/internal/textlayout"
)

// BitmapSource resolves an image object's decoded bitmap by object id.
// Decoded bitmaps are owned by the editing session, not the document.
type BitmapSource func(id string) (image.Image, bool)

// Renderer draws documents. It caches gg font sources built from the
// shared font library's raw bytes so faces are not re-parsed per draw.
type Renderer struct {
	fonts   *textlayout.Library
	bitmaps BitmapSource
	log     *slog.Logger

	mu      sync.Mutex
	sources map[string]*gtext.FontSource
	warned  map[string]bool
}

// New creates a renderer over the given font library and bitmap
// source. Both may be nil; text then degrades to not being drawn and
// images render as placeholder boxes.
func New(fonts *textlayout.Library, bitmaps BitmapSource) *Renderer {
	return &Renderer{
		fonts:   fonts,
		bitmaps: bitmaps,
		log:     applog.WithComponent("render"),
		sources: make(map[string]*gtext.FontSource),
		warned:  make(map[string]bool),
	}
}

// Render rasterizes the document at mult times its pixel size.
// Multipliers <= 0 fall back to 1.
func (r *Renderer) Render(s *domain.State, mult float64) (image.Image, error) {
	if mult <= 0 {
		mult = 1
	}
	w := int(math.Round(s.Width * mult))
	h := int(math.Round(s.Height * mult))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("render: empty canvas %dx%d", w, h)
	}
	dc := gg.NewContext(w, h)

	bg := s.Background
	if bg == "" {
		bg = "#ffffff"
	}
	dc.SetHexColor(bg)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("render background: %w", err)
	}

	for _, o := range s.Objects {
		r.drawObject(dc, o, mult)
	}
	return dc.Image(), nil
}

// EncodePNG renders and writes a PNG stream.
func (r *Renderer) EncodePNG(s *domain.State, w io.Writer, mult float64) error {
	if mult <= 0 {
		mult = 1
	}
	pw := int(math.Round(s.Width * mult))
	ph := int(math.Round(s.Height * mult))
	if pw < 1 || ph < 1 {
		return fmt.Errorf("render: empty canvas %dx%d", pw, ph)
	}
	dc := gg.NewContext(pw, ph)
	bg := s.Background
	if bg == "" {
		bg = "#ffffff"
	}
	dc.SetHexColor(bg)
	dc.DrawRectangle(0, 0, float64(pw), float64(ph))
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("render background: %w", err)
	}
	for _, o := range s.Objects {
		r.drawObject(dc, o, mult)
	}
	return dc.EncodePNG(w)
}

// DataURL renders the document to a PNG data URL at mult resolution.
func (r *Renderer) DataURL(s *domain.State, mult float64) (string, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(s, &buf, mult); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Renderer) drawObject(dc *gg.Context, o *domain.Object, m float64) {
	switch o.Kind {
	case domain.KindRect:
		r.drawRect(dc, o, m)
	case domain.KindCircle:
		r.drawCircle(dc, o, m)
	case domain.KindLine:
		r.drawLine(dc, o, m)
	case domain.KindImage:
		r.drawImage(dc, o, m)
	case domain.KindText:
		if o.Curved {
			r.drawCurvedText(dc, o, m)
		} else {
			r.drawText(dc, o, m)
		}
	case domain.KindPath:
		// Free-form path payloads are carried through documents but the
		// label editor only ever derives arc paths, which render as part
		// of their text object. Standalone paths draw nothing.
	}
}

func (r *Renderer) drawRect(dc *gg.Context, o *domain.Object, m float64) {
	w := o.Width * o.ScaleX * m
	h := o.Height * o.ScaleY * m
	dc.Push()
	if o.Angle != 0 {
		dc.RotateAbout(o.Angle*math.Pi/180, o.Left*m, o.Top*m)
	}
	if o.RX > 0 {
		dc.DrawRoundedRectangle(o.Left*m, o.Top*m, w, h, o.RX*m)
	} else {
		dc.DrawRectangle(o.Left*m, o.Top*m, w, h)
	}
	r.paint(dc, o, m)
	dc.Pop()
}

func (r *Renderer) drawCircle(dc *gg.Context, o *domain.Object, m float64) {
	radius := o.Radius * o.ScaleX * m
	cx := o.Left*m + radius
	cy := o.Top*m + radius
	dc.DrawCircle(cx, cy, radius)
	r.paint(dc, o, m)
}

func (r *Renderer) drawLine(dc *gg.Context, o *domain.Object, m float64) {
	stroke := o.Stroke
	if stroke == "" {
		stroke = o.Fill
	}
	cr, cg, cb, ca := parseColor(stroke)
	dc.SetRGBA(cr, cg, cb, ca*o.Opacity)
	lw := o.StrokeWidth * m
	if lw <= 0 {
		lw = m
	}
	dc.SetLineWidth(lw)
	dc.DrawLine(o.X1*m, o.Y1*m, o.X2*m, o.Y2*m)
	if err := dc.Stroke(); err != nil {
		r.log.Warn("line stroke failed", slog.Any("err", err))
	}
}

// paint fills and strokes the current path from the object's style.
func (r *Renderer) paint(dc *gg.Context, o *domain.Object, m float64) {
	if o.Fill != "" && o.Fill != "transparent" {
		cr, cg, cb, ca := parseColor(o.Fill)
		dc.SetRGBA(cr, cg, cb, ca*o.Opacity)
		if o.Stroke != "" && o.StrokeWidth > 0 {
			if err := dc.FillPreserve(); err != nil {
				r.log.Warn("fill failed", slog.Any("err", err))
			}
		} else {
			if err := dc.Fill(); err != nil {
				r.log.Warn("fill failed", slog.Any("err", err))
			}
			return
		}
	}
	if o.Stroke != "" && o.StrokeWidth > 0 {
		cr, cg, cb, ca := parseColor(o.Stroke)
		dc.SetRGBA(cr, cg, cb, ca*o.Opacity)
		dc.SetLineWidth(o.StrokeWidth * m)
		if err := dc.Stroke(); err != nil {
			r.log.Warn("stroke failed", slog.Any("err", err))
		}
	} else {
		dc.ClearPath()
	}
}

func (r *Renderer) drawImage(dc *gg.Context, o *domain.Object, m float64) {
	w := o.Width * o.ScaleX * m
	h := o.Height * o.ScaleY * m
	var bmp image.Image
	if r.bitmaps != nil {
		bmp, _ = r.bitmaps(o.ID)
	}
	if bmp == nil {
		// Placeholder for a document loaded without its bitmap data.
		dc.SetRGBA(0.85, 0.85, 0.85, o.Opacity)
		dc.DrawRectangle(o.Left*m, o.Top*m, w, h)
		if err := dc.Fill(); err != nil {
			r.log.Warn("placeholder fill failed", slog.Any("err", err))
		}
		return
	}
	filtered := ApplyFilters(bmp, o.Filters, o.FilterValues)
	if o.Angle == 0 {
		dc.DrawImageEx(gg.ImageBufFromImage(filtered), gg.DrawImageOptions{
			X:         o.Left * m,
			Y:         o.Top * m,
			DstWidth:  w,
			DstHeight: h,
			Opacity:   o.Opacity,
		})
		return
	}
	scaled := scaleRGBA(filtered, int(math.Round(w)), int(math.Round(h)))
	rotated := rotateRGBA(scaled, o.Angle)
	x, y := rotatedSpriteOrigin(o.Left*m, o.Top*m, w, h, o.Angle, rotated)
	dc.DrawImageEx(gg.ImageBufFromImage(rotated), gg.DrawImageOptions{
		X: x, Y: y, Opacity: o.Opacity,
	})
}

// face resolves a gg text face from the shared library's raw bytes.
// Unknown families return nil once with a warning; the text is skipped
// rather than failing the render.
func (r *Renderer) face(spec textlayout.FontSpec) gtext.Face {
	if r.fonts == nil {
		return nil
	}
	data, ok := r.fonts.Bytes(spec)
	if !ok {
		r.warnOnce(spec.Family)
		return nil
	}
	key := fmt.Sprintf("%s|%s|%t", spec.Family, spec.Weight, spec.Italic)
	r.mu.Lock()
	src := r.sources[key]
	r.mu.Unlock()
	if src == nil {
		var err error
		src, err = gtext.NewFontSource(data)
		if err != nil {
			r.warnOnce(spec.Family)
			return nil
		}
		r.mu.Lock()
		r.sources[key] = src
		r.mu.Unlock()
	}
	return src.Face(spec.Size)
}

func (r *Renderer) warnOnce(family string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.warned[family] {
		return
	}
	r.warned[family] = true
	r.log.Warn("font family not loaded, text skipped", slog.String("family", family))
}

func specFor(o *domain.Object, m float64) textlayout.FontSpec {
	size := o.FontSize
	if size <= 0 {
		size = 12
	}
	return textlayout.FontSpec{
		Family: o.FontFamily,
		Size:   size * m,
		Weight: o.FontWeight,
		Italic: o.FontStyle == "italic",
	}
}

func (r *Renderer) drawText(dc *gg.Context, o *domain.Object, m float64) {
	if strings.TrimSpace(o.Text) == "" {
		return
	}
	spec := specFor(o, m)
	face := r.face(spec)
	if face == nil {
		return
	}
	sprite := r.textSprite(o, m, spec, face)
	if sprite == nil {
		return
	}
	if o.Angle == 0 {
		dc.DrawImageEx(gg.ImageBufFromImage(sprite), gg.DrawImageOptions{
			X: o.Left * m, Y: o.Top * m, Opacity: o.Opacity,
		})
		return
	}
	b := sprite.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	rotated := rotateRGBA(sprite, o.Angle)
	x, y := rotatedSpriteOrigin(o.Left*m, o.Top*m, w, h, o.Angle, rotated)
	dc.DrawImageEx(gg.ImageBufFromImage(rotated), gg.DrawImageOptions{
		X: x, Y: y, Opacity: o.Opacity,
	})
}

// textSprite rasterizes the text block, unrotated, at final pixel
// scale. Alignment, line height, letter spacing, underline and shadow
// are all resolved here.
func (r *Renderer) textSprite(o *domain.Object, m float64, spec textlayout.FontSpec, face gtext.Face) *image.RGBA {
	lineHeight := o.LineHeight
	if lineHeight <= 0 {
		lineHeight = 1.16
	}
	charSpacing := o.CharSpacing * m
	lines := strings.Split(o.Text, "\n")
	widths := textlayout.LineWidths(r.fonts, o.Text, spec, charSpacing)

	blockW := 0.0
	for _, w := range widths {
		blockW = math.Max(blockW, w)
	}
	if bw := o.Width * o.ScaleX * m; bw > blockW {
		blockW = bw
	}
	step := spec.Size * lineHeight
	blockH := step * float64(len(lines))
	if blockW < 1 || blockH < 1 {
		return nil
	}

	_, metrics := r.fonts.Face(spec)
	sc := gg.NewContext(int(math.Ceil(blockW)), int(math.Ceil(blockH)))
	sc.SetFont(face)

	draw := func(dx, dy float64, col string, alpha float64) {
		cr, cg, cb, ca := parseColor(col)
		sc.SetRGBA(cr, cg, cb, ca*alpha)
		for i, line := range lines {
			lw := widths[i]
			x := dx
			switch o.TextAlign {
			case "center":
				x += (blockW - lw) / 2
			case "right":
				x += blockW - lw
			}
			baseline := dy + float64(i)*step + (step+metrics.Ascent-metrics.Descent)/2
			r.drawLineRun(sc, line, x, baseline, charSpacing, spec)
			if o.Underline {
				uy := baseline + math.Max(1, spec.Size/12)
				sc.SetLineWidth(math.Max(1, spec.Size/15))
				sc.DrawLine(x, uy, x+lw, uy)
				_ = sc.Stroke()
				sc.SetRGBA(cr, cg, cb, ca*alpha)
			}
		}
	}

	if o.Shadow != nil {
		draw(o.Shadow.OffsetX*m, o.Shadow.OffsetY*m, o.Shadow.Color, 0.6)
	}
	fill := o.Fill
	if fill == "" {
		fill = "#000000"
	}
	draw(0, 0, fill, 1)

	img, ok := sc.Image().(*image.RGBA)
	if !ok {
		b := sc.Image().Bounds()
		cp := image.NewRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				cp.Set(x, y, sc.Image().At(x, y))
			}
		}
		return cp
	}
	return img
}

// drawLineRun draws one line, glyph by glyph when letter spacing is in
// effect, in one run otherwise.
func (r *Renderer) drawLineRun(sc *gg.Context, line string, x, baseline, charSpacing float64, spec textlayout.FontSpec) {
	if charSpacing == 0 {
		sc.DrawString(line, x, baseline)
		return
	}
	cx := x
	for _, ch := range line {
		s := string(ch)
		sc.DrawString(s, cx, baseline)
		cx += textlayout.Advance(r.fonts, s, spec) + charSpacing
	}
}

func (r *Renderer) drawCurvedText(dc *gg.Context, o *domain.Object, m float64) {
	if strings.TrimSpace(o.Text) == "" || o.CurveRadius <= 0 {
		return
	}
	spec := specFor(o, m)
	face := r.face(spec)
	if face == nil {
		return
	}
	arc := textlayout.ArcPath(o.CurveRadius*m, o.CurveAngle, o.CurveFlip)
	poses := textlayout.LayoutOnArc(r.fonts, o.Text, spec, arc, o.CharSpacing*m)
	if len(poses) == 0 {
		return
	}
	_, metrics := r.fonts.Face(spec)

	// The object's top-left anchors the arc's bounding box; the arc's
	// local origin (circle center) sits at the box offset.
	bounds := arc.Bounds(spec.Size)
	originX := o.Left*m - bounds.X
	originY := o.Top*m - bounds.Y

	for _, p := range poses {
		sprite := r.glyphSprite(p.Ch, spec, face, o.Fill, metrics)
		if sprite == nil {
			continue
		}
		rotated := rotateRGBA(sprite, p.Angle)
		rb := rotated.Bounds()
		// Center the glyph cell on its baseline point along the arc.
		// Pose positions are already in output pixels: the arc was built
		// from the multiplied radius.
		cx := originX + p.Pos.X
		cy := originY + p.Pos.Y
		dc.DrawImageEx(gg.ImageBufFromImage(rotated), gg.DrawImageOptions{
			X:       cx - float64(rb.Dx())/2,
			Y:       cy - float64(rb.Dy())/2,
			Opacity: o.Opacity,
		})
	}
}

// glyphSprite rasterizes a single glyph into a tight cell.
func (r *Renderer) glyphSprite(ch string, spec textlayout.FontSpec, face gtext.Face, fill string, metrics textlayout.Metrics) *image.RGBA {
	adv := textlayout.Advance(r.fonts, ch, spec)
	w := int(math.Ceil(adv)) + 2
	h := int(math.Ceil(metrics.Ascent + metrics.Descent))
	if w < 3 || h < 1 {
		return nil
	}
	sc := gg.NewContext(w, h)
	sc.SetFont(face)
	if fill == "" {
		fill = "#000000"
	}
	cr, cg, cb, ca := parseColor(fill)
	sc.SetRGBA(cr, cg, cb, ca)
	sc.DrawString(ch, 1, metrics.Ascent)
	img, ok := sc.Image().(*image.RGBA)
	if !ok {
		return nil
	}
	return img
}
