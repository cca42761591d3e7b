/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Core data model for label documents. Objects are flat structs that
// serialize to the JSON document format directly; the set of kinds is
// closed and every per-kind behavior switches exhaustively over it.

import (
	"math"

	"github.com/google/uuid"

	"golabelmaker/internal/geom"
)

// Kind discriminates the drawable object variants. The set is closed:
// documents carrying any other type name are filtered at load time.
type Kind string

const (
	KindText   Kind = "text"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindImage  Kind = "image"
	KindPath   Kind = "path"
)

// KnownKind reports whether k is one of the closed variant set.
func KnownKind(k Kind) bool {
	switch k {
	case KindText, KindRect, KindCircle, KindLine, KindImage, KindPath:
		return true
	}
	return false
}

// Shadow is a text drop shadow. It is applied or cleared as a whole.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// FilterValues is the remembered per-image filter record. Partial
// filter updates merge into it so that setting brightness and later
// only contrast does not reset brightness. The active filter list is
// rebuilt from the nonzero/true entries.
type FilterValues struct {
	Brightness float64 `json:"brightness,omitempty"` // -1..1, 0 = neutral
	Contrast   float64 `json:"contrast,omitempty"`   // -1..1, 0 = neutral
	Saturation float64 `json:"saturation,omitempty"` // -1..1, 0 = neutral
	Blur       float64 `json:"blur,omitempty"`       // 0..1 of object size
	Grayscale  bool    `json:"grayscale,omitempty"`
	Sepia      bool    `json:"sepia,omitempty"`
	Invert     bool    `json:"invert,omitempty"`
}

// ActiveFilters returns the filter names to apply, in application
// order, derived from the nonzero/true values.
func (fv FilterValues) ActiveFilters() []string {
	var out []string
	if fv.Brightness != 0 {
		out = append(out, "brightness")
	}
	if fv.Contrast != 0 {
		out = append(out, "contrast")
	}
	if fv.Saturation != 0 {
		out = append(out, "saturation")
	}
	if fv.Grayscale {
		out = append(out, "grayscale")
	}
	if fv.Sepia {
		out = append(out, "sepia")
	}
	if fv.Invert {
		out = append(out, "invert")
	}
	if fv.Blur != 0 {
		out = append(out, "blur")
	}
	return out
}

// Object is a drawable entity. One struct carries the attribute union
// of all kinds, mirroring the flat JSON wire format; which fields are
// meaningful depends on Kind. Z-order is the object's index in the
// document's object slice, nothing is stored here.
type Object struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"type"`
	Name    string  `json:"name,omitempty"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Radius  float64 `json:"radius,omitempty"` // circles
	Angle   float64 `json:"angle,omitempty"`  // degrees, about the top-left origin
	ScaleX  float64 `json:"scaleX"`
	ScaleY  float64 `json:"scaleY"`
	FlipX   bool    `json:"flipX,omitempty"`
	FlipY   bool    `json:"flipY,omitempty"`
	Opacity float64 `json:"opacity"`

	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	RX          float64 `json:"rx,omitempty"` // rectangle corner radius

	// Line endpoints, absolute canvas coordinates.
	X1 float64 `json:"x1,omitempty"`
	Y1 float64 `json:"y1,omitempty"`
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	// Text attributes.
	Text        string    `json:"text,omitempty"`
	FontFamily  string    `json:"fontFamily,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	FontWeight  string    `json:"fontWeight,omitempty"` // normal or bold
	FontStyle   string    `json:"fontStyle,omitempty"`  // normal or italic
	Underline   bool      `json:"underline,omitempty"`
	TextAlign   string    `json:"textAlign,omitempty"` // left, center, right
	LineHeight  float64   `json:"lineHeight,omitempty"`
	CharSpacing float64   `json:"charSpacing,omitempty"`
	FieldType   FieldType `json:"fieldType,omitempty"`
	Shadow      *Shadow   `json:"shadow,omitempty"`

	// Curved-text state. PathData is the derived arc description the
	// text follows while Curved is set.
	Curved      bool    `json:"curved,omitempty"`
	CurveRadius float64 `json:"curveRadius,omitempty"`
	CurveAngle  float64 `json:"curveAngle,omitempty"` // sweep, degrees
	CurveFlip   bool    `json:"curveFlip,omitempty"`
	PathData    string  `json:"pathData,omitempty"`

	// Image attributes. The decoded bitmap is owned by the session and
	// re-attached by source name, so documents stay pure data.
	Src          string       `json:"src,omitempty"`
	Filters      []string     `json:"filters,omitempty"`
	FilterValues FilterValues `json:"filterValues,omitzero"`
}

// NewObject creates an object of the given kind with neutral transform
// defaults and a fresh identity.
func NewObject(kind Kind) *Object {
	return &Object{
		ID:      uuid.NewString(),
		Kind:    kind,
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 1,
	}
}

// Clone returns a deep copy with the same identity.
func (o *Object) Clone() *Object {
	c := *o
	if o.Shadow != nil {
		s := *o.Shadow
		c.Shadow = &s
	}
	if o.Filters != nil {
		c.Filters = append([]string(nil), o.Filters...)
	}
	return &c
}

// TextCapable reports whether style updates apply to this object.
func (o *Object) TextCapable() bool {
	return o.Kind == KindText
}

// baseSize returns the unscaled extent of the object.
func (o *Object) baseSize() (w, h float64) {
	switch o.Kind {
	case KindCircle:
		return o.Radius * 2, o.Radius * 2
	case KindLine:
		return math.Abs(o.X2 - o.X1), math.Abs(o.Y2 - o.Y1)
	default:
		return o.Width, o.Height
	}
}

// BBox returns the axis-aligned bounding box of the rendered extent,
// accounting for scale and rotation. Rotation is about the top-left
// origin. Lines are bounded by their endpoints.
func (o *Object) BBox() geom.Rect {
	if o.Kind == KindLine {
		x0 := math.Min(o.X1, o.X2)
		y0 := math.Min(o.Y1, o.Y2)
		return geom.Rect{X: x0, Y: y0, W: math.Abs(o.X2 - o.X1), H: math.Abs(o.Y2 - o.Y1)}
	}
	w, h := o.baseSize()
	w *= o.ScaleX
	h *= o.ScaleY
	if o.Angle == 0 {
		return geom.Rect{X: o.Left, Y: o.Top, W: w, H: h}
	}
	rad := o.Angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	xs := [4]float64{0, w * cos, -h * sin, w*cos - h*sin}
	ys := [4]float64{0, w * sin, h * cos, w*sin + h*cos}
	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	return geom.Rect{X: o.Left + minX, Y: o.Top + minY, W: maxX - minX, H: maxY - minY}
}

// MoveBy translates the object, keeping line endpoints in sync.
func (o *Object) MoveBy(dx, dy float64) {
	o.Left += dx
	o.Top += dy
	if o.Kind == KindLine {
		o.X1 += dx
		o.Y1 += dy
		o.X2 += dx
		o.Y2 += dy
	}
}

// SetPos places the object's bounding-box top-left at (x, y).
func (o *Object) SetPos(x, y float64) {
	b := o.BBox()
	o.MoveBy(x-b.X, y-b.Y)
}
