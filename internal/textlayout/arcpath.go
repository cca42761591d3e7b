/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Circular-arc paths for curved text. The construction mirrors the
// document format exactly: endpoint angles are symmetric about the
// vertical axis, coordinates are y-down with the circle center at the
// local origin, and the flip flag mirrors the arc across its endpoint
// chord for reversed, downward reading. Changing any of this changes
// how existing documents render.

import (
	"fmt"
	"math"

	"golang.org/x/image/font"

	"golabelmaker/internal/geom"
)

// Arc is a circular text path. Start/End are the endpoints at
// StartAngle/EndAngle on a circle of Radius around the local origin.
// The rendered arc runs from End to Start (sweep-flag 0) when not
// flipped, from Start to End (sweep-flag 1) when flipped.
type Arc struct {
	Radius     float64
	Sweep      float64 // degrees
	Flip       bool
	StartAngle float64 // degrees
	EndAngle   float64
	Start      geom.Pt
	End        geom.Pt
	LargeArc   int
	SweepFlag  int
}

// ArcPath builds the arc for a sweep angle in degrees and a radius.
// startAngle = (180 - sweep) / 2 centers the arc on the upward
// vertical; sweeps beyond 180 degrees set the large-arc flag.
func ArcPath(radius, sweep float64, flip bool) Arc {
	start := (180 - sweep) / 2
	end := start + sweep
	a := Arc{
		Radius:     radius,
		Sweep:      sweep,
		Flip:       flip,
		StartAngle: start,
		EndAngle:   end,
		Start:      pointOnCircle(radius, start),
		End:        pointOnCircle(radius, end),
	}
	if sweep > 180 {
		a.LargeArc = 1
	}
	if flip {
		a.SweepFlag = 1
	}
	return a
}

func pointOnCircle(r, deg float64) geom.Pt {
	th := deg * math.Pi / 180
	return geom.Pt{X: r * math.Cos(th), Y: -r * math.Sin(th)}
}

// SVG returns the path description in SVG arc syntax.
func (a Arc) SVG() string {
	from, to := a.End, a.Start
	if a.Flip {
		from, to = a.Start, a.End
	}
	return fmt.Sprintf("M %v %v A %v %v 0 %d %d %v %v",
		coord(from.X), coord(from.Y),
		coord(a.Radius), coord(a.Radius),
		a.LargeArc, a.SweepFlag,
		coord(to.X), coord(to.Y))
}

// coord rounds for the path string and folds negative zero away.
func coord(v float64) float64 {
	v = geom.Round(v, 3)
	if v == 0 {
		return 0
	}
	return v
}

// PointAt returns the point at parameter t in [0, 1] along the drawn
// arc, in reading direction. A flipped arc is the mirror of the
// start-to-end run across the endpoint chord (both endpoints share a
// Y coordinate), which is the arc Arc.SVG declares with sweep-flag 1.
func (a Arc) PointAt(t float64) geom.Pt {
	if a.Flip {
		p := pointOnCircle(a.Radius, a.StartAngle+t*a.Sweep)
		return geom.Pt{X: p.X, Y: 2*a.Start.Y - p.Y}
	}
	return pointOnCircle(a.Radius, a.EndAngle-t*a.Sweep)
}

// TangentAt returns the screen rotation in degrees of a glyph whose
// baseline follows the arc at parameter t.
func (a Arc) TangentAt(t float64) float64 {
	if a.Flip {
		th := (a.StartAngle + t*a.Sweep) * math.Pi / 180
		return math.Atan2(math.Cos(th), -math.Sin(th)) * 180 / math.Pi
	}
	th := (a.EndAngle - t*a.Sweep) * math.Pi / 180
	return math.Atan2(math.Cos(th), math.Sin(th)) * 180 / math.Pi
}

// Length returns the arc length.
func (a Arc) Length() float64 {
	return a.Radius * math.Abs(a.Sweep) * math.Pi / 180
}

// Bounds returns the axis-aligned box around the arc polyline,
// inflated on all sides, in local path coordinates. Curved text uses
// the glyph height as the inflation.
func (a Arc) Bounds(inflate float64) geom.Rect {
	const steps = 64
	p := a.PointAt(0)
	minX, maxX, minY, maxY := p.X, p.X, p.Y, p.Y
	for i := 1; i <= steps; i++ {
		p = a.PointAt(float64(i) / steps)
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return geom.Rect{
		X: minX - inflate,
		Y: minY - inflate,
		W: maxX - minX + 2*inflate,
		H: maxY - minY + 2*inflate,
	}
}

// GlyphPose places one glyph on the arc: the baseline point and the
// rotation to apply around it.
type GlyphPose struct {
	Ch    string
	Pos   geom.Pt
	Angle float64 // degrees
}

// LayoutOnArc distributes the text's glyphs along the arc, centered by
// arc length, each glyph rotated to the local tangent. Text longer
// than the arc starts at the arc's beginning and overflows past the
// end rather than failing.
func LayoutOnArc(lib *Library, text string, spec FontSpec, arc Arc, charSpacing float64) []GlyphPose {
	runes := []rune(text)
	if len(runes) == 0 || arc.Radius <= 0 || arc.Sweep <= 0 {
		return nil
	}
	face, _ := lib.Face(spec)
	d := &font.Drawer{Face: face}

	advances := make([]float64, len(runes))
	total := 0.0
	for i, r := range runes {
		advances[i] = advance(d, string(r))
		total += advances[i]
	}
	if len(runes) > 1 {
		total += charSpacing * float64(len(runes)-1)
	}

	arcLen := arc.Length()
	offset := (arcLen - total) / 2
	if offset < 0 {
		offset = 0
	}

	poses := make([]GlyphPose, 0, len(runes))
	cum := offset
	for i, r := range runes {
		center := cum + advances[i]/2
		t := center / arcLen
		poses = append(poses, GlyphPose{
			Ch:    string(r),
			Pos:   arc.PointAt(t),
			Angle: arc.TangentAt(t),
		})
		cum += advances[i] + charSpacing
	}
	return poses
}
