/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sheet computes how many labels of a given physical size fit
// on an A4 page and where they sit. All values are millimeters.
package sheet

import "math"

// A4 page size in millimeters, portrait.
const (
	A4WidthMM  = 210
	A4HeightMM = 297
)

// Orientation of the chosen page layout.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Layout is a computed page layout: label counts per row and column,
// the chosen orientation, and the centering margins recomputed from
// the space the labels actually use. The centering margins may differ
// from the requested margin when labels do not fill the page evenly.
type Layout struct {
	PerRow      int
	PerColumn   int
	Total       int
	Orientation Orientation
	MarginX     float64
	MarginY     float64
	Spacing     float64
	PageWidth   float64
	PageHeight  float64
}

// Position is a label's top-left corner on the page.
type Position struct {
	X float64
	Y float64
}

// Calculate computes the best A4 layout for a label size, requested
// margin and inter-label spacing. Both page orientations are tried;
// the one fitting strictly more labels wins and ties keep portrait.
// A label larger than the page still yields a 1x1 layout: the count
// floors at one, oversize is the caller's concern.
func Calculate(labelW, labelH, margin, spacing float64) Layout {
	p := candidate(A4WidthMM, A4HeightMM, labelW, labelH, margin, spacing)
	p.Orientation = Portrait
	l := candidate(A4HeightMM, A4WidthMM, labelW, labelH, margin, spacing)
	l.Orientation = Landscape
	if l.Total > p.Total {
		return l
	}
	return p
}

func candidate(pageW, pageH, labelW, labelH, margin, spacing float64) Layout {
	perRow := fitCount(pageW-2*margin, labelW, spacing)
	perCol := fitCount(pageH-2*margin, labelH, spacing)

	usedW := float64(perRow)*labelW + float64(perRow-1)*spacing
	usedH := float64(perCol)*labelH + float64(perCol-1)*spacing

	return Layout{
		PerRow:     perRow,
		PerColumn:  perCol,
		Total:      perRow * perCol,
		MarginX:    (pageW - usedW) / 2,
		MarginY:    (pageH - usedH) / 2,
		Spacing:    spacing,
		PageWidth:  pageW,
		PageHeight: pageH,
	}
}

func fitCount(available, size, spacing float64) int {
	if size+spacing <= 0 {
		return 1
	}
	n := int(math.Floor((available + spacing) / (size + spacing)))
	if n < 1 {
		return 1
	}
	return n
}

// Positions returns the label origins in row-major order: row 0 left
// to right, then row 1, and so on.
func Positions(l Layout, labelW, labelH float64) []Position {
	out := make([]Position, 0, l.Total)
	for row := 0; row < l.PerColumn; row++ {
		for col := 0; col < l.PerRow; col++ {
			out = append(out, Position{
				X: l.MarginX + float64(col)*(labelW+l.Spacing),
				Y: l.MarginY + float64(row)*(labelH+l.Spacing),
			})
		}
	}
	return out
}
