/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"

	"golang.org/x/image/font"
)

// Measure returns the pixel extent of text laid out in straight lines.
// Lines are split on newlines; the width is the widest line including
// letter spacing, the height is lines times fontSize times lineHeight.
// lineHeight values <= 0 use 1.16, matching the document default.
func Measure(lib *Library, text string, spec FontSpec, lineHeight, charSpacing float64) (w, h float64) {
	if lineHeight <= 0 {
		lineHeight = 1.16
	}
	if spec.Size <= 0 {
		spec.Size = 12
	}
	face, _ := lib.Face(spec)
	d := &font.Drawer{Face: face}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		lw := advance(d, line)
		if n := len([]rune(line)); n > 1 && charSpacing != 0 {
			lw += charSpacing * float64(n-1)
		}
		if lw > w {
			w = lw
		}
	}
	h = spec.Size * lineHeight * float64(len(lines))
	return w, h
}

// LineWidths measures every line separately, for aligned rendering.
func LineWidths(lib *Library, text string, spec FontSpec, charSpacing float64) []float64 {
	face, _ := lib.Face(spec)
	d := &font.Drawer{Face: face}
	lines := strings.Split(text, "\n")
	out := make([]float64, len(lines))
	for i, line := range lines {
		lw := advance(d, line)
		if n := len([]rune(line)); n > 1 && charSpacing != 0 {
			lw += charSpacing * float64(n-1)
		}
		out[i] = lw
	}
	return out
}

// Advance measures a single run with the resolved face.
func Advance(lib *Library, s string, spec FontSpec) float64 {
	face, _ := lib.Face(spec)
	return advance(&font.Drawer{Face: face}, s)
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64
}
