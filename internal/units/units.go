/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package units converts between the physical and pixel coordinate
// spaces used by the label editor. Documents store geometry in canvas
// pixels at 96 DPI times a display scale factor; print export works in
// millimeters and a 300 DPI raster space.
package units

// Conversion factors. PxPerMm is 96 DPI (96 / 25.4), PxPerMm300 the
// 300 DPI export variant. Points convert at the CSS ratio 96/72.
const (
	PxPerMm    = 3.7795275591
	PxPerMm300 = 11.811023622
	PxPerPt    = 1.333
)

// MmToPx maps millimeters to canvas pixels at the given display scale.
// Zero and negative inputs are legal; they denote relative offsets.
func MmToPx(mm, scale float64) float64 {
	return mm * PxPerMm * scale
}

// PxToMm is the inverse of MmToPx. The scale must be nonzero.
func PxToMm(px, scale float64) float64 {
	return px / (PxPerMm * scale)
}

// MmToPx300 maps millimeters to pixels in the 300 DPI export space.
func MmToPx300(mm float64) float64 {
	return mm * PxPerMm300
}

// Px300ToMm is the inverse of MmToPx300.
func Px300ToMm(px float64) float64 {
	return px / PxPerMm300
}

// PtToPx maps typographic points to pixels.
func PtToPx(pt float64) float64 {
	return pt * PxPerPt
}

// PxToPt is the inverse of PtToPx.
func PxToPt(px float64) float64 {
	return px / PxPerPt
}
