/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "math"

// Rescale adapts a document authored at a different canvas pixel size
// (refW x refH) to the current canvas. A single uniform factor
// min(curW/refW, curH/refH) scales every object's position, size,
// radius, font size, stroke width and line endpoints; a centering
// offset distributes the leftover space evenly. Path objects keep
// their geometry and take the factor on their own scale values
// instead. Curved text keeps its sweep but scales its radius; callers
// rebuild the derived arc description afterwards.
func Rescale(s *State, refW, refH float64) {
	if refW <= 0 || refH <= 0 {
		return
	}
	f := math.Min(s.Width/refW, s.Height/refH)
	offX := (s.Width - refW*f) / 2
	offY := (s.Height - refH*f) / 2

	for _, o := range s.Objects {
		o.Left = o.Left*f + offX
		o.Top = o.Top*f + offY

		switch o.Kind {
		case KindPath:
			o.ScaleX *= f
			o.ScaleY *= f
		case KindLine:
			o.X1 = o.X1*f + offX
			o.Y1 = o.Y1*f + offY
			o.X2 = o.X2*f + offX
			o.Y2 = o.Y2*f + offY
			o.StrokeWidth *= f
		case KindText:
			o.Width *= f
			o.Height *= f
			o.FontSize *= f
			o.CurveRadius *= f
			o.StrokeWidth *= f
		case KindCircle:
			o.Radius *= f
			o.StrokeWidth *= f
		case KindRect, KindImage:
			o.Width *= f
			o.Height *= f
			o.RX *= f
			o.StrokeWidth *= f
		}
	}
}
