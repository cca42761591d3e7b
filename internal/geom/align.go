/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "sort"

// AlignEdge selects the edge or center line objects are aligned to.
type AlignEdge int

const (
	AlignLeft AlignEdge = iota
	AlignCenterX
	AlignRight
	AlignTop
	AlignCenterY
	AlignBottom
)

// Axis selects the direction of a distribution.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// AlignDeltas plans an alignment of the given bounding boxes. A single
// box aligns against the canvas bounds; two or more boxes align against
// their own group bounding box, so members move relative to each other
// and the group as a whole stays put. The returned slice holds one
// translation per input box, index-aligned. Nil when boxes is empty.
func AlignDeltas(boxes []Rect, canvas Rect, edge AlignEdge) []Pt {
	if len(boxes) == 0 {
		return nil
	}
	target := canvas
	if len(boxes) > 1 {
		target = BoundsOf(boxes)
	}
	deltas := make([]Pt, len(boxes))
	for i, b := range boxes {
		switch edge {
		case AlignLeft:
			deltas[i].X = target.X - b.X
		case AlignCenterX:
			deltas[i].X = target.CenterX() - b.CenterX()
		case AlignRight:
			deltas[i].X = target.Right() - b.Right()
		case AlignTop:
			deltas[i].Y = target.Y - b.Y
		case AlignCenterY:
			deltas[i].Y = target.CenterY() - b.CenterY()
		case AlignBottom:
			deltas[i].Y = target.Bottom() - b.Bottom()
		}
	}
	return deltas
}

// DistributeDeltas plans even spacing of at least three boxes along an
// axis. Boxes are ordered by their leading edge; the first and last
// stay fixed and the interior ones are repositioned so every gap
// between adjacent boxes equals (span - sum of sizes) / (n - 1). Nil
// when fewer than three boxes are given.
func DistributeDeltas(boxes []Rect, axis Axis) []Pt {
	n := len(boxes)
	if n < 3 {
		return nil
	}

	leading := func(r Rect) float64 { return r.X }
	size := func(r Rect) float64 { return r.W }
	if axis == Vertical {
		leading = func(r Rect) float64 { return r.Y }
		size = func(r Rect) float64 { return r.H }
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return leading(boxes[order[a]]) < leading(boxes[order[b]])
	})

	first := boxes[order[0]]
	last := boxes[order[n-1]]
	span := leading(last) + size(last) - leading(first)
	sum := 0.0
	for _, b := range boxes {
		sum += size(b)
	}
	gap := (span - sum) / float64(n-1)

	deltas := make([]Pt, n)
	edge := leading(first) + size(first)
	for _, idx := range order[1 : n-1] {
		pos := edge + gap
		if axis == Horizontal {
			deltas[idx].X = pos - boxes[idx].X
		} else {
			deltas[idx].Y = pos - boxes[idx].Y
		}
		edge = pos + size(boxes[idx])
	}
	return deltas
}
