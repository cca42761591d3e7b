/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Smart guides for interactive drags. The helpers are UI-agnostic and
// deterministic to enable unit testing and reuse across frontends.
//
// Candidates are checked in a fixed order and the first one within the
// threshold wins the axis. Left/top are checked before centers before
// right/bottom; within one edge check the canvas bounds come before the
// other objects in z-order. This is intentionally not a closest-match
// search: the tie-break order is part of the observable drag behavior.

import "math"

// DefaultSnapThreshold is the drag distance in pixels within which a
// candidate alignment triggers a snap.
const DefaultSnapThreshold = 5

// GuideLine describes a transient alignment hint generated during a
// snap. Orientation is "vertical" or "horizontal"; Kind is "edge" or
// "center". The line spans the full canvas: From and To are its
// endpoints, Position the shared coordinate. Guide lines are never part
// of the document; they exist only while a drag is live.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

type candidate struct {
	pos  float64
	kind string
}

// ComputeGuides evaluates smart-guide snapping for a moving bounding
// box against the canvas bounds and the other objects' boxes. It
// returns the positional adjustment for each axis plus the guide lines
// to render, at most one per axis.
func ComputeGuides(moving Rect, canvas Rect, others []Rect, threshold float64) (dx, dy float64, guides []GuideLine) {
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}

	xs := make([]candidate, 0, 3+3*len(others))
	xs = append(xs,
		candidate{canvas.X, "edge"},
		candidate{canvas.CenterX(), "center"},
		candidate{canvas.Right(), "edge"},
	)
	ys := make([]candidate, 0, 3+3*len(others))
	ys = append(ys,
		candidate{canvas.Y, "edge"},
		candidate{canvas.CenterY(), "center"},
		candidate{canvas.Bottom(), "edge"},
	)
	for _, o := range others {
		xs = append(xs, candidate{o.X, "edge"}, candidate{o.CenterX(), "center"}, candidate{o.Right(), "edge"})
		ys = append(ys, candidate{o.Y, "edge"}, candidate{o.CenterY(), "center"}, candidate{o.Bottom(), "edge"})
	}

	if c, d, ok := firstMatch([]float64{moving.X, moving.CenterX(), moving.Right()}, xs, threshold); ok {
		dx = d
		guides = append(guides, verticalGuide(c, canvas))
	}
	if c, d, ok := firstMatch([]float64{moving.Y, moving.CenterY(), moving.Bottom()}, ys, threshold); ok {
		dy = d
		guides = append(guides, horizontalGuide(c, canvas))
	}
	return dx, dy, guides
}

// firstMatch scans the moving box's features in order (leading edge,
// center, trailing edge) against the candidate list and stops at the
// first pair within the threshold.
func firstMatch(features []float64, cands []candidate, threshold float64) (candidate, float64, bool) {
	for _, f := range features {
		for _, c := range cands {
			if math.Abs(f-c.pos) <= threshold {
				return c, c.pos - f, true
			}
		}
	}
	return candidate{}, 0, false
}

func verticalGuide(c candidate, canvas Rect) GuideLine {
	x := Round(c.pos, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        c.kind,
		Position:    x,
		From:        Pt{x, canvas.Y},
		To:          Pt{x, canvas.Bottom()},
	}
}

func horizontalGuide(c candidate, canvas Rect) GuideLine {
	y := Round(c.pos, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        c.kind,
		Position:    y,
		From:        Pt{canvas.X, y},
		To:          Pt{canvas.Right(), y},
	}
}
