/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// SnapToGrid rounds the top-left corner of the bounding box to the
// nearest intersection of a grid with the given cell size and returns
// the positional delta to apply. A box already on an intersection
// yields a zero delta. Cell sizes <= 0 disable snapping.
func SnapToGrid(box Rect, cell float64) (dx, dy float64) {
	if cell <= 0 {
		return 0, 0
	}
	dx = math.Round(box.X/cell)*cell - box.X
	dy = math.Round(box.Y/cell)*cell - box.Y
	return dx, dy
}
