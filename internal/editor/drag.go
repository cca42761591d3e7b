/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/geom"
)

// BeginDrag starts an interactive move of one object. Intermediate
// positions are live but not committed; EndDrag writes exactly one
// history entry for the whole gesture.
func (s *Session) BeginDrag(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dragID != "" {
		return fmt.Errorf("drag already in progress for %s", s.dragID)
	}
	if s.state.ByID(id) == nil {
		return fmt.Errorf("begin drag: no object %q", id)
	}
	s.dragID = id
	s.guides = nil
	return nil
}

// DragTo moves the dragged object so its top-left lands at (x, y),
// then applies grid snapping and smart guides in that order. It
// returns the final position after snapping. Calling DragTo without
// an active drag is a no-op.
func (s *Session) DragTo(x, y float64) (fx, fy float64) {
	s.mu.Lock()
	o := s.state.ByID(s.dragID)
	if o == nil {
		s.mu.Unlock()
		return x, y
	}
	o.SetPos(x, y)

	if s.snapToGrid && s.gridSize > 0 {
		cell := s.gridSize * s.state.Scale
		dx, dy := geom.SnapToGrid(o.BBox(), cell)
		o.MoveBy(dx, dy)
	}

	s.guides = nil
	if s.smartGuides {
		others := make([]geom.Rect, 0, len(s.state.Objects)-1)
		for _, other := range s.state.Objects {
			if other.ID == o.ID {
				continue
			}
			others = append(others, other.BBox())
		}
		dx, dy, guides := geom.ComputeGuides(o.BBox(), s.state.Bounds(), others, s.snapThreshold)
		o.MoveBy(dx, dy)
		s.guides = guides
	}

	fx, fy = o.Left, o.Top
	s.mu.Unlock()
	s.emit(EventObjectsChanged)
	return fx, fy
}

// EndDrag finishes the gesture and commits its final state.
func (s *Session) EndDrag() {
	s.mu.Lock()
	if s.dragID == "" {
		s.mu.Unlock()
		return
	}
	s.dragID = ""
	s.guides = nil
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventHistoryChanged)
}

// ActiveGuides returns the smart guides matched by the last DragTo.
func (s *Session) ActiveGuides() []geom.GuideLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geom.GuideLine, len(s.guides))
	copy(out, s.guides)
	return out
}

// MoveSelectedBy nudges the whole selection by a fixed offset with a
// single history entry. No snapping applies to nudges.
func (s *Session) MoveSelectedBy(dx, dy float64) int {
	s.mu.Lock()
	objs := s.selectedLocked()
	for _, o := range objs {
		o.MoveBy(dx, dy)
	}
	if len(objs) > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if len(objs) > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return len(objs)
}

// SetPosition places one object at an absolute top-left and commits.
func (s *Session) SetPosition(id string, x, y float64) error {
	s.mu.Lock()
	o := s.state.ByID(id)
	if o == nil {
		s.mu.Unlock()
		return fmt.Errorf("set position: no object %q", id)
	}
	o.SetPos(x, y)
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventHistoryChanged)
	return nil
}

// SetAngle rotates one object to an absolute angle in degrees.
func (s *Session) SetAngle(id string, deg float64) error {
	s.mu.Lock()
	o := s.state.ByID(id)
	if o == nil {
		s.mu.Unlock()
		return fmt.Errorf("set angle: no object %q", id)
	}
	o.Angle = deg
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventHistoryChanged)
	return nil
}

// Align lines the selection up on the given edge or center line. One
// selected object aligns against the canvas, several against their
// group bounding box.
func (s *Session) Align(edge geom.AlignEdge) int {
	s.mu.Lock()
	objs := s.selectedLocked()
	boxes := make([]geom.Rect, len(objs))
	for i, o := range objs {
		boxes[i] = o.BBox()
	}
	deltas := geom.AlignDeltas(boxes, s.state.Bounds(), edge)
	n := 0
	for i, d := range deltas {
		if d.X != 0 || d.Y != 0 {
			objs[i].MoveBy(d.X, d.Y)
			n++
		}
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// DistributeSelected spaces three or more selected objects so the gaps
// between them are equal. Fewer than three selected objects is a no-op.
func (s *Session) DistributeSelected(axis geom.Axis) int {
	s.mu.Lock()
	objs := s.selectedLocked()
	boxes := make([]geom.Rect, len(objs))
	for i, o := range objs {
		boxes[i] = o.BBox()
	}
	deltas := geom.DistributeDeltas(boxes, axis)
	n := 0
	for i, d := range deltas {
		if d.X != 0 || d.Y != 0 {
			objs[i].MoveBy(d.X, d.Y)
			n++
		}
	}
	if n > 0 {
		s.commitLocked()
	}
	s.mu.Unlock()
	if n > 0 {
		s.emit(EventObjectsChanged, EventHistoryChanged)
	}
	return n
}

// ObjectAt returns the topmost object whose bounding box contains the
// point, or nil. Z-order is slice order, so the scan runs back to front.
func (s *Session) ObjectAt(x, y float64) *domain.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.state.Objects) - 1; i >= 0; i-- {
		o := s.state.Objects[i]
		b := o.BBox()
		if x >= b.X && x <= b.Right() && y >= b.Y && y <= b.Bottom() {
			return o
		}
	}
	return nil
}
