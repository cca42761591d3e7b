/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"golabelmaker/internal/geom"
	"golabelmaker/internal/units"
)

// State is a complete label document: the ordered object list plus the
// page background and the canvas pixel size derived from the label's
// physical dimensions and the display scale. Index 0 is the bottom of
// the z-order; the index is the order, nothing else encodes stacking.
type State struct {
	Objects    []*Object `json:"objects"`
	Background string    `json:"background,omitempty"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`

	// Label provenance: the physical size and display scale the pixel
	// dimensions were derived from.
	LabelWidthMM  float64 `json:"labelWidthMm,omitempty"`
	LabelHeightMM float64 `json:"labelHeightMm,omitempty"`
	Scale         float64 `json:"scale,omitempty"`
}

// NewState creates an empty document for a label of the given physical
// size at the given display scale.
func NewState(labelWmm, labelHmm, scale float64) *State {
	return &State{
		Background:    "#ffffff",
		Width:         units.MmToPx(labelWmm, scale),
		Height:        units.MmToPx(labelHmm, scale),
		LabelWidthMM:  labelWmm,
		LabelHeightMM: labelHmm,
		Scale:         scale,
	}
}

// Clone returns a deep copy of the document.
func (s *State) Clone() *State {
	c := *s
	c.Objects = make([]*Object, len(s.Objects))
	for i, o := range s.Objects {
		c.Objects[i] = o.Clone()
	}
	return &c
}

// Bounds returns the canvas rectangle in pixel space.
func (s *State) Bounds() geom.Rect {
	return geom.Rect{X: 0, Y: 0, W: s.Width, H: s.Height}
}

// IndexOf returns the z-position of the object with the given id, or
// -1 when absent.
func (s *State) IndexOf(id string) int {
	for i, o := range s.Objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// ByID returns the object with the given id, or nil.
func (s *State) ByID(id string) *Object {
	if i := s.IndexOf(id); i >= 0 {
		return s.Objects[i]
	}
	return nil
}

// Append adds an object at the top of the z-order.
func (s *State) Append(o *Object) {
	s.Objects = append(s.Objects, o)
}

// Prepend adds an object at the bottom of the z-order.
func (s *State) Prepend(o *Object) {
	s.Objects = append([]*Object{o}, s.Objects...)
}

// Remove deletes the object with the given id, preserving the relative
// order of the rest. Returns false when the id is absent.
func (s *State) Remove(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
	return true
}

// BringForward swaps the object one step toward the top of the stack.
func (s *State) BringForward(id string) bool {
	i := s.IndexOf(id)
	if i < 0 || i >= len(s.Objects)-1 {
		return false
	}
	s.Objects[i], s.Objects[i+1] = s.Objects[i+1], s.Objects[i]
	return true
}

// SendBackward swaps the object one step toward the bottom.
func (s *State) SendBackward(id string) bool {
	i := s.IndexOf(id)
	if i <= 0 {
		return false
	}
	s.Objects[i], s.Objects[i-1] = s.Objects[i-1], s.Objects[i]
	return true
}

// BringToFront moves the object to the top of the stack.
func (s *State) BringToFront(id string) bool {
	i := s.IndexOf(id)
	if i < 0 || i == len(s.Objects)-1 {
		return false
	}
	o := s.Objects[i]
	s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
	s.Objects = append(s.Objects, o)
	return true
}

// SendToBack moves the object to the bottom of the stack.
func (s *State) SendToBack(id string) bool {
	i := s.IndexOf(id)
	if i <= 0 {
		return false
	}
	o := s.Objects[i]
	s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
	s.Objects = append([]*Object{o}, s.Objects...)
	return true
}
