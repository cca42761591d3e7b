/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"image"
	"io"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/render"
	"golabelmaker/internal/storage"
	"golabelmaker/internal/textlayout"
)

// LoadOptions controls how a serialized document enters the session.
type LoadOptions struct {
	// RescaleToCanvas adapts a document authored at different canvas
	// dimensions to the session's current label size instead of
	// keeping its own.
	RescaleToCanvas bool
}

// ToJSON serializes the current document.
func (s *Session) ToJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.Encode(s.state)
}

// LoadJSON replaces the document with a deserialized one. The history
// restarts at the loaded state, the selection and bitmap cache are
// cleared; image objects render as placeholders until their data is
// re-attached. Returned warnings name objects the codec dropped.
func (s *Session) LoadJSON(data []byte, opts LoadOptions) ([]string, error) {
	st, warns, err := storage.Decode(data)
	if err != nil {
		return warns, err
	}

	s.mu.Lock()
	if opts.RescaleToCanvas {
		refW, refH := st.Width, st.Height
		st.LabelWidthMM = s.state.LabelWidthMM
		st.LabelHeightMM = s.state.LabelHeightMM
		st.Scale = s.state.Scale
		st.Width = s.state.Width
		st.Height = s.state.Height
		domain.Rescale(st, refW, refH)
		for _, o := range st.Objects {
			if o.Kind == domain.KindText && o.Curved {
				arc := textlayout.ArcPath(o.CurveRadius, o.CurveAngle, o.CurveFlip)
				o.PathData = arc.SVG()
			}
		}
	}
	s.state = st
	s.sel = s.sel[:0]
	s.bmu.Lock()
	s.bitmaps = make(map[string]image.Image)
	s.bmu.Unlock()
	s.hist.Reset()
	s.commitLocked()
	s.mu.Unlock()

	s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	return warns, nil
}

// Renderer exposes the session's renderer, wired to its font library
// and bitmap cache, for export paths.
func (s *Session) Renderer() *render.Renderer { return s.renderer }

// ToDataURL rasterizes the document into a PNG data URL at mult times
// canvas resolution. Rendering happens on a snapshot outside the
// session lock.
func (s *Session) ToDataURL(mult float64) (string, error) {
	st := s.Snapshot()
	return s.renderer.DataURL(st, mult)
}

// WritePNG rasterizes the document as PNG to w at mult times canvas
// resolution.
func (s *Session) WritePNG(w io.Writer, mult float64) error {
	st := s.Snapshot()
	return s.renderer.EncodePNG(st, w, mult)
}
