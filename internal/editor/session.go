/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the interactive editing engine: it owns the live
// document state, the selection, the undo history and the snap
// machinery, and exposes every mutation frontends perform on a label.
//
// Concurrency model: a single mutex serializes all mutations; every
// committed mutation appends a full document snapshot to the history
// log. Decoded image bitmaps live in a session-local cache keyed by
// object id so undo/redo can restore image objects without re-decoding.
package editor

import (
	"image"
	"math"
	"sync"

	"log/slog"

	"golabelmaker/internal/config"
	"golabelmaker/internal/domain"
	"golabelmaker/internal/geom"
	"golabelmaker/internal/history"
	applog "golabelmaker/internal/log"
	"golabelmaker/internal/render"
	"golabelmaker/internal/storage"
	"golabelmaker/internal/textlayout"
)

// Event identifies what part of the session changed. Listeners receive
// events after the mutation committed and the session lock is released.
type Event string

const (
	EventObjectsChanged   Event = "objects"
	EventSelectionChanged Event = "selection"
	EventHistoryChanged   Event = "history"
	EventViewChanged      Event = "view"
)

// Listener observes session events. Listeners run on the mutating
// goroutine and must not block.
type Listener func(Event)

const (
	MinZoom = 0.1
	MaxZoom = 8.0
)

// Session is the editing engine for one open label document.
type Session struct {
	mu    sync.Mutex
	state *domain.State
	sel   []string
	zoom  float64
	hist  *history.Log

	fonts    *textlayout.Library
	renderer *render.Renderer

	bmu     sync.RWMutex
	bitmaps map[string]image.Image

	gridSize      float64
	snapToGrid    bool
	smartGuides   bool
	snapThreshold float64

	dragID string
	guides []geom.GuideLine

	lmu       sync.Mutex
	listeners []Listener

	log *slog.Logger
}

// New creates a session over an existing document state. The initial
// state is recorded as the first history snapshot so undo always stops
// there. fonts may be nil; text measuring then falls back to a fixed
// face.
func New(st *domain.State, fonts *textlayout.Library, cfg config.EditorConfig) *Session {
	if st == nil {
		st = domain.NewState(90, 120, 1)
	}
	s := &Session{
		state:         st,
		zoom:          1,
		hist:          history.NewLog(cfg.HistoryCap),
		fonts:         fonts,
		bitmaps:       make(map[string]image.Image),
		gridSize:      cfg.GridSize,
		snapToGrid:    cfg.SnapToGrid,
		smartGuides:   cfg.SmartGuides,
		snapThreshold: cfg.SnapThreshold,
		log:           applog.WithComponent("editor"),
	}
	if s.snapThreshold <= 0 {
		s.snapThreshold = geom.DefaultSnapThreshold
	}
	s.renderer = render.New(fonts, s.bitmap)
	if blob, err := storage.Encode(st); err == nil {
		s.hist.Record(blob)
	}
	return s
}

// Subscribe registers a listener and returns an unsubscribe func.
func (s *Session) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
		s.lmu.Unlock()
	}
}

func (s *Session) emit(evs ...Event) {
	s.lmu.Lock()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.lmu.Unlock()
	for _, fn := range ls {
		if fn == nil {
			continue
		}
		for _, ev := range evs {
			fn(ev)
		}
	}
}

// commitLocked snapshots the current state into the history log.
// Callers hold s.mu.
func (s *Session) commitLocked() {
	blob, err := storage.Encode(s.state)
	if err != nil {
		s.log.Error("snapshot encode failed", slog.Any("err", err))
		return
	}
	s.hist.Record(blob)
}

// bitmap resolves a decoded image by object id for the renderer.
func (s *Session) bitmap(id string) (image.Image, bool) {
	s.bmu.RLock()
	img, ok := s.bitmaps[id]
	s.bmu.RUnlock()
	return img, ok
}

// Snapshot returns a deep copy of the current document state.
func (s *Session) Snapshot() *domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Objects returns deep copies of all objects, bottom to top.
func (s *Session) Objects() []*domain.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Object, len(s.state.Objects))
	for i, o := range s.state.Objects {
		out[i] = o.Clone()
	}
	return out
}

// Fonts returns the session's font library.
func (s *Session) Fonts() *textlayout.Library { return s.fonts }

// Selection returns the selected object ids in selection order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sel))
	copy(out, s.sel)
	return out
}

// Select replaces the selection with the given ids; unknown ids are
// dropped silently.
func (s *Session) Select(ids ...string) {
	s.mu.Lock()
	s.sel = s.sel[:0]
	for _, id := range ids {
		if s.state.ByID(id) != nil {
			s.sel = append(s.sel, id)
		}
	}
	s.mu.Unlock()
	s.emit(EventSelectionChanged)
}

// SelectAll selects every object in z-order.
func (s *Session) SelectAll() {
	s.mu.Lock()
	s.sel = s.sel[:0]
	for _, o := range s.state.Objects {
		s.sel = append(s.sel, o.ID)
	}
	s.mu.Unlock()
	s.emit(EventSelectionChanged)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.sel = s.sel[:0]
	s.mu.Unlock()
	s.emit(EventSelectionChanged)
}

// selectedLocked resolves the selection to live objects, skipping ids
// that no longer exist. Callers hold s.mu.
func (s *Session) selectedLocked() []*domain.Object {
	out := make([]*domain.Object, 0, len(s.sel))
	for _, id := range s.sel {
		if o := s.state.ByID(id); o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Zoom returns the current view zoom factor.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// SetZoom clamps and applies a view zoom. Zoom is view state only and
// never enters the undo history.
func (s *Session) SetZoom(z float64) float64 {
	s.mu.Lock()
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	s.zoom = z
	s.mu.Unlock()
	s.emit(EventViewChanged)
	return z
}

// SetGrid configures grid snapping.
func (s *Session) SetGrid(size float64, enabled bool) {
	s.mu.Lock()
	if size > 0 {
		s.gridSize = size
	}
	s.snapToGrid = enabled
	s.mu.Unlock()
	s.emit(EventViewChanged)
}

// SetSmartGuides toggles alignment guides during drags.
func (s *Session) SetSmartGuides(enabled bool) {
	s.mu.Lock()
	s.smartGuides = enabled
	s.mu.Unlock()
	s.emit(EventViewChanged)
}

// SetBackground changes the canvas background color and commits.
func (s *Session) SetBackground(color string) {
	s.mu.Lock()
	s.state.Background = color
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventHistoryChanged)
}

// Resize changes the label dimensions. Object coordinates are kept as
// they are; callers wanting proportional content use LoadJSON with the
// rescale option instead.
func (s *Session) Resize(labelWmm, labelHmm, scale float64) {
	s.mu.Lock()
	fresh := domain.NewState(labelWmm, labelHmm, scale)
	s.state.LabelWidthMM = fresh.LabelWidthMM
	s.state.LabelHeightMM = fresh.LabelHeightMM
	s.state.Scale = fresh.Scale
	s.state.Width = fresh.Width
	s.state.Height = fresh.Height
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventHistoryChanged)
}

// Clear removes every object and resets the background.
func (s *Session) Clear() {
	s.mu.Lock()
	s.state.Objects = nil
	s.state.Background = "#ffffff"
	s.sel = s.sel[:0]
	s.bmu.Lock()
	s.bitmaps = make(map[string]image.Image)
	s.bmu.Unlock()
	s.commitLocked()
	s.mu.Unlock()
	s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
}

// CanUndo reports whether an undo step exists.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo step exists.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Undo steps the document back one snapshot. Returns false when there
// is nothing to undo or a drag is in flight.
func (s *Session) Undo() bool {
	s.mu.Lock()
	if s.dragID != "" {
		s.mu.Unlock()
		return false
	}
	blob, ok := s.hist.Undo()
	if !ok {
		s.mu.Unlock()
		return false
	}
	ok = s.installSnapshotLocked(blob)
	if !ok {
		// decode failed, nothing was installed: put the cursor back on
		// the snapshot that is still live
		s.hist.Redo()
	}
	s.mu.Unlock()
	if ok {
		s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	}
	return ok
}

// Redo steps the document forward one snapshot.
func (s *Session) Redo() bool {
	s.mu.Lock()
	if s.dragID != "" {
		s.mu.Unlock()
		return false
	}
	blob, ok := s.hist.Redo()
	if !ok {
		s.mu.Unlock()
		return false
	}
	ok = s.installSnapshotLocked(blob)
	if !ok {
		s.hist.Undo()
	}
	s.mu.Unlock()
	if ok {
		s.emit(EventObjectsChanged, EventSelectionChanged, EventHistoryChanged)
	}
	return ok
}

// installSnapshotLocked replaces the live state with a history
// snapshot. Selection entries pointing at objects that no longer exist
// are dropped; decoded bitmaps stay cached because a later redo may
// bring their objects back. Callers hold s.mu.
func (s *Session) installSnapshotLocked(blob []byte) bool {
	s.hist.BeginReplay()
	defer s.hist.EndReplay()
	st, _, err := storage.Decode(blob)
	if err != nil {
		s.log.Error("snapshot decode failed", slog.Any("err", err))
		return false
	}
	s.state = st
	kept := s.sel[:0]
	for _, id := range s.sel {
		if st.ByID(id) != nil {
			kept = append(kept, id)
		}
	}
	s.sel = kept
	return true
}
