/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"
	"testing"

	"golabelmaker/internal/config"
	"golabelmaker/internal/domain"
)

func testConfig() config.EditorConfig {
	return config.EditorConfig{
		GridSize:      10,
		SnapThreshold: 5,
		SnapToGrid:    false,
		SmartGuides:   false,
		HistoryCap:    50,
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return New(domain.NewState(90, 120, 1), nil, testConfig())
}

func TestUndoRedoRestoresExactState(t *testing.T) {
	s := newTestSession(t)
	o, err := s.AddShape(domain.KindRect, "", "")
	if err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	if err := s.SetPosition(o.ID, 33, 44); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}

	if !s.Undo() {
		t.Fatal("Undo returned false")
	}
	got := s.Snapshot().ByID(o.ID)
	if got == nil {
		t.Fatal("object vanished on undo")
	}
	if got.Left == 33 {
		t.Fatal("undo did not revert the move")
	}

	if !s.Redo() {
		t.Fatal("Redo returned false")
	}
	got = s.Snapshot().ByID(o.ID)
	if got.Left != 33 || got.Top != 44 {
		t.Fatalf("redo did not restore the move: (%v,%v)", got.Left, got.Top)
	}
}

func TestUndoStopsAtInitialState(t *testing.T) {
	s := newTestSession(t)
	if s.CanUndo() {
		t.Fatal("fresh session must not be undoable")
	}
	s.AddShape(domain.KindCircle, "", "")
	if !s.Undo() {
		t.Fatal("Undo after one action returned false")
	}
	if len(s.Snapshot().Objects) != 0 {
		t.Fatal("undo did not return to the empty initial state")
	}
	if s.Undo() {
		t.Fatal("undo past the initial state succeeded")
	}
}

func TestFailedUndoKeepsHistoryCursor(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	// plant an undecodable snapshot below the cursor
	s.hist.Record([]byte("{"))
	o, _ := s.AddShape(domain.KindCircle, "", "")

	if s.Undo() {
		t.Fatal("undo onto an undecodable snapshot reported success")
	}
	if s.Snapshot().ByID(o.ID) == nil {
		t.Fatal("failed undo changed the live state")
	}
	if s.CanRedo() {
		t.Fatal("cursor moved despite the failed undo")
	}
	if !s.CanUndo() {
		t.Fatal("earlier snapshots must stay reachable after a failed undo")
	}
}

func TestNewActionTruncatesRedo(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	s.AddShape(domain.KindCircle, "", "")
	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	if !s.CanRedo() {
		t.Fatal("redo should be available after undo")
	}
	s.AddShape(domain.KindLine, "", "")
	if s.CanRedo() {
		t.Fatal("new action must discard the redo branch")
	}
}

func TestUndoKeepsSurvivingSelection(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddShape(domain.KindRect, "", "")
	b, _ := s.AddShape(domain.KindCircle, "", "")
	s.Select(a.ID, b.ID)

	// Undo removes b; only a may stay selected.
	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	sel := s.Selection()
	if len(sel) != 1 || sel[0] != a.ID {
		t.Fatalf("selection after undo = %v, want [%s]", sel, a.ID)
	}
}

func TestZoomIsNotHistory(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	before := s.CanRedo()
	s.SetZoom(2.5)
	if s.CanRedo() != before {
		t.Fatal("zoom changed history state")
	}
	if z := s.SetZoom(100); z != MaxZoom {
		t.Fatalf("zoom not clamped: %v", z)
	}
	if z := s.SetZoom(0); z != MinZoom {
		t.Fatalf("zoom not clamped low: %v", z)
	}
	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	if len(s.Snapshot().Objects) != 0 {
		t.Fatal("zoom polluted the snapshot sequence")
	}
}

func TestLoadJSONRoundTrip(t *testing.T) {
	s := newTestSession(t)
	s.AddText(domain.FieldBeerName, "Altbier", nil)
	s.AddShape(domain.KindRect, "", "")
	data, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	s2 := newTestSession(t)
	warns, err := s2.LoadJSON(data, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	st := s2.Snapshot()
	if len(st.Objects) != 2 {
		t.Fatalf("want 2 objects, got %d", len(st.Objects))
	}
	if st.Objects[0].Text != "Altbier" {
		t.Fatalf("text content lost: %+v", st.Objects[0])
	}
	if s2.CanUndo() {
		t.Fatal("history must restart after load")
	}
	if len(s2.Selection()) != 0 {
		t.Fatal("selection must be cleared after load")
	}
}

func TestLoadJSONRescalesToCanvas(t *testing.T) {
	// Author at scale 1, load into a session at scale 2.
	src := New(domain.NewState(90, 120, 1), nil, testConfig())
	o, _ := src.AddShape(domain.KindRect, "", "")
	data, err := src.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	dst := New(domain.NewState(90, 120, 2), nil, testConfig())
	if _, err := dst.LoadJSON(data, LoadOptions{RescaleToCanvas: true}); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	st := dst.Snapshot()
	got := st.ByID(o.ID)
	if got == nil {
		t.Fatal("object lost in rescale")
	}
	want := o.Width * 2
	if got.Width != want {
		t.Fatalf("width = %v, want %v", got.Width, want)
	}
	if st.LabelWidthMM != 90 || st.Scale != 2 {
		t.Fatalf("canvas identity changed: %+v", st)
	}
}

func TestToDataURL(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	url, err := s.ToDataURL(0.25)
	if err != nil {
		t.Fatalf("ToDataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("bad data URL prefix: %.40s", url)
	}
}

func TestSubscribeAndEvents(t *testing.T) {
	s := newTestSession(t)
	var got []Event
	off := s.Subscribe(func(ev Event) { got = append(got, ev) })
	s.AddShape(domain.KindRect, "", "")
	if len(got) == 0 {
		t.Fatal("no events delivered")
	}
	seen := map[Event]bool{}
	for _, ev := range got {
		seen[ev] = true
	}
	for _, want := range []Event{EventObjectsChanged, EventSelectionChanged, EventHistoryChanged} {
		if !seen[want] {
			t.Errorf("missing event %q", want)
		}
	}
	off()
	n := len(got)
	s.AddShape(domain.KindCircle, "", "")
	if len(got) != n {
		t.Fatal("unsubscribed listener still called")
	}
}

func TestClearResetsDocument(t *testing.T) {
	s := newTestSession(t)
	s.AddShape(domain.KindRect, "", "")
	s.SetBackground("#123456")
	s.Clear()
	st := s.Snapshot()
	if len(st.Objects) != 0 || st.Background != "#ffffff" {
		t.Fatalf("clear incomplete: %+v", st)
	}
	// Clear itself is undoable.
	if !s.Undo() {
		t.Fatal("Undo after clear failed")
	}
	if st := s.Snapshot(); st.Background != "#123456" {
		t.Fatalf("undo of clear lost background: %q", st.Background)
	}
}
