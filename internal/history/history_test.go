/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"
)

func TestEmptyLogSteadyState(t *testing.T) {
	l := NewLog(50)
	if l.CanUndo() || l.CanRedo() {
		t.Fatalf("empty log claims undo/redo availability")
	}
	if _, ok := l.Undo(); ok {
		t.Fatalf("Undo succeeded on empty log")
	}
	if _, ok := l.Redo(); ok {
		t.Fatalf("Redo succeeded on empty log")
	}
}

func TestInitialSnapshotBlocksUndo(t *testing.T) {
	l := NewLog(50)
	l.Record([]byte("initial"))
	if l.CanUndo() {
		t.Fatalf("undo available with only the initial snapshot")
	}
	l.Record([]byte("s1"))
	if !l.CanUndo() {
		t.Fatalf("undo unavailable after a mutation")
	}
}

func TestUndoRedoWalk(t *testing.T) {
	l := NewLog(50)
	for i := 0; i < 4; i++ {
		l.Record([]byte(fmt.Sprintf("s%d", i)))
	}

	blob, ok := l.Undo()
	if !ok || string(blob) != "s2" {
		t.Fatalf("first undo = %q, %v", blob, ok)
	}
	blob, _ = l.Undo()
	if string(blob) != "s1" {
		t.Fatalf("second undo = %q", blob)
	}
	blob, ok = l.Redo()
	if !ok || string(blob) != "s2" {
		t.Fatalf("redo = %q, %v", blob, ok)
	}
	if l.Pos() != 2 {
		t.Fatalf("cursor = %d, want 2", l.Pos())
	}
}

func TestMutationTruncatesRedoTail(t *testing.T) {
	l := NewLog(50)
	for i := 0; i < 3; i++ {
		l.Record([]byte(fmt.Sprintf("s%d", i)))
	}
	l.Undo()
	l.Undo()
	if !l.CanRedo() {
		t.Fatalf("redo should be available after undos")
	}

	l.Record([]byte("branch"))
	if l.CanRedo() {
		t.Fatalf("redo survived a new mutation")
	}
	if l.Len() != 2 {
		t.Fatalf("len = %d after truncation, want 2", l.Len())
	}
	blob, _ := l.Undo()
	if string(blob) != "s0" {
		t.Fatalf("undo after branch = %q", blob)
	}
}

func TestCapEvictsOldest(t *testing.T) {
	l := NewLog(3)
	for i := 0; i < 5; i++ {
		l.Record([]byte(fmt.Sprintf("s%d", i)))
	}
	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}
	if l.Pos() != 2 {
		t.Fatalf("pos = %d, want 2", l.Pos())
	}
	// oldest surviving entry is s2
	l.Undo()
	blob, ok := l.Undo()
	if !ok || string(blob) != "s2" {
		t.Fatalf("deepest undo = %q, %v", blob, ok)
	}
	if l.CanUndo() {
		t.Fatalf("undo available past the evicted entries")
	}
}

func TestReplayGuardSuppressesRecording(t *testing.T) {
	l := NewLog(50)
	l.Record([]byte("s0"))
	l.Record([]byte("s1"))

	l.BeginReplay()
	l.Record([]byte("must not appear"))
	l.EndReplay()

	if l.Len() != 2 {
		t.Fatalf("replay recorded a snapshot, len = %d", l.Len())
	}
}

func TestRecordCopiesBlob(t *testing.T) {
	l := NewLog(50)
	b := []byte("abc")
	l.Record(b)
	l.Record([]byte("later"))
	b[0] = 'X'
	blob, _ := l.Undo()
	if string(blob) != "abc" {
		t.Fatalf("log aliased caller memory: %q", blob)
	}
}

func TestUndoRedoInverse(t *testing.T) {
	l := NewLog(50)
	states := make([]string, 10)
	for i := range states {
		states[i] = fmt.Sprintf("state-%d", i)
		l.Record([]byte(states[i]))
	}
	n := 6
	var last []byte
	for i := 0; i < n; i++ {
		last, _ = l.Undo()
	}
	if string(last) != states[len(states)-1-n] {
		t.Fatalf("after %d undos at %q, want %q", n, last, states[len(states)-1-n])
	}
	for i := 0; i < n; i++ {
		last, _ = l.Redo()
	}
	if string(last) != states[len(states)-1] {
		t.Fatalf("after redos at %q, want %q", last, states[len(states)-1])
	}
}
