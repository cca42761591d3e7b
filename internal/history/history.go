/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps a bounded list of serialized document
// snapshots with a cursor for undo/redo. Blobs are opaque to the log;
// each one is a full snapshot, not a diff. The entry cap bounds memory,
// which is the documented trade-off for the simpler model.
package history

import "sync"

// DefaultCap is the default maximum number of snapshots retained.
const DefaultCap = 50

// Log is a snapshot list with a current-position cursor.
// The cursor stays in [-1, len-1]; -1 only before the first record.
// Undoing stops at the first entry, which holds the initial state.
type Log struct {
	mu        sync.Mutex
	entries   [][]byte
	pos       int
	max       int
	replaying bool
}

// NewLog creates an empty log holding at most capacity snapshots.
// A capacity below 1 falls back to DefaultCap.
func NewLog(capacity int) *Log {
	if capacity < 1 {
		capacity = DefaultCap
	}
	return &Log{pos: -1, max: capacity}
}

// Record appends a snapshot after a mutation. Entries after the cursor
// are discarded first, so redo states vanish as soon as a new mutation
// happens mid-history. When the cap is exceeded the oldest entry is
// evicted and indices shift. Recording is a no-op during replay.
func (l *Log) Record(blob []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.replaying {
		return
	}
	if l.pos < len(l.entries)-1 {
		l.entries = l.entries[:l.pos+1]
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	l.entries = append(l.entries, cp)
	l.pos = len(l.entries) - 1
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append([][]byte(nil), l.entries[over:]...)
		l.pos -= over
	}
}

// CanUndo reports whether an earlier snapshot exists.
func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos > 0
}

// CanRedo reports whether a later snapshot exists.
func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos < len(l.entries)-1
}

// Undo moves the cursor back and returns the snapshot to replay.
func (l *Log) Undo() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pos <= 0 {
		return nil, false
	}
	l.pos--
	return l.entries[l.pos], true
}

// Redo moves the cursor forward and returns the snapshot to replay.
func (l *Log) Redo() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pos >= len(l.entries)-1 {
		return nil, false
	}
	l.pos++
	return l.entries[l.pos], true
}

// BeginReplay sets the reentrancy guard so that installing a snapshot
// does not record a new entry. Callers pair it with EndReplay.
func (l *Log) BeginReplay() {
	l.mu.Lock()
	l.replaying = true
	l.mu.Unlock()
}

// EndReplay clears the reentrancy guard.
func (l *Log) EndReplay() {
	l.mu.Lock()
	l.replaying = false
	l.mu.Unlock()
}

// Reset drops all snapshots, e.g. when a new document is installed.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.pos = -1
	l.mu.Unlock()
}

// Len returns the number of retained snapshots.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Pos returns the cursor position, -1 when empty.
func (l *Log) Pos() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pos
}
