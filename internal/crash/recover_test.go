/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golabelmaker/internal/domain"
	"golabelmaker/internal/storage"
)

// Recover must catch the panic, leave a report and an autosave in the
// workspace's backups dir, and attempt exit(2) without actually exiting
// the test process.
func TestRecoverWritesReportAndAutosave(t *testing.T) {
	// Silence the stderr chatter.
	oldStderr := os.Stderr
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open devnull: %v", err)
	}
	os.Stderr = devnull
	t.Cleanup(func() {
		os.Stderr = oldStderr
		_ = devnull.Close()
	})

	exitCode := -1
	oldExit := exitFn
	exitFn = func(code int) { exitCode = code }
	t.Cleanup(func() { exitFn = oldExit })

	root := t.TempDir()
	h := &storage.DocumentHandle{
		Root:         root,
		DocumentPath: filepath.Join(root, storage.DocumentFileName),
		State:        domain.NewState(90, 120, 1),
	}

	func() {
		defer Recover(h)
		panic("boom")
	}()

	bdir := filepath.Join(root, storage.BackupsDirName)
	entries, err := os.ReadDir(bdir)
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var report, autosave string
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log"):
			report = filepath.Join(bdir, e.Name())
		case strings.HasPrefix(e.Name(), "autosave-") && strings.HasSuffix(e.Name(), ".json"):
			autosave = filepath.Join(bdir, e.Name())
		}
	}
	if report == "" {
		t.Fatal("no crash report written")
	}
	if autosave == "" {
		t.Fatal("no autosave snapshot written")
	}

	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("report lacks panic value:\n%s", b)
	}
	snap, err := os.ReadFile(autosave)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	if _, _, err := storage.Decode(snap); err != nil {
		t.Fatalf("autosave snapshot not decodable: %v", err)
	}

	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2", exitCode)
	}
}
