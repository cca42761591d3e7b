/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics in CLI entrypoints into a crash report
// file plus a best-effort autosave of the open label document.
package crash

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "golabelmaker/internal/log"
	"golabelmaker/internal/storage"
	"golabelmaker/internal/version"
)

// exitFn is swapped out in tests so Recover does not kill the test process.
var exitFn = os.Exit

// Recover is deferred around a command's main body:
//
//	defer func() { crash.Recover(h) }()
//
// On panic it logs the stack, writes a report file, snapshots the open
// document (if any) next to the backups, prints where everything went
// and exits with code 2.
func Recover(h *storage.DocumentHandle) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	report := buildReport(h, r, stack)
	path, err := writeReport(h, report)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err), slog.String("path", path))
	}

	if h != nil {
		if snap, err := storage.AutosaveCrashSnapshot(h); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", snap))
		}
	}

	fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", path)
	fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// buildReport assembles the report body. Kept free of I/O so its
// content is testable without touching the filesystem.
func buildReport(h *storage.DocumentHandle, panicVal any, stack []byte) []byte {
	var b strings.Builder
	b.WriteString("Go Label Maker Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n", version.String())
	fmt.Fprintf(&b, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if h != nil {
		fmt.Fprintf(&b, "WorkspaceRoot: %s\n", h.Root)
		fmt.Fprintf(&b, "Document: %s\n", h.DocumentPath)
	}
	fmt.Fprintf(&b, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)
	return []byte(b.String())
}

// writeReport puts the report under the workspace's backups dir when a
// document is open, falling back to the system temp dir otherwise.
func writeReport(h *storage.DocumentHandle, report []byte) (string, error) {
	dir := os.TempDir()
	if h != nil && h.Root != "" {
		dir = filepath.Join(h.Root, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = os.TempDir()
		}
	}
	name := fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, report, 0o644)
}
