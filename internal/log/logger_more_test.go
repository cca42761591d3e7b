/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("GLM_LOG_LEVEL", "warn")
	t.Setenv("GLM_LOG_FORMAT", "json")
	t.Setenv("GLM_LOG_SOURCE", "true")
	// GLM_LOG_FILE intentionally unset

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestConsoleHandlerFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)

	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Fatalf("error not enabled at warn level")
	}

	child := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")

	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true))
	if err := child.Handle(nil, r); err != nil {
		t.Fatalf("handle: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERROR", "boom", "k=v", "grp.n=42", "grp.pi=3.14", "grp.ok=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestConsoleHandlerQuotesSpacedStrings(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelDebug, false)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "saved", 0)
	r.AddAttrs(slog.String("path", "/tmp/my label/doc.json"))
	if err := h.Handle(nil, r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(buf.String(), `path="/tmp/my label/doc.json"`) {
		t.Fatalf("spaced string not quoted: %q", buf.String())
	}
}

func TestTeeHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := tee(newConsoleHandler(&a, slog.LevelDebug, false), newConsoleHandler(&b, slog.LevelError, false))

	if !h.Enabled(nil, slog.LevelDebug) {
		t.Fatalf("tee must be enabled when any sink is")
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "only first sink", 0)
	if err := h.Handle(nil, r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(a.String(), "only first sink") {
		t.Fatalf("debug sink missed the record: %q", a.String())
	}
	if b.Len() != 0 {
		t.Fatalf("error-level sink received an info record: %q", b.String())
	}
}

func TestLevelTag(t *testing.T) {
	cases := []struct {
		lvl  slog.Level
		want string
	}{
		{slog.LevelDebug, "DEBUG"},
		{slog.LevelInfo, "INFO"},
		{slog.LevelWarn, "WARN"},
		{slog.LevelError, "ERROR"},
		{slog.LevelError + 4, "ERROR"},
	}
	for _, c := range cases {
		if got := levelTag(c.lvl); got != c.want {
			t.Errorf("levelTag(%v) = %q, want %q", c.lvl, got, c.want)
		}
	}
}
