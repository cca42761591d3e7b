/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"math"
	"testing"

	"golabelmaker/internal/domain"
)

func TestBuiltinsAreWellFormed(t *testing.T) {
	ts := Builtins()
	if len(ts) == 0 {
		t.Fatal("no builtin templates")
	}
	seen := map[string]bool{}
	for _, tpl := range ts {
		if tpl.Name == "" || tpl.State == nil {
			t.Fatalf("malformed builtin: %+v", tpl)
		}
		if seen[tpl.Name] {
			t.Fatalf("duplicate builtin name %q", tpl.Name)
		}
		seen[tpl.Name] = true
		if len(tpl.State.Objects) == 0 {
			t.Errorf("builtin %q has no objects", tpl.Name)
		}
		for _, o := range tpl.State.Objects {
			if !domain.KnownKind(o.Kind) {
				t.Errorf("builtin %q has object of kind %q", tpl.Name, o.Kind)
			}
		}
		// Round-trips through the codec without warnings.
		data, err := Encode(tpl.State)
		if err != nil {
			t.Fatalf("encode builtin %q: %v", tpl.Name, err)
		}
		if _, warns, err := Decode(data); err != nil || len(warns) != 0 {
			t.Fatalf("builtin %q does not round-trip: err=%v warns=%v", tpl.Name, err, warns)
		}
	}
}

func TestInstallRescalesUniformly(t *testing.T) {
	var src Template
	for _, tpl := range Builtins() {
		if tpl.Name == "minimal" {
			src = tpl
		}
	}
	if src.State == nil {
		t.Fatal("minimal builtin missing")
	}

	// Same aspect ratio at double scale: every coordinate doubles.
	st, err := Install(src, refLabelWMM, refLabelHMM, refScale*2)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if len(st.Objects) != len(src.State.Objects) {
		t.Fatalf("object count changed: %d vs %d", len(st.Objects), len(src.State.Objects))
	}
	f := st.Width / src.State.Width
	for i, o := range st.Objects {
		ref := src.State.Objects[i]
		if math.Abs(o.Left-ref.Left*f) > 1e-6 || math.Abs(o.Top-ref.Top*f) > 1e-6 {
			t.Errorf("object %d position not scaled: got (%v,%v) want (%v,%v)",
				i, o.Left, o.Top, ref.Left*f, ref.Top*f)
		}
		if o.Kind == domain.KindText && math.Abs(o.FontSize-ref.FontSize*f) > 1e-6 {
			t.Errorf("object %d font size not scaled: %v vs %v", i, o.FontSize, ref.FontSize*f)
		}
		if o == ref {
			t.Error("Install must not alias template objects")
		}
	}
	// Template itself untouched.
	if src.State.Objects[0].Left != Builtins()[1].State.Objects[0].Left {
		t.Error("Install mutated the template state")
	}
}

func TestInstallRebuildsCurvedTextArc(t *testing.T) {
	var src Template
	for _, tpl := range Builtins() {
		if tpl.Name == "craft-arc" {
			src = tpl
		}
	}
	if src.State == nil {
		t.Fatal("craft-arc builtin missing")
	}
	st, err := Install(src, refLabelWMM, refLabelHMM, refScale*3)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	var curved *domain.Object
	var orig *domain.Object
	for i, o := range st.Objects {
		if o.Curved {
			curved = o
			orig = src.State.Objects[i]
		}
	}
	if curved == nil {
		t.Fatal("no curved text in craft-arc")
	}
	if curved.CurveAngle != orig.CurveAngle {
		t.Errorf("sweep changed: %v vs %v", curved.CurveAngle, orig.CurveAngle)
	}
	if curved.CurveRadius <= orig.CurveRadius {
		t.Errorf("radius not scaled up: %v vs %v", curved.CurveRadius, orig.CurveRadius)
	}
	if curved.PathData == "" || curved.PathData == orig.PathData {
		t.Error("arc path not rebuilt for scaled radius")
	}
}

func TestInstallBuiltinsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer db.Close()

	if err := InstallBuiltins(ctx, db); err != nil {
		t.Fatalf("InstallBuiltins: %v", err)
	}
	list, err := ListTemplates(ctx, db)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != len(Builtins()) {
		t.Fatalf("seeded %d templates, want %d", len(list), len(Builtins()))
	}

	// User edit must survive re-seeding.
	edited := TemplateRecord{Name: "minimal", Description: "mine now", Doc: []byte(`{"version":1,"width":1,"height":1,"objects":[]}`)}
	if err := PutTemplate(ctx, db, edited); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	if err := InstallBuiltins(ctx, db); err != nil {
		t.Fatalf("second InstallBuiltins: %v", err)
	}
	got, err := GetTemplate(ctx, db, "minimal")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.Description != "mine now" {
		t.Fatalf("re-seeding clobbered user edit: %q", got.Description)
	}
}
