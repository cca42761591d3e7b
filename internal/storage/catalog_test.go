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
	"errors"
	"os"
	"testing"
)

func TestOpenCatalogCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	db, err := OpenCatalog(root)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer db.Close()
	if _, err := os.Stat(CatalogPath(root)); err != nil {
		t.Fatalf("catalog file missing: %v", err)
	}
	var schema int
	if err := db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if schema != catalogSchemaVersion {
		t.Fatalf("schema = %d, want %d", schema, catalogSchemaVersion)
	}
}

func TestTemplateCRUD(t *testing.T) {
	ctx := context.Background()
	db, err := OpenCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer db.Close()

	rec := TemplateRecord{Name: "ipa", Description: "hoppy", Doc: []byte(`{"version":1}`)}
	if err := PutTemplate(ctx, db, rec); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	got, err := GetTemplate(ctx, db, "ipa")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.Description != "hoppy" || string(got.Doc) != `{"version":1}` {
		t.Fatalf("template mismatch: %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}

	// Upsert replaces.
	rec.Description = "extra hoppy"
	if err := PutTemplate(ctx, db, rec); err != nil {
		t.Fatalf("PutTemplate upsert: %v", err)
	}
	got, err = GetTemplate(ctx, db, "ipa")
	if err != nil {
		t.Fatalf("GetTemplate after upsert: %v", err)
	}
	if got.Description != "extra hoppy" {
		t.Fatalf("upsert did not replace: %q", got.Description)
	}

	list, err := ListTemplates(ctx, db)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != 1 || list[0].Name != "ipa" {
		t.Fatalf("list mismatch: %+v", list)
	}

	if err := DeleteTemplate(ctx, db, "ipa"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if _, err := GetTemplate(ctx, db, "ipa"); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("want ErrTemplateNotFound, got %v", err)
	}
	// Deleting again is a no-op.
	if err := DeleteTemplate(ctx, db, "ipa"); err != nil {
		t.Fatalf("second DeleteTemplate: %v", err)
	}
}

func TestThumbsFollowTemplates(t *testing.T) {
	ctx := context.Background()
	db, err := OpenCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer db.Close()

	if err := PutTemplate(ctx, db, TemplateRecord{Name: "a", Doc: []byte(`{}`)}); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	if err := PutThumb(ctx, db, "a", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("PutThumb: %v", err)
	}
	png, ok, err := Thumb(ctx, db, "a")
	if err != nil || !ok {
		t.Fatalf("Thumb: ok=%v err=%v", ok, err)
	}
	if len(png) != 4 {
		t.Fatalf("thumb data mismatch: %v", png)
	}
	if _, ok, _ := Thumb(ctx, db, "missing"); ok {
		t.Fatal("missing thumb reported present")
	}

	// Orphan a thumb by deleting its template row directly, then prune.
	if _, err := db.ExecContext(ctx, `DELETE FROM templates WHERE name='a'`); err != nil {
		t.Fatalf("delete template row: %v", err)
	}
	n, err := PruneThumbs(ctx, db)
	if err != nil {
		t.Fatalf("PruneThumbs: %v", err)
	}
	if n < 1 {
		// ON DELETE CASCADE may already have removed it; either path
		// must leave no thumb behind.
		if _, ok, _ := Thumb(ctx, db, "a"); ok {
			t.Fatal("orphaned thumb survived prune")
		}
	}
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	db, err := OpenCatalog(root)
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	if err := PutTemplate(ctx, db, TemplateRecord{Name: "keep", Doc: []byte(`{}`)}); err != nil {
		t.Fatalf("PutTemplate: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := OpenCatalog(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	if _, err := GetTemplate(ctx, db2, "keep"); err != nil {
		t.Fatalf("template lost across reopen: %v", err)
	}
}
