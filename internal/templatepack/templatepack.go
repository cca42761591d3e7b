/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package templatepack moves label templates between catalogs as zip
// archives, so template collections can be shared between machines.
package templatepack

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	applog "golabelmaker/internal/log"
	"golabelmaker/internal/storage"
)

const manifestName = "templatepack.manifest.txt"

// Export zips every template in the catalog into destZipPath. Each
// template lands as templates/<name>.json; a small manifest at the
// archive root lists the contents for quick human inspection.
func Export(ctx context.Context, db *sql.DB, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "export")
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	recs, err := storage.ListTemplates(ctx, db)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	var manifest bytes.Buffer
	fmt.Fprintf(&manifest, "Label Template Pack\nCreated: %s\n\n", time.Now().Format(time.RFC3339))
	for _, rec := range recs {
		fmt.Fprintf(&manifest, "%s\t%s\n", rec.Name, rec.Description)
	}
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write(manifest.Bytes()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, rec := range recs {
		fw, err := zw.Create("templates/" + rec.Name + ".json")
		if err != nil {
			return fmt.Errorf("add template %q: %w", rec.Name, err)
		}
		if _, err := fw.Write(rec.Doc); err != nil {
			return fmt.Errorf("write template %q: %w", rec.Name, err)
		}
	}
	l.Info("template pack exported", slog.Int("templates", len(recs)), slog.String("zip", destZipPath))
	return nil
}

// Install imports templates from a pack archive into the catalog.
// Templates whose name already exists are skipped, never overwritten;
// entries that fail document validation are skipped with a warning.
// Returns the number of templates installed.
func Install(ctx context.Context, db *sql.DB, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "install")
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName || f.FileInfo().IsDir() {
			continue
		}
		if !strings.HasPrefix(name, "templates/") || !strings.HasSuffix(name, ".json") {
			continue
		}
		tname := strings.TrimSuffix(path.Base(name), ".json")
		if tname == "" {
			continue
		}
		if _, err := storage.GetTemplate(ctx, db, tname); err == nil {
			l.Warn("skip existing template", slog.String("name", tname))
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return installed, fmt.Errorf("open entry %q: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return installed, fmt.Errorf("read entry %q: %w", name, err)
		}
		if _, _, err := storage.Decode(data); err != nil {
			l.Warn("skip invalid template", slog.String("name", tname), slog.Any("err", err))
			continue
		}
		rec := storage.TemplateRecord{Name: tname, Doc: data}
		if err := storage.PutTemplate(ctx, db, rec); err != nil {
			return installed, fmt.Errorf("install template %q: %w", tname, err)
		}
		installed++
	}
	l.Info("template pack installed", slog.Int("templates", installed))
	return installed, nil
}
