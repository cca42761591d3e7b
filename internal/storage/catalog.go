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
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "golabelmaker/internal/log"
	"golabelmaker/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// CatalogDirName stores all per-workspace ephemeral/catalog data under the workspace root.
	CatalogDirName  = ".glm"
	CatalogFileName = "catalog.sqlite"

	// catalogSchemaVersion tracks the local SQLite schema for the embedded catalog.
	// Bump this when you perform breaking schema changes and add migrations.
	catalogSchemaVersion = 2
)

// ErrTemplateNotFound is returned when a named template does not exist in the catalog.
var ErrTemplateNotFound = errors.New("template not found")

// CatalogPath returns the full path to the workspace's embedded catalog database file.
func CatalogPath(root string) string {
	return filepath.Join(root, CatalogDirName, CatalogFileName)
}

// TemplateRecord is a row in the templates table: a named, ready-to-use
// label document plus bookkeeping fields.
type TemplateRecord struct {
	Name        string
	Description string
	Doc         []byte // encoded label document
	UpdatedAt   time.Time
}

// OpenCatalog ensures that the per-workspace SQLite catalog exists at
// .glm/catalog.sqlite, opens the database, enables WAL mode, and ensures
// the meta/version and catalog tables exist. The returned *sql.DB is
// ready for use. Callers may close it when no longer needed.
func OpenCatalog(root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "catalog_open").With(
		slog.String("root", root),
	)
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, CatalogDirName), 0o755); err != nil {
		l.Error("create .glm dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .glm dir: %w", err)
	}

	path := CatalogPath(root)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: a single connection avoids writer contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureCatalogMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureCatalogSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure catalog schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runCatalogMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("catalog ready", slog.String("path", path))
	return db, nil
}

func ensureCatalogMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, catalogSchemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureCatalogSchema creates the templates and thumbnail cache tables if they do not exist.
func ensureCatalogSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			name        TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			doc         BLOB NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at);`,

		// Thumbnail cache for template pickers; one PNG per template.
		`CREATE TABLE IF NOT EXISTS thumbs (
			name       TEXT PRIMARY KEY,
			png        BLOB NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(name) REFERENCES templates(name) ON DELETE CASCADE
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// runCatalogMigrations applies incremental schema migrations up to catalogSchemaVersion.
func runCatalogMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > catalogSchemaVersion {
		// Do not downgrade; just continue
		return nil
	}
	for cur < catalogSchemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_thumbs_updated ON thumbs(updated_at);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// PutTemplate inserts or replaces a template document under the given name.
func PutTemplate(ctx context.Context, db *sql.DB, rec TemplateRecord) error {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		return errors.New("template name is required")
	}
	if len(rec.Doc) == 0 {
		return errors.New("template document is empty")
	}
	ts := rec.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `INSERT INTO templates(name, description, doc, updated_at) VALUES(?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET description=excluded.description, doc=excluded.doc, updated_at=excluded.updated_at`,
		name, rec.Description, rec.Doc, ts.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

// GetTemplate returns the template with the given name, or ErrTemplateNotFound.
func GetTemplate(ctx context.Context, db *sql.DB, name string) (TemplateRecord, error) {
	var rec TemplateRecord
	var ts string
	err := db.QueryRowContext(ctx, `SELECT name, description, doc, updated_at FROM templates WHERE name=?`, name).
		Scan(&rec.Name, &rec.Description, &rec.Doc, &ts)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return TemplateRecord{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	case err != nil:
		return TemplateRecord{}, fmt.Errorf("get template: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

// ListTemplates returns all templates ordered by name. Documents are included.
func ListTemplates(ctx context.Context, db *sql.DB) ([]TemplateRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, description, doc, updated_at FROM templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	var out []TemplateRecord
	for rows.Next() {
		var rec TemplateRecord
		var ts string
		if err := rows.Scan(&rec.Name, &rec.Description, &rec.Doc, &ts); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
			rec.UpdatedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

// DeleteTemplate removes a template and its cached thumbnail. Deleting a
// missing template is not an error.
func DeleteTemplate(ctx context.Context, db *sql.DB, name string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM thumbs WHERE name=?`, name); err != nil {
		return fmt.Errorf("delete thumb: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM templates WHERE name=?`, name); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// PutThumb stores (or replaces) the cached PNG preview for a template.
func PutThumb(ctx context.Context, db *sql.DB, name string, png []byte) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("template name is required")
	}
	if len(png) == 0 {
		return errors.New("thumbnail data is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `INSERT INTO thumbs(name, png, updated_at) VALUES(?,?,?)
		ON CONFLICT(name) DO UPDATE SET png=excluded.png, updated_at=excluded.updated_at`,
		name, png, now)
	if err != nil {
		return fmt.Errorf("put thumb: %w", err)
	}
	return nil
}

// Thumb returns the cached PNG preview for a template, if any.
func Thumb(ctx context.Context, db *sql.DB, name string) ([]byte, bool, error) {
	var png []byte
	err := db.QueryRowContext(ctx, `SELECT png FROM thumbs WHERE name=?`, name).Scan(&png)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("get thumb: %w", err)
	}
	return png, true, nil
}

// PruneThumbs removes thumbnails whose template no longer exists.
// Returns the number of rows removed.
func PruneThumbs(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM thumbs WHERE name NOT IN (SELECT name FROM templates)`)
	if err != nil {
		return 0, fmt.Errorf("prune thumbs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
