/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golabelmaker/internal/domain"
)

const (
	// DocumentFileName is the default file name inside a label workspace.
	DocumentFileName = "label.json"
	BackupsDirName   = "backups"
)

// ErrNoDocument is returned when neither the document nor any backup
// could be read.
var ErrNoDocument = errors.New("no document found")

// DocumentHandle tracks a label document loaded/saved from disk.
// Root is the workspace directory containing label.json, backups/ and
// the catalog database.
type DocumentHandle struct {
	Root         string
	DocumentPath string
	State        *domain.State
}

// InitWorkspace creates a workspace directory at root (creating it if
// needed) and writes the given document transactionally.
func InitWorkspace(root string, st *domain.State) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create backups dir: %w", err)
	}
	h := &DocumentHandle{
		Root:         root,
		DocumentPath: filepath.Join(root, DocumentFileName),
		State:        st,
	}
	if err := h.Save(); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads an existing document from the given workspace root. If
// the current file cannot be read or parsed, the latest backup is
// tried before giving up. Returned warnings list the objects dropped
// by the codec's allow-list.
func Open(root string) (*DocumentHandle, []string, error) {
	path := filepath.Join(root, DocumentFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if st, warns, derr := Decode(data); derr == nil {
			return &DocumentHandle{Root: root, DocumentPath: path, State: st}, warns, nil
		}
	}
	st, warns, berr := openFromLatestBackup(root)
	if berr != nil {
		if err == nil {
			err = errors.New("document failed to decode")
		}
		return nil, nil, fmt.Errorf("%w: %v; backup attempt: %v", ErrNoDocument, err, berr)
	}
	return &DocumentHandle{Root: root, DocumentPath: path, State: st}, warns, nil
}

// Save writes the handle's state to disk with transactional semantics
// and a timestamped backup of the previous document (if present).
func (h *DocumentHandle) Save() error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Root == "" || h.DocumentPath == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	data, err := Encode(h.State)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current document exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(h.DocumentPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", DocumentFileName, stamp)
		if cerr := copyFile(h.DocumentPath, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(h.DocumentPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", DocumentFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(h.DocumentPath); err == nil {
		_ = os.Remove(h.DocumentPath)
	}
	if rerr := os.Rename(temp, h.DocumentPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

// AutosaveCrashSnapshot writes the handle's current state to a
// timestamped autosave file under backups/. It never touches the
// regular document, so a half-broken in-memory state cannot clobber
// the last good save. Returns the path of the snapshot file.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil || h.Root == "" {
		return "", errors.New("no workspace to autosave into")
	}
	if h.State == nil {
		return "", errors.New("no document state to autosave")
	}
	data, err := Encode(h.State)
	if err != nil {
		return "", fmt.Errorf("encode autosave snapshot: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("autosave-%s.json", stamp))
	if err := writeFileSync(path, data); err != nil {
		return path, fmt.Errorf("write autosave snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries to decode the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.State, []string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, DocumentFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, nil, fmt.Errorf("read latest backup: %w", err)
	}
	st, warns, err := Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return st, warns, nil
}
