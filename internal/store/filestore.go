// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"lexcache/internal/models"
)

const (
	databaseFile = "database.json"
	tempSuffix   = ".temp"
)

// FileStore keeps the whole document in a single JSON file. Writes go to
// a sibling temp file first and are renamed over the canonical path, so
// readers observe either the old or the new file in full.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore creates a file store rooted at dir, creating the directory
// if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the canonical document path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, databaseFile)
}

// Load reads and decodes the document. A missing file yields an empty
// shell; a corrupt file is reset to an empty shell on disk and reported
// with an error wrapping ErrCorrupt.
func (s *FileStore) Load(ctx context.Context) (*models.Database, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.Path())
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NewDatabase(), nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}

	db := models.NewDatabase()
	if err := json.Unmarshal(data, db); err != nil {
		slog.Warn("cached document corrupt, resetting", "path", s.Path(), "error", err)
		shell := models.NewDatabase()
		if saveErr := s.Save(ctx, shell); saveErr != nil {
			return nil, fmt.Errorf("reset corrupt document: %w", saveErr)
		}
		return shell, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if db.Categories == nil {
		db.Categories = make(map[string]models.CategoryEntry)
	}
	return db, nil
}

// Save serializes the document to a temp file and renames it over the
// canonical path.
func (s *FileStore) Save(ctx context.Context, db *models.Database) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(db)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tempPath := s.Path() + tempSuffix
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tempPath, s.Path()); err != nil {
		// Leave the temp file behind for inspection; the canonical file
		// is still the previous valid document.
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
