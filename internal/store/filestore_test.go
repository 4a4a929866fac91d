// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"lexcache/internal/models"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func sampleDatabase() *models.Database {
	db := models.NewDatabase()
	db.SetEntry(models.CategoryEntry{
		Info: models.Category{ID: 21, Name: "Case Law"},
		Posts: []models.Post{
			{ID: 1, Title: "First", Date: "2024-01-01T00:00:00", Modified: "2024-01-01T00:00:00"},
		},
	})
	db.Touch(time.Now())
	return db
}

func TestFileStore_LoadMissingReturnsShell(t *testing.T) {
	s := newFileStore(t)

	db, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.LastUpdated != 0 || len(db.Categories) != 0 {
		t.Errorf("expected empty shell, got %+v", db)
	}
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleDatabase()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	db, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entry, ok := db.Entry(21)
	if !ok {
		t.Fatal("category 21 missing after roundtrip")
	}
	if len(entry.Posts) != 1 || entry.Posts[0].Title != "First" {
		t.Errorf("posts after roundtrip: %+v", entry.Posts)
	}
	if db.LastUpdated == 0 {
		t.Error("LastUpdated lost in roundtrip")
	}
}

// TestFileStore_AtomicWrite simulates a crash between the temp write and
// the rename: the canonical file must still hold the previous valid
// document.
func TestFileStore_AtomicWrite(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleDatabase()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A writer died after producing the temp file.
	if err := os.WriteFile(s.Path()+tempSuffix, []byte(`{"lastUpdated": 1, "cat`), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read canonical: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("canonical file is not valid JSON with a temp file present")
	}

	db, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := db.Entry(21); !ok {
		t.Error("previous document lost")
	}
}

func TestFileStore_SaveLeavesNoTempFile(t *testing.T) {
	s := newFileStore(t)

	if err := s.Save(context.Background(), sampleDatabase()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(s.Path() + tempSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file left behind after successful save")
	}
}

func TestFileStore_CorruptDocumentResets(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(s.Path(), []byte(`{"lastUpdated": } not json`), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}

	db, err := s.Load(ctx)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if db == nil || len(db.Categories) != 0 {
		t.Errorf("expected usable empty shell, got %+v", db)
	}

	// The reset must be durable: a second load sees a clean shell.
	db, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reset: %v", err)
	}
	if len(db.Categories) != 0 {
		t.Errorf("expected clean shell after reset, got %+v", db)
	}
}

func TestFileStore_SaveHonorsContextCancellation(t *testing.T) {
	s := newFileStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Save(ctx, sampleDatabase()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
