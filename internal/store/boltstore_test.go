// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"lexcache/internal/models"
)

func newBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBoltStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_LoadEmptyReturnsShell(t *testing.T) {
	s := newBoltStore(t)

	db, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.LastUpdated != 0 || len(db.Categories) != 0 || db.AllPosts != nil {
		t.Errorf("expected empty shell, got %+v", db)
	}
}

func TestBoltStore_SaveLoadRoundtrip(t *testing.T) {
	s := newBoltStore(t)
	ctx := context.Background()

	doc := sampleDatabase()
	doc.AllPosts = []models.Post{{ID: 1, Title: "First"}}
	if err := s.Save(ctx, doc); err != nil {
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
	if entry.Info.Name != "Case Law" {
		t.Errorf("category name: got %q", entry.Info.Name)
	}
	if len(db.AllPosts) != 1 || db.AllPosts[0].ID != 1 {
		t.Errorf("flat posts after roundtrip: %+v", db.AllPosts)
	}
	if db.LastUpdated != doc.LastUpdated {
		t.Errorf("LastUpdated: got %d, want %d", db.LastUpdated, doc.LastUpdated)
	}
}

// TestBoltStore_SaveReplacesWholeDocument verifies that categories absent
// from the saved document do not linger from earlier saves.
func TestBoltStore_SaveReplacesWholeDocument(t *testing.T) {
	s := newBoltStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleDatabase()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	replacement := models.NewDatabase()
	replacement.SetEntry(models.CategoryEntry{Info: models.Category{ID: 5, Name: "Ethics"}})
	if err := s.Save(ctx, replacement); err != nil {
		t.Fatalf("second save: %v", err)
	}

	db, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := db.Entry(21); ok {
		t.Error("stale category 21 survived a whole-document replace")
	}
	if _, ok := db.Entry(5); !ok {
		t.Error("replacement category missing")
	}
}
