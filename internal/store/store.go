// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store persists the cached content document. Two backends
// implement the same whole-document contract: a single JSON file
// (the default) and an embedded bbolt database. Both guarantee that a
// concurrent reader sees either the previous document or the new one,
// never a torn write.
package store

import (
	"context"
	"errors"

	"lexcache/internal/models"
)

// ErrCorrupt is reported (wrapped) when the on-disk document could not be
// decoded and was reset to an empty shell. Callers should treat it as a
// signal to trigger a fresh sync, not as a fatal condition.
var ErrCorrupt = errors.New("store: corrupt document reset")

// Store is the whole-document persistence contract.
type Store interface {
	// Load reads the current document. A missing document yields an empty
	// shell. A corrupt document is reset to an empty shell and reported
	// with an error wrapping ErrCorrupt alongside the usable shell.
	Load(ctx context.Context) (*models.Database, error)
	// Save atomically replaces the document.
	Save(ctx context.Context, db *models.Database) error
	// Path returns the location of the backing file, for diagnostics.
	Path() string
	// Close releases backend resources.
	Close() error
}
