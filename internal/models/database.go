// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strconv"
	"time"
)

// CategoryEntry holds one category's metadata plus its post list. A post
// may appear under several categories; there is no single ownership.
type CategoryEntry struct {
	Info  Category `json:"info"`
	Posts []Post   `json:"posts"`
}

// Database is the whole cached document. Categories is keyed by the
// decimal string form of the category ID (the document's external
// contract). AllPosts is the flat list used by change detection.
type Database struct {
	LastUpdated int64                    `json:"lastUpdated"`
	Categories  map[string]CategoryEntry `json:"categories"`
	AllPosts    []Post                   `json:"allPosts,omitempty"`
}

// NewDatabase returns an empty document shell.
func NewDatabase() *Database {
	return &Database{Categories: make(map[string]CategoryEntry)}
}

// CategoryKey converts a CMS category ID to its map key form.
func CategoryKey(id int) string {
	return strconv.Itoa(id)
}

// Entry returns the entry for a category ID, if present.
func (d *Database) Entry(id int) (CategoryEntry, bool) {
	e, ok := d.Categories[CategoryKey(id)]
	return e, ok
}

// SetEntry stores a category entry under its ID key.
func (d *Database) SetEntry(e CategoryEntry) {
	if d.Categories == nil {
		d.Categories = make(map[string]CategoryEntry)
	}
	d.Categories[CategoryKey(e.Info.ID)] = e
}

// CategoryName resolves a category ID to its cached name. Empty when the
// category has never been synced.
func (d *Database) CategoryName(id int) string {
	if e, ok := d.Entry(id); ok {
		return e.Info.Name
	}
	return ""
}

// Touch advances LastUpdated to now. It never moves the timestamp
// backwards.
func (d *Database) Touch(now time.Time) {
	if ms := now.UnixMilli(); ms > d.LastUpdated {
		d.LastUpdated = ms
	}
}

// Age returns how long ago the document was last updated. A document that
// has never been updated reports a very large age.
func (d *Database) Age(now time.Time) time.Duration {
	if d.LastUpdated == 0 {
		return time.Duration(1<<62 - 1)
	}
	return now.Sub(time.UnixMilli(d.LastUpdated))
}
