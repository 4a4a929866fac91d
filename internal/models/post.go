// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the canonical data types shared across the
// lexcache service: posts, categories, and the cached document that
// holds them. All legacy field shapes coming from the CMS are folded
// into these types at the ingest boundary; nothing downstream probes
// alternate field names.
package models

import "time"

// Post is the canonical representation of a CMS post. Plain-text and
// formatted-date fields are derived once per sync and stored on the
// record so query paths never re-strip HTML or re-parse dates.
type Post struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	Excerpt           string `json:"excerpt"`
	PlainExcerpt      string `json:"plainExcerpt"`
	Content           string `json:"content"`
	PlainContent      string `json:"plainContent"`
	Date              string `json:"date"`
	Modified          string `json:"modified"`
	FormattedDate     string `json:"formattedDate"`
	FormattedModified string `json:"formattedModified"`
	Link              string `json:"link,omitempty"`
	Categories        []int  `json:"categories"`
	CategoryName      string `json:"categoryName,omitempty"`
	FeaturedImage     string `json:"featuredImage,omitempty"`
}

// dateLayouts are the timestamp formats the CMS has been observed to emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a CMS timestamp, trying each known layout. Returns the
// zero-value Unix epoch when nothing parses, so posts with corrupt dates
// sort deterministically to one end instead of erroring.
func ParseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Unix(0, 0).UTC()
}

// PublishedTime returns the parsed publication date.
func (p *Post) PublishedTime() time.Time {
	return ParseDate(p.Date)
}

// ModifiedTime returns the parsed last-modified date, falling back to the
// publication date when the modified field is empty.
func (p *Post) ModifiedTime() time.Time {
	if p.Modified == "" {
		return p.PublishedTime()
	}
	return ParseDate(p.Modified)
}

// InCategory reports whether the post belongs to the given category ID.
func (p *Post) InCategory(id int) bool {
	for _, c := range p.Categories {
		if c == id {
			return true
		}
	}
	return false
}
