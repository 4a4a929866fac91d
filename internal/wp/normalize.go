// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// normalize.go converts raw CMS payloads into the canonical models types.
// All legacy field variance is resolved here, once per sync; query code
// never probes alternate shapes.
package wp

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gosimple/slug"

	"lexcache/internal/models"
)

// displayDateLayout is the locale format derived once per sync.
const displayDateLayout = "January 2, 2006"

// normalizePost folds a raw CMS post into the canonical Post, deriving
// the plain-text and formatted-date fields.
func normalizePost(raw rawPost) models.Post {
	p := models.Post{
		ID:       raw.ID,
		Title:    StripHTML(raw.Title.Rendered),
		Excerpt:  raw.Excerpt.Rendered,
		Content:  raw.Content.Rendered,
		Date:     raw.Date,
		Modified: raw.Modified,
		Link:     raw.Link,
	}

	p.PlainExcerpt = StripHTML(raw.Excerpt.Rendered)
	p.PlainContent = StripHTML(raw.Content.Rendered)

	// ParseDate falls back to the epoch for corrupt dates; those get no
	// formatted display string.
	if t := models.ParseDate(raw.Date); t.Unix() != 0 {
		p.FormattedDate = t.Format(displayDateLayout)
	}
	if t := models.ParseDate(raw.Modified); t.Unix() != 0 {
		p.FormattedModified = t.Format(displayDateLayout)
	}

	p.Categories = mergeCategoryIDs(raw.Categories, raw.Category, raw.CategoryID)
	if names := firstNames(raw.Categories, raw.Category, raw.CategoryID); len(names) > 0 {
		p.CategoryName = names[0]
	}

	p.FeaturedImage = raw.FeaturedImage
	if raw.Embedded != nil && len(raw.Embedded.FeaturedMedia) > 0 {
		if url := raw.Embedded.FeaturedMedia[0].SourceURL; url != "" {
			p.FeaturedImage = url
		}
	}

	return p
}

// normalizeCategory converts a raw CMS category, deriving a slug when the
// CMS omits one.
func normalizeCategory(raw rawCategory) models.Category {
	c := models.Category{
		ID:          raw.ID,
		Name:        raw.Name,
		Slug:        raw.Slug,
		Description: raw.Description,
		Parent:      raw.Parent,
		Count:       raw.Count,
	}
	if c.Slug == "" && c.Name != "" {
		c.Slug = slug.Make(c.Name)
	}
	return c
}

// mergeCategoryIDs unions the IDs found across the legacy field shapes,
// preserving first-seen order.
func mergeCategoryIDs(refs ...categoryRefs) []int {
	var out []int
	seen := make(map[int]bool)
	for _, r := range refs {
		for _, id := range r.IDs {
			if id != 0 && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// firstNames collects any category names carried inline on the post.
func firstNames(refs ...categoryRefs) []string {
	var out []string
	for _, r := range refs {
		out = append(out, r.Names...)
	}
	return out
}

// StripHTML returns the plain text of an HTML fragment with whitespace
// collapsed. Invalid markup falls back to the input string trimmed.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') && !strings.ContainsRune(s, '&') {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
