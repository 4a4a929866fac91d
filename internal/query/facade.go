// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query is the read path over the cached content document:
// filter, sort, and paginate category posts, plus category hierarchy
// derivation. It never triggers full syncs; the only write it can cause
// is the on-demand backfill of a category that was never synced.
package query

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"lexcache/internal/models"
	"lexcache/internal/store"
	"lexcache/internal/syncer"
)

// PageSize is the fixed number of posts per result page.
const PageSize = 10

// Options are the caller-supplied query parameters.
type Options struct {
	Page        int      // 1-based page number
	Search      string   // case-insensitive substring filter
	Sort        string   // sort key, see sort.go
	Categories  []string // category-set filter (IDs or names), OR semantics
	Subcategory string   // restrict to one subcategory (ID, slug, or name)
}

// Result is one page of posts plus the category metadata the UI layer
// renders alongside it.
type Result struct {
	Posts         []models.Post     `json:"posts"`
	TotalPages    int               `json:"totalPages"`
	TotalResults  int               `json:"totalResults"`
	Category      *models.Category  `json:"category,omitempty"`
	Categories    []models.Category `json:"categories"`
	Subcategories []models.Category `json:"subcategories"`
}

// emptyResult is the well-typed zero answer for unknown categories.
func emptyResult() *Result {
	return &Result{
		Posts:         []models.Post{},
		Categories:    []models.Category{},
		Subcategories: []models.Category{},
	}
}

// Facade serves filtered, sorted, paginated views over the store.
type Facade struct {
	store  store.Store
	syncer *syncer.Syncer
}

// New creates a Facade.
func New(st store.Store, s *syncer.Syncer) *Facade {
	return &Facade{store: st, syncer: s}
}

// load reads the document, tolerating a corrupt-reset (the shell is
// usable; the background runner will repopulate it).
func (f *Facade) load(ctx context.Context) (*models.Database, error) {
	db, err := f.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, err
	}
	return db, nil
}

// GetCategoryPosts answers a category page query. An unknown category is
// treated as a cache miss: one on-demand backfill is attempted before
// returning an empty, well-typed result.
func (f *Facade) GetCategoryPosts(ctx context.Context, categoryID int, opts Options) (*Result, error) {
	db, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := db.Entry(categoryID)
	if !ok {
		backfilled, err := f.syncer.BackfillCategory(ctx, categoryID)
		if err != nil {
			slog.Warn("category miss and backfill failed", "category", categoryID, "error", err)
			return emptyResult(), nil
		}
		entry = *backfilled
		// Reload so hierarchy derivation sees the new entry too.
		if db, err = f.load(ctx); err != nil {
			return nil, err
		}
	}

	hier := BuildHierarchy(db)
	posts := make([]models.Post, len(entry.Posts))
	copy(posts, entry.Posts)

	posts = filterByCategories(posts, opts.Categories, db)
	if opts.Subcategory != "" {
		if sub := resolveSubcategory(hier, categoryID, opts.Subcategory); sub != nil {
			posts = filterByCategoryID(posts, sub.ID)
		}
	}
	posts = filterBySearch(posts, opts.Search)

	sortPosts(posts, opts.Sort)
	fillCategoryNames(posts, db)

	total := len(posts)
	pagePosts := paginate(posts, opts.Page)

	info := entry.Info
	res := &Result{
		Posts:         pagePosts,
		TotalResults:  total,
		TotalPages:    int(math.Ceil(float64(total) / float64(PageSize))),
		Category:      &info,
		Categories:    associatedCategories(entry, db),
		Subcategories: subcategoriesFor(hier, entry, categoryID),
	}
	return res, nil
}

// GetAllCategoryPosts returns a category's full post list, newest first,
// without pagination.
func (f *Facade) GetAllCategoryPosts(ctx context.Context, categoryID int) ([]models.Post, error) {
	db, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := db.Entry(categoryID)
	if !ok {
		return []models.Post{}, nil
	}
	posts := make([]models.Post, len(entry.Posts))
	copy(posts, entry.Posts)
	sortPosts(posts, SortDateDesc)
	fillCategoryNames(posts, db)
	return posts, nil
}

// GetHierarchy returns the category tree for the whole document.
func (f *Facade) GetHierarchy(ctx context.Context) (*Hierarchy, error) {
	db, err := f.load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHierarchy(db), nil
}

// GetSubcategories returns the direct children of a category.
func (f *Facade) GetSubcategories(ctx context.Context, categoryID int) ([]models.Category, error) {
	hier, err := f.GetHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	subs := hier.Subcategories(categoryID)
	if subs == nil {
		subs = []models.Category{}
	}
	return subs, nil
}

// ListCategories returns the flat category list, name-ordered.
func (f *Facade) ListCategories(ctx context.Context) ([]models.Category, error) {
	hier, err := f.GetHierarchy(ctx)
	if err != nil {
		return nil, err
	}
	cats := make([]models.Category, 0, len(hier.Flat))
	var walk func(nodes []*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, n := range nodes {
			cats = append(cats, n.Category)
			walk(n.Children)
		}
	}
	walk(hier.Roots)
	return cats, nil
}

// Diagnostics summarizes the document state for operators.
type Diagnostics struct {
	Path        string         `json:"path"`
	SizeBytes   int64          `json:"sizeBytes"`
	LastUpdated int64          `json:"lastUpdated"`
	Stale       bool           `json:"stale"`
	SyncRunning bool           `json:"syncRunning"`
	Categories  int            `json:"categories"`
	FlatPosts   int            `json:"flatPosts"`
	PostCounts  map[string]int `json:"postCounts"`
}

// CheckStructure inspects the cached document and reports its shape.
func (f *Facade) CheckStructure(ctx context.Context) (*Diagnostics, error) {
	db, err := f.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(db.Categories))
	for key, entry := range db.Categories {
		counts[key] = len(entry.Posts)
	}

	var size int64
	if fi, err := os.Stat(f.store.Path()); err == nil {
		size = fi.Size()
	}

	return &Diagnostics{
		Path:        f.store.Path(),
		SizeBytes:   size,
		LastUpdated: db.LastUpdated,
		Stale:       f.syncer.IsStale(db),
		SyncRunning: f.syncer.InProgress(),
		Categories:  len(db.Categories),
		FlatPosts:   len(db.AllPosts),
		PostCounts:  counts,
	}, nil
}

// filterByCategories retains posts whose category set intersects the
// requested set — union semantics, not intersection. Requested values may
// be numeric IDs or category names.
func filterByCategories(posts []models.Post, requested []string, db *models.Database) []models.Post {
	if len(requested) == 0 {
		return posts
	}

	ids := make(map[int]bool)
	names := make(map[string]bool)
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if id, err := strconv.Atoi(r); err == nil {
			ids[id] = true
		} else {
			names[strings.ToLower(r)] = true
		}
	}

	out := posts[:0]
	for _, p := range posts {
		if postMatchesCategorySet(p, ids, names, db) {
			out = append(out, p)
		}
	}
	return out
}

func postMatchesCategorySet(p models.Post, ids map[int]bool, names map[string]bool, db *models.Database) bool {
	for _, id := range p.Categories {
		if ids[id] {
			return true
		}
		if len(names) > 0 && names[strings.ToLower(db.CategoryName(id))] {
			return true
		}
	}
	if p.CategoryName != "" && names[strings.ToLower(p.CategoryName)] {
		return true
	}
	return false
}

// filterByCategoryID retains posts belonging to one category.
func filterByCategoryID(posts []models.Post, id int) []models.Post {
	out := posts[:0]
	for _, p := range posts {
		if p.InCategory(id) {
			out = append(out, p)
		}
	}
	return out
}

// filterBySearch retains posts whose title, plain excerpt, or plain
// content contains the term, case-insensitively.
func filterBySearch(posts []models.Post, term string) []models.Post {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return posts
	}
	out := posts[:0]
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.PlainExcerpt), term) ||
			strings.Contains(strings.ToLower(p.PlainContent), term) {
			out = append(out, p)
		}
	}
	return out
}

// fillCategoryNames resolves a display category name for posts that do
// not carry one, cross-referencing the document.
func fillCategoryNames(posts []models.Post, db *models.Database) {
	for i := range posts {
		if posts[i].CategoryName != "" || len(posts[i].Categories) == 0 {
			continue
		}
		if name := db.CategoryName(posts[i].Categories[0]); name != "" {
			posts[i].CategoryName = name
		}
	}
}

// paginate returns the fixed-size page, 1-based. Pages past the end are
// empty.
func paginate(posts []models.Post, page int) []models.Post {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(posts) {
		return []models.Post{}
	}
	end := start + PageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}

// associatedCategories lists the other categories referenced by the
// selected category's posts, resolved against the document.
func associatedCategories(entry models.CategoryEntry, db *models.Database) []models.Category {
	seen := map[int]bool{entry.Info.ID: true}
	out := []models.Category{}
	for _, p := range entry.Posts {
		for _, id := range p.Categories {
			if seen[id] {
				continue
			}
			seen[id] = true
			if other, ok := db.Entry(id); ok {
				out = append(out, other.Info)
			}
		}
	}
	return out
}

// subcategoriesFor returns the hierarchy children of the category, or a
// synthesized list from the names observed on its posts when no hierarchy
// relationship exists.
func subcategoriesFor(hier *Hierarchy, entry models.CategoryEntry, categoryID int) []models.Category {
	if subs := hier.Subcategories(categoryID); len(subs) > 0 {
		return subs
	}

	// Synthesized fallback: distinct inline category names on the posts.
	seen := make(map[string]bool)
	out := []models.Category{}
	for _, p := range entry.Posts {
		name := strings.TrimSpace(p.CategoryName)
		if name == "" || name == entry.Info.Name || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		out = append(out, models.Category{Name: name, Parent: categoryID})
	}
	return out
}

// resolveSubcategory matches a caller-supplied subcategory selector (ID,
// slug, or name) against the hierarchy children of the category.
func resolveSubcategory(hier *Hierarchy, categoryID int, selector string) *models.Category {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	wantID, _ := strconv.Atoi(selector)
	lower := strings.ToLower(selector)

	for _, sub := range hier.Subcategories(categoryID) {
		if sub.ID == wantID && wantID != 0 {
			return &sub
		}
		if strings.ToLower(sub.Slug) == lower || strings.ToLower(sub.Name) == lower {
			return &sub
		}
	}
	return nil
}
