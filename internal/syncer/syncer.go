// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package syncer refreshes the cached content document from the remote
// CMS. It owns the single-flight guard, the bounded retry loop, the
// change detector, the staleness gate, and the background runner, so no
// sync state lives at package level.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"lexcache/internal/cache"
	"lexcache/internal/models"
	"lexcache/internal/store"
	"lexcache/internal/wp"
)

const (
	// defaultBackoffUnit is multiplied by the attempt number between
	// full-sync retries.
	defaultBackoffUnit = 2 * time.Second

	// attemptCooldown throttles repeated sync kicks independently of the
	// document's own staleness timestamp.
	attemptCooldown = 5 * time.Minute
)

// Options configures a Syncer.
type Options struct {
	TTL                 time.Duration // staleness threshold, default 5m
	RetryMax            int           // full-sync attempts, default 3
	BackoffUnit         time.Duration // retry backoff unit, default 2s
	EssentialCategories []int         // fallback IDs when discovery fails
}

// Syncer orchestrates full and change-gated resyncs of the document.
type Syncer struct {
	client  *wp.Client
	store   store.Store
	results *cache.ResultCache // nil when Valkey is not configured

	ttl         time.Duration
	retryMax    int
	backoffUnit time.Duration
	essential   []int

	inFlight atomic.Bool

	attemptMu   sync.Mutex
	lastAttempt time.Time
}

// New creates a Syncer. results may be nil.
func New(client *wp.Client, st store.Store, results *cache.ResultCache, opts Options) *Syncer {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 3
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = defaultBackoffUnit
	}
	return &Syncer{
		client:      client,
		store:       st,
		results:     results,
		ttl:         opts.TTL,
		retryMax:    opts.RetryMax,
		backoffUnit: opts.BackoffUnit,
		essential:   opts.EssentialCategories,
	}
}

// IsStale reports whether the document's last successful sync is older
// than the configured TTL. A never-synced document is always stale.
func (s *Syncer) IsStale(db *models.Database) bool {
	return db.Age(time.Now()) > s.ttl
}

// InProgress reports whether a sync currently holds the guard.
func (s *Syncer) InProgress() bool {
	return s.inFlight.Load()
}

// UpdateDatabase performs a full resync: discover categories, rebuild
// every category entry, persist. The whole run is retried up to the
// configured maximum with linearly increasing backoff. Returns true when
// a sync ran to completion, false when the guard was already held.
func (s *Syncer) UpdateDatabase(ctx context.Context) (bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer s.inFlight.Store(false)

	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	var lastErr error
	for attempt := 1; attempt <= s.retryMax; attempt++ {
		if err := s.fullSync(ctx, log); err != nil {
			lastErr = err
			log.Warn("full sync attempt failed",
				"attempt", attempt,
				"max", s.retryMax,
				"error", err,
			)
			if attempt < s.retryMax {
				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case <-time.After(s.backoffUnit * time.Duration(attempt)):
				}
			}
			continue
		}
		return true, nil
	}

	log.Error("full sync gave up", "attempts", s.retryMax, "error", lastErr)
	return false, fmt.Errorf("full sync failed after %d attempts: %w", s.retryMax, lastErr)
}

// UpdateDatabaseIfChanged fetches the flat all-posts list, runs change
// detection against the stored list, and only rewrites the categorized
// document when something changed. An unchanged remote still advances the
// staleness timestamp so polling does not hammer the CMS. Returns whether
// a categorized rewrite was performed.
func (s *Syncer) UpdateDatabaseIfChanged(ctx context.Context) (bool, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return false, nil
	}
	defer s.inFlight.Store(false)

	runID := uuid.NewString()
	log := slog.With("run_id", runID)

	db, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return false, fmt.Errorf("load document: %w", err)
	}

	incoming, err := s.client.FetchAllPosts(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch all posts: %w", err)
	}

	if !HavePostsChanged(db.AllPosts, incoming) {
		db.Touch(time.Now())
		if err := s.store.Save(ctx, db); err != nil {
			return false, fmt.Errorf("refresh timestamp: %w", err)
		}
		log.Info("no remote changes, timestamp refreshed", "posts", len(incoming))
		return false, nil
	}

	log.Info("remote changes detected, rebuilding document",
		"stored", len(db.AllPosts),
		"incoming", len(incoming),
	)
	if err := s.fullSync(ctx, log); err != nil {
		return false, fmt.Errorf("rebuild after change: %w", err)
	}
	return true, nil
}

// fullSync rebuilds every category entry and persists the document. The
// caller holds the in-flight guard.
func (s *Syncer) fullSync(ctx context.Context, log *slog.Logger) error {
	start := time.Now()

	db, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return fmt.Errorf("load document: %w", err)
	}

	cats, err := s.client.FetchCategories(ctx)
	if err != nil {
		if len(s.essential) == 0 {
			return fmt.Errorf("discover categories: %w", err)
		}
		log.Warn("category discovery failed, using essential list",
			"error", err,
			"fallback", len(s.essential),
		)
		cats = s.fallbackCategories(db)
	}

	var synced, failed int
	for _, cat := range cats {
		if err := ctx.Err(); err != nil {
			return err
		}

		posts, err := s.client.FetchAllCategoryPosts(ctx, cat.ID)
		if err != nil {
			// Prior data for this category stays untouched: stale but valid.
			failed++
			log.Warn("category fetch failed, keeping prior entry",
				"category", cat.ID,
				"name", cat.Name,
				"error", err,
			)
			continue
		}

		db.SetEntry(models.CategoryEntry{Info: cat, Posts: posts})
		synced++
	}

	if synced == 0 && len(cats) > 0 {
		return fmt.Errorf("all %d category fetches failed", len(cats))
	}

	db.AllPosts = flattenPosts(db)
	db.Touch(time.Now())

	if err := s.store.Save(ctx, db); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}

	s.results.InvalidateAll(ctx)

	log.Info("sync complete",
		"categories", synced,
		"failed", failed,
		"posts", len(db.AllPosts),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// fallbackCategories builds category stubs from the essential allowlist,
// reusing cached metadata where a prior sync provided it.
func (s *Syncer) fallbackCategories(db *models.Database) []models.Category {
	cats := make([]models.Category, 0, len(s.essential))
	for _, id := range s.essential {
		if entry, ok := db.Entry(id); ok {
			cats = append(cats, entry.Info)
			continue
		}
		cats = append(cats, models.Category{ID: id})
	}
	return cats
}

// flattenPosts rebuilds the flat all-posts list from the category entries,
// keeping the first occurrence of each post ID.
func flattenPosts(db *models.Database) []models.Post {
	var flat []models.Post
	seen := make(map[int]bool)
	for _, entry := range db.Categories {
		for _, p := range entry.Posts {
			if !seen[p.ID] {
				seen[p.ID] = true
				flat = append(flat, p)
			}
		}
	}
	return flat
}

// EnsureDatabase guarantees a usable document exists: a missing or empty
// document triggers a full sync. Returns true when the document holds at
// least one category afterwards.
func (s *Syncer) EnsureDatabase(ctx context.Context) (bool, error) {
	db, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return false, err
	}
	if len(db.Categories) > 0 {
		return true, nil
	}

	if _, err := s.UpdateDatabase(ctx); err != nil {
		return false, err
	}
	db, err = s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	return len(db.Categories) > 0, nil
}

// BackfillCategory fetches a single category and merges it into the
// document. Used by the query façade on a total cache miss for a category
// that was never synced.
func (s *Syncer) BackfillCategory(ctx context.Context, id int) (*models.CategoryEntry, error) {
	cat, err := s.client.FetchCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("backfill category %d: %w", id, err)
	}

	posts, err := s.client.FetchAllCategoryPosts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("backfill category %d posts: %w", id, err)
	}

	db, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, err
	}

	entry := models.CategoryEntry{Info: *cat, Posts: posts}
	db.SetEntry(entry)
	if err := s.store.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("persist backfill: %w", err)
	}

	s.results.InvalidateAll(ctx)
	slog.Info("category backfilled", "category", id, "posts", len(posts))
	return &entry, nil
}

// MaybeSync kicks a change-gated background sync when the document is
// stale and the attempt cooldown has elapsed. It never blocks: the sync
// runs on its own goroutine with a detached context. Returns whether a
// sync was started.
func (s *Syncer) MaybeSync(ctx context.Context) bool {
	db, err := s.store.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		slog.Warn("staleness check failed", "error", err)
		return false
	}
	if !s.IsStale(db) {
		return false
	}

	s.attemptMu.Lock()
	if time.Since(s.lastAttempt) < attemptCooldown {
		s.attemptMu.Unlock()
		return false
	}
	s.lastAttempt = time.Now()
	s.attemptMu.Unlock()

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.UpdateDatabaseIfChanged(bg); err != nil {
			slog.Warn("background sync failed", "error", err)
		}
	}()
	return true
}
