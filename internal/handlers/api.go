// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers groups the JSON API handlers consumed by the
// out-of-process UI layer. Reads check the L2 Valkey result cache before
// hitting the query façade and never surface sync failures: a failed
// refresh leaves the last-known-good document in place, and an unknown
// category answers with an empty, well-typed result.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lexcache/internal/cache"
	"lexcache/internal/query"
	"lexcache/internal/syncer"
)

// API is the handler group for the content API.
type API struct {
	facade  *query.Facade
	syncer  *syncer.Syncer
	results *cache.ResultCache // nil when Valkey is not configured
}

// NewAPI creates the API handler group. results may be nil.
func NewAPI(facade *query.Facade, s *syncer.Syncer, results *cache.ResultCache) *API {
	return &API{facade: facade, syncer: s, results: results}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError answers with a JSON error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// categoryID parses the {id} route parameter.
func categoryID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid category id %q", raw)
	}
	return id, nil
}

// CategoryPosts serves GET /api/categories/{id}/posts.
func (a *API) CategoryPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := categoryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Random ordering is different on every call; caching it would pin
	// one shuffle for the TTL.
	cacheable := opts.Sort != query.SortRandom
	key := resultKey(id, opts)
	if cacheable {
		if data, ok := a.results.Get(ctx, key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(data)
			return
		}
	}

	res, err := a.facade.GetCategoryPosts(ctx, id, opts)
	if err != nil {
		slog.Error("category posts query failed", "category", id, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	if cacheable {
		if data, err := json.Marshal(res); err == nil {
			a.results.Set(ctx, key, data)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write(data)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// AllCategoryPosts serves GET /api/categories/{id}/posts/all.
func (a *API) AllCategoryPosts(w http.ResponseWriter, r *http.Request) {
	id, err := categoryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	posts, err := a.facade.GetAllCategoryPosts(r.Context(), id)
	if err != nil {
		slog.Error("all category posts query failed", "category", id, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "totalResults": len(posts)})
}

// Categories serves GET /api/categories.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.facade.ListCategories(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// CategoryTree serves GET /api/categories/tree.
func (a *API) CategoryTree(w http.ResponseWriter, r *http.Request) {
	hier, err := a.facade.GetHierarchy(r.Context())
	if err != nil {
		slog.Error("hierarchy build failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, hier)
}

// Subcategories serves GET /api/categories/{id}/subcategories.
func (a *API) Subcategories(w http.ResponseWriter, r *http.Request) {
	id, err := categoryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	subs, err := a.facade.GetSubcategories(r.Context(), id)
	if err != nil {
		slog.Error("subcategories query failed", "category", id, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subcategories": subs})
}

// TriggerSync serves POST /api/sync: an explicit check-and-update. The
// staleness gate and attempt cooldown still apply; a skipped kick is a
// normal answer, not an error.
func (a *API) TriggerSync(w http.ResponseWriter, r *http.Request) {
	started := a.syncer.MaybeSync(r.Context())
	status := "skipped"
	if started {
		status = "started"
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  status,
		"running": a.syncer.InProgress(),
	})
}

// Diagnostics serves GET /api/diagnostics.
func (a *API) Diagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := a.facade.CheckStructure(r.Context())
	if err != nil {
		slog.Error("diagnostics failed", "error", err)
		writeError(w, http.StatusInternalServerError, "diagnostics failed")
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

// parseOptions reads the query parameters into façade options.
func parseOptions(r *http.Request) (query.Options, error) {
	q := r.URL.Query()
	opts := query.Options{
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
		Subcategory: q.Get("subcategory"),
		Page:        1,
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return opts, fmt.Errorf("invalid page %q", raw)
		}
		opts.Page = page
	}

	if raw := q.Get("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Categories = append(opts.Categories, part)
			}
		}
	}

	return opts, nil
}

// resultKey derives the L2 cache key for a category query.
func resultKey(id int, opts query.Options) string {
	return fmt.Sprintf("cat:%d:p%d:s=%s:sort=%s:c=%s:sub=%s",
		id, opts.Page, strings.ToLower(opts.Search), opts.Sort,
		strings.Join(opts.Categories, "|"), strings.ToLower(opts.Subcategory))
}
