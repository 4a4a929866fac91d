// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lexcache/internal/handlers"
	"lexcache/internal/models"
	"lexcache/internal/query"
	"lexcache/internal/router"
	"lexcache/internal/store"
	"lexcache/internal/syncer"
	"lexcache/internal/wp"
)

// newTestRouter wires the full read stack (store, syncer, facade,
// handlers, router) against a seeded document and a CMS that 404s
// everything, with rate limiting and the result cache disabled.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	db := models.NewDatabase()
	db.SetEntry(models.CategoryEntry{
		Info: models.Category{ID: 21, Name: "Case Law", Slug: "case-law"},
		Posts: []models.Post{
			{ID: 1, Title: "Negligence Basics", Date: "2024-01-01T00:00:00", Modified: "2024-01-01T00:00:00", Categories: []int{21}},
			{ID: 2, Title: "Appellate Review", Date: "2024-02-01T00:00:00", Modified: "2024-02-01T00:00:00", Categories: []int{21}},
		},
	})
	db.Touch(time.Now())
	if err := st.Save(context.Background(), db); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cms := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(cms.Close)
	client := wp.NewClient(wp.ClientOptions{BaseURL: cms.URL, Timeout: time.Second})
	s := syncer.New(client, st, nil, syncer.Options{TTL: time.Hour})
	facade := query.New(st, s)

	api := handlers.NewAPI(facade, s, nil)
	return router.New(api, nil)
}

func doGET(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}

func TestCategoryPosts_OK(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories/21/posts?page=1&sort=date_desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type: got %q", ct)
	}

	var res query.Result
	decodeBody(t, rec, &res)
	if res.TotalResults != 2 || len(res.Posts) != 2 {
		t.Errorf("result: %+v", res)
	}
	if res.Posts[0].ID != 2 {
		t.Errorf("date_desc first post: got %d, want 2", res.Posts[0].ID)
	}
}

func TestCategoryPosts_BadPage(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{
		"/api/categories/21/posts?page=0",
		"/api/categories/21/posts?page=abc",
	} {
		rec := doGET(t, h, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", path, rec.Code)
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["error"] == "" {
			t.Errorf("%s: missing error envelope, body %s", path, rec.Body.String())
		}
	}
}

func TestCategoryPosts_BadID(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{
		"/api/categories/abc/posts",
		"/api/categories/-3/posts",
	} {
		rec := doGET(t, h, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", path, rec.Code)
		}
	}
}

func TestCategoryPosts_UnknownCategoryIsEmptyNotError(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories/404/posts")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	var res query.Result
	decodeBody(t, rec, &res)
	if res.TotalResults != 0 || len(res.Posts) != 0 {
		t.Errorf("unknown category must answer empty, got %+v", res)
	}
}

func TestAllCategoryPosts(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories/21/posts/all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Posts        []models.Post `json:"posts"`
		TotalResults int           `json:"totalResults"`
	}
	decodeBody(t, rec, &body)
	if body.TotalResults != 2 || len(body.Posts) != 2 {
		t.Errorf("body: %+v", body)
	}
}

func TestCategories(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Categories []models.Category `json:"categories"`
	}
	decodeBody(t, rec, &body)
	if len(body.Categories) != 1 || body.Categories[0].Name != "Case Law" {
		t.Errorf("categories: %+v", body.Categories)
	}
}

func TestCategoryTree(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories/tree")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var hier query.Hierarchy
	decodeBody(t, rec, &hier)
	if len(hier.Roots) != 1 || hier.Roots[0].ID != 21 {
		t.Errorf("tree: %+v", hier.Roots)
	}
}

func TestSubcategories_EmptyList(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/categories/21/subcategories")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		Subcategories []models.Category `json:"subcategories"`
	}
	decodeBody(t, rec, &body)
	if body.Subcategories == nil {
		t.Error("subcategories must encode as [], not null")
	}
}

func TestTriggerSync(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/sync", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status: got %d, want 202", rec.Code)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	// The document was touched moments ago, so the staleness gate skips.
	if body["status"] != "skipped" {
		t.Errorf("status field: got %v, want skipped", body["status"])
	}
}

func TestDiagnostics(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/api/diagnostics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var diag query.Diagnostics
	decodeBody(t, rec, &diag)
	if diag.Categories != 1 || diag.Stale {
		t.Errorf("diagnostics: %+v", diag)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t)
	rec := doGET(t, h, "/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("request id not echoed: got %q", got)
	}
}
