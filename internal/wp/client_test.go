// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// newTestClient points a Client at a fake CMS handler.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientOptions{
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
}

// postJSON builds a minimal CMS post payload.
func postJSON(id int, modified string, categories ...int) map[string]any {
	if categories == nil {
		categories = []int{}
	}
	return map[string]any{
		"id":         id,
		"date":       "2024-01-01T00:00:00",
		"modified":   modified,
		"title":      map[string]string{"rendered": fmt.Sprintf("Post %d", id)},
		"excerpt":    map[string]string{"rendered": ""},
		"content":    map[string]string{"rendered": ""},
		"categories": categories,
	}
}

func TestFetchCategoryPosts_FollowsTotalPagesHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts" {
			http.NotFound(w, r)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "3")
		json.NewEncoder(w).Encode([]any{postJSON(page*10, "2024-01-02T00:00:00", 21)})
	})
	client := newTestClient(t, handler)

	posts, pages, err := client.FetchCategoryPosts(context.Background(), 21, 1, 100)
	if err != nil {
		t.Fatalf("FetchCategoryPosts: %v", err)
	}
	if pages != 3 {
		t.Errorf("total pages: got %d, want 3", pages)
	}
	if len(posts) != 1 || posts[0].ID != 10 {
		t.Errorf("posts: got %+v", posts)
	}
}

func TestFetchAllCategoryPosts_ConcatenatesInPageOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "3")
		json.NewEncoder(w).Encode([]any{postJSON(page, "2024-01-02T00:00:00", 21)})
	})
	client := newTestClient(t, handler)

	posts, err := client.FetchAllCategoryPosts(context.Background(), 21)
	if err != nil {
		t.Fatalf("FetchAllCategoryPosts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("posts: got %d, want 3", len(posts))
	}
	for i, p := range posts {
		if p.ID != i+1 {
			t.Errorf("post %d: got id %d, want %d", i, p.ID, i+1)
		}
	}
}

func TestFetchAllPosts_ConcurrentPagesReassembled(t *testing.T) {
	const pages = 5
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", strconv.Itoa(pages))
		// Two posts per page, ids page*100 and page*100+1.
		json.NewEncoder(w).Encode([]any{
			postJSON(page*100, "2024-01-02T00:00:00"),
			postJSON(page*100+1, "2024-01-02T00:00:00"),
		})
	})
	client := newTestClient(t, handler)

	posts, err := client.FetchAllPosts(context.Background())
	if err != nil {
		t.Fatalf("FetchAllPosts: %v", err)
	}
	if len(posts) != pages*2 {
		t.Fatalf("posts: got %d, want %d", len(posts), pages*2)
	}
	// Page order must be preserved despite concurrent fetches.
	for i := 0; i < pages; i++ {
		if posts[i*2].ID != (i+1)*100 {
			t.Errorf("page %d start: got id %d, want %d", i+1, posts[i*2].ID, (i+1)*100)
		}
	}
}

func TestFetchCategories_Paginated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			http.NotFound(w, r)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": page, "name": fmt.Sprintf("Category %d", page), "slug": fmt.Sprintf("cat-%d", page)},
		})
	})
	client := newTestClient(t, handler)

	cats, err := client.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("FetchCategories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories: got %d, want 2", len(cats))
	}
	if cats[0].ID != 1 || cats[1].ID != 2 {
		t.Errorf("categories: got %+v", cats)
	}
}

func TestFetchCategory_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if _, err := client.FetchCategory(context.Background(), 42); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchCategoryPosts_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, _, err := client.FetchCategoryPosts(context.Background(), 21, 1, 10); err == nil {
		t.Fatal("expected error for 500")
	}
}
