// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"math/rand"
	"sort"
	"strings"

	"lexcache/internal/models"
)

// Sort keys accepted by the façade. Each field takes an _asc or _desc
// suffix except random.
const (
	SortDateDesc     = "date_desc"
	SortDateAsc      = "date_asc"
	SortTitleAsc     = "title_asc"
	SortTitleDesc    = "title_desc"
	SortModifiedDesc = "modified_desc"
	SortModifiedAsc  = "modified_asc"
	SortRandom       = "random"

	DefaultSort = SortDateDesc
)

// sortPosts orders posts in place according to the sort key. Unknown keys
// fall back to the default. Non-random sorts are stable so equal keys
// keep their relative order.
func sortPosts(posts []models.Post, sortKey string) {
	if sortKey == "" {
		sortKey = DefaultSort
	}

	if sortKey == SortRandom {
		shufflePosts(posts)
		return
	}

	field, dir := splitSortKey(sortKey)

	var less func(a, b models.Post) bool
	switch field {
	case "title":
		less = func(a, b models.Post) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case "modified":
		less = func(a, b models.Post) bool {
			return a.ModifiedTime().Before(b.ModifiedTime())
		}
	default: // date
		less = func(a, b models.Post) bool {
			return a.PublishedTime().Before(b.PublishedTime())
		}
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if dir == "desc" {
			return less(posts[j], posts[i])
		}
		return less(posts[i], posts[j])
	})
}

// splitSortKey splits "field_dir" into its parts, defaulting the
// direction per field (dates newest-first, titles A-Z).
func splitSortKey(key string) (field, dir string) {
	if idx := strings.LastIndex(key, "_"); idx != -1 {
		field, dir = key[:idx], key[idx+1:]
	} else {
		field = key
	}
	if dir != "asc" && dir != "desc" {
		if field == "title" {
			dir = "asc"
		} else {
			dir = "desc"
		}
	}
	return field, dir
}

// shufflePosts applies a Fisher-Yates shuffle.
func shufflePosts(posts []models.Post) {
	for i := len(posts) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		posts[i], posts[j] = posts[j], posts[i]
	}
}
