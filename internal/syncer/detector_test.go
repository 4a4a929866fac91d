// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package syncer

import (
	"testing"

	"lexcache/internal/models"
)

func posts(specs ...[2]any) []models.Post {
	out := make([]models.Post, 0, len(specs))
	for _, s := range specs {
		out = append(out, models.Post{ID: s[0].(int), Modified: s[1].(string)})
	}
	return out
}

func TestHavePostsChanged(t *testing.T) {
	base := posts(
		[2]any{1, "2024-01-01T00:00:00"},
		[2]any{2, "2024-01-02T00:00:00"},
		[2]any{3, "2024-01-03T00:00:00"},
	)

	t.Run("identical sets are unchanged", func(t *testing.T) {
		same := posts(
			[2]any{1, "2024-01-01T00:00:00"},
			[2]any{2, "2024-01-02T00:00:00"},
			[2]any{3, "2024-01-03T00:00:00"},
		)
		if HavePostsChanged(base, same) {
			t.Error("identical sets reported as changed")
		}
	})

	t.Run("reordered but identical sets are unchanged", func(t *testing.T) {
		reordered := posts(
			[2]any{3, "2024-01-03T00:00:00"},
			[2]any{1, "2024-01-01T00:00:00"},
			[2]any{2, "2024-01-02T00:00:00"},
		)
		if HavePostsChanged(base, reordered) {
			t.Error("reordering reported as a change")
		}
	})

	t.Run("bumped modified timestamp is a change", func(t *testing.T) {
		bumped := posts(
			[2]any{1, "2024-01-01T00:00:00"},
			[2]any{2, "2024-06-01T00:00:00"},
			[2]any{3, "2024-01-03T00:00:00"},
		)
		if !HavePostsChanged(base, bumped) {
			t.Error("modified bump not detected")
		}
	})

	t.Run("new post id is a change", func(t *testing.T) {
		swapped := posts(
			[2]any{1, "2024-01-01T00:00:00"},
			[2]any{2, "2024-01-02T00:00:00"},
			[2]any{9, "2024-01-03T00:00:00"},
		)
		if !HavePostsChanged(base, swapped) {
			t.Error("new id not detected")
		}
	})

	t.Run("removal is caught by the length check", func(t *testing.T) {
		smaller := posts(
			[2]any{1, "2024-01-01T00:00:00"},
			[2]any{2, "2024-01-02T00:00:00"},
		)
		if !HavePostsChanged(base, smaller) {
			t.Error("removal not detected")
		}
	})

	t.Run("empty against empty is unchanged", func(t *testing.T) {
		if HavePostsChanged(nil, nil) {
			t.Error("two empty sets reported as changed")
		}
	})

	t.Run("empty store against non-empty remote is a change", func(t *testing.T) {
		if !HavePostsChanged(nil, base) {
			t.Error("first population not detected")
		}
	})
}
