// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package syncer

import "lexcache/internal/models"

// HavePostsChanged reports whether the incoming post set differs from the
// stored set. A length mismatch short-circuits to true; otherwise every
// incoming post is checked against a by-ID lookup of the stored set, and
// any unknown ID or differing modified timestamp counts as a change.
// Element order does not matter. Field edits that leave the modified
// timestamp untouched are invisible to this check; that is the contract
// the CMS upholds by bumping modified on every save.
func HavePostsChanged(existing, incoming []models.Post) bool {
	if len(existing) != len(incoming) {
		return true
	}

	byID := make(map[int]string, len(existing))
	for _, p := range existing {
		byID[p.ID] = p.Modified
	}

	for _, p := range incoming {
		modified, ok := byID[p.ID]
		if !ok || modified != p.Modified {
			return true
		}
	}
	return false
}
