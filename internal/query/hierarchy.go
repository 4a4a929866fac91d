// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package query

import (
	"sort"
	"strings"

	"lexcache/internal/models"
)

// maxPathDepth caps the category name chain.
const maxPathDepth = 3

// Hierarchy is the parent/child view over the cached categories.
type Hierarchy struct {
	Roots []*models.CategoryNode `json:"roots"`
	// Flat indexes every node by category ID.
	Flat map[int]*models.CategoryNode `json:"-"`
}

// BuildHierarchy derives the category tree from the flat category map.
// A category whose parent is absent, zero, or part of a cycle becomes a
// root. Cycles are broken with a visited set rather than relied-upon
// depth caps.
func BuildHierarchy(db *models.Database) *Hierarchy {
	flat := make(map[int]*models.CategoryNode, len(db.Categories))
	for _, entry := range db.Categories {
		info := entry.Info
		flat[info.ID] = &models.CategoryNode{Category: info}
	}

	h := &Hierarchy{Flat: flat}
	for _, node := range flat {
		parent := resolveParent(node, flat)
		if parent == nil {
			h.Roots = append(h.Roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(h.Roots)
	for _, node := range flat {
		sortNodes(node.Children)
	}

	var setDepth func(nodes []*models.CategoryNode, depth int)
	setDepth = func(nodes []*models.CategoryNode, depth int) {
		for _, n := range nodes {
			n.Depth = depth
			setDepth(n.Children, depth+1)
		}
	}
	setDepth(h.Roots, 0)

	return h
}

// resolveParent returns the node's parent, or nil when the node should be
// treated as a root: no parent, a dangling parent reference, a self
// reference, or a parent chain that loops back onto itself.
func resolveParent(node *models.CategoryNode, flat map[int]*models.CategoryNode) *models.CategoryNode {
	if node.Parent == 0 || node.Parent == node.ID {
		return nil
	}
	parent, ok := flat[node.Parent]
	if !ok {
		return nil
	}

	// Walk the parent chain; meeting the node again means a cycle.
	visited := map[int]bool{node.ID: true}
	for cur := parent; cur != nil; {
		if visited[cur.ID] {
			return nil
		}
		visited[cur.ID] = true
		if cur.Parent == 0 {
			break
		}
		cur = flat[cur.Parent]
	}
	return parent
}

// sortNodes orders sibling categories by name for stable output.
func sortNodes(nodes []*models.CategoryNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
}

// Subcategories returns the direct children of a category.
func (h *Hierarchy) Subcategories(id int) []models.Category {
	node, ok := h.Flat[id]
	if !ok {
		return nil
	}
	out := make([]models.Category, 0, len(node.Children))
	for _, child := range node.Children {
		out = append(out, child.Category)
	}
	return out
}

// CategoryPath returns the name chain from the highest known ancestor to
// the category, joined with " > ", capped at three levels.
func (h *Hierarchy) CategoryPath(id int) string {
	node, ok := h.Flat[id]
	if !ok {
		return ""
	}

	names := []string{node.Name}
	visited := map[int]bool{node.ID: true}
	for cur := node; len(names) < maxPathDepth; {
		parent, ok := h.Flat[cur.Parent]
		if !ok || cur.Parent == 0 || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		names = append([]string{parent.Name}, names...)
		cur = parent
	}
	return strings.Join(names, " > ")
}
