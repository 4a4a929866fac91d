// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is the CMS category metadata as cached locally. Parent is the
// CMS ID of the parent category; zero means root.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Parent      int    `json:"parent,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// CategoryNode is a category with its resolved children, produced by the
// hierarchy builder. Depth is 0 for roots.
type CategoryNode struct {
	Category
	Depth    int             `json:"depth"`
	Children []*CategoryNode `json:"children,omitempty"`
}
