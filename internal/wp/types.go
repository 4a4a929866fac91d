// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wp

import (
	"encoding/json"
	"strconv"
)

// rendered is a WordPress "rendered" field. Old API versions emitted a
// bare string; current ones emit {"rendered": "..."} — both are accepted.
type rendered struct {
	Rendered string
}

func (r *rendered) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Rendered = s
		return nil
	}
	var obj struct {
		Rendered string `json:"rendered"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Rendered = obj.Rendered
	return nil
}

// categoryRefs collects category references from any of the shapes the CMS
// has emitted over the years: an array of IDs, a single scalar ID, a string
// ID, or an array of {id, name} objects.
type categoryRefs struct {
	IDs   []int
	Names []string
}

func (c *categoryRefs) UnmarshalJSON(data []byte) error {
	// Array of ints — the modern shape.
	var ids []int
	if err := json.Unmarshal(data, &ids); err == nil {
		c.IDs = ids
		return nil
	}

	// Single scalar ID.
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		c.IDs = []int{id}
		return nil
	}

	// String: either a numeric ID or a category name.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			c.IDs = []int{n}
		} else if s != "" {
			c.Names = []string{s}
		}
		return nil
	}

	// Array of objects with id/name.
	var objs []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objs); err == nil {
		for _, o := range objs {
			if o.ID != 0 {
				c.IDs = append(c.IDs, o.ID)
			}
			if o.Name != "" {
				c.Names = append(c.Names, o.Name)
			}
		}
		return nil
	}

	// Unknown shape: tolerate rather than fail the whole payload.
	return nil
}

// rawPost is a post as returned by the CMS REST API, before normalization.
type rawPost struct {
	ID            int          `json:"id"`
	Date          string       `json:"date"`
	Modified      string       `json:"modified"`
	Link          string       `json:"link"`
	Title         rendered     `json:"title"`
	Excerpt       rendered     `json:"excerpt"`
	Content       rendered     `json:"content"`
	Categories    categoryRefs `json:"categories"`
	Category      categoryRefs `json:"category"`
	CategoryID    categoryRefs `json:"category_id"`
	FeaturedImage string       `json:"featured_image"`
	Embedded      *rawEmbedded `json:"_embedded"`
}

// rawEmbedded carries the _embed payload; only featured media is used.
type rawEmbedded struct {
	FeaturedMedia []struct {
		SourceURL string `json:"source_url"`
	} `json:"wp:featuredmedia"`
}

// rawCategory is a category term as returned by the CMS REST API.
type rawCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Parent      int    `json:"parent"`
	Count       int    `json:"count"`
}
