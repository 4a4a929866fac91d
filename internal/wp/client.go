// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package wp is the remote content client for the WordPress REST API.
// It paginates the posts and categories endpoints, following the
// X-WP-TotalPages response header, and returns normalized records.
package wp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"lexcache/internal/models"
)

const (
	// maxPerPage is the largest page size the WordPress REST API allows.
	maxPerPage = 100

	// DefaultPerPage is the page size used for per-category fetches.
	DefaultPerPage = 100

	totalPagesHeader = "X-WP-TotalPages"
)

// ErrNotFound is returned when the CMS reports 404 for a resource.
var ErrNotFound = errors.New("wp: resource not found")

// ClientOptions configures the CMS client.
type ClientOptions struct {
	BaseURL   string // e.g. https://cms.example.com/wp-json/wp/v2
	Timeout   time.Duration
	UserAgent string

	// RetryWaitMin and RetryWaitMax bound the transport-level retry
	// backoff. Zero values keep the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client is a small wrapper around retryablehttp that talks to the
// WordPress REST API. Transport-level retries live here; orchestration
// retries and backoff belong to the sync job.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a new CMS client.
func NewClient(opts ClientOptions) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.Logger = nil
	if opts.Timeout > 0 {
		r.HTTPClient.Timeout = opts.Timeout
	}
	if opts.RetryWaitMin > 0 {
		r.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		r.RetryWaitMax = opts.RetryWaitMax
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "lexcache/1.0"
	}
	return &Client{
		baseURL:   opts.BaseURL,
		userAgent: ua,
		http:      r.StandardClient(),
	}
}

// getJSON issues a GET, decodes the body into v, and returns the response
// headers for pagination metadata.
func (c *Client) getJSON(ctx context.Context, url string, v any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return resp.Header, nil
}

// totalPages reads the X-WP-TotalPages header, defaulting to 1.
func totalPages(h http.Header) int {
	if n, err := strconv.Atoi(h.Get(totalPagesHeader)); err == nil && n > 0 {
		return n
	}
	return 1
}

// FetchCategoryPosts returns one page of a category's posts plus the total
// page count reported by the CMS.
func (c *Client) FetchCategoryPosts(ctx context.Context, categoryID, page, perPage int) ([]models.Post, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = DefaultPerPage
	}

	url := fmt.Sprintf("%s/posts?categories=%d&page=%d&per_page=%d&_embed=true",
		c.baseURL, categoryID, page, perPage)

	var raw []rawPost
	header, err := c.getJSON(ctx, url, &raw)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch posts for category %d page %d: %w", categoryID, page, err)
	}

	posts := make([]models.Post, 0, len(raw))
	for _, r := range raw {
		posts = append(posts, normalizePost(r))
	}
	return posts, totalPages(header), nil
}

// FetchAllCategoryPosts fetches every page of a category's posts,
// sequentially, concatenated in page order.
func (c *Client) FetchAllCategoryPosts(ctx context.Context, categoryID int) ([]models.Post, error) {
	posts, pages, err := c.FetchCategoryPosts(ctx, categoryID, 1, DefaultPerPage)
	if err != nil {
		return nil, err
	}
	for page := 2; page <= pages; page++ {
		more, _, err := c.FetchCategoryPosts(ctx, categoryID, page, DefaultPerPage)
		if err != nil {
			return nil, err
		}
		posts = append(posts, more...)
	}
	return posts, nil
}

// FetchAllPosts fetches every post in the CMS at the maximum page size.
// Once the first page reveals the page count, the remaining pages are
// fetched concurrently and reassembled in page order.
func (c *Client) FetchAllPosts(ctx context.Context) ([]models.Post, error) {
	fetch := func(page int) ([]models.Post, int, error) {
		url := fmt.Sprintf("%s/posts?page=%d&per_page=%d&_embed=true", c.baseURL, page, maxPerPage)
		var raw []rawPost
		header, err := c.getJSON(ctx, url, &raw)
		if err != nil {
			return nil, 0, err
		}
		posts := make([]models.Post, 0, len(raw))
		for _, r := range raw {
			posts = append(posts, normalizePost(r))
		}
		return posts, totalPages(header), nil
	}

	first, pages, err := fetch(1)
	if err != nil {
		return nil, fmt.Errorf("fetch all posts page 1: %w", err)
	}
	if pages <= 1 {
		return first, nil
	}

	byPage := make([][]models.Post, pages+1)
	byPage[1] = first

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for page := 2; page <= pages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			posts, _, err := fetch(page)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("fetch all posts page %d: %w", page, err)
				}
				return
			}
			byPage[page] = posts
		}(page)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var all []models.Post
	for page := 1; page <= pages; page++ {
		all = append(all, byPage[page]...)
	}
	return all, nil
}

// FetchCategories discovers every category, following pagination.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/categories?per_page=%d&page=%d", c.baseURL, maxPerPage, page)
		var raw []rawCategory
		header, err := c.getJSON(ctx, url, &raw)
		if err != nil {
			return nil, fmt.Errorf("fetch categories page %d: %w", page, err)
		}
		for _, r := range raw {
			cats = append(cats, normalizeCategory(r))
		}
		if page >= totalPages(header) {
			break
		}
	}
	return cats, nil
}

// FetchCategory fetches a single category's metadata.
func (c *Client) FetchCategory(ctx context.Context, id int) (*models.Category, error) {
	url := fmt.Sprintf("%s/categories/%d", c.baseURL, id)
	var raw rawCategory
	if _, err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("fetch category %d: %w", id, err)
	}
	cat := normalizeCategory(raw)
	return &cat, nil
}
