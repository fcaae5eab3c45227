// Package listing filters, sorts and paginates result sets in memory once the storage layer has
// applied its equality filters.
package listing

import (
	"sort"
	"strings"
)

const (
	// DefaultPageSize is used when the caller does not request a size.
	DefaultPageSize = 20
	// MaxPageSize caps the requested page size.
	MaxPageSize = 100
)

// Meta describes the page returned by Paginate.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// Filter returns the items for which keep reports true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// SortBy stable-sorts items in place using less.
func SortBy[T any](items []T, less func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// Paginate returns the requested page of items. Pages are 1-based; out of range pages are empty.
func Paginate[T any](items []T, page, pageSize int) ([]T, Meta) {
	page, pageSize = Normalize(page, pageSize)

	total := len(items)
	meta := Meta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: int64(total),
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	if page > meta.TotalPages {
		return []T{}, meta
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], meta
}

// Normalize clamps page and page size to sane values.
func Normalize(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// MatchesSearch reports whether query occurs case-insensitively in any field. An empty query
// matches everything.
func MatchesSearch(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
