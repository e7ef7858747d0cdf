package models

// Page is one zero-based page of an ordered result set.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalPages    int   `json:"total_pages"`
	TotalElements int64 `json:"total_elements"`
}

// NewPage assembles a Page from a slice and the total row count.
func NewPage[T any](items []T, page, size int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return &Page[T]{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalPages:    totalPages,
		TotalElements: total,
	}
}
