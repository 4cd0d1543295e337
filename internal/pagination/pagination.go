// Package pagination defines the page/limit contract shared by every listing.
package pagination

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hszk-dev/vidvault/internal/domain/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// maxSkip bounds the offset so that the offset plus one page still fits in
// an int and in the store's 64-bit OFFSET.
const maxSkip = math.MaxInt - MaxLimit

// ErrInvalidPagination is returned when page or limit is not a positive
// integer, or when the page lies beyond any representable offset.
var ErrInvalidPagination = fmt.Errorf("%w: page and limit must be positive integers", model.ErrInvalidArgument)

// Params is a validated page request.
type Params struct {
	Page  int
	Limit int
}

// Default returns the first page with the default limit.
func Default() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// New validates page and limit. Limits above MaxLimit are clamped.
func New(page, limit int) (Params, error) {
	if page < 1 || limit < 1 {
		return Params{}, ErrInvalidPagination
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page-1 > maxSkip/limit {
		return Params{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidPagination, page)
	}
	return Params{Page: page, Limit: limit}, nil
}

// Parse reads page and limit from query-string values. Empty values take the
// defaults.
func Parse(page, limit string) (Params, error) {
	p, err := parseInt(page, DefaultPage)
	if err != nil {
		return Params{}, err
	}
	l, err := parseInt(limit, DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	return New(p, l)
}

func parseInt(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPagination, s)
	}
	return n, nil
}

// Skip is the number of records preceding the page.
func (p Params) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewMeta computes page metadata. A page past the end is not an error; it
// simply has no items and no next page.
func NewMeta(p Params, total int64, returned int) Meta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		CurrentPage:  p.Page,
		TotalPages:   totalPages,
		TotalResults: total,
		HasNextPage:  int64(p.Skip()+returned) < total,
		HasPrevPage:  p.Page > 1,
	}
}

// Page is one window of a listing.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// NewPage wraps items with metadata. Items is never nil so that an empty
// page encodes as [].
func NewPage[T any](p Params, items []T, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Pagination: NewMeta(p, total, len(items)),
	}
}
