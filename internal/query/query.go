// Package query filters, sorts and paginates in-memory collections.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

// Predicate reports whether an item passes a filter
type Predicate[T any] func(T) bool

// Comparator orders two items like cmp.Compare
type Comparator[T any] func(a, b T) int

// Pagination describes one page of a larger result
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is a paginated result
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Filter returns the items that pass every predicate. Nil predicates are
// skipped, so callers can leave absent filter keys unset.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range active {
			if !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// SortStable sorts items in place. Equal items keep their relative order.
// A nil comparator leaves the slice untouched.
func SortStable[T any](items []T, compare Comparator[T]) {
	if compare == nil {
		return
	}
	slices.SortStableFunc(items, compare)
}

// Paginate returns the 1-based page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, limit int) (Page[T], error) {
	var violations []string
	if page < 1 {
		violations = append(violations, "page must be at least 1")
	}
	if limit < 1 {
		violations = append(violations, "limit must be at least 1")
	}
	if err := domain.NewValidationError(violations); err != nil {
		return Page[T]{}, err
	}

	total := len(items)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	return Page[T]{
		Items: slices.Clone(items[start:end]),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

// By builds an ascending comparator on a key
func By[T any, K cmp.Ordered](key func(T) K) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Reverse inverts a comparator
func Reverse[T any](c Comparator[T]) Comparator[T] {
	return func(a, b T) int {
		return c(b, a)
	}
}

// NewestFirst orders by a timestamp, most recent first
func NewestFirst[T any](key func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return key(b).Compare(key(a))
	}
}

// NewestFirstNullsLast is NewestFirst for optional timestamps. Items without
// a timestamp sort after all others and compare equal among themselves.
func NewestFirstNullsLast[T any](key func(T) *time.Time) Comparator[T] {
	return func(a, b T) int {
		ta, tb := key(a), key(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return 1
		case tb == nil:
			return -1
		}
		return tb.Compare(*ta)
	}
}

// ByText orders by a string key using locale-aware collation. A collator is
// not safe for concurrent use, so each comparator owns its own.
func ByText[T any](key func(T) string) Comparator[T] {
	c := collate.New(language.Und)
	return func(a, b T) int {
		return c.CompareString(key(a), key(b))
	}
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
