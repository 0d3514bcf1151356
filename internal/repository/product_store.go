package repository

import (
	"context"
	"strings"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

// Sort orders for StoreQuery
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Fields that support prefix search in a document store
const (
	PrefixFieldTitle    = "title"
	PrefixFieldCategory = "category"
)

// ProductStore is a document store for products keyed by opaque string ids.
// Filtering uses the store's native equality filters, one sort field and a
// result limit. PrefixSearch only matches prefixes, unlike the substring
// search of the in-memory catalog.
type ProductStore interface {
	// Create inserts a validated product; the store assigns id and timestamps
	Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.StoredProduct, error)
	// Get retrieves a product by id
	Get(ctx context.Context, id string) (*domain.StoredProduct, error)
	// Update applies a partial update and refreshes updatedAt
	Update(ctx context.Context, id string, patch *domain.ProductPatch) (*domain.StoredProduct, error)
	// Delete removes a product permanently
	Delete(ctx context.Context, id string) error
	// List returns products matching the query
	List(ctx context.Context, q *StoreQuery) ([]domain.StoredProduct, error)
	// PrefixSearch returns products whose field starts with prefix
	PrefixSearch(ctx context.Context, field, prefix string) ([]domain.StoredProduct, error)
	// Categories lists distinct categories, sorted
	Categories(ctx context.Context) ([]string, error)
}

// StoreQuery holds document store listing options. Empty fields impose no
// constraint; results default to newest first.
type StoreQuery struct {
	Category  string
	Brand     string
	IsActive  *bool
	SortBy    string
	SortOrder string
	Limit     int
}

// storeSortFields maps public sort names to document field names
var storeSortFields = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"price":     "price",
	"title":     "title",
	"stock":     "stock",
	"rating":    "rating.rate",
}

// Validate rejects unknown sort fields, orders and negative limits
func (q *StoreQuery) Validate() error {
	if q == nil {
		return nil
	}
	var violations []string
	if q.SortBy != "" {
		if _, ok := storeSortFields[q.SortBy]; !ok {
			violations = append(violations, "sortBy must be one of createdAt, updatedAt, price, title, stock, rating")
		}
	}
	switch strings.ToLower(q.SortOrder) {
	case "", SortOrderAsc, SortOrderDesc:
	default:
		violations = append(violations, "sortOrder must be asc or desc")
	}
	if q.Limit < 0 {
		violations = append(violations, "limit cannot be negative")
	}
	return domain.NewValidationError(violations)
}

// sort returns the document field and whether the order is descending.
// Without SortBy the order is createdAt descending; with SortBy it is
// ascending unless SortOrder says desc.
func (q *StoreQuery) sort() (string, bool) {
	if q == nil || q.SortBy == "" {
		return "createdAt", true
	}
	return storeSortFields[q.SortBy], strings.EqualFold(q.SortOrder, SortOrderDesc)
}

func validatePrefixField(field string) error {
	switch field {
	case PrefixFieldTitle, PrefixFieldCategory:
		return nil
	}
	return domain.NewValidationError([]string{"prefix search field must be title or category"})
}
