package dto

import (
	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/repository"
)

// StoreListFilter represents query parameters for listing document store products
type StoreListFilter struct {
	Category  string `form:"category"`
	Brand     string `form:"brand"`
	IsActive  *bool  `form:"isActive"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ToStoreQuery converts the query parameters into a store query
func (f *StoreListFilter) ToStoreQuery() *repository.StoreQuery {
	if f == nil {
		return &repository.StoreQuery{}
	}
	return &repository.StoreQuery{
		Category:  f.Category,
		Brand:     f.Brand,
		IsActive:  f.IsActive,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
		Limit:     f.Limit,
	}
}

// StoreListResponse represents a document store listing
type StoreListResponse struct {
	Products []domain.StoredProduct `json:"products"`
	Count    int                    `json:"count"`
}

// InitializeStoreResponse reports the sample products created
type InitializeStoreResponse struct {
	Created  int                    `json:"created"`
	Products []domain.StoredProduct `json:"products"`
}
