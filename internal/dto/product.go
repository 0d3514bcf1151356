package dto

import (
	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/query"
	"github.com/prohmpiriya/tienda-api/internal/repository"
)

// CreateProductRequest represents the request to create a catalog product.
// Field rules are checked by the domain so every violation is reported.
type CreateProductRequest struct {
	Title       string         `json:"title" binding:"max=255"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Category    string         `json:"category" binding:"max=100"`
	Image       string         `json:"image"`
	Rating      *domain.Rating `json:"rating"`
	Stock       int            `json:"stock"`
	Tags        []string       `json:"tags"`
	Brand       string         `json:"brand"`
}

// ToAttributes converts the request into product attributes
func (r *CreateProductRequest) ToAttributes() domain.ProductAttributes {
	attrs := domain.ProductAttributes{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Stock:       r.Stock,
		Tags:        r.Tags,
		Brand:       r.Brand,
	}
	if r.Rating != nil {
		attrs.Rating = *r.Rating
	}
	return attrs
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=255"`
	Price       *float64  `json:"price"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	Image       *string   `json:"image"`
	Stock       *int      `json:"stock"`
	Tags        *[]string `json:"tags"`
	Brand       *string   `json:"brand"`
	IsActive    *bool     `json:"isActive"`
}

// ToPatch converts the request into a domain patch
func (r *UpdateProductRequest) ToPatch() *domain.ProductPatch {
	return &domain.ProductPatch{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Stock:       r.Stock,
		Tags:        r.Tags,
		Brand:       r.Brand,
		IsActive:    r.IsActive,
	}
}

// AdjustStockRequest adds (or with a negative value removes) stock units
type AdjustStockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ProductListFilter represents query parameters for listing products
type ProductListFilter struct {
	Category string   `form:"category"`
	Brand    string   `form:"brand"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	InStock  bool     `form:"inStock"`
	Search   string   `form:"search"`
	SortBy   string   `form:"sortBy"`
	Page     *int     `form:"page"`
	Limit    *int     `form:"limit"`
}

// ToRepositoryFilter converts the query parameters into a repository filter
func (f *ProductListFilter) ToRepositoryFilter() *repository.ProductFilter {
	if f == nil {
		return nil
	}
	return &repository.ProductFilter{
		Category: f.Category,
		Brand:    f.Brand,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		InStock:  f.InStock,
		Search:   f.Search,
		SortBy:   f.SortBy,
		Page:     f.Page,
		Limit:    f.Limit,
	}
}

// ProductListResponse represents a product listing
type ProductListResponse struct {
	Products   []domain.PublicProduct `json:"products"`
	Count      int                    `json:"count"`
	Pagination *query.Pagination      `json:"pagination,omitempty"`
}

// SearchProductsRequest represents the search query string
type SearchProductsRequest struct {
	Query string `form:"q" binding:"required"`
}
