package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Rating is the aggregated customer rating of a product
type Rating struct {
	Rate  float64 `json:"rate" yaml:"rate" bson:"rate"`
	Count int     `json:"count" yaml:"count" bson:"count"`
}

// ProductAttributes are the caller-editable fields shared by catalog
// products and document-store products
type ProductAttributes struct {
	Title       string   `json:"title" yaml:"title" bson:"title"`
	Price       float64  `json:"price" yaml:"price" bson:"price"`
	Description string   `json:"description" yaml:"description" bson:"description"`
	Category    string   `json:"category" yaml:"category" bson:"category"`
	Image       string   `json:"image" yaml:"image" bson:"image"`
	Rating      Rating   `json:"rating" yaml:"rating" bson:"rating"`
	Stock       int      `json:"stock" yaml:"stock" bson:"stock"`
	Tags        []string `json:"tags" yaml:"tags" bson:"tags"`
	Brand       string   `json:"brand,omitempty" yaml:"brand" bson:"brand,omitempty"`
}

// Validate checks every attribute rule and reports all violations
func (a *ProductAttributes) Validate() error {
	var violations []string

	if strings.TrimSpace(a.Title) == "" {
		violations = append(violations, "title is required")
	}
	if !(a.Price > 0) || math.IsInf(a.Price, 0) {
		violations = append(violations, "price must be greater than 0")
	}
	if strings.TrimSpace(a.Category) == "" {
		violations = append(violations, "category is required")
	}
	if a.Stock < 0 {
		violations = append(violations, "stock cannot be negative")
	}
	if a.Rating.Rate < 0 || a.Rating.Rate > 5 || math.IsNaN(a.Rating.Rate) {
		violations = append(violations, "rating rate must be between 0 and 5")
	}
	if a.Rating.Count < 0 {
		violations = append(violations, "rating count cannot be negative")
	}

	return NewValidationError(violations)
}

func (a ProductAttributes) clone() ProductAttributes {
	a.Tags = slices.Clone(a.Tags)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a
}

// Product is the internal catalog record
type Product struct {
	ID int
	ProductAttributes
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProduct is the read-only projection handed to callers
type PublicProduct struct {
	ID int `json:"id"`
	ProductAttributes
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct builds an active product stamped with now and validates it
func NewProduct(id int, attrs ProductAttributes, now time.Time) (*Product, error) {
	p := &Product{
		ID:                id,
		ProductAttributes: attrs.clone(),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ToPublic converts the internal record into its public projection
func (p *Product) ToPublic() PublicProduct {
	return PublicProduct{
		ID:                p.ID,
		ProductAttributes: p.ProductAttributes.clone(),
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// Clone returns a deep copy
func (p *Product) Clone() *Product {
	c := *p
	c.ProductAttributes = p.ProductAttributes.clone()
	return &c
}

// InventoryValue is price times units in stock
func (p *Product) InventoryValue() float64 {
	return p.Price * float64(p.Stock)
}

// Touch refreshes UpdatedAt, keeping it strictly increasing even when the
// clock has not advanced since the previous write
func (p *Product) Touch(now time.Time) {
	p.UpdatedAt = nextTimestamp(p.UpdatedAt, now)
}

// DecrementStock removes qty units or fails leaving stock unchanged
func (p *Product) DecrementStock(qty int) error {
	if qty > p.Stock {
		return &KindError{
			Kind: ErrInsufficientStock,
			Msg:  fmt.Sprintf("insufficient stock: available %d, requested %d", p.Stock, qty),
		}
	}
	p.Stock -= qty
	return nil
}

// ProductPatch carries a partial update. Only these fields can change.
type ProductPatch struct {
	Title       *string   `json:"title,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Stock       *int      `json:"stock,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (u *ProductPatch) IsEmpty() bool {
	return u == nil || (u.Title == nil && u.Price == nil && u.Description == nil && u.Category == nil &&
		u.Image == nil && u.Stock == nil && u.Tags == nil && u.Brand == nil && u.IsActive == nil)
}

// Apply writes the patch onto attrs and isActive
func (u *ProductPatch) Apply(attrs *ProductAttributes, isActive *bool) {
	if u == nil {
		return
	}
	if u.Title != nil {
		attrs.Title = strings.TrimSpace(*u.Title)
	}
	if u.Price != nil {
		attrs.Price = *u.Price
	}
	if u.Description != nil {
		attrs.Description = *u.Description
	}
	if u.Category != nil {
		attrs.Category = strings.TrimSpace(*u.Category)
	}
	if u.Image != nil {
		attrs.Image = *u.Image
	}
	if u.Stock != nil {
		attrs.Stock = *u.Stock
	}
	if u.Tags != nil {
		attrs.Tags = slices.Clone(*u.Tags)
	}
	if u.Brand != nil {
		attrs.Brand = *u.Brand
	}
	if u.IsActive != nil && isActive != nil {
		*isActive = *u.IsActive
	}
}

// ProductStatistics summarises the active catalog
type ProductStatistics struct {
	TotalProducts   int            `json:"totalProducts"`
	TotalValue      float64        `json:"totalValue"`
	TotalStock      int            `json:"totalStock"`
	CategoriesCount map[string]int `json:"categoriesCount"`
	BrandsCount     map[string]int `json:"brandsCount"`
	AveragePrice    float64        `json:"averagePrice"`
	OutOfStock      int            `json:"outOfStock"`
}

func nextTimestamp(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
