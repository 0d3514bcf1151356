package domain

import (
	"strings"
	"time"
)

// StoredProduct is a product held by a document store. Its id is an opaque
// string chosen by the store, and the store stamps both timestamps.
type StoredProduct struct {
	ID string `json:"id"`
	ProductAttributes
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewStoredProductAttributes validates attrs for insertion into a store
func NewStoredProductAttributes(attrs ProductAttributes) (ProductAttributes, error) {
	a := attrs.clone()
	a.Title = strings.TrimSpace(a.Title)
	a.Category = strings.TrimSpace(a.Category)
	if err := a.Validate(); err != nil {
		return ProductAttributes{}, err
	}
	return a, nil
}

// ApplyPatch returns a validated copy of s with the patch applied. It does
// not touch the timestamps.
func (s *StoredProduct) ApplyPatch(patch *ProductPatch) (*StoredProduct, error) {
	next := *s
	next.ProductAttributes = s.ProductAttributes.clone()
	patch.Apply(&next.ProductAttributes, &next.IsActive)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}
