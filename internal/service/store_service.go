package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/internal/seed"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// StoreService defines the interface for document store operations
type StoreService interface {
	// ListProducts lists products using the store's native query
	ListProducts(ctx context.Context, filter *dto.StoreListFilter) (*dto.StoreListResponse, error)
	// GetProduct retrieves a product by id
	GetProduct(ctx context.Context, id string) (*domain.StoredProduct, error)
	// CreateProduct creates a product
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.StoredProduct, error)
	// UpdateProduct applies a partial update
	UpdateProduct(ctx context.Context, id string, req *dto.UpdateProductRequest) (*domain.StoredProduct, error)
	// DeleteProduct removes a product
	DeleteProduct(ctx context.Context, id string) error
	// Search matches a prefix of the title or the category
	Search(ctx context.Context, term string) (*dto.StoreListResponse, error)
	// ListCategories lists distinct categories
	ListCategories(ctx context.Context) ([]string, error)
	// Initialize loads the sample products
	Initialize(ctx context.Context) (*dto.InitializeStoreResponse, error)
}

// storeService implements StoreService
type storeService struct {
	store   repository.ProductStore
	samples func() ([]domain.ProductAttributes, error)
}

// NewStoreService creates a new StoreService
func NewStoreService(store repository.ProductStore) StoreService {
	return &storeService{
		store:   store,
		samples: seed.StoreSamples,
	}
}

// ListProducts lists products
func (s *storeService) ListProducts(ctx context.Context, filter *dto.StoreListFilter) (*dto.StoreListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.list")
	defer span.End()

	products, err := s.store.List(ctx, filter.ToStoreQuery())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.StoreListResponse{Products: products, Count: len(products)}, nil
}

// GetProduct retrieves a product by id
func (s *storeService) GetProduct(ctx context.Context, id string) (*domain.StoredProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.get")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	product, err := s.store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// CreateProduct creates a product
func (s *storeService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.StoredProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.create")
	defer span.End()

	product, err := s.store.Create(ctx, req.ToAttributes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("store product created",
		zap.String("product_id", product.ID),
		zap.String("title", product.Title),
	)
	span.SetAttributes(attribute.String("product_id", product.ID))
	span.SetStatus(codes.Ok, "")
	return product, nil
}

// UpdateProduct applies a partial update
func (s *storeService) UpdateProduct(ctx context.Context, id string, req *dto.UpdateProductRequest) (*domain.StoredProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.update")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	product, err := s.store.Update(ctx, id, req.ToPatch())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("store product updated", zap.String("product_id", id))
	span.SetStatus(codes.Ok, "")
	return product, nil
}

// DeleteProduct removes a product
func (s *storeService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.store.delete")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", id))

	if err := s.store.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Get().Info("store product deleted", zap.String("product_id", id))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Search runs a prefix search on title and on category and merges the
// results, title matches first, without duplicates
func (s *storeService) Search(ctx context.Context, term string) (*dto.StoreListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.search")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		err := domain.NewValidationError([]string{"search term is required"})
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("term", term))

	seen := make(map[string]bool)
	merged := make([]domain.StoredProduct, 0)
	for _, field := range []string{repository.PrefixFieldTitle, repository.PrefixFieldCategory} {
		products, err := s.store.PrefixSearch(ctx, field, term)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		for _, p := range products {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(merged)))
	span.SetStatus(codes.Ok, "")
	return &dto.StoreListResponse{Products: merged, Count: len(merged)}, nil
}

// ListCategories lists distinct categories
func (s *storeService) ListCategories(ctx context.Context) ([]string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.categories")
	defer span.End()

	categories, err := s.store.Categories(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return categories, nil
}

// Initialize loads the sample products. It stops at the first failure and
// reports what was created before it.
func (s *storeService) Initialize(ctx context.Context) (*dto.InitializeStoreResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.store.initialize")
	defer span.End()

	samples, err := s.samples()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to load store samples: %w", err)
	}

	resp := &dto.InitializeStoreResponse{Products: make([]domain.StoredProduct, 0, len(samples))}
	for _, attrs := range samples {
		product, err := s.store.Create(ctx, attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return resp, fmt.Errorf("failed to create sample %q: %w", attrs.Title, err)
		}
		resp.Products = append(resp.Products, *product)
		resp.Created++
	}

	logger.Get().Info("store initialized with sample products", zap.Int("created", resp.Created))
	span.SetAttributes(attribute.Int("created", resp.Created))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}
