package service

import (
	"context"
	"strings"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ProductService defines the interface for catalog operations
type ProductService interface {
	// ListProducts lists active products with filters, sorting and optional pagination
	ListProducts(ctx context.Context, filter *dto.ProductListFilter) (*dto.ProductListResponse, error)
	// GetProduct retrieves an active product by id
	GetProduct(ctx context.Context, id int) (*domain.PublicProduct, error)
	// CreateProduct creates a new product
	CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.PublicProduct, error)
	// UpdateProduct applies a partial update
	UpdateProduct(ctx context.Context, id int, req *dto.UpdateProductRequest) (*domain.PublicProduct, error)
	// DeleteProduct soft-deletes a product
	DeleteProduct(ctx context.Context, id int) error
	// AdjustStock adds or removes stock units
	AdjustStock(ctx context.Context, id int, delta int) (*domain.PublicProduct, error)
	// SearchProducts matches title, description or tags
	SearchProducts(ctx context.Context, term string) ([]domain.PublicProduct, error)
	// ListByCategory lists active products of a category
	ListByCategory(ctx context.Context, category string) ([]domain.PublicProduct, error)
	// GetStatistics summarises the active catalog
	GetStatistics(ctx context.Context) domain.ProductStatistics
	// ListCategories lists distinct categories
	ListCategories(ctx context.Context) []string
	// ListBrands lists distinct brands
	ListBrands(ctx context.Context) []string
}

// productService implements ProductService
type productService struct {
	productRepo repository.ProductRepository
	publisher   EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(productRepo repository.ProductRepository, publisher EventPublisher) ProductService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &productService{
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// ListProducts lists active products
func (s *productService) ListProducts(ctx context.Context, filter *dto.ProductListFilter) (*dto.ProductListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.list")
	defer span.End()

	list, err := s.productRepo.List(ctx, filter.ToRepositoryFilter())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result_count", len(list.Products)))
	span.SetStatus(codes.Ok, "")
	return &dto.ProductListResponse{
		Products:   list.Products,
		Count:      len(list.Products),
		Pagination: list.Pagination,
	}, nil
}

// GetProduct retrieves an active product by id
func (s *productService) GetProduct(ctx context.Context, id int) (*domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.get")
	defer span.End()

	span.SetAttributes(attribute.Int("product_id", id))

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// CreateProduct creates a new product
func (s *productService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.create")
	defer span.End()

	product, err := s.productRepo.Create(ctx, req.ToAttributes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("product_id", product.ID))
	logger.Get().Info("product created",
		zap.Int("product_id", product.ID),
		zap.String("title", product.Title),
		zap.String("category", product.Category),
	)
	s.publishProduct(ctx, domain.EventProductCreated, product.ID, product)

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// UpdateProduct applies a partial update
func (s *productService) UpdateProduct(ctx context.Context, id int, req *dto.UpdateProductRequest) (*domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.update")
	defer span.End()

	span.SetAttributes(attribute.Int("product_id", id))

	product, err := s.productRepo.Update(ctx, id, req.ToPatch())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("product updated", zap.Int("product_id", id))
	s.publishProduct(ctx, domain.EventProductUpdated, id, product)

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// DeleteProduct soft-deletes a product
func (s *productService) DeleteProduct(ctx context.Context, id int) error {
	ctx, span := telemetry.StartSpan(ctx, "service.product.delete")
	defer span.End()

	span.SetAttributes(attribute.Int("product_id", id))

	if !s.productRepo.SoftDelete(ctx, id) {
		span.SetStatus(codes.Error, "product not found")
		return domain.ErrProductNotFound
	}

	logger.Get().Info("product deleted", zap.Int("product_id", id))
	s.publishProduct(ctx, domain.EventProductDeleted, id, nil)

	span.SetStatus(codes.Ok, "")
	return nil
}

// AdjustStock adds or removes stock units
func (s *productService) AdjustStock(ctx context.Context, id int, delta int) (*domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.adjust_stock")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product_id", id),
		attribute.Int("delta", delta),
	)

	product, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Get().Info("product stock adjusted",
		zap.Int("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", product.Stock),
	)
	s.publishProduct(ctx, domain.EventProductStockAdjusted, id, product)

	span.SetStatus(codes.Ok, "")
	return product, nil
}

// SearchProducts matches title, description or tags
func (s *productService) SearchProducts(ctx context.Context, term string) ([]domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.search")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		err := domain.NewValidationError([]string{"search term is required"})
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("term", term))

	products, err := s.productRepo.Search(ctx, term)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return products, nil
}

// ListByCategory lists active products of a category
func (s *productService) ListByCategory(ctx context.Context, category string) ([]domain.PublicProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.by_category")
	defer span.End()

	span.SetAttributes(attribute.String("category", category))

	products, err := s.productRepo.ByCategory(ctx, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return products, nil
}

// GetStatistics summarises the active catalog
func (s *productService) GetStatistics(ctx context.Context) domain.ProductStatistics {
	ctx, span := telemetry.StartSpan(ctx, "service.product.statistics")
	defer span.End()

	return s.productRepo.Statistics(ctx)
}

// ListCategories lists distinct categories
func (s *productService) ListCategories(ctx context.Context) []string {
	return s.productRepo.Categories(ctx)
}

// ListBrands lists distinct brands
func (s *productService) ListBrands(ctx context.Context) []string {
	return s.productRepo.Brands(ctx)
}

// publishProduct publishes after the mutation has been committed; a failure
// is logged and does not undo the mutation
func (s *productService) publishProduct(ctx context.Context, eventType domain.EventType, id int, product *domain.PublicProduct) {
	if err := s.publisher.PublishProductEvent(ctx, eventType, id, product); err != nil {
		logger.Get().Warn("failed to publish product event",
			zap.String("event_type", string(eventType)),
			zap.Int("product_id", id),
			zap.Error(err),
		)
	}
}
