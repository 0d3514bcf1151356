package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/dto"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/internal/seed"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newTestProductService(t *testing.T) (ProductService, *mockEventPublisher) {
	t.Helper()
	products, err := seed.Products(baseTime)
	require.NoError(t, err)
	repo, err := repository.NewMemoryProductRepository(products, func() time.Time { return baseTime })
	require.NoError(t, err)

	publisher := newMockEventPublisher()
	return NewProductService(repo, publisher), publisher
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, publisher := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &dto.CreateProductRequest{
		Title:    "  Desk Lamp ",
		Price:    19.5,
		Category: "home",
		Stock:    3,
		Tags:     []string{"light"},
	})
	require.NoError(t, err)

	assert.Equal(t, 21, product.ID)
	assert.Equal(t, "Desk Lamp", product.Title)
	assert.True(t, product.IsActive)
	assert.Equal(t, []recordedEvent{{Type: domain.EventProductCreated, ID: 21}}, publisher.published())
}

func TestProductService_CreateProduct_ValidationReportsAll(t *testing.T) {
	svc, publisher := newTestProductService(t)

	_, err := svc.CreateProduct(context.Background(), &dto.CreateProductRequest{Price: -1, Stock: -2})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.ElementsMatch(t, []string{
		"title is required",
		"price must be greater than 0",
		"category is required",
		"stock cannot be negative",
	}, domain.Violations(err))
	assert.Empty(t, publisher.published())
}

func TestProductService_CreateProduct_PublishFailureKeepsProduct(t *testing.T) {
	svc, publisher := newTestProductService(t)
	publisher.err = errors.New("broker down")
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &dto.CreateProductRequest{Title: "Mug", Price: 5, Category: "home"})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Title)
}

func TestProductService_ListProducts(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		filter    *dto.ProductListFilter
		wantCount int
		wantPages int
		wantErr   bool
	}{
		{"nil filter lists all", nil, 20, 0, false},
		{"category", &dto.ProductListFilter{Category: "ELECTRONICS"}, 7, 0, false},
		{"paginated", &dto.ProductListFilter{Page: ptr(2), Limit: ptr(8)}, 8, 3, false},
		{"beyond last page", &dto.ProductListFilter{Page: ptr(9), Limit: ptr(8)}, 0, 3, false},
		{"unknown sort", &dto.ProductListFilter{SortBy: "cheapest"}, 0, 0, true},
		{"zero limit", &dto.ProductListFilter{Page: ptr(1), Limit: ptr(0)}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.ListProducts(ctx, tt.filter)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.Len(t, resp.Products, tt.wantCount)
			if tt.wantPages == 0 {
				assert.Nil(t, resp.Pagination)
			} else {
				require.NotNil(t, resp.Pagination)
				assert.Equal(t, tt.wantPages, resp.Pagination.TotalPages)
				assert.Equal(t, 20, resp.Pagination.Total)
			}
		})
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	svc, publisher := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.UpdateProduct(ctx, 1, &dto.UpdateProductRequest{Price: ptr(999.0)})
	require.NoError(t, err)
	assert.Equal(t, 999.0, product.Price)
	assert.Equal(t, 1, publisher.count(domain.EventProductUpdated))

	_, err = svc.UpdateProduct(ctx, 1, &dto.UpdateProductRequest{Price: ptr(0.0)})
	assert.True(t, domain.IsValidationError(err))

	_, err = svc.UpdateProduct(ctx, 404, &dto.UpdateProductRequest{Price: ptr(1.0)})
	assert.True(t, domain.IsNotFoundError(err))
	assert.Equal(t, 1, publisher.count(domain.EventProductUpdated))
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc, publisher := newTestProductService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteProduct(ctx, 3))
	assert.Equal(t, []recordedEvent{{Type: domain.EventProductDeleted, ID: 3}}, publisher.published())

	_, err := svc.GetProduct(ctx, 3)
	assert.True(t, domain.IsNotFoundError(err))

	err = svc.DeleteProduct(ctx, 3)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestProductService_AdjustStock(t *testing.T) {
	svc, publisher := newTestProductService(t)
	ctx := context.Background()

	product, err := svc.AdjustStock(ctx, 2, -2)
	require.NoError(t, err)
	assert.Equal(t, 30, product.Stock)

	_, err = svc.AdjustStock(ctx, 2, -31)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	got, err := svc.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Stock)
	assert.Equal(t, 1, publisher.count(domain.EventProductStockAdjusted))
}

func TestProductService_SearchProducts(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	products, err := svc.SearchProducts(ctx, " BLUETOOTH ")
	require.NoError(t, err)
	require.NotEmpty(t, products)
	ids := make([]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	assert.Contains(t, ids, 3)

	_, err = svc.SearchProducts(ctx, "   ")
	assert.True(t, domain.IsValidationError(err))
}

func TestProductService_Lookups(t *testing.T) {
	svc, _ := newTestProductService(t)
	ctx := context.Background()

	electronics, err := svc.ListByCategory(ctx, "electronics")
	require.NoError(t, err)
	assert.Len(t, electronics, 7)

	stats := svc.GetStatistics(ctx)
	assert.Equal(t, 20, stats.TotalProducts)
	assert.Equal(t, 7, stats.CategoriesCount["electronics"])

	assert.Contains(t, svc.ListCategories(ctx), "electronics")
	assert.Contains(t, svc.ListBrands(ctx), "TechPro")
}
