package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/query"
)

// MemoryProductRepository implements ProductRepository over an in-memory
// slice. Soft-deleted products stay in the slice for the life of the process.
type MemoryProductRepository struct {
	products []*domain.Product
	byID     map[int]*domain.Product
	nextID   int
	clock    Clock
	mu       sync.RWMutex
}

// NewMemoryProductRepository copies the seed and computes the next id once,
// as max seed id plus one
func NewMemoryProductRepository(seed []*domain.Product, clock Clock) (*MemoryProductRepository, error) {
	r := &MemoryProductRepository{
		products: make([]*domain.Product, 0, len(seed)),
		byID:     make(map[int]*domain.Product, len(seed)),
		nextID:   1,
		clock:    clock,
	}

	for _, p := range seed {
		if _, exists := r.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %d in seed", p.ID)
		}
		c := p.Clone()
		r.products = append(r.products, c)
		r.byID[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}

	return r, nil
}

// List runs the filter, sort and optional pagination over active products
func (r *MemoryProductRepository) List(ctx context.Context, filter *ProductFilter) (*ProductList, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := query.Filter(r.products, append([]query.Predicate[*domain.Product]{isActiveProduct}, filter.predicates()...)...)
	query.SortStable(matched, filter.comparator())

	if !filter.paginated() {
		return &ProductList{Products: toPublicProducts(matched)}, nil
	}

	page, err := query.Paginate(matched, *filter.Page, *filter.Limit)
	if err != nil {
		return nil, err
	}
	return &ProductList{
		Products:   toPublicProducts(page.Items),
		Pagination: &page.Pagination,
	}, nil
}

// GetByID retrieves an active product
func (r *MemoryProductRepository) GetByID(ctx context.Context, id int) (*domain.PublicProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.findActive(id)
	if err != nil {
		return nil, err
	}
	pub := p.ToPublic()
	return &pub, nil
}

// Create validates attrs and appends the product with the next id. The id
// is consumed only when the product is stored.
func (r *MemoryProductRepository) Create(ctx context.Context, attrs domain.ProductAttributes) (*domain.PublicProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := domain.NewProduct(r.nextID, attrs, r.clock.now())
	if err != nil {
		return nil, err
	}

	r.nextID++
	r.products = append(r.products, p)
	r.byID[p.ID] = p

	pub := p.ToPublic()
	return &pub, nil
}

// Update applies the patch to a copy, validates it and only then commits
func (r *MemoryProductRepository) Update(ctx context.Context, id int, patch *domain.ProductPatch) (*domain.PublicProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findActive(id)
	if err != nil {
		return nil, err
	}

	next := p.Clone()
	patch.Apply(&next.ProductAttributes, &next.IsActive)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.Touch(r.clock.now())

	*p = *next
	pub := p.ToPublic()
	return &pub, nil
}

// SoftDelete returns false when the product is absent or already inactive
func (r *MemoryProductRepository) SoftDelete(ctx context.Context, id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findActive(id)
	if err != nil {
		return false
	}
	p.IsActive = false
	p.Touch(r.clock.now())
	return true
}

// AdjustStock increments for a positive delta and decrements by |delta|
// otherwise. A failed decrement leaves stock unchanged.
func (r *MemoryProductRepository) AdjustStock(ctx context.Context, id int, delta int) (*domain.PublicProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findActive(id)
	if err != nil {
		return nil, err
	}

	if delta >= 0 {
		p.Stock += delta
	} else if err := p.DecrementStock(-delta); err != nil {
		return nil, err
	}
	p.Touch(r.clock.now())

	pub := p.ToPublic()
	return &pub, nil
}

// Search is List with only a search term
func (r *MemoryProductRepository) Search(ctx context.Context, term string) ([]domain.PublicProduct, error) {
	list, err := r.List(ctx, &ProductFilter{Search: term})
	if err != nil {
		return nil, err
	}
	return list.Products, nil
}

// ByCategory is List with only a category
func (r *MemoryProductRepository) ByCategory(ctx context.Context, category string) ([]domain.PublicProduct, error) {
	list, err := r.List(ctx, &ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}
	return list.Products, nil
}

// Statistics summarises active products
func (r *MemoryProductRepository) Statistics(ctx context.Context) domain.ProductStatistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.ProductStatistics{
		CategoriesCount: make(map[string]int),
		BrandsCount:     make(map[string]int),
	}

	var priceSum float64
	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		stats.TotalProducts++
		stats.TotalValue += p.InventoryValue()
		stats.TotalStock += p.Stock
		stats.CategoriesCount[p.Category]++
		if p.Brand != "" {
			stats.BrandsCount[p.Brand]++
		}
		if p.Stock == 0 {
			stats.OutOfStock++
		}
		priceSum += p.Price
	}

	if stats.TotalProducts > 0 {
		stats.AveragePrice = priceSum / float64(stats.TotalProducts)
	}
	return stats
}

// Categories lists distinct categories of active products, sorted
func (r *MemoryProductRepository) Categories(ctx context.Context) []string {
	return r.distinct(func(p *domain.Product) string { return p.Category })
}

// Brands lists distinct brands of active products, sorted
func (r *MemoryProductRepository) Brands(ctx context.Context) []string {
	return r.distinct(func(p *domain.Product) string { return p.Brand })
}

func (r *MemoryProductRepository) distinct(key func(*domain.Product) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range r.products {
		v := key(p)
		if !p.IsActive || v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	query.SortStable(out, query.ByText(func(s string) string { return s }))
	return out
}

// findActive must be called with the lock held
func (r *MemoryProductRepository) findActive(id int) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok || !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func isActiveProduct(p *domain.Product) bool {
	return p.IsActive
}

func toPublicProducts(products []*domain.Product) []domain.PublicProduct {
	out := make([]domain.PublicProduct, 0, len(products))
	for _, p := range products {
		out = append(out, p.ToPublic())
	}
	return out
}
