package repository

import (
	"math"
	"strings"
	"time"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/query"
)

// Product sort keys
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNameAsc   = "name_asc"
	SortNameDesc  = "name_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
)

// User sort keys
const (
	SortUsername  = "username"
	SortEmail     = "email"
	SortRole      = "role"
	SortCreated   = "created"
	SortLastLogin = "lastLogin"
)

// ProductFilter holds the optional listing parameters. Zero values and nil
// pointers impose no constraint.
type ProductFilter struct {
	Category string
	Brand    string
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
	Search   string
	SortBy   string
	Page     *int
	Limit    *int
}

// Validate rejects values the query engine cannot compare
func (f *ProductFilter) Validate() error {
	if f == nil {
		return nil
	}
	var violations []string
	if f.MinPrice != nil && (math.IsNaN(*f.MinPrice) || *f.MinPrice < 0) {
		violations = append(violations, "minPrice must be a non-negative number")
	}
	if f.MaxPrice != nil && (math.IsNaN(*f.MaxPrice) || *f.MaxPrice < 0) {
		violations = append(violations, "maxPrice must be a non-negative number")
	}
	if f.SortBy != "" && productSorts[f.SortBy] == nil {
		violations = append(violations, "sortBy must be one of price_asc, price_desc, name_asc, name_desc, rating, newest")
	}
	if f.Page != nil && *f.Page < 1 {
		violations = append(violations, "page must be at least 1")
	}
	if f.Limit != nil && *f.Limit < 1 {
		violations = append(violations, "limit must be at least 1")
	}
	return domain.NewValidationError(violations)
}

func (f *ProductFilter) paginated() bool {
	return f != nil && f.Page != nil && f.Limit != nil
}

func (f *ProductFilter) predicates() []query.Predicate[*domain.Product] {
	if f == nil {
		return nil
	}
	var preds []query.Predicate[*domain.Product]

	if f.Category != "" {
		preds = append(preds, func(p *domain.Product) bool {
			return strings.EqualFold(p.Category, f.Category)
		})
	}
	if f.Brand != "" {
		preds = append(preds, func(p *domain.Product) bool {
			return p.Brand != "" && strings.EqualFold(p.Brand, f.Brand)
		})
	}
	if f.MinPrice != nil {
		lo := *f.MinPrice
		preds = append(preds, func(p *domain.Product) bool { return p.Price >= lo })
	}
	if f.MaxPrice != nil {
		hi := *f.MaxPrice
		preds = append(preds, func(p *domain.Product) bool { return p.Price <= hi })
	}
	if f.InStock {
		preds = append(preds, func(p *domain.Product) bool { return p.Stock > 0 })
	}
	if f.Search != "" {
		preds = append(preds, func(p *domain.Product) bool { return matchesProductSearch(p, f.Search) })
	}
	return preds
}

func matchesProductSearch(p *domain.Product, term string) bool {
	if query.ContainsFold(p.Title, term) || query.ContainsFold(p.Description, term) {
		return true
	}
	for _, tag := range p.Tags {
		if query.ContainsFold(tag, term) {
			return true
		}
	}
	return false
}

var productSorts = map[string]func() query.Comparator[*domain.Product]{
	SortPriceAsc: func() query.Comparator[*domain.Product] {
		return query.By(func(p *domain.Product) float64 { return p.Price })
	},
	SortPriceDesc: func() query.Comparator[*domain.Product] {
		return query.Reverse(query.By(func(p *domain.Product) float64 { return p.Price }))
	},
	SortNameAsc: func() query.Comparator[*domain.Product] {
		return query.ByText(func(p *domain.Product) string { return p.Title })
	},
	SortNameDesc: func() query.Comparator[*domain.Product] {
		return query.Reverse(query.ByText(func(p *domain.Product) string { return p.Title }))
	},
	SortRating: func() query.Comparator[*domain.Product] {
		return query.Reverse(query.By(func(p *domain.Product) float64 { return p.Rating.Rate }))
	},
	SortNewest: func() query.Comparator[*domain.Product] {
		return query.NewestFirst(func(p *domain.Product) time.Time { return p.CreatedAt })
	},
}

func (f *ProductFilter) comparator() query.Comparator[*domain.Product] {
	if f == nil || f.SortBy == "" {
		return nil
	}
	return productSorts[f.SortBy]()
}

// UserFilter holds the optional user listing parameters
type UserFilter struct {
	Role     string
	IsActive *bool
	IsLocked *bool
	Search   string
	SortBy   string
}

// Validate rejects unknown sort keys
func (f *UserFilter) Validate() error {
	if f == nil || f.SortBy == "" || userSorts[f.SortBy] != nil {
		return nil
	}
	return domain.NewValidationError([]string{"sortBy must be one of username, email, role, created, lastLogin"})
}

func (f *UserFilter) predicates() []query.Predicate[*domain.User] {
	if f == nil {
		return nil
	}
	var preds []query.Predicate[*domain.User]

	if f.Role != "" {
		preds = append(preds, func(u *domain.User) bool { return u.Role == f.Role })
	}
	if f.IsActive != nil {
		want := *f.IsActive
		preds = append(preds, func(u *domain.User) bool { return u.IsActive == want })
	}
	if f.IsLocked != nil {
		want := *f.IsLocked
		preds = append(preds, func(u *domain.User) bool { return u.IsLocked == want })
	}
	if f.Search != "" {
		preds = append(preds, func(u *domain.User) bool {
			return query.ContainsFold(u.Username, f.Search) ||
				query.ContainsFold(u.Email, f.Search) ||
				query.ContainsFold(u.FirstName, f.Search) ||
				query.ContainsFold(u.LastName, f.Search)
		})
	}
	return preds
}

var userSorts = map[string]func() query.Comparator[*domain.User]{
	SortUsername: func() query.Comparator[*domain.User] {
		return query.ByText(func(u *domain.User) string { return u.Username })
	},
	SortEmail: func() query.Comparator[*domain.User] {
		return query.ByText(func(u *domain.User) string { return u.Email })
	},
	SortRole: func() query.Comparator[*domain.User] {
		return query.ByText(func(u *domain.User) string { return u.Role })
	},
	SortCreated: func() query.Comparator[*domain.User] {
		return query.NewestFirst(func(u *domain.User) time.Time { return u.CreatedAt })
	},
	SortLastLogin: func() query.Comparator[*domain.User] {
		return query.NewestFirstNullsLast(func(u *domain.User) *time.Time { return u.LastLogin })
	},
}

func (f *UserFilter) comparator() query.Comparator[*domain.User] {
	if f == nil || f.SortBy == "" {
		return nil
	}
	return userSorts[f.SortBy]()
}
