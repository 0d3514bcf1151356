// Package seed loads the embedded demo catalog, user directory and document
// store samples.
package seed

import (
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prohmpiriya/tienda-api/internal/domain"
)

//go:embed data/*.yaml
var files embed.FS

type productRecord struct {
	domain.ProductAttributes `yaml:",inline"`

	ID        int        `yaml:"id"`
	IsActive  *bool      `yaml:"isActive"`
	CreatedAt *time.Time `yaml:"createdAt"`
}

type userRecord struct {
	ID            int                 `yaml:"id"`
	Username      string              `yaml:"username"`
	Email         string              `yaml:"email"`
	Password      string              `yaml:"password"`
	Role          string              `yaml:"role"`
	FirstName     string              `yaml:"firstName"`
	LastName      string              `yaml:"lastName"`
	IsActive      bool                `yaml:"isActive"`
	IsLocked      bool                `yaml:"isLocked"`
	LoginAttempts int                 `yaml:"loginAttempts"`
	Preferences   *domain.Preferences `yaml:"preferences"`
	CreatedAt     time.Time           `yaml:"createdAt"`
	UpdatedAt     time.Time           `yaml:"updatedAt"`
	LastLogin     *time.Time          `yaml:"lastLogin"`
}

// Directory is the seeded user directory
type Directory struct {
	Users []*domain.User
	Roles domain.RoleTable
}

// Products returns the seed catalog. Records without a creation time are
// stamped with now.
func Products(now time.Time) ([]*domain.Product, error) {
	var doc struct {
		Products []productRecord `yaml:"products"`
	}
	if err := decode("data/products.yaml", &doc); err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(doc.Products))
	for _, rec := range doc.Products {
		created := now
		if rec.CreatedAt != nil {
			created = *rec.CreatedAt
		}
		p, err := domain.NewProduct(rec.ID, rec.ProductAttributes, created)
		if err != nil {
			return nil, fmt.Errorf("seed product %d: %w", rec.ID, err)
		}
		if rec.IsActive != nil {
			p.IsActive = *rec.IsActive
		}
		products = append(products, p)
	}
	return products, nil
}

// Users returns the seed directory with every password hashed by hasher
func Users(hasher domain.PasswordHasher) (*Directory, error) {
	var doc struct {
		Users []userRecord     `yaml:"users"`
		Roles domain.RoleTable `yaml:"roles"`
	}
	if err := decode("data/users.yaml", &doc); err != nil {
		return nil, err
	}

	roles := doc.Roles
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}

	users := make([]*domain.User, 0, len(doc.Users))
	for _, rec := range doc.Users {
		hash, err := hasher.Hash(rec.Password)
		if err != nil {
			return nil, fmt.Errorf("seed user %d: failed to hash password: %w", rec.ID, err)
		}

		u := &domain.User{
			ID:            rec.ID,
			Username:      rec.Username,
			Email:         rec.Email,
			PasswordHash:  hash,
			Role:          rec.Role,
			FirstName:     rec.FirstName,
			LastName:      rec.LastName,
			IsActive:      rec.IsActive,
			IsLocked:      rec.IsLocked,
			LoginAttempts: rec.LoginAttempts,
			Preferences:   domain.DefaultPreferences(),
			CreatedAt:     rec.CreatedAt,
			UpdatedAt:     rec.UpdatedAt,
			LastLogin:     rec.LastLogin,
		}
		if rec.Preferences != nil {
			u.Preferences = *rec.Preferences
		}
		if err := domain.NewValidationError(u.ValidateProfile(roles)); err != nil {
			return nil, fmt.Errorf("seed user %d: %w", rec.ID, err)
		}
		users = append(users, u)
	}

	return &Directory{Users: users, Roles: roles}, nil
}

// StoreSamples returns the products used to initialize a document store
func StoreSamples() ([]domain.ProductAttributes, error) {
	var doc struct {
		Products []domain.ProductAttributes `yaml:"products"`
	}
	if err := decode("data/store_samples.yaml", &doc); err != nil {
		return nil, err
	}
	for i := range doc.Products {
		if err := doc.Products[i].Validate(); err != nil {
			return nil, fmt.Errorf("store sample %q: %w", doc.Products[i].Title, err)
		}
	}
	return doc.Products, nil
}

func decode(name string, out any) error {
	b, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}
