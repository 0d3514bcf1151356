package di

import (
	"fmt"
	"time"

	"github.com/prohmpiriya/tienda-api/internal/domain"
	"github.com/prohmpiriya/tienda-api/internal/handler"
	"github.com/prohmpiriya/tienda-api/internal/repository"
	"github.com/prohmpiriya/tienda-api/internal/seed"
	"github.com/prohmpiriya/tienda-api/internal/service"
	"github.com/prohmpiriya/tienda-api/pkg/config"
	"github.com/prohmpiriya/tienda-api/pkg/redis"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	Redis     *redis.Client
	Publisher service.EventPublisher

	// Repositories
	ProductRepo  *repository.MemoryProductRepository
	UserRepo     *repository.MemoryUserRepository
	ProductStore repository.ProductStore

	// Services
	TokenService   service.TokenService
	ProductService service.ProductService
	UserService    service.UserService
	AuthService    service.AuthService
	StoreService   service.StoreService

	// Handlers
	HealthHandler  *handler.HealthHandler
	ProductHandler *handler.ProductHandler
	UserHandler    *handler.UserHandler
	AuthHandler    *handler.AuthHandler
	StoreHandler   *handler.StoreHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	Redis  *redis.Client
	// Publisher defaults to a no-op publisher
	Publisher service.EventPublisher
	// Store is nil when no document store driver is configured
	Store *StoreConnection
	// Clock defaults to time.Now
	Clock func() time.Time
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, fmt.Errorf("container config is required")
	}
	appCfg := cfg.Config

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	c := &Container{
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
	}
	if c.Publisher == nil {
		c.Publisher = service.NewNoOpEventPublisher()
	}

	hasher := domain.NewBcryptHasher(appCfg.Auth.BcryptCost)
	policy := domain.PasswordPolicy{
		MinLength:        appCfg.Auth.PasswordMinLength,
		RequireUppercase: appCfg.Auth.RequireUppercase,
		RequireLowercase: appCfg.Auth.RequireLowercase,
		RequireNumbers:   appCfg.Auth.RequireNumbers,
		RequireSpecial:   appCfg.Auth.RequireSpecialChars,
	}

	// Initialize repositories from the embedded seed
	products, err := seed.Products(clock())
	if err != nil {
		return nil, fmt.Errorf("failed to load product seed: %w", err)
	}
	c.ProductRepo, err = repository.NewMemoryProductRepository(products, clock)
	if err != nil {
		return nil, err
	}

	directory, err := seed.Users(hasher)
	if err != nil {
		return nil, fmt.Errorf("failed to load user seed: %w", err)
	}
	c.UserRepo, err = repository.NewMemoryUserRepository(directory.Users, &repository.UserRepositoryConfig{
		Roles:            directory.Roles,
		Hasher:           hasher,
		PasswordPolicy:   policy,
		MaxLoginAttempts: appCfg.Auth.MaxLoginAttempts,
		Clock:            clock,
	})
	if err != nil {
		return nil, err
	}

	// Initialize services
	c.TokenService, err = service.NewTokenService(&service.TokenServiceConfig{
		Secret: appCfg.JWT.Secret,
		TTL:    appCfg.JWT.AccessTokenTTL,
		Issuer: appCfg.JWT.Issuer,
		Now:    clock,
	})
	if err != nil {
		return nil, err
	}
	c.ProductService = service.NewProductService(c.ProductRepo, c.Publisher)
	c.UserService = service.NewUserService(c.UserRepo, c.Publisher)
	c.AuthService = service.NewAuthService(c.UserRepo, c.TokenService, c.Publisher, &service.AuthServiceConfig{
		Hasher:           hasher,
		PasswordPolicy:   policy,
		MaxLoginAttempts: c.UserRepo.MaxLoginAttempts(),
	})

	// Initialize handlers
	components := map[string]handler.HealthChecker{}
	if c.Redis != nil {
		components["redis"] = c.Redis
	}
	if cfg.Store != nil {
		c.ProductStore = cfg.Store.Store
		c.StoreService = service.NewStoreService(c.ProductStore)
		c.StoreHandler = handler.NewStoreHandler(c.StoreService)
		if cfg.Store.Checker != nil {
			components["store"] = cfg.Store.Checker
		}
	}

	c.HealthHandler = handler.NewHealthHandler(appCfg.App.Version, components)
	c.ProductHandler = handler.NewProductHandler(c.ProductService)
	c.UserHandler = handler.NewUserHandler(c.UserService)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.UserService)

	return c, nil
}
