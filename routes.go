package main

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/tienda-api/internal/di"
	authmw "github.com/prohmpiriya/tienda-api/internal/middleware"
	"github.com/prohmpiriya/tienda-api/pkg/config"
	"github.com/prohmpiriya/tienda-api/pkg/logger"
	"github.com/prohmpiriya/tienda-api/pkg/middleware"
	"github.com/prohmpiriya/tienda-api/pkg/telemetry"
)

// setupRouter builds the Gin engine with every route. The returned limiter
// must be stopped on shutdown.
func setupRouter(cfg *config.Config, container *di.Container) (*gin.Engine, *middleware.RateLimiter) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Get()))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	router.Use(middleware.CORSWithConfig(corsCfg))

	// Add OpenTelemetry tracing middleware if enabled
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName, "/health", "/ready"))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	loginLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.Auth.LoginRatePerMinute,
		Burst:             cfg.Auth.LoginBurst,
		EntryTTL:          10 * time.Minute,
		CleanupInterval:   time.Minute,
	})

	requireAuth := authmw.Auth(container.AuthService)
	can := func(permission string) gin.HandlerFunc {
		return authmw.RequirePermission(container.UserService, permission)
	}

	// Replays repeated creates when Redis is available
	var idempotent gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Idempotency.Enabled && container.Redis != nil {
		idemCfg := middleware.DefaultIdempotencyConfig(container.Redis)
		idemCfg.TTL = cfg.Idempotency.TTL
		idempotent = middleware.Idempotency(idemCfg)
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(loginLimiter), container.AuthHandler.Login)
			auth.GET("/config", container.AuthHandler.Config)

			// Lists every account, only exposed while developing
			if cfg.IsDevelopment() {
				auth.GET("/users", container.AuthHandler.Users)
			}

			protected := auth.Group("")
			protected.Use(requireAuth)
			{
				protected.GET("/verify", container.AuthHandler.Verify)
				protected.GET("/me", container.AuthHandler.Me)
				protected.POST("/change-password", container.AuthHandler.ChangePassword)
			}
		}

		products := v1.Group("/products")
		{
			// Static paths are registered before /:id
			products.GET("", container.ProductHandler.List)
			products.GET("/search", container.ProductHandler.Search)
			products.GET("/categories", container.ProductHandler.Categories)
			products.GET("/brands", container.ProductHandler.Brands)
			products.GET("/statistics", container.ProductHandler.Statistics)
			products.GET("/category/:category", container.ProductHandler.ByCategory)
			products.GET("/:id", container.ProductHandler.GetByID)

			protected := products.Group("")
			protected.Use(requireAuth)
			{
				protected.POST("", can("products.create"), idempotent, container.ProductHandler.Create)
				protected.PUT("/:id", can("products.update"), container.ProductHandler.Update)
				protected.PATCH("/:id/stock", can("products.update"), container.ProductHandler.AdjustStock)
				protected.DELETE("/:id", can("products.delete"), container.ProductHandler.Delete)
			}
		}

		users := v1.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", can("users.read"), container.UserHandler.List)
			users.GET("/statistics", can("users.read"), container.UserHandler.Statistics)
			users.GET("/roles", can("users.read"), container.UserHandler.Roles)
			users.GET("/:id", can("users.read"), container.UserHandler.GetByID)
			users.POST("", can("users.create"), idempotent, container.UserHandler.Create)
			users.PUT("/:id", can("users.update"), container.UserHandler.Update)
			users.POST("/:id/unlock", can("users.update"), container.UserHandler.Unlock)
			users.DELETE("/:id", can("users.delete"), container.UserHandler.Delete)
		}

		// Document store routes exist only when a driver is configured
		if container.StoreHandler != nil {
			store := v1.Group("/store")
			{
				store.GET("/products", container.StoreHandler.List)
				store.GET("/products/:id", container.StoreHandler.GetByID)
				store.GET("/search/:term", container.StoreHandler.Search)
				store.GET("/categories", container.StoreHandler.Categories)

				protected := store.Group("")
				protected.Use(requireAuth)
				{
					protected.POST("/products", can("products.create"), idempotent, container.StoreHandler.Create)
					protected.PUT("/products/:id", can("products.update"), container.StoreHandler.Update)
					protected.DELETE("/products/:id", can("products.delete"), container.StoreHandler.Delete)
					protected.POST("/initialize", can("system.admin"), container.StoreHandler.Initialize)
				}
			}
		}
	}

	return router, loginLimiter
}
