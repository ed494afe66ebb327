// Package app assembles the HTTP application from its dependencies.
package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"floryn/internal/config"
	"floryn/internal/handlers"
	"floryn/internal/metrics"
	"floryn/internal/middleware"
	"floryn/internal/models"
	"floryn/internal/repositories"
	"floryn/internal/services"
	"floryn/internal/storage"
)

// Dependencies are the long-lived resources the application is built on.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Images *storage.ImageStore
	// Publisher is nil when no broker is configured.
	Publisher services.EventPublisher
}

// New wires repositories, services and handlers into a Fiber app.
func New(deps Dependencies) *fiber.App {
	cfg := deps.Config

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	productRepo := repositories.NewGORMProductRepository(deps.DB)
	cartRepo := repositories.NewGORMCartRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)

	// --- Services ---
	var images services.ImageRemover
	if deps.Images != nil {
		images = deps.Images
	}
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	productService := services.NewProductService(productRepo, images)
	cartService := services.NewCartService(cartRepo)
	orderService := services.NewOrderService(orderRepo, deps.Publisher, cfg.OrderPricePolicy == config.PricePolicyServer)
	userService := services.NewUserService(userRepo)
	dashboardService := services.NewDashboardService(productRepo, orderRepo, userRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	userHandler := handlers.NewUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	app := fiber.New(fiber.Config{
		AppName:      "floryn",
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// --- Middleware ---
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(recover.New())

	app.Get("/health", healthHandler(deps.DB))
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if deps.Images != nil {
		app.Static("/uploads", deps.Images.Dir())
	}

	// --- API Routes ---
	authRequired := middleware.AuthRequired(authService)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst).Handler()

	api := app.Group("/api")
	authHandler.RegisterRoutes(api, authLimiter, authRequired)
	productHandler.RegisterRoutes(api, authRequired, adminOnly)
	cartHandler.RegisterRoutes(api, authRequired)
	orderHandler.RegisterRoutes(api, authRequired, adminOnly)
	userHandler.RegisterRoutes(api, authRequired, adminOnly)
	dashboardHandler.RegisterRoutes(api, authRequired, adminOnly)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database := "healthy", "up"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status, database = "degraded", "down"
		}

		code := fiber.StatusOK
		if status != "healthy" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"database": database,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}
