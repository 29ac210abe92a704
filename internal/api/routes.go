/**
 * @description
 * API Route definitions.
 * Builds the Fiber app, wires services into handlers and assigns routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/api/middleware
 * - backend/internal/services
 */

package api

import (
	"github.com/foodprices-project/backend/internal/api/handlers"
	"github.com/foodprices-project/backend/internal/api/middleware"
	"github.com/foodprices-project/backend/internal/logger"
	"github.com/foodprices-project/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// NewApp creates the Fiber app with global middleware and all routes
func NewApp(db *gorm.DB, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "WFP Food Prices API",
		StrictRouting: true,
		CaseSensitive: true,
		ErrorHandler:  middleware.ErrorHandler,
	})

	// Global Middleware
	app.Use(recover.New()) // Panic recovery
	app.Use(middleware.RequestID())
	if accessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${latency} ${method} ${path}?${queryParams}\n",
			Output: logger.Writer(),
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))

	SetupRoutes(app, db)
	return app
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// 1. Initialize Services
	marketService := services.NewMarketService(db)
	commodityService := services.NewCommodityService(db)
	priceService := services.NewPriceService(db)

	// 2. Initialize Handlers
	marketHandler := handlers.NewMarketHandler(marketService, commodityService)
	priceHandler := handlers.NewPriceHandler(priceService)

	// 3. Define Routes
	app.Get("/health", handlers.Health)
	app.Get("/", handlers.Home)

	app.Get("/markets", marketHandler.ListMarkets)
	app.Get("/markets/:id", marketHandler.GetMarket)

	app.Get("/commodities", marketHandler.ListCommodities)
	app.Get("/commodities/:id", marketHandler.GetCommodity)

	app.Get("/prices", priceHandler.GetPrices)
	app.Get("/latest-prices", priceHandler.GetLatestPrices)
}
