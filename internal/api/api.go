// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ordena/backend-go/internal/api/handlers"
	"github.com/andresuchdata/ordena/backend-go/internal/api/middleware"
	"github.com/andresuchdata/ordena/backend-go/internal/recipe"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
	"github.com/andresuchdata/ordena/backend-go/internal/storage"
)

type Services struct {
	Orders     *service.OrderService
	Production *service.ProductionService
	Recipes    *recipe.Service
	Catalog    *service.CatalogService
	Costing    *service.CostingService
	Profits    *service.ProfitabilityService

	// ReportArchive receives a copy of every exported workbook when set.
	ReportArchive storage.ObjectStorage
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Orders != nil {
			orderHandler := handlers.NewOrderHandler(services.Orders, services.Production)
			orderGroup := apiGroup.Group("/orders")
			{
				orderGroup.POST("", orderHandler.CreateOrder)
				orderGroup.PUT("/:id", orderHandler.EditOrder)
				orderGroup.DELETE("/:id", orderHandler.CancelOrder)
				orderGroup.PUT("/:id/status", orderHandler.UpdateStatus)
			}
			if services.Production != nil {
				apiGroup.POST("/products/:id/produce", orderHandler.Produce)
			}
		}

		if services.Recipes != nil {
			recipeHandler := handlers.NewRecipeHandler(services.Recipes)
			productGroup := apiGroup.Group("/products")
			{
				productGroup.GET("/:id/recipe", recipeHandler.GetRecipe)
				productGroup.PUT("/:id/recipe", recipeHandler.SetRecipe)
				productGroup.POST("/:id/recipe/ingredients", recipeHandler.AddIngredient)
				productGroup.DELETE("/:id/recipe/ingredients/:ingredient_id", recipeHandler.RemoveIngredient)
				productGroup.PUT("/:id/recipe/labor", recipeHandler.SetLaborCost)
			}
		}

		if services.Catalog != nil {
			catalogHandler := handlers.NewCatalogHandler(services.Catalog, services.Costing, services.Profits)
			apiGroup.GET("/businesses/:business_id/ingredients/low_stock", catalogHandler.GetLowStock)
			apiGroup.PUT("/ingredients/:id/cost", catalogHandler.UpdateIngredientCost)
			apiGroup.DELETE("/ingredients/:id", catalogHandler.DeleteIngredient)
			apiGroup.GET("/products/:id/cost", catalogHandler.GetProductCost)
			apiGroup.GET("/businesses/:business_id/profitability", catalogHandler.GetProfitability)
		}

		if services.Profits != nil {
			reportHandler := handlers.NewReportHandler(services.Profits, services.ReportArchive)
			apiGroup.GET("/businesses/:business_id/profitability/export", reportHandler.ExportProfitability)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
