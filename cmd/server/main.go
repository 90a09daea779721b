// backend-go/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/ordena/backend-go/internal/api"
	"github.com/andresuchdata/ordena/backend-go/internal/cache"
	"github.com/andresuchdata/ordena/backend-go/internal/config"
	"github.com/andresuchdata/ordena/backend-go/internal/recipe"
	"github.com/andresuchdata/ordena/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/ordena/backend-go/internal/service"
	"github.com/andresuchdata/ordena/backend-go/internal/storage"
	"github.com/andresuchdata/ordena/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetService("api-server")
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	products := postgres.NewProductRepository(db)
	ingredients := postgres.NewIngredientRepository(db)
	recipes := postgres.NewRecipeRepository(db)
	orders := postgres.NewOrderRepository(db)
	anomalies := postgres.NewAnomalyRepository(db)

	profitCache, err := cache.NewProfitCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("profit cache unavailable, running without")
		profitCache = cache.NewNoopProfitCache()
	}

	// Initialize services
	orderService := service.NewOrderService(products, ingredients, orders, anomalies)
	productionService := service.NewProductionService(products, ingredients, recipes, orderService)
	recipeService := recipe.NewService(recipes, ingredients)
	costingService := service.NewCostingService(products, ingredients, recipes)
	profitService := service.NewProfitabilityService(products, ingredients, recipes, orders, profitCache)
	catalogService := service.NewCatalogService(ingredients, recipes, profitService)

	var archive storage.ObjectStorage
	if cfg.Reports.Archive && cfg.Storage.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("report archive unavailable, exports will not be archived")
		} else {
			archive = client
		}
	}

	router := api.NewRouter(&api.Services{
		Orders:     orderService,
		Production: productionService,
		Recipes:    recipeService,
		Catalog:    catalogService,
		Costing:    costingService,
		Profits:    profitService,

		ReportArchive: archive,
	}, cfg.Server.AllowedOrigins)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
