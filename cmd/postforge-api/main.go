package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/mkovac/postforge-api/internal/config"
	"github.com/mkovac/postforge-api/internal/database"
	"github.com/mkovac/postforge-api/internal/handlers"
	"github.com/mkovac/postforge-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	secretService := services.NewSecretService(db, cfg.SecretsKey)
	quotaService := services.NewQuotaService(db, cfg.DefaultDailyQuota)

	secretHandler := handlers.NewSecretHandler(secretService)
	quotaHandler := handlers.NewQuotaHandler(quotaService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	owners := api.Group("/owners/:ownerId")
	owners.Get("/secrets", secretHandler.List)
	owners.Put("/secrets/:name", secretHandler.Put)
	owners.Get("/secrets/:name", secretHandler.Get)
	owners.Delete("/secrets/:name", secretHandler.Delete)

	owners.Post("/quota/consume", quotaHandler.Consume)
	owners.Get("/quota", quotaHandler.Get)
	owners.Put("/quota/limit", quotaHandler.SetLimit)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
