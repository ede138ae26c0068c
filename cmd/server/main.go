package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/alexmorgen/vibeforge/internal/api"
	"github.com/alexmorgen/vibeforge/internal/config"
	"github.com/alexmorgen/vibeforge/internal/gemini"
	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/memory"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	logger, err := logging.New("dev")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load(logger)
	if cfg.LogMode != "dev" {
		if logger, err = logging.New(cfg.LogMode); err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
		Timeout:    cfg.CallTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create Gemini client", "error", err)
	}
	defer client.Close()
	if !client.Ready() {
		logger.Warn("GEMINI_API_KEY is not set; generation features will ask for setup")
	}

	store, err := memory.Open(cfg.SQLitePath, logger)
	if err != nil {
		logger.Fatal("failed to open memory store", "error", err)
	}

	handler := api.NewHandler(client, store, client.Ready(), cfg.FontPath, logger)

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}
	if cfg.CORSOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSOrigin}
	}

	router := gin.Default()
	router.Use(cors.New(corsCfg))
	handler.Register(router)

	logger.Info("vibeforge starting", "port", cfg.Port, "text_model", cfg.TextModel, "image_model", cfg.ImageModel)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
