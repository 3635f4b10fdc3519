package main

import (
	"context"
	"log"

	"github.com/geseib/personalboard/internal/config"
	"github.com/geseib/personalboard/internal/database"
	"github.com/geseib/personalboard/internal/handlers"
	"github.com/geseib/personalboard/internal/middleware"
	"github.com/geseib/personalboard/internal/secrets"
	"github.com/geseib/personalboard/internal/services"
	"github.com/geseib/personalboard/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()
	ctx := context.Background()

	var provider secrets.Provider
	if cfg.Secrets.DevSecret != "" {
		provider = secrets.StaticProvider(cfg.Secrets.DevSecret)
	} else {
		ssmProvider, err := secrets.NewSSMProvider(ctx, cfg.Secrets.ParameterName)
		if err != nil {
			log.Fatalf("secret provider initialization failed: %v", err)
		}
		provider = ssmProvider
	}
	secretCache := secrets.NewCache(provider)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	database.StartTTLSweeper(db, cfg.Store.SweepInterval)

	activationService := services.NewActivationService(db, secretCache)
	auditService := services.NewAuditService(db)

	advisor, err := services.NewBedrockAdvisor(ctx, cfg.Advisor)
	if err != nil {
		log.Fatalf("advisor initialization failed: %v", err)
	}

	activationHandler := handlers.NewActivationHandler(activationService, auditService)
	adviceHandler := handlers.NewAdviceHandler(advisor)
	authMiddleware := middleware.NewAuthMiddleware(activationService)

	app := fiber.New(fiber.Config{BodyLimit: 1 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/activate", activationHandler.Activate)
	app.Post("/advice", authMiddleware.RequireSession, adviceHandler.Advise)

	addr := ":" + cfg.Server.Port
	logger.Info("server_listening", map[string]interface{}{"addr": addr})
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
