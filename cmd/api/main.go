package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/handlers"
	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger := logger.NewZapLogger(cfg.Log.FilePath, cfg.IsProduction())
	defer appLogger.Sync()
	appLogger.Info("main", "Config loaded", map[string]interface{}{"env": cfg.Server.Env})

	// Initialize services
	stagingService := services.NewStagingService(cfg.Storage.UploadPath, cfg.Storage.StagingDir)
	if err := stagingService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway := services.NewGateway(ctx, cfg.Gemini, appLogger)
	appLogger.Info("main", "Gemini gateway ready", map[string]interface{}{"variant": gateway.Variant()})

	sessionRepo := repositories.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)
	interviewService := services.NewInterviewService(sessionRepo, stagingService, gateway, appLogger)

	// Initialize Handlers
	interviewHandler := handlers.NewInterviewHandler(interviewService, cfg.Storage.MaxFileSize, appLogger)
	sessionHandler := handlers.NewSessionHandler(interviewService)

	app := fiber.New(fiber.Config{
		AppName:      "AI Interviewer API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.Gemini.ReadyTimeout + cfg.Gemini.RequestTimeout + 30*time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.NewErrorHandler(appLogger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CorsAllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, interviewHandler, sessionHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		appLogger.Info("main", "Shutting down server", nil)
		cancel()
		if err := app.Shutdown(); err != nil {
			appLogger.Error("main", "Server forced to shutdown", map[string]interface{}{"error": err})
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	appLogger.Info("main", "Server starting", map[string]interface{}{"addr": addr})

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
