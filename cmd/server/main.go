package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"lendbridge/internal/adapters/http/middleware"
	"lendbridge/internal/adapters/http/routes"
	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/config"
	"lendbridge/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	_ "lendbridge/docs" // Swagger docs
)

// @title LendBridge API
// @version 1.0
// @description Multi-tenant loan origination and servicing API

// @contact.name API Support
// @contact.email support@lendbridge.io

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed default tenant, admin user and loan products
	seeder := config.NewSeeder(db)
	if err := seeder.Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Redis client for payment idempotency (optional)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	// Kafka producer for notification events (nil when no broker configured)
	producer := messaging.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
	defer producer.Close()

	// Daily sweep: overdue marking, due reminders, expired token cleanup
	loanRepo := repositories.NewLoanRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tenantRepo := repositories.NewTenantRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, tenantRepo, cfg)
	otpService := services.NewOTPService(otpRepo, userRepo, authService, producer, cfg)
	sweepService := services.NewSweepService(loanRepo, refreshTokenRepo, otpService, producer)
	if err := sweepService.Start(); err != nil {
		log.Fatalf("❌ Failed to start sweep scheduler: %v", err)
	}
	defer sweepService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LendBridge API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass dependencies for injection)
	routes.Setup(app, db, rdb, producer, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
