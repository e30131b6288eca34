package routes

import (
	"lendbridge/internal/adapters/http/handlers"
	"lendbridge/internal/adapters/http/middleware"
	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/config"
	"lendbridge/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, producer *messaging.Producer, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	tenantRepo := repositories.NewTenantRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	productRepo := repositories.NewProductRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	uow := repositories.NewGormUnitOfWork(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, tenantRepo, cfg)
	otpService := services.NewOTPService(otpRepo, userRepo, authService, producer, cfg)
	userService := services.NewUserService(userRepo)
	appService := services.NewApplicationService(appRepo, productRepo, userRepo, producer)
	docService := services.NewDocumentService(docRepo, appRepo)
	loanService := services.NewLoanService(uow, loanRepo, appRepo, productRepo, producer)
	paymentService := services.NewPaymentService(uow, producer)
	catalogService := services.NewCatalogService(productRepo, leadRepo, tenantRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(authService, otpService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	appHandler := handlers.NewApplicationHandler(appService)
	docHandler := handlers.NewDocumentHandler(docService)
	loanHandler := handlers.NewLoanHandler(loanService, paymentService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Public product catalog
	apiV1.Get("/products", catalogHandler.ListProducts)
	apiV1.Get("/products/:id", catalogHandler.GetProduct)

	// Profile routes (authenticated)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", userHandler.GetProfile)
	profileRoutes.Put("/", userHandler.UpdateProfile)

	// Application routes (authenticated)
	appRoutes := apiV1.Group("/applications")
	appRoutes.Use(middleware.AuthMiddleware(cfg))
	setupApplicationRoutes(appRoutes, appHandler, docHandler)

	// Loan routes (authenticated)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler, rdb)

	// Lead routes (agents)
	leadRoutes := apiV1.Group("/leads")
	leadRoutes.Use(middleware.AuthMiddleware(cfg))
	leadRoutes.Use(middleware.AgentOrAdmin())
	setupLeadRoutes(leadRoutes, catalogHandler)

	// Back-office routes (admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	setupAdminRoutes(adminRoutes, appHandler, loanHandler, docHandler, userHandler, catalogHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes with strict rate limits
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/otp/request", middleware.StrictRateLimiter(), handler.RequestOTP)
	router.Post("/otp/verify", middleware.StrictRateLimiter(), handler.VerifyOTP)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupApplicationRoutes configures loan application routes
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler, docHandler *handlers.DocumentHandler) {
	router.Post("/", handler.Create)
	router.Get("/", handler.ListMine)
	router.Get("/:id", handler.GetByID)
	router.Put("/:id/cancel", handler.Cancel)

	// Supporting documents
	router.Post("/:id/documents", docHandler.Upload)
	router.Get("/:id/documents", docHandler.List)
}

// setupLoanRoutes configures loan and payment routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler, rdb *redis.Client) {
	// Static path before the :id parameter
	router.Get("/status", handler.Status)

	router.Get("/:id", handler.GetByID)
	router.Get("/:id/schedule", handler.GetSchedule)
	router.Post("/:id/payments", middleware.Idempotency(rdb), handler.Pay)
}

// setupLeadRoutes configures agent lead routes
func setupLeadRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	router.Get("/", handler.ListLeads)
	router.Post("/", handler.CreateLead)
	router.Get("/:id", handler.GetLead)
	router.Put("/:id", handler.UpdateLead)
	router.Delete("/:id", handler.DeleteLead)
}

// setupAdminRoutes configures back-office routes
func setupAdminRoutes(
	router fiber.Router,
	appHandler *handlers.ApplicationHandler,
	loanHandler *handlers.LoanHandler,
	docHandler *handlers.DocumentHandler,
	userHandler *handlers.UserHandler,
	catalogHandler *handlers.CatalogHandler,
) {
	// Underwriting
	router.Get("/applications", appHandler.List)
	router.Put("/applications/:id/request-documents", appHandler.RequestDocuments)
	router.Put("/applications/:id/approve", appHandler.Approve)
	router.Put("/applications/:id/reject", appHandler.Reject)
	router.Post("/applications/:id/disburse", loanHandler.Disburse)

	// Document review
	router.Put("/documents/:id/review", docHandler.Review)

	// User management
	router.Get("/users", userHandler.ListUsers)
	router.Put("/users/:id/active", userHandler.SetActive)

	// Product management
	router.Post("/products", catalogHandler.CreateProduct)
	router.Put("/products/:id", catalogHandler.UpdateProduct)
	router.Delete("/products/:id", catalogHandler.DeleteProduct)

	// Tenant management
	router.Get("/tenants", catalogHandler.ListTenants)
	router.Post("/tenants", catalogHandler.CreateTenant)
	router.Get("/tenants/:id", catalogHandler.GetTenant)
}
