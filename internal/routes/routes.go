// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers, and applies auth
// middleware per route group.
package routes

import (
	"log"

	"admitdesk/internal/config"
	"admitdesk/internal/handlers"
	"admitdesk/internal/middleware"
	"admitdesk/internal/models"
	"admitdesk/internal/repositories"
	"admitdesk/internal/services/auth"
	"admitdesk/internal/services/center"
	"admitdesk/internal/services/ledger"
	"admitdesk/internal/services/student"
	"admitdesk/internal/services/upload"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	centerRepo := repositories.NewCenterRepository(db, repositories.CacheService)
	userRepo := repositories.NewUserRepository(db)
	studentRepo := repositories.NewStudentRepository(db)

	// Services
	authService := auth.NewService(userRepo)
	ledgerService := ledger.NewService(ledgerRepo, centerRepo, repositories.CacheService)
	centerService := center.NewService(centerRepo, userRepo, ledgerService)
	studentService := student.NewService(studentRepo, ledgerService)

	uploadDir := config.GetEnv("UPLOAD_DIR", "./uploads")
	maxUpload := config.GetInt64Env("UPLOAD_MAX_BYTES", 5<<20)
	uploads, err := upload.NewAdapter(uploadDir, maxUpload)
	if err != nil {
		log.Fatal("Failed to initialize upload storage:", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService, centerService, uploads)
	centerHandler := handlers.NewCenterHandler(centerService)
	studentHandler := handlers.NewStudentHandler(studentService)
	healthHandler := handlers.NewHealthHandler(db)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Stored slips are served statically; filenames are unguessable.
	app.Static("/uploads", uploads.Dir())

	api := app.Group("/api")

	// Public endpoints
	api.Get("/health", healthHandler.Check)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.RefreshToken)

	// Authenticated endpoints
	authed := api.Group("", authMiddleware.Handler)
	authed.Post("/logout", authHandler.Logout)
	authed.Post("/change-password", authHandler.ChangePassword)

	wallet := authed.Group("/wallet")
	wallet.Post("/recharge", walletHandler.SubmitRecharge)
	wallet.Get("/recharge", walletHandler.ListRecharges)
	wallet.Get("/balance", walletHandler.GetBalance)
	wallet.Patch("/recharge/:id/status", middleware.RequireSuperadmin, walletHandler.TransitionStatus)
	wallet.Get("/recharge/:id/events", middleware.RequireSuperadmin, walletHandler.ListEvents)
	wallet.Get("/centers", middleware.RequireSuperadmin, walletHandler.ListCenters)
	wallet.Post("/reconcile/:centerId", middleware.RequireSuperadmin, walletHandler.Reconcile)

	centers := authed.Group("/centers")
	centers.Post("/", middleware.RequireCapability(models.CapManageCenters), centerHandler.Register)
	centers.Get("/:code", centerHandler.GetByCode)
	centers.Patch("/:id/flags", middleware.RequireCapability(models.CapManageCenters), centerHandler.UpdateFlags)

	students := authed.Group("/students")
	students.Post("/", middleware.RequireCapability(models.CapEnrollStudents), studentHandler.Enroll)
	students.Get("/", studentHandler.List)
	students.Patch("/:id/status", studentHandler.UpdateStatus)
}
