package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/digital-library/backend/internal/handlers"
	"github.com/digital-library/backend/internal/middleware"
	"github.com/digital-library/backend/internal/repositories"
	"github.com/digital-library/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when federated login is not configured.
func SetupRoutes(e *echo.Echo, mgClient *mongo.Client, firebaseAuthClient *auth.Client, cfg *config.Config) {
	db := mgClient.Database(cfg.MongoDBName)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Uploaded files are served straight off disk
	e.Static("/uploads", cfg.UploadDir)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	mediaRepo := repositories.NewMongoMediaRepository(db)
	likeRepo := repositories.NewMongoLikeRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)

	requireAuth := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	optionalAuth := middleware.OptionalJWTAuth(cfg.JWTSecret)

	api := e.Group("/api")

	// --- Unprotected routes for authentication ---
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(api.Group("/auth"), requireAuth)
	log.Println("Auth routes configured.")

	// Media catalog routes
	mediaHandler := handlers.NewMediaHandler(mediaRepo, cfg.UploadDir)
	mediaHandler.RegisterMediaRoutes(api)
	log.Println("Media routes configured.")

	// Like routes
	likeHandler := handlers.NewLikeHandler(likeRepo)
	likeHandler.RegisterLikeRoutes(api, requireAuth, optionalAuth)
	log.Println("Like routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo)
	commentHandler.RegisterCommentRoutes(api, requireAuth)
	log.Println("Comment routes configured.")

	// --- Admin routes (require JWT authentication + admin role) ---
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	mediaHandler.RegisterAdminRoutes(admin)
	adminUserHandler := handlers.NewAdminUserHandler(userRepo)
	adminUserHandler.RegisterAdminUserRoutes(admin)
	log.Println("Admin routes configured.")

	log.Println("All routes configured.")
}
