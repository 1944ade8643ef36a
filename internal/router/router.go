package router

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/accounts"
	"github.com/anonto42/nano-forum/backend/internal/handlers"
	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/anonto42/nano-forum/backend/validators"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Dependencies is the process-scoped state the HTTP layer is built from.
type Dependencies struct {
	DB       *gorm.DB
	Sessions *session.Manager
	Uploads  uploads.Store
	// UploadDir is served at /uploads when files are kept on local disk.
	UploadDir string
	// Firebase enables POST /api/login/firebase when non-nil.
	Firebase  handlers.TokenVerifier
	BodyLimit string
	Logger    *slog.Logger
}

// New builds the Echo instance with middleware, validator and routes.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(deps.Logger)

	SetupMiddleware(e, deps.Logger, deps.BodyLimit)
	SetupRoutes(e, deps)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *slog.Logger, bodyLimit string) {
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				log.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	if bodyLimit != "" {
		e.Use(eMiddleware.BodyLimit(bodyLimit))
	}
	log.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	log := deps.Logger

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	if deps.UploadDir != "" {
		e.Static("/uploads", deps.UploadDir)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGormUserRepository(deps.DB)
	topicRepo := repositories.NewGormTopicRepository(deps.DB)
	commentRepo := repositories.NewGormCommentRepository(deps.DB)
	likeRepo := repositories.NewGormLikeRepository(deps.DB)

	// Every /api request carries the session's user, if any.
	api := e.Group("/api")
	api.Use(middleware.SessionMiddleware(deps.Sessions, userRepo))

	authHandler := handlers.NewAuthHandler(accounts.NewService(userRepo), userRepo, deps.Sessions, deps.Firebase)
	authHandler.RegisterAuthRoutes(api)
	log.Info("Auth routes configured.", "firebase", deps.Firebase != nil)

	userHandler := handlers.NewUserHandler(userRepo, deps.Uploads, log)
	userHandler.RegisterUserRoutes(api)
	log.Info("User routes configured.")

	topicHandler := handlers.NewTopicHandler(topicRepo, commentRepo, likeRepo, deps.Uploads, log)
	topicHandler.RegisterTopicRoutes(api)
	log.Info("Topic routes configured.")

	commentHandler := handlers.NewCommentHandler(commentRepo, topicRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Info("Comment routes configured.")

	likeHandler := handlers.NewLikeHandler(likeRepo, topicRepo, commentRepo)
	likeHandler.RegisterLikeRoutes(api)
	log.Info("Like routes configured.")

	log.Info("All routes configured.")
}
