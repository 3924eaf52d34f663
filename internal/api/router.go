package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskboard/assignment-system/internal/api/handler"
	"github.com/taskboard/assignment-system/internal/api/middleware"
	"github.com/taskboard/assignment-system/internal/core/domain"
	"github.com/taskboard/assignment-system/internal/core/service"
	"github.com/taskboard/assignment-system/internal/infrastructure/config"
	mongodb "github.com/taskboard/assignment-system/internal/infrastructure/db/mongo"
	"github.com/taskboard/assignment-system/internal/infrastructure/notify"
)

// Dependencies carries everything the router needs to wire the API.
type Dependencies struct {
	Client *mongo.Client
	DB     *mongo.Database
	Redis  *redis.Client
	Config *config.Config
	Logger zerolog.Logger
	// Dispatcher ingests external assignment events; built by the caller so
	// its worker lifecycle is owned by main.
	Dispatcher handler.EventDispatcher
}

// Services groups the core services the router builds, so main can reuse them
// (the ingest dispatcher needs the user service).
type Services struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Tasks  *service.TaskService
	Tokens *service.TokenService

	UserRepo *mongodb.UserRepository
}

// BuildServices constructs the repositories and core services.
func BuildServices(deps Dependencies) Services {
	userRepo := mongodb.NewUserRepository(deps.DB)
	taskRepo := mongodb.NewTaskRepository(deps.DB)
	commentRepo := mongodb.NewCommentRepository(deps.DB)
	tx := mongodb.NewTransactor(deps.Client)
	notifier := notify.NewRedisNotifier(deps.Redis, deps.Logger)

	tokens := service.NewTokenService(deps.Config.JWTSecret, deps.Config.JWTLifetime)

	return Services{
		Auth:     service.NewAuthService(userRepo, tokens, deps.Logger),
		Users:    service.NewUserService(userRepo, taskRepo, commentRepo, tx, notifier, deps.Logger),
		Tasks:    service.NewTaskService(taskRepo, commentRepo, notifier, deps.Logger),
		Tokens:   tokens,
		UserRepo: userRepo,
	}
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies, services Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskboard"))

	authHandler := handler.NewAuthHandler(services.Auth)
	userHandler := handler.NewUserHandler(services.Users)
	taskHandler := handler.NewTaskHandler(services.Tasks)
	assignmentHandler := handler.NewAssignmentHandler(deps.Dispatcher)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/register-admin", authHandler.RegisterAdmin)
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Protected routes ---
	// Identity never rejects; each route's role check does.
	v1 := e.Group("/v1", middleware.Identity(services.Tokens, services.UserRepo, deps.Logger))

	anyRole := middleware.RequireRole(domain.RoleUser, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	v1.GET("/users/:username", userHandler.Get, anyRole)
	v1.GET("/users/:username/profile", userHandler.GetProfile, anyRole)
	v1.GET("/users", userHandler.List, adminOnly)
	v1.DELETE("/users/:username", userHandler.Delete, adminOnly)
	v1.POST("/users/:username/tasks", userHandler.Assign, adminOnly)

	v1.GET("/tasks/:title", taskHandler.Get, anyRole)
	v1.PUT("/tasks/:title/start", taskHandler.StartWork, anyRole)
	v1.PUT("/tasks/:title/complete", taskHandler.Complete, anyRole)
	v1.PUT("/tasks/:title/rework", taskHandler.SendToRework, adminOnly)
	v1.PATCH("/tasks/:title", taskHandler.Update, adminOnly)

	v1.POST("/assignments/events", assignmentHandler.Receive, adminOnly)
	v1.POST("/assignments/events/batch", assignmentHandler.ReceiveBatch, adminOnly)

	return e
}
