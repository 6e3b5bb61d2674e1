// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"poetryclub/internal/bootstrap"
	"poetryclub/internal/config"
	"poetryclub/internal/featureflags"
	"poetryclub/internal/middleware"
	"poetryclub/internal/models"
	"poetryclub/internal/repository"
	"poetryclub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	flags          *featureflags.Manager

	userRepo    repository.UserRepository
	poemRepo    repository.PoemRepository
	commentRepo repository.CommentRepository

	authService    *service.AuthService
	poemService    *service.PoemService
	commentService *service.CommentService
	userService    *service.UserService
}

// NewServer creates a server instance, establishing the database and Redis
// connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{EnsureAdmin: true})
	if err != nil {
		return nil, fmt.Errorf("runtime initialization failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish DB/Redis themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("poetryclub-api"),
		flags:          featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		poemRepo:       repository.NewPoemRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
	}

	s.authService = service.NewAuthService(s.userRepo)
	s.poemService = service.NewPoemService(s.poemRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.poemRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

// SetupMiddleware configures the middleware stack for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for log correlation
	app.Use(requestid.New())

	// Context middleware propagates request ID and user ID into the
	// request context for the structured logger.
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured request logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; CORS handles them.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// route declares one endpoint together with its role allow-set. An empty
// allow-set means the endpoint is public and the auth gate is not attached.
type route struct {
	method  string
	path    string
	roles   []models.Role
	pre     []fiber.Handler
	handler fiber.Handler
}

// routes is the single authorization table for the API. Registration order
// matters: specific paths must precede the generic /:id patterns they would
// otherwise shadow.
func (s *Server) routes() []route {
	anyUser := []models.Role{models.RoleUser, models.RoleAdmin}
	adminOnly := []models.Role{models.RoleAdmin}

	return []route{
		{method: fiber.MethodPost, path: "/api/auth/register", handler: s.Register,
			pre: []fiber.Handler{middleware.RateLimit(s.redis, 3, 10*time.Minute, "register")}},
		{method: fiber.MethodPost, path: "/api/auth/login", handler: s.Login,
			pre: []fiber.Handler{middleware.RateLimit(s.redis, 10, 5*time.Minute, "login")}},

		{method: fiber.MethodGet, path: "/api/poems", handler: s.ListPoems},
		{method: fiber.MethodPost, path: "/api/poems", roles: anyUser, handler: s.CreatePoem,
			pre: []fiber.Handler{middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_poem")}},
		{method: fiber.MethodGet, path: "/api/poems/review-queue", roles: adminOnly, handler: s.ListReviewQueue},
		{method: fiber.MethodGet, path: "/api/poems/user/:userId", roles: anyUser, handler: s.ListUserPoems},
		{method: fiber.MethodPost, path: "/api/poems/:id/review", roles: adminOnly, handler: s.ReviewPoem},
		{method: fiber.MethodPost, path: "/api/poems/:id/like", roles: anyUser, handler: s.LikePoem},
		{method: fiber.MethodDelete, path: "/api/poems/:id/like", roles: anyUser, handler: s.UnlikePoem},
		{method: fiber.MethodGet, path: "/api/poems/:id/comments", handler: s.ListPoemComments},
		{method: fiber.MethodGet, path: "/api/poems/:id", handler: s.GetPoem},
		{method: fiber.MethodPatch, path: "/api/poems/:id", roles: anyUser, handler: s.UpdatePoem},
		{method: fiber.MethodDelete, path: "/api/poems/:id", roles: anyUser, handler: s.DeletePoem},

		{method: fiber.MethodGet, path: "/api/comments", handler: s.ListComments},
		{method: fiber.MethodPost, path: "/api/comments", roles: anyUser, handler: s.CreateComment,
			pre: []fiber.Handler{middleware.RateLimit(s.redis, 10, time.Minute, "create_comment")}},
		{method: fiber.MethodGet, path: "/api/comments/:commentId/replies", handler: s.ListReplies},
		{method: fiber.MethodDelete, path: "/api/comments/:commentId", roles: anyUser, handler: s.DeleteComment},

		{method: fiber.MethodGet, path: "/api/users", roles: adminOnly, handler: s.ListUsers},
		{method: fiber.MethodGet, path: "/api/users/me", roles: anyUser, handler: s.GetMyProfile},
		{method: fiber.MethodPatch, path: "/api/users/me", roles: anyUser, handler: s.UpdateMyProfile},
		{method: fiber.MethodPost, path: "/api/users/me/change-password", roles: anyUser, handler: s.ChangeMyPassword},
		{method: fiber.MethodGet, path: "/api/users/:id", roles: anyUser, handler: s.GetUser},
		{method: fiber.MethodPatch, path: "/api/users/:id", roles: adminOnly, handler: s.AdminUpdateUser},
		{method: fiber.MethodDelete, path: "/api/users/:id", roles: adminOnly, handler: s.DeleteUser},
	}
}

// SetupRoutes registers health probes, metrics and the route table.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Legacy alias kept for existing probes and scripts.
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Poetry Club Metrics Dashboard",
	}))

	for _, r := range s.routes() {
		handlers := make([]fiber.Handler, 0, len(r.pre)+2)
		if len(r.roles) > 0 {
			handlers = append(handlers, s.RequireRoles(r.roles...))
		}
		handlers = append(handlers, r.pre...)
		handlers = append(handlers, r.handler)
		app.Add(r.method, r.path, handlers...)
	}
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests, checking DB and Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API stays functional without Redis; caching and per-route
		// rate limiting are simply disabled.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the Fiber app, wires middleware and routes, and listens.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Poetry Club API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	slog.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
