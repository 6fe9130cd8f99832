// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"stanhub/internal/bootstrap"
	"stanhub/internal/config"
	"stanhub/internal/middleware"
	"stanhub/internal/models"
	"stanhub/internal/observability"
	"stanhub/internal/repository"
	"stanhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tracerShutdown func(context.Context) error

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	replyRepo   repository.ReplyRepository
	reportRepo  repository.ReportRepository
	contentRepo repository.ContentRepository

	feedService       *service.FeedService
	postService       *service.PostService
	moderationService *service.ModerationService
	userService       *service.UserService
	contentService    *service.ContentService
	uploadService     *service.UploadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	reportRepo := repository.NewReportRepository(db)
	contentRepo := repository.NewContentRepository(db)

	prom := middleware.InitMetrics("stanhub-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		replyRepo:      replyRepo,
		reportRepo:     reportRepo,
		contentRepo:    contentRepo,
	}

	server.uploadService = service.NewUploadService(cfg)
	server.feedService = service.NewFeedService(postRepo, replyRepo, userRepo)
	server.postService = service.NewPostService(postRepo, reportRepo, replyRepo, userRepo, server.uploadService)
	server.moderationService = service.NewModerationService(postRepo, reportRepo, userRepo, contentRepo)
	server.userService = service.NewUserService(userRepo)
	server.contentService = service.NewContentService(contentRepo, server.uploadService)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.Tracing())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
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
		// Never rate-limit preflight requests; they are handled by CORS.
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Stanhub Backend Metrics Dashboard",
	}))

	// Uploaded files
	app.Static("/uploads", s.uploadService.UploadDir())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/is-admin", s.AuthRequired(), s.IsAdmin)

	// Public forum routes (feed and thread browsing)
	forum := api.Group("/forum")
	forum.Get("/posts", s.GetFeed)
	forum.Get("/posts/:id", s.GetPostThread)

	// Public content routes
	api.Get("/albums", s.GetAlbums)
	api.Get("/albums/:id/media", s.GetAlbumMedia)
	api.Get("/timeline", s.GetTimeline)
	api.Get("/charms", s.GetCharms)
	api.Post("/charms", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "submit_charm"), s.SubmitCharm)
	api.Get("/home/:key", s.GetHomeContent)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/me/posts", s.GetMyPosts)

	// Protected forum routes
	posts := protected.Group("/forum/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/replies", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_reply"), s.CreateReply)
	posts.Post("/:id/report", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "report_post"), s.ReportPost)

	// Generic upload endpoint for composer attachments and avatars
	protected.Post("/uploads", s.UploadFile)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/queue", s.GetModerationOverview)

	adminForum := admin.Group("/forum")
	adminForum.Get("/queue", s.GetModerationQueue)
	adminForum.Get("/summary", s.GetModerationSummary)
	adminForum.Post("/posts/:id/approve", s.ApprovePost)
	adminForum.Post("/posts/:id/reject", s.RejectPost)
	adminForum.Post("/posts/:id/pin", s.PinPost)
	adminForum.Post("/posts/:id/unpin", s.UnpinPost)
	adminForum.Delete("/posts/:id", s.DeletePost)

	adminReports := admin.Group("/reports")
	adminReports.Get("/", s.GetReports)
	adminReports.Post("/:id/resolve", s.ResolveReport)
	adminReports.Post("/:id/dismiss", s.DismissReport)
	adminReports.Delete("/:id/post", s.DeleteReportedPost)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/", s.GetAllUsers)
	adminUsers.Post("/:id/role", s.SetUserRole)

	adminContent := admin.Group("/content")
	adminContent.Post("/albums", s.CreateAlbum)
	adminContent.Put("/albums/:id", s.UpdateAlbum)
	adminContent.Delete("/albums/:id", s.DeleteAlbum)
	adminContent.Post("/albums/reorder", s.ReorderAlbums)
	adminContent.Post("/media", s.UploadMedia)
	adminContent.Get("/media", s.GetAllMedia)
	adminContent.Post("/media/:id/approve", s.ApproveMedia)
	adminContent.Post("/media/:id/reject", s.RejectMedia)
	adminContent.Delete("/media/:id", s.DeleteMedia)
	adminContent.Post("/timeline", s.CreateTimelineEvent)
	adminContent.Put("/timeline/:id", s.UpdateTimelineEvent)
	adminContent.Delete("/timeline/:id", s.DeleteTimelineEvent)
	adminContent.Get("/charms", s.GetAllCharms)
	adminContent.Post("/charms/:id/approve", s.ApproveCharm)
	adminContent.Delete("/charms/:id", s.DeleteCharm)
	adminContent.Put("/home/:key", s.SetHomeContent)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
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
		// The API keeps serving without Redis, degraded to no caching.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// The role is re-read from the database on every request so a demotion takes
// effect immediately, not at token expiry. Must be placed after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		ctx, cancel := boundCtx(c.Context())
		defer cancel()

		admin, err := s.isAdminByUserID(ctx, userID)
		if err != nil {
			return respondServiceError(c, timeoutOr(err, "admin check"))
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "stanhub-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "stanhub-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID attempts to extract userID from the Authorization header but
// does not enforce it. Anonymous feed requests use this for liked flags.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	tracerShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "stanhub-api",
		Environment:  s.config.Env,
		Enabled:      s.config.TracingEnabled,
		Exporter:     s.config.TraceExporter,
		OTLPEndpoint: s.config.OTLPEndpoint,
		SamplerRatio: s.config.TraceRatio,
	})
	if err != nil {
		return err
	}
	s.tracerShutdown = tracerShutdown

	app := fiber.New(fiber.Config{
		AppName:   "Stanhub API",
		BodyLimit: (s.config.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	if s.tracerShutdown != nil {
		if terr := s.tracerShutdown(ctx); terr != nil {
			log.Printf("error shutting down tracer: %v", terr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
