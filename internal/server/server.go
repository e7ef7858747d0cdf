// Package server contains the HTTP and WebSocket handlers for the Connecto API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connecto/internal/config"
	"connecto/internal/database"
	"connecto/internal/featureflags"
	"connecto/internal/middleware"
	"connecto/internal/models"
	"connecto/internal/notifications"
	"connecto/internal/repository"
	"connecto/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
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

	userRepo     repository.UserRepository
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	followService       *service.FollowService
	requestService      *service.FollowRequestService
	blockService        *service.BlockService
	postService         *service.PostService
	userService         *service.UserService
	notificationService *service.NotificationService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, which disables realtime delivery and token
// revocation.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	requestRepo := repository.NewFollowRequestRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)

	var notifier *notifications.Notifier
	var hub *notifications.Hub
	if redisClient != nil {
		notifier = notifications.NewNotifier(redisClient)
		hub = notifications.NewHub()
	}
	emitter := notifications.NewDispatcher(notificationRepo, notifier, flags)
	visibility := service.NewVisibility(followRepo, blockRepo)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("connecto-api"),
		userRepo:       userRepo,
		notifier:       notifier,
		hub:            hub,
		featureFlags:   flags,

		followService:       service.NewFollowService(userRepo, followRepo, requestRepo, blockRepo, emitter, flags),
		requestService:      service.NewFollowRequestService(userRepo, requestRepo, emitter),
		blockService:        service.NewBlockService(userRepo, blockRepo),
		postService:         service.NewPostService(postRepo, userRepo, visibility, emitter),
		userService:         service.NewUserService(userRepo),
		notificationService: service.NewNotificationService(notificationRepo),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry
	// CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	// The socket authenticates with a one-time ticket, not a bearer token.
	api.Get("/notifications/ws", s.WebSocketTicketRequired(), s.NotificationSocket())

	protected := api.Group("", s.AuthRequired())

	relationLimit := func(name string) fiber.Handler {
		return middleware.RateLimit(s.redis, 30, time.Minute, name)
	}

	follows := protected.Group("/follows")
	follows.Get("/suggestions", s.GetFollowSuggestions)
	follows.Delete("/followers/:id", s.RemoveFollower)
	follows.Get("/:id/following", s.GetFollowing)
	follows.Get("/:id/followers", s.GetFollowers)
	follows.Post("/:id", relationLimit("follow"), s.Follow)
	follows.Delete("/:id", s.Unfollow)

	requests := protected.Group("/follow-requests")
	requests.Get("/received", s.GetReceivedFollowRequests)
	requests.Get("/sent", s.GetSentFollowRequests)
	requests.Delete("/sent/:id", s.CancelFollowRequest)
	requests.Post("/:id/respond", s.RespondToFollowRequest)

	blocks := protected.Group("/blocks")
	blocks.Get("/", s.GetBlockedUsers)
	blocks.Post("/:id", relationLimit("block"), s.BlockUser)
	blocks.Delete("/:id", s.UnblockUser)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/reposts", s.GetReposters)
	posts.Post("/:id/save", s.SavePost)
	posts.Delete("/:id/save", s.UnsavePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Post("/:id/dislike", s.DislikePost)
	posts.Put("/:id", s.UpdatePost)
	posts.Get("/:id", s.GetPost)

	reposts := protected.Group("/reposts")
	reposts.Post("/:postId", s.Repost)
	reposts.Delete("/:id", s.DeleteRepost)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadNotificationCount)
	notes.Patch("/mark-all-read", s.MarkAllNotificationsRead)
	notes.Post("/ws-ticket", s.IssueWSTicket)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/edit-profile", s.EditProfile)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only an unreachable configured client fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the bearer-token middleware. Banned accounts are
// refused with 403.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(middleware.AuthConfig{
		Secret:   s.config.JWTSecret,
		Issuer:   s.config.JWTIssuer,
		Audience: s.config.JWTAudience,
		Redis:    s.redis,
		IsBanned: s.userRepo.IsBanned,
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if !user.IsAdminTier() {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Connecto API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			return respondError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start wires realtime delivery and serves HTTP until Shutdown.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	s.app = s.NewApp()

	if s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Warn("realtime notifications disabled",
				slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		_ = s.hub.Shutdown(ctx)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
