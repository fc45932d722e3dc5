// Package server contains the HTTP handlers for the remix tree API.
package server

import (
	"context"
	"errors"
	"log"
	"time"

	_ "github.com/blendi-remade/reve-studio/docs" // swagger docs
	"github.com/blendi-remade/reve-studio/internal/bootstrap"
	"github.com/blendi-remade/reve-studio/internal/config"
	"github.com/blendi-remade/reve-studio/internal/featureflags"
	"github.com/blendi-remade/reve-studio/internal/middleware"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/provider"
	"github.com/blendi-remade/reve-studio/internal/repository"
	"github.com/blendi-remade/reve-studio/internal/service"
	"github.com/blendi-remade/reve-studio/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const webhookPath = "/api/fal/webhook"

// Deps are the external collaborators a Server talks to besides DB and Redis.
type Deps struct {
	Generator service.Generator
	// Uploads may be nil; the upload route then answers 503.
	Uploads *storage.Uploads
}

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	verifier          *middleware.TokenVerifier
	uploads           *storage.Uploads
	postService       *service.PostService
	commentService    *service.CommentService
	generationService *service.GenerationService
	likeService       *service.LikeService
}

// NewServer connects to the database, Redis, the generation provider and
// object storage, then builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		return nil, err
	}

	generator := provider.NewFalClient(provider.Config{
		APIKey:      cfg.FalAPIKey,
		BaseURL:     cfg.FalBaseURL,
		Model:       cfg.FalModel,
		WebhookURL:  cfg.WebhookURL(),
		MaxAttempts: cfg.FalMaxAttempts,
	})

	var uploads *storage.Uploads
	if cfg.GCSBucket != "" {
		uploads, err = storage.NewGCSUploads(context.Background(), cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			middleware.Logger.Warn("object storage unavailable, upload URLs disabled", "error", err)
			uploads = nil
		}
	}

	return NewServerWithDeps(cfg, db, redisClient, Deps{Generator: generator, Uploads: uploads})
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) (*Server, error) {
	if deps.Generator == nil {
		return nil, errors.New("server: a generator is required")
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	resolver := service.NewSourceResolver(postRepo, commentRepo, featureflags.Parse(cfg.FeatureFlags))

	return &Server{
		config:            cfg,
		db:                db,
		redis:             redisClient,
		promMiddleware:    middleware.InitMetrics("reve-studio-api"),
		verifier:          middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		uploads:           deps.Uploads,
		postService:       service.NewPostService(postRepo, likeRepo),
		commentService:    service.NewCommentService(commentRepo, postRepo, cfg.PollInterval()),
		generationService: service.NewGenerationService(commentRepo, resolver, deps.Generator),
		likeService:       service.NewLikeService(likeRepo),
	}, nil
}

// App builds the fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Reve Studio API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		// provider callbacks arrive in bursts from a handful of IPs
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == webhookPath
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

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Reve Studio Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Provider callback; authenticated by the shared token on its URL
	api.Post("/fal/webhook", s.FalWebhook)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", s.AuthRequired(), s.TogglePostLike)
	posts.Get("/:id/liked", s.GetPostLiked)
	posts.Get("/:id", s.GetPost)

	comments := api.Group("/comments")
	comments.Post("/:id/like", s.AuthRequired(), s.ToggleCommentLike)
	comments.Get("/:id/liked", s.GetCommentLiked)
	comments.Get("/:id", s.GetComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	api.Get("/users/:id/posts", s.GetUserPosts)

	api.Post("/storage/upload-url", s.AuthRequired(), middleware.RateLimit(
		s.redis, 20, 10*time.Minute, "upload_url"), s.CreateUploadURL)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
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
		redisStatus = "unavailable"
	}

	storageStatus := "configured"
	if s.uploads == nil {
		storageStatus = "disabled"
	}

	// Redis only backs caching and rate limits, so it does not gate readiness.
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
			"storage":  storageStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.uploads.Close(); err != nil {
		log.Printf("error closing storage client: %v", err)
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

	log.Println("Server shutdown complete")
	return nil
}
