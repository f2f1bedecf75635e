// Package server contains the HTTP handlers and wiring of the yatube web app.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/repository"
	"yatube/internal/service"
	"yatube/internal/storage"
	"yatube/internal/validation"
	"yatube/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	views          fiber.Views
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	// pages backs the index page cache, sessions the revoked token list.
	pages    fiber.Storage
	sessions fiber.Storage
	media    storage.Storage

	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository

	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
	groupService   *service.GroupService
	images         *service.ImageService

	now func() time.Time
}

// Option customizes a Server built by NewServerWithDeps.
type Option func(*Server)

// WithViews replaces the embedded template engine.
func WithViews(v fiber.Views) Option {
	return func(s *Server) { s.views = v }
}

// WithStorage replaces the media storage backend.
func WithStorage(st storage.Storage) Option {
	return func(s *Server) { s.media = st }
}

// WithPasswordCost sets the bcrypt cost for new passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Server) { s.userService = service.NewUserService(s.userRepo, cost) }
}

// NewServer builds the server on a connected database and optional Redis
// client, creating the media storage backend from cfg.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	media, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}
	return NewServerWithDeps(cfg, db, redisClient, WithStorage(media))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case the caches live in process memory.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, opts ...Option) (*Server, error) {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("yatube"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		now:            time.Now,
	}

	if redisClient != nil {
		s.pages = cache.NewRedisStore(redisClient, cache.PagePrefix)
		s.sessions = cache.NewRedisStore(redisClient, cache.SessionPrefix)
	} else {
		s.pages = cache.NewMemoryStore()
		s.sessions = cache.NewMemoryStore()
	}

	s.userService = service.NewUserService(s.userRepo, bcrypt.DefaultCost)
	for _, opt := range opts {
		opt(s)
	}
	if s.media == nil {
		s.media = storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
	}

	postRepo := repository.NewPostRepository(db)
	s.images = service.NewImageService(s.media, s.featureFlags.OnFunc(featureflags.Thumbnails))
	s.postService = service.NewPostService(postRepo, s.groupRepo, s.images)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo)
	s.followService = service.NewFollowService(repository.NewFollowRepository(db), s.userRepo)
	s.groupService = service.NewGroupService(s.groupRepo)

	if s.views == nil {
		s.views = views.New(views.Funcs{
			MediaURL: s.images.URL,
			ThumbURL: s.thumbURL,
		}, !cfg.IsProduction())
	}

	return s, nil
}

// thumbURL is the list-page image address: the WebP thumbnail while
// thumbnails are enabled, the original otherwise.
func (s *Server) thumbURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	if s.featureFlags.On(featureflags.Thumbnails) {
		return s.images.URL(service.ThumbnailPath(imagePath))
	}
	return s.images.URL(imagePath)
}

// PageCache exposes the index page store so callers can Reset it.
func (s *Server) PageCache() fiber.Storage {
	return s.pages
}

func (s *Server) maxImageBytes() int64 {
	if s.config.ImageMaxUploadSizeMB <= 0 {
		return validation.DefaultMaxImageBytes
	}
	return int64(s.config.ImageMaxUploadSizeMB) << 20
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "yatube",
		Views:        s.views,
		ViewsLayout:  views.Layout,
		ErrorHandler: s.errorHandler,
		BodyLimit:    int(s.maxImageBytes()) + 1<<20,
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
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// uploads may be served from an S3 public URL on another origin
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(middleware.StructuredLogger())
	app.Use(compress.New())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(s.LoadViewer())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/media/*", s.Media)

	skipCache := func(c *fiber.Ctx) bool { return !s.featureFlags.Enabled(featureflags.PageCache, viewerID(c)) }
	app.Get("/", cache.IndexPage(s.pages, s.config.PageCacheTTL(), skipCache), s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/profile/:username/", s.Profile)
	app.Get("/posts/:id/", s.PostDetail)

	auth := app.Group("/auth")
	auth.Get("/signup/", s.SignupPage)
	auth.Post("/signup/", s.Signup)
	auth.Get("/login/", s.LoginPage)
	auth.Post("/login/", s.Login)
	auth.Get("/logout/", s.Logout)

	about := app.Group("/about")
	about.Get("/author/", s.AboutAuthor)
	about.Get("/tech/", s.AboutTech)

	required := s.AuthRequired()
	app.Get("/create/", required, s.PostCreatePage)
	app.Post("/create/", required, s.PostCreate)
	app.Get("/posts/:id/edit/", required, s.PostEditPage)
	app.Post("/posts/:id/edit/", required, s.PostEdit)
	app.Post("/posts/:id/comment/", required, s.AddComment)
	app.Get("/follow/", required, s.FollowIndex)
	app.Get("/profile/:username/follow/", required, s.ProfileFollow)
	app.Get("/profile/:username/unfollow/", required, s.ProfileUnfollow)

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: when
// the server runs on in-memory caches it reports "disabled" and stays ready.
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
		"time": s.now(),
	})
}

// Start listens on the configured port. It blocks until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
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
