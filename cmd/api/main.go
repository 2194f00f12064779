package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/idp-tracker/idp-api/config"
	"github.com/idp-tracker/idp-api/internal/cache"
	"github.com/idp-tracker/idp-api/internal/handlers"
	"github.com/idp-tracker/idp-api/internal/middleware"
	"github.com/idp-tracker/idp-api/internal/repository"
	"github.com/idp-tracker/idp-api/internal/services"
	"github.com/idp-tracker/idp-api/pkg/db"
	"github.com/idp-tracker/idp-api/pkg/logger"
	"github.com/idp-tracker/idp-api/pkg/metrics"
	"github.com/idp-tracker/idp-api/pkg/profiling"
	"github.com/idp-tracker/idp-api/pkg/tracing"
)

// registerAuthRoutes registers the public authentication routes
func registerAuthRoutes(
	group *gin.RouterGroup,
	authRateLimiter *middleware.RateLimiter,
	registerRateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
) {
	auth := group.Group("/auth")
	auth.POST("/login", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), authHandler.Login)
	auth.POST("/register", registerRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), authHandler.Register)
	auth.POST("/logout", authHandler.Logout)
}

// registerProtectedRoutes registers all routes behind the session middleware
func registerProtectedRoutes(
	group *gin.RouterGroup,
	cfg *config.Config,
	generalRateLimiter *middleware.RateLimiter,
	authService services.AuthServiceInterface,
	userHandler *handlers.UserHandler,
	idpHandler *handlers.IDPHandler,
	taskHandler *handlers.TaskHandler,
	commentHandler *handlers.CommentHandler,
	templateHandler *handlers.TemplateHandler,
) {
	protected := group.Group("")
	protected.Use(generalRateLimiter.Middleware())
	protected.Use(middleware.SessionMiddleware(authService, cfg.Session))
	protected.Use(middleware.BodySizeLimitMiddleware(1 * 1024 * 1024))

	// Profile
	protected.GET("/users/me", userHandler.Me)
	protected.PATCH("/users/me", userHandler.UpdateMe)

	// Development plans
	protected.POST("/idps", idpHandler.Create)
	protected.GET("/idps", idpHandler.List)
	protected.GET("/idps/:id", idpHandler.GetByID)
	protected.GET("/idps/mentees/list", idpHandler.ListMentees)
	protected.PATCH("/idps/:id/close", idpHandler.Close)
	protected.DELETE("/idps/:id", idpHandler.Delete)

	// Tasks
	protected.POST("/tasks", taskHandler.Create)
	protected.GET("/tasks/idp/:idpId", taskHandler.ListByIDP)
	protected.GET("/tasks/:id", taskHandler.GetByID)
	protected.PATCH("/tasks/:id", taskHandler.Update)
	protected.DELETE("/tasks/:id", taskHandler.Delete)

	// Comments
	protected.POST("/comments", commentHandler.Create)
	protected.GET("/comments/task/:taskId", commentHandler.ListByTask)
	protected.PATCH("/comments/:id", commentHandler.Update)
	protected.DELETE("/comments/:id", commentHandler.Delete)

	// Template catalog (read-only)
	protected.GET("/templates/categories", templateHandler.Categories)
	protected.GET("/templates/by-category/:category", templateHandler.ByCategory)
	protected.GET("/templates/search", templateHandler.Search)
	protected.GET("/templates/:id", templateHandler.GetByID)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting IDP API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Continuous profiling (no-op unless enabled)
	stopProfiler, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Error("Failed to initialize profiler", zap.Error(err))
	} else {
		defer stopProfiler()
	}

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations run separately via the migrate command

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	idpRepo := repository.NewIDPRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)

	// Template catalog cache, warmed synchronously before accepting requests
	templateCache := cache.NewTemplateCache(
		templateRepo.FetchCategoriesFromDB,
		templateRepo.FetchByCategoryFromDB,
		cfg.Cache.TemplateTTLSeconds,
	)
	if cfg.Cache.DisableTemplateCache {
		logger.Warn("Template cache is DISABLED - reading from database on every request")
	} else {
		if err := templateCache.Initialize(); err != nil {
			logger.Fatal("Failed to initialize template cache", zap.Error(err))
		}
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionRepo, cfg)
	userService := services.NewUserService(userRepo)
	idpService := services.NewIDPService(idpRepo)
	taskService := services.NewTaskService(taskRepo, idpRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo, idpRepo)
	templateService := services.NewTemplateService(templateRepo, templateCache, !cfg.Cache.DisableTemplateCache)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Session)
	userHandler := handlers.NewUserHandler(userService)
	idpHandler := handlers.NewIDPHandler(idpService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	templateHandler := handlers.NewTemplateHandler(templateService)

	// Health check: report cache as ready when it is disabled
	cacheReadyFunc := templateCache.IsReady
	if cfg.Cache.DisableTemplateCache {
		cacheReadyFunc = func() bool { return true }
	}
	healthHandler := handlers.NewHealthHandler(
		func(c *gin.Context) error { return pool.Ping(c.Request.Context()) },
		cacheReadyFunc,
	)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only allow configured origins; session cookies need credentials
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters: strict on login to slow credential guessing
	generalRateLimiter := middleware.NewRateLimiter(100, 200)      // 100 req/sec, burst of 200
	authRateLimiter := middleware.NewRateLimiter(5, 10)            // 5 req/sec, burst of 10
	registerRateLimiter := middleware.NewRateLimiter(2.0/300.0, 3) // 2 per 5 min, burst of 3

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, authRateLimiter, registerRateLimiter, authHandler)
	registerProtectedRoutes(v1, cfg, generalRateLimiter, authService,
		userHandler, idpHandler, taskHandler, commentHandler, templateHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
