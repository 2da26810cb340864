package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/stockcentral/internal/cache"
	"github.com/GTDGit/stockcentral/internal/config"
	"github.com/GTDGit/stockcentral/internal/database"
	"github.com/GTDGit/stockcentral/internal/handler"
	"github.com/GTDGit/stockcentral/internal/metrics"
	"github.com/GTDGit/stockcentral/internal/middleware"
	"github.com/GTDGit/stockcentral/internal/models"
	"github.com/GTDGit/stockcentral/internal/repository"
	"github.com/GTDGit/stockcentral/internal/service"
	"github.com/GTDGit/stockcentral/internal/session"
	"github.com/GTDGit/stockcentral/internal/web"
)

// main is the application entrypoint for the Stock Central admin service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting stock central")

	// 3. Connect database
	bootCtx, bootCancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Connect(bootCtx, &cfg.DB)
	bootCancel()
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "file://migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(cfg.Metrics.Prefix, registry)
	log.Info().Str("metrics_prefix", cfg.Metrics.Prefix).Msg("prometheus metrics initialized")

	// 5. Repositories
	catalogRepo := repository.NewCatalogRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Services
	presenter := service.NewItemPresenter(catalogRepo)
	querySvc := service.NewCatalogQueryService(catalogRepo, presenter)
	saveSvc := service.NewStockSaveService(catalogRepo, appMetrics)
	authSvc := service.NewAdminAuthService(adminRepo, cfg.JWTSecret, cfg.JWTTTL)

	// 7. Sessions
	sessions := session.NewManager(session.NewStore(cfg.Session, redisClient), cfg.JWTSecret, cfg.Session)
	log.Info().Str("session_store", cfg.Session.Store).Msg("session store initialized")

	// 8. Handlers
	handlers := &Handlers{
		Health: handler.NewHealthHandler(catalogRepo, redisClient),
		Stock:  handler.NewStockHandler(querySvc, saveSvc, sessions),
		Auth: handler.NewAuthHandler(authSvc, sessions, handler.CookieOptions{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.JWTTTL,
			Secure: cfg.Session.SecureCookies,
		}, appMetrics),
	}

	// 9. Initialize middleware
	adminAuthMw := middleware.NewAdminAuthMiddleware(authSvc, cfg.Auth.CookieName)
	loginLimiter := middleware.NewLoginRateLimiter(cfg.Auth.LoginRatePerMin)

	// 10. Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	tmpl, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse templates")
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(appMetrics.Middleware())
	router.SetHTMLTemplate(tmpl)
	setupRoutes(router, handlers, sessions, adminAuthMw, loginLimiter, appMetrics)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health *handler.HealthHandler
	Stock  *handler.StockHandler
	Auth   *handler.AuthHandler
}

// setupRoutes registers all routes.
func setupRoutes(
	router *gin.Engine,
	handlers *Handlers,
	sessions *session.Manager,
	adminAuthMiddleware *middleware.AdminAuthMiddleware,
	loginLimiter *middleware.LoginRateLimiter,
	appMetrics *metrics.Metrics,
) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(appMetrics.Handler()))
	router.StaticFS("/static", web.Static())

	admin := router.Group("/admin")
	admin.Use(middleware.SecurityHeadersMiddleware())

	// Auth
	admin.POST("/auth/login", loginLimiter.Handle(), handlers.Auth.Login)
	admin.POST("/auth/logout", sessions.Middleware(), middleware.CSRFMiddleware(), handlers.Auth.Logout)

	// Stock grid
	stock := admin.Group("/stock")
	stock.Use(
		sessions.Middleware(),
		adminAuthMiddleware.Handle(),
		middleware.RequireCapability(models.CapabilityManageCatalog),
		middleware.CSRFMiddleware(),
	)
	{
		stock.GET("", handlers.Stock.Show)
		stock.POST("", handlers.Stock.Save)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}
