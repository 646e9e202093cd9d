package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/onevector/talenthub/internal/auth"
	"github.com/onevector/talenthub/internal/background"
	"github.com/onevector/talenthub/internal/config"
	"github.com/onevector/talenthub/internal/database"
	"github.com/onevector/talenthub/internal/handlers"
	middlewareCustom "github.com/onevector/talenthub/internal/middleware"
	"github.com/onevector/talenthub/internal/repositories"
	"github.com/onevector/talenthub/internal/routes"
	"github.com/onevector/talenthub/internal/services"
	"github.com/onevector/talenthub/internal/storage"
	"github.com/onevector/talenthub/migrations"
	pkgauth "github.com/onevector/talenthub/pkg/auth"
	pkghttp "github.com/onevector/talenthub/pkg/http"
	pkglogger "github.com/onevector/talenthub/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(migrateCtx, migrations.FS)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	magicLinkRepo := repositories.NewMagicLinkRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)

	// Security primitives
	hasher := pkgauth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   cfg.Auth.LoginFailureDelay,
		RandomDelay: cfg.Auth.LoginFailureJitter,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)
	ipConfig := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)

	// Outbound email
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	mailer, err := newMailer(startupCtx, cfg.Email, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Resume storage is optional; without a bucket, submissions with a resume are rejected
	var resumes services.ResumeStore
	if cfg.Storage.Bucket != "" {
		store, err := storage.NewS3ResumeStore(startupCtx, cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize resume storage", slog.Any("error", err))
			os.Exit(1)
		}
		resumes = store
	} else {
		logger.Warn("S3_BUCKET_NAME not set, resume uploads disabled")
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, hasher, tokenManager, cfg.Auth.SessionTokenExpiry, timingDelay, logger, auditLogger)
	resetService := services.NewPasswordResetService(userRepo, hasher, mailer, cfg.Email.FrontendURL, cfg.Auth.ResetTokenExpiry, logger, auditLogger)
	magicLinkService := services.NewMagicLinkService(magicLinkRepo, mailer, cfg.Email.FrontendURL, cfg.Auth.MagicLinkExpiry, cfg.Auth.MagicLinkMaxAttempts, logger, auditLogger)
	userService := services.NewUserService(userRepo, hasher, logger)
	candidateService := services.NewCandidateService(candidateRepo, resumes, hasher, logger, auditLogger)

	// Bootstrap first admin user if configured
	if cfg.Auth.AdminEmail != "" {
		if err := userService.EnsureAdmin(startupCtx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logger.Error("failed to ensure admin user", slog.Any("error", err))
		}
	}
	startupCancel()

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	authLimit := middlewareCustom.DefaultAuthRateLimit(ipConfig)
	authLimit.RequestsPerMinute = cfg.Auth.RateLimitPerMinute
	apiLimit := middlewareCustom.RateLimitConfig{RequestsPerMinute: 300, IPConfig: ipConfig}

	routes.RegisterRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, resetService, ipConfig),
		MagicLink:  handlers.NewMagicLinkHandler(magicLinkService),
		Candidates: handlers.NewCandidateHandler(candidateService, userService),
	}, tokenManager, authLimit, apiLimit)

	router.Get("/health", handlers.Health(db))

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupManager := background.NewCleanupManager(magicLinkRepo, userRepo, logger, cfg.Auth.CleanupInterval)
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// newMailer selects the outbound email transport
func newMailer(ctx context.Context, cfg config.EmailConfig, logger *slog.Logger) (services.Mailer, error) {
	if cfg.Transport == "ses" {
		return services.NewSESMailer(ctx, cfg.AWSRegion, cfg.FromAddress, logger)
	}
	return services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromAddress, logger), nil
}
