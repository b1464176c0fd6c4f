// Package server wires the application together and manages the HTTP server
// lifecycle: initialization, routing, graceful shutdown, and the background
// maintenance tasks that execute due deletions and prune expired state.
//
// Every component is constructed once in NewServer and handed to its
// consumers explicitly; nothing below this package reaches for shared
// mutable state.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/config"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/handlers"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/repository"
	"github.com/kwamebb/devRecruit-sub001/internal/service"
	"github.com/kwamebb/devRecruit-sub001/internal/storage"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/ratelimit"
	"github.com/kwamebb/devRecruit-sub001/internal/validation"
	"github.com/kwamebb/devRecruit-sub001/migrations"
	"github.com/kwamebb/devRecruit-sub001/scripts"
)

// Handlers contains all HTTP handlers the router dispatches to.
type Handlers struct {
	// AuthHandler manages the GitHub OAuth flow and session lifecycle
	AuthHandler *handlers.AuthHandler

	// ProfileHandler manages profile reads, updates, and onboarding
	ProfileHandler *handlers.ProfileHandler

	// PrivacyHandler manages data export, deletion requests, and privacy settings
	PrivacyHandler *handlers.PrivacyHandler

	// AvatarHandler manages avatar upload and removal
	AvatarHandler *handlers.AvatarHandler

	// MonitoringHandler exposes the admin monitoring surface
	MonitoringHandler *handlers.MonitoringHandler
}

// Server is the DevRecruit API server. It owns the router, the HTTP server,
// and the long-lived components the handlers and maintenance tasks depend on.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database health checks and shutdown; in production it is
	// the *database.Pool the repositories are built on
	Db DBHealthChecker

	// router handles HTTP routing
	router chi.Router

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	// httpServer is the underlying HTTP server
	httpServer *http.Server

	// jwtService issues and validates access and refresh tokens
	jwtService *auth.JWTService

	// mon records errors, security events, and performance measurements
	mon *monitor.Monitor

	// classifier normalizes errors for logging and escalation
	classifier *errclass.Classifier

	// rateLimits tracks per-client token buckets by route category
	rateLimits *ratelimit.Store

	// gdprLogger handles GDPR-compliant logging
	gdprLogger *gdprlog.GDPRLogger

	// sessionRepo and privacyService back the periodic maintenance tasks
	sessionRepo    repository.SessionRepository
	privacyService *service.PrivacyService
}

// NewServer creates a new server instance with all required components.
// Initialization order matters: database first, then logging and
// monitoring, then the services built on both, and finally the routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	pool, err := s.setupDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	if err := s.setupGDPRLogging(); err != nil {
		log.Warn().Err(err).Msg("Failed to set up GDPR logging, falling back to standard logging")
	}

	s.setupMonitoring()
	s.setupRateLimits()

	if err := s.setupServices(pool); err != nil {
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase connects the pool, runs migrations, and seeds demo profiles
// in development. The concrete pool is returned for repository construction
// while the server itself keeps only the health-check view of it.
func (s *Server) setupDatabase() (*database.Pool, error) {
	pool, err := database.Connect(s.Config)
	if err != nil {
		return nil, err
	}
	s.Db = pool

	migrator := migrations.NewMigrator(pool)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if s.Config.App.IsDevelopment() {
		seeder := scripts.NewSeeder(pool)
		if err := seeder.SeedDatabase(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	return pool, nil
}

// setupGDPRLogging initializes GDPR-compliant logging if not already done.
// If a GDPR logger has already been set up through utils.InitLogger,
// this method will use that instance instead of creating a new one.
func (s *Server) setupGDPRLogging() error {
	if utils.GetGDPRLogger() != nil {
		s.gdprLogger = utils.GetGDPRLogger()
		return nil
	}

	gdprLogger, err := gdprlog.NewGDPRLogger(&s.Config.GDPRLogging)
	if err != nil {
		return fmt.Errorf("failed to create GDPR logger: %w", err)
	}

	if err := gdprLogger.SetupLogRotation(); err != nil {
		return fmt.Errorf("failed to set up GDPR log rotation: %w", err)
	}

	s.gdprLogger = gdprLogger
	utils.SetGDPRLogger(gdprLogger)

	log.Info().Msg("GDPR logging configured successfully")
	return nil
}

// setupMonitoring creates the monitor and the error classifier that feeds it.
func (s *Server) setupMonitoring() {
	s.mon = monitor.New(&s.Config.Monitoring, s.Config.App.Environment)
	s.classifier = errclass.New(s.mon, s.Config.Monitoring.MaxRecentErrors)
}

// setupRateLimits builds the per-category limiter store from the configured
// per-minute budgets. The store exists even when limiting is disabled; the
// router just never consults it then.
func (s *Server) setupRateLimits() {
	s.rateLimits = ratelimit.NewStore(perMinuteRate(s.Config.RateLimit.APIPerMinute), 10*time.Minute)
	s.rateLimits.SetRate(constants.RateCategoryAuth, perMinuteRate(s.Config.RateLimit.AuthPerMinute))
	s.rateLimits.SetRate(constants.RateCategoryAPI, perMinuteRate(s.Config.RateLimit.APIPerMinute))
	s.rateLimits.SetRate(constants.RateCategoryUpload, perMinuteRate(s.Config.RateLimit.UploadPerMinute))
}

// perMinuteRate converts a per-minute request budget into a limiter rate.
// The burst equals the budget, so a quiet client may spend its whole minute
// at once and then refills at the steady per-second rate.
func perMinuteRate(budget int) ratelimit.Rate {
	return ratelimit.Rate{
		RequestsPerSecond: float64(budget) / 60,
		Burst:             budget,
	}
}

// setupServices builds the repositories, the object store, the domain
// services, and the handlers on top of them. The session repository and the
// privacy service are kept on the server for the maintenance tasks.
func (s *Server) setupServices(pool *database.Pool) error {
	s.jwtService = auth.NewJWTService(&s.Config.JWT)
	oauth := auth.NewGitHubOAuth(&s.Config.GitHubOAuth)

	profileRepo := repository.NewProfileRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	deletionRepo := repository.NewDeletionRequestRepository(pool)
	exportRepo := repository.NewExportRequestRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool, []byte(s.Config.Privacy.AuditEncryptionKey))

	ctx, cancel := context.WithTimeout(context.Background(), constants.StorageOperationTimeout)
	defer cancel()
	avatarStore, err := storage.NewAvatarStore(ctx, &s.Config.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect avatar storage: %w", err)
	}

	engine := validation.NewEngine()
	emailService := service.NewEmailService(&s.Config.Email)

	// A nil interface skips the section; assigning a nil pointer into the
	// interface would not.
	var notifier service.DeletionNotifier
	if s.Config.Privacy.EnableDeletionEmails {
		notifier = emailService
	}

	var logFinder service.SubjectLogFinder
	if s.gdprLogger != nil && s.Config.GDPRLogging.EnableDataSubjectAPI {
		logFinder = s.gdprLogger
	}

	authService := service.NewAuthService(profileRepo, sessionRepo, s.jwtService, oauth)
	profileService := service.NewProfileService(profileRepo, engine, s.mon)
	avatarService := service.NewAvatarService(profileRepo, auditRepo, avatarStore, s.mon)
	privacyService := service.NewPrivacyService(
		profileRepo,
		deletionRepo,
		exportRepo,
		auditRepo,
		sessionRepo,
		avatarStore,
		notifier,
		logFinder,
		s.mon,
		&s.Config.Privacy,
	)

	s.sessionRepo = sessionRepo
	s.privacyService = privacyService

	s.Handlers = &Handlers{
		AuthHandler:       handlers.NewAuthHandler(authService, s.jwtService, s.classifier),
		ProfileHandler:    handlers.NewProfileHandler(profileService, s.classifier),
		PrivacyHandler:    handlers.NewPrivacyHandler(privacyService, s.classifier),
		AvatarHandler:     handlers.NewAvatarHandler(avatarService, s.classifier),
		MonitoringHandler: handlers.NewMonitoringHandler(s.mon, s.classifier),
	}

	return nil
}

// Start starts the HTTP server and blocks until a server error or a
// shutdown signal (SIGINT, SIGTERM) arrives. Maintenance tasks are started
// alongside the listener.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			// Close immediately if graceful shutdown fails
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// before closing the database and flushing GDPR logs.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")

	if s.Db != nil {
		s.Db.Close()
		log.Info().Msg("Database connection closed")
	}

	if s.gdprLogger != nil {
		if err := s.gdprLogger.CleanupLogs(); err != nil {
			log.Warn().Err(err).Msg("Failed to clean up GDPR logs during shutdown")
		}
	}

	return nil
}

// SetupMaintenanceTasks starts the periodic maintenance loop:
// expired-session cleanup, execution of deletion requests whose grace
// period has passed, and pruning of old export request records. GDPR log
// rotation is not handled here; the logger runs its own daily worker.
func (s *Server) SetupMaintenanceTasks() {
	ticker := time.NewTicker(constants.DBMaintenanceInterval)
	go func() {
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

			if s.sessionRepo != nil {
				if count, err := s.sessionRepo.DeleteExpired(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to cleanup expired sessions")
				} else if count > 0 {
					log.Info().Int64("count", count).Msg("Cleaned up expired sessions")
				}
			}

			if s.privacyService != nil {
				if count, err := s.privacyService.ProcessDueDeletions(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to process due account deletions")
				} else if count > 0 {
					log.Info().Int("count", count).Msg("Processed due account deletions")
				}

				if count, err := s.privacyService.PruneExportRecords(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to prune old export records")
				} else if count > 0 {
					log.Info().Int64("count", count).Msg("Pruned old export records")
				}
			}

			cancel()
		}
	}()
}
