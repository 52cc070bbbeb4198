package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventscout/config"
	"eventscout/internal/adapters/auth"
	"eventscout/internal/adapters/email"
	"eventscout/internal/apiclient"
	httpdelivery "eventscout/internal/delivery/http"
	"eventscout/internal/delivery/http/controllers"
	"eventscout/internal/delivery/http/middleware"
	"eventscout/internal/secondary"
	"eventscout/internal/services"
	"eventscout/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	// Primary backend client with the bearer interceptor wired in.
	tokenStore := tokens.NewStore(cfg.TokenFile, logger)
	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	apiclient.RegisterAuthInterceptor(client, tokenStore)

	// Secondary backend. An unreachable store is not fatal: the gateway
	// runs degraded, with reads resolving empty and creates echoing.
	var (
		eventStore   *secondary.EventStore
		speakerStore *secondary.SpeakerStore
		userStore    *secondary.UserStore
		adminStore   *secondary.AdminStore
		identity     *secondary.Identity
	)
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
	}
	if err != nil {
		logger.Warn("secondary store unreachable, running degraded", "error", err)
	} else {
		defer db.Close()
		eventStore = secondary.NewEventStore(db)
		speakerStore = secondary.NewSpeakerStore(db)
		userStore = secondary.NewUserStore(db)
		adminStore = secondary.NewAdminStore(db)
		identity = secondary.NewIdentity(db, cfg.JWTSecret, cfg.JWTExpiry)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "error", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	timeout := cfg.APITimeout
	eventService := services.NewEventService(client, eventStore, logger, timeout)
	speakerService := services.NewSpeakerService(client, speakerStore, eventStore, logger, timeout)
	userService := services.NewUserService(client, userStore, eventStore, logger, timeout)
	adminService := services.NewAdminService(client, adminStore, eventStore, speakerStore, logger, timeout)
	authService := services.NewAuthService(client, identity, tokenStore, emailService, logger, timeout)
	resetService := services.NewPasswordResetService(client, identity, emailService, cfg.AppBaseURL, cfg.ResetTokenExpiry, logger, timeout)
	uploadService := services.NewUploadService(client, cfg.UploadDir, cfg.MaxImageSize, cfg.MaxFileSize, logger, timeout)

	// Restore any stored session before serving traffic.
	authService.Bootstrap(context.Background())

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Events:   controllers.NewEventController(logger, eventService),
		Speakers: controllers.NewSpeakerController(logger, speakerService),
		Users:    controllers.NewUserController(logger, userService),
		Admin:    controllers.NewAdminController(logger, adminService),
		Auth:     controllers.NewAuthController(logger, authService, resetService),
		Upload:   controllers.NewUploadController(logger, uploadService),
	}, verifier)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
