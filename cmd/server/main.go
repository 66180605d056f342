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

	"pixfeed-server/internal/config"
	"pixfeed-server/internal/handler"
	"pixfeed-server/internal/notify"
	"pixfeed-server/internal/repository"
	"pixfeed-server/internal/service"
	"pixfeed-server/internal/telemetry"
	"pixfeed-server/pkg/jwt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Logging.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	store := repository.NewPostgresStore(db)

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.Expiration,
		RefreshTTL: cfg.JWT.RefreshTokenExpiration,
	})
	if err != nil {
		return err
	}

	sender := newSender(cfg, logger)

	authService := service.NewAuthService(store, tokens, cfg.Location(), logger)
	resetService := service.NewResetService(store, sender, cfg.Reset.CodeTTL, logger)
	userService := service.NewUserService(store, logger)
	postService := service.NewPostService(store, logger)
	commentService := service.NewCommentService(store, logger)
	likeService := service.NewLikeService(store)
	saveService := service.NewSaveService(store)

	go resetService.RunPurger(ctx, cfg.Reset.PurgeInterval)

	router := handler.NewRouter(handler.Handlers{
		Auth:       handler.NewAuthHandler(authService, resetService, logger),
		User:       handler.NewUserHandler(userService, resetService, logger),
		Post:       handler.NewPostHandler(postService, logger),
		Comment:    handler.NewCommentHandler(commentService, logger),
		Engagement: handler.NewEngagementHandler(likeService, saveService, logger),
	}, tokens, handler.RouterConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting pixfeed server", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// newSender picks real transports where credentials are configured. A missing
// transport logs messages in development and refuses to send in production,
// since message bodies carry live reset codes.
func newSender(cfg *config.Config, logger *slog.Logger) notify.Sender {
	var fallback notify.Sender = notify.NewLogSender(logger)
	if cfg.Server.IsProduction() {
		fallback = notify.DisabledSender{}
	}

	var email notify.EmailSender = fallback
	if cfg.SMTP.Enabled() {
		email = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	var sms notify.SMSSender = fallback
	if cfg.SMS.Enabled() {
		sms = notify.NewVonageSender(notify.VonageConfig{
			BaseURL:   cfg.SMS.BaseURL,
			APIKey:    cfg.SMS.APIKey,
			APISecret: cfg.SMS.APISecret,
			From:      cfg.SMS.From,
		}, &http.Client{Timeout: cfg.Reset.SendTimeout})
	}

	retry := notify.DefaultRetryConfig()
	retry.MaxTries = cfg.Reset.MaxTries
	retry.Timeout = cfg.Reset.SendTimeout

	return notify.NewDispatcher(email, sms, retry, logger)
}
