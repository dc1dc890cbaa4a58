package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/gratitude-journal/internal/config"
	"github.com/and161185/gratitude-journal/internal/crypto"
	"github.com/and161185/gratitude-journal/internal/logger"
	"github.com/and161185/gratitude-journal/internal/migrate"
	"github.com/and161185/gratitude-journal/internal/repository/postgres"
	httpserver "github.com/and161185/gratitude-journal/internal/server/http"
	"github.com/and161185/gratitude-journal/internal/service"
	"github.com/and161185/gratitude-journal/internal/token"
)

func runServe(cmd *cobra.Command, _ []string) error {
	v, err := loadViper(cmd)
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := migrate.Up(ctx, cfg.DSN, log); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := service.EnsureDefaultRoles(ctx, postgres.NewRoleRepo(db)); err != nil {
		return err
	}

	codec, err := token.NewCodec(token.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		return err
	}

	users := postgres.NewUserRepo(db)
	authSvc := service.NewAuthService(users, codec, crypto.NewHasher(cfg.BcryptCost), log)
	entrySvc := service.NewEntryService(postgres.NewEntryRepo(db))

	api := httpserver.New(httpserver.Options{
		Auth:    authSvc,
		Entries: entrySvc,
		Loader:  service.NewIdentityLoader(users),
		Codec:   codec,
		Ready:   db,
		Cookies: httpserver.CookieConfig{
			SameSite: cfg.SameSite(),
			Secure:   cfg.CookieSecure,
			MaxAge:   cfg.RefreshTTL,
		},
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	}

	log.Info("shutdown complete")
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	v, err := loadViper(cmd)
	if err != nil {
		return err
	}
	dsn := v.GetString(config.KeyDSN)
	if dsn == "" {
		return errors.New("dsn is required")
	}
	log, err := logger.New(v.GetString(config.KeyEnv), v.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	return migrate.Up(cmd.Context(), dsn, log)
}
