package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/accounts"
	"github.com/anonto42/nano-forum/backend/internal/app"
	"github.com/anonto42/nano-forum/backend/internal/handlers"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/router"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/anonto42/nano-forum/backend/pkg/config"
	"github.com/anonto42/nano-forum/backend/pkg/firebase"
	"github.com/anonto42/nano-forum/backend/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB(log) // Ensure database connections are closed when run returns

	if err := repositories.Migrate(db.SQL); err != nil {
		return err
	}
	log.Info("auto-migrations completed")

	sessionRepo, err := app.SessionRepository(ctx, cfg, db)
	if err != nil {
		return err
	}
	sessions := session.NewManager(sessionRepo, cfg.SessionTTL, cfg.SessionCookieSecure, log)

	store, uploadDir, err := app.UploadStore(ctx, cfg)
	if err != nil {
		return err
	}

	// Firebase sign-in is optional
	var verifier handlers.TokenVerifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return err
		}
		verifier = firebaseApp
	}

	if cfg.AdminBootstrap() {
		svc := accounts.NewService(repositories.NewGormUserRepository(db.SQL))
		admin, created, err := svc.EnsureAdmin(ctx, models.CreateUserRequest{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			return err
		}
		log.Info("admin account ensured", "id", admin.ID, "created", created)
	}

	go sessions.RunPruner(ctx, cfg.SessionPruneInterval)

	e := router.New(router.Dependencies{
		DB:        db.SQL,
		Sessions:  sessions,
		Uploads:   store,
		UploadDir: uploadDir,
		Firebase:  verifier,
		BodyLimit: bodyLimit(cfg.MaxUploadSize),
		Logger:    log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// bodyLimit admits a topic's two files plus the form fields.
func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dK", (2*maxUpload+1<<20)/1024)
}
