package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taskhunt_web/internal/api"
	"taskhunt_web/internal/app/service"
	"taskhunt_web/internal/app/worker"
	"taskhunt_web/internal/common/security"
	"taskhunt_web/internal/domain/repository"
	"taskhunt_web/internal/platform/cache"
	"taskhunt_web/internal/platform/config"
	"taskhunt_web/internal/platform/database"
	"taskhunt_web/internal/platform/logger"
	"taskhunt_web/internal/platform/marketplace"
	"taskhunt_web/internal/web"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskhunt-web",
		Short:         "Web front-end for the TaskHunt marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the PostgreSQL session table",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context())
			},
		},
	)
	return root
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func migrate(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := database.Connect(ctx, cfg.DBConnStr, log); err != nil {
		return err
	}
	defer database.Close(log)

	if err := repository.Migrate(ctx, database.DB); err != nil {
		return err
	}
	log.Info("Session table ready")
	return nil
}

// openSessionStore connects the configured backend. The returned func
// releases it.
func openSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.SessionRepository, func(), error) {
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log); err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(cache.RDB), func() { cache.CloseRedis(log) }, nil
	case config.SessionBackendPostgres:
		if err := database.Connect(ctx, cfg.DBConnStr, log); err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(ctx, database.DB); err != nil {
			database.Close(log)
			return nil, nil, err
		}
		return repository.NewPgSessionRepository(database.DB), func() { database.Close(log) }, nil
	}
	return repository.NewMemorySessionRepository(), func() {}, nil
}

func serve(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("Configuration loaded", zap.String("session_backend", cfg.SessionBackend), zap.String("api_base_url", cfg.APIBaseURL))

	security.InitJWT([]byte(cfg.SessionSecret))

	store, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := marketplace.NewClient(cfg.APIBaseURL, cfg.APITimeout, log)
	sessions := service.NewSessionService(store, log)
	services := api.Services{
		Sessions: sessions,
		Auth:     service.NewAuthService(client, sessions, cfg.SessionTTL, log),
		Tasks:    service.NewTaskService(client, sessions, log),
		Profiles: service.NewProfileService(client, log),
	}

	view, err := web.NewRenderer(log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis expires records itself.
	if cfg.SessionBackend != config.SessionBackendRedis {
		reaper := worker.NewSessionReaper(store, cfg.ReaperInterval, log)
		go reaper.Start(ctx)
	}

	var csrfKey []byte
	if cfg.CSRFKey != "" {
		csrfKey = []byte(cfg.CSRFKey)
	}
	router := api.NewRouter(api.RouterConfig{CookieSecure: cfg.CookieSecure, CSRFKey: csrfKey}, services, view, log)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", cfg.HTTPPort, err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}
