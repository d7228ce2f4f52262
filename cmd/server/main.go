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

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/bordertrade/internal/api"
	"github.com/mmynk/bordertrade/internal/assistant"
	"github.com/mmynk/bordertrade/internal/auth"
	"github.com/mmynk/bordertrade/internal/config"
	"github.com/mmynk/bordertrade/internal/grab"
	"github.com/mmynk/bordertrade/internal/metrics"
	"github.com/mmynk/bordertrade/internal/middleware"
	"github.com/mmynk/bordertrade/internal/scheduler"
	"github.com/mmynk/bordertrade/internal/service"
	"github.com/mmynk/bordertrade/internal/storage/seed"
	"github.com/mmynk/bordertrade/internal/storage/sqlite"
	"github.com/mmynk/bordertrade/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "configs/config.yaml"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.SQLitePath)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.SQLitePath)

	if cfg.Database.Seed {
		if err := seedStore(ctx, store, cfg.Database.FixturesPath); err != nil {
			return err
		}
	}

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)

	var bot *assistant.Assistant
	if cfg.AssistantEnabled() {
		gen, err := assistant.NewGenAIGenerator(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model)
		if err != nil {
			return fmt.Errorf("initialize assistant: %w", err)
		}
		bot = assistant.New(gen, store)
		slog.Info("Assistant enabled", "model", cfg.Assistant.Model)
	}

	hub := grab.NewHub(store, grab.WithMetrics(m), grab.WithQueueSize(cfg.Grab.QueueSize))

	// A nil *grab.Simulator must not reach the scheduler as a non-nil Ticker.
	var ticker scheduler.Ticker
	if cfg.Schedule.GrabTickCron != "" {
		ticker = grab.NewSimulator(hub, store, cfg.Grab.Seed, cfg.Grab.ClaimsTick)
	}
	sched := scheduler.New(ctx, store, ticker, m)
	if err := sched.RegisterAll(cfg.Schedule.MonthlyResetCron, cfg.Schedule.GrabTickCron); err != nil {
		return err
	}

	rest := api.NewServer(api.Config{
		Store:          store,
		Authenticator:  auth.NewPasswordAuthenticator(store),
		JWTManager:     jwtManager,
		Assistant:      bot,
		Metrics:        m,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	router := rest.Routes()
	router.Handle("/metrics", m.Handler())

	svc := service.NewAllocationService(store, hub, service.WithMetrics(m))
	rpcPath, rpcHandler := service.NewAllocationServiceHandler(svc, connect.WithInterceptors(
		middleware.RequireAuth(jwtManager),
		middleware.LoggingInterceptor(m),
		middleware.RequireRole(service.DefaultRoles, service.RoleOverrides),
	))
	router.Mount(rpcPath, rpcHandler)

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           h2c.NewHandler(middleware.CORS(router), &http2.Server{}),
		ReadHeaderTimeout: cfg.Server.RequestTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("Server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sched.Start()
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		sched.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func seedStore(ctx context.Context, store *sqlite.SQLiteStore, path string) error {
	var (
		fixtures *seed.Fixtures
		err      error
	)
	if path != "" {
		fixtures, err = seed.LoadFile(path)
	} else {
		fixtures, err = seed.Default()
	}
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}

	applied, err := seed.ApplyIfEmpty(ctx, store, fixtures)
	if err != nil {
		return fmt.Errorf("seed storage: %w", err)
	}
	if applied {
		slog.Info("Storage seeded", "groups", len(fixtures.Groups), "orders", len(fixtures.Orders))
	}
	return nil
}
