package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/config"
	"tryout-service/internal/infra/memory"
	"tryout-service/internal/infra/postgres"
	rediscache "tryout-service/internal/infra/redis"
	"tryout-service/internal/logger"
	"tryout-service/internal/metrics"
	transport "tryout-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type stores struct {
	tryouts  app.TryOutStore
	attempts app.AttemptStore
	catalog  app.CatalogStore
	close    func()
}

// openStores uses Postgres when configured and falls back to process memory.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (stores, error) {
	if cfg.Postgres.URL == "" {
		log.Warn("postgres url not configured, data will not survive a restart")
		tryouts := memory.NewTryOutStore()
		return stores{tryouts: tryouts, attempts: tryouts, catalog: memory.NewCatalogStore(), close: func() {}}, nil
	}

	if err := runMigrations(ctx, cfg, log); err != nil {
		return stores{}, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return stores{}, err
	}
	db := postgres.OpenBun(cfg.Postgres.URL)
	tryouts := postgres.NewTryOutStore(pool)
	return stores{
		tryouts:  tryouts,
		attempts: tryouts,
		catalog:  postgres.NewCatalogStore(db),
		close: func() {
			pool.Close()
			_ = db.Close()
		},
	}, nil
}

// cached wraps the try-out store in Redis when configured, else in memory.
func cached(cfg config.Config, store app.TryOutStore, log *zap.Logger) (app.TryOutStore, func()) {
	ttl := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	if cfg.Redis.Addr == "" {
		return memory.NewTryOutCache(store, ttl), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return rediscache.NewTryOutCache(client, store, ttl, log), func() { _ = client.Close() }
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	tryoutStore, closeCache := cached(cfg, st.tryouts, log)
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tryouts := app.NewTryOutService(tryoutStore, log, m)
	analytics := app.NewAnalyticsService(tryoutStore, st.attempts, app.NewFeed(), log)
	attempts := app.NewAttemptService(tryoutStore, st.attempts, analytics, log, m)
	catalog := app.NewCatalogService(st.catalog, log)

	router := transport.NewRouter(
		transport.RouterConfig{JWTSecret: cfg.Auth.JWTSecret, AllowedOrigins: cfg.Server.AllowedOrigins},
		transport.NewTryOutHandler(tryouts, attempts, analytics, log),
		transport.NewCatalogHandler(catalog, log),
		transport.NewWSHandler(analytics, log),
		reg, m, log,
	)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("jwt secret not configured, api is unauthenticated")
	}

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting tryout service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		log.Error("server stopped", zap.Error(err))
		return err
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
