package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	imageproxyhandlers "Welog/internal/api/handlers/imageproxy"
	"Welog/internal/api/middleware"
	"Welog/internal/api/routes"
	"Welog/internal/blogapi"
	"Welog/internal/config"
	"Welog/internal/core/auth"
	"Welog/internal/core/comments"
	"Welog/internal/core/imageproxy"
	"Welog/internal/core/likes"
	"Welog/internal/core/notifications"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
	"Welog/internal/db/migrations"
	postgresRepo "Welog/internal/db/postgres"
	"Welog/internal/session"
	"Welog/internal/web"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := blogapi.New(blogapi.Config{
		BaseURL:        cfg.APIURL,
		Token:          session.TokenFromContext,
		OnUnauthorized: session.Expire,
		Logger:         logger,
		Metrics:        blogapi.NewMetrics(registry),
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	backend, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize services
	processor := imageproxy.NewProcessor()
	authService := auth.NewAuthService(client, logger)
	postService := posts.NewPostService(client, processor, logger)
	userService := users.NewUserService(client, logger)
	commentService := comments.NewCommentService(client, logger)
	likeService := likes.NewLikeService(client, logger)
	notificationService := notifications.NewNotificationService(client, logger)

	proxyCfg := cfg.ImageProxy()
	templates, err := web.NewTemplates(web.ImageLinks{Origin: proxyCfg.Origin, Proxy: proxyCfg.Enabled})
	if err != nil {
		return fmt.Errorf("loading web templates: %w", err)
	}
	handlers := web.NewHandlers(web.Deps{
		Auth:            authService,
		Posts:           postService,
		Users:           userService,
		Comments:        commentService,
		Likes:           likeService,
		Notifications:   notificationService,
		Templates:       templates,
		Logger:          logger,
		MaxCommentLevel: cfg.MaxCommentLevel,
	})

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	if cfg.RateLimitPerMinute > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
		rateLimiter.StartSweeper(ctx.Done())
		r.Use(rateLimiter.Middleware)
	}

	if proxyCfg.Enabled {
		proxyService, stopCleanup, err := newImageProxy(proxyCfg, processor, registry, logger)
		if err != nil {
			return err
		}
		defer stopCleanup()
		defer proxyService.Wait()
		routes.RegisterImageProxyRoutes(r, imageproxyhandlers.NewHandler(proxyService, logger))
	}

	routes.RegisterWebRoutes(r, handlers, middleware.NewSessionMiddleware(backend, logger))

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Welog frontend starting", "port", cfg.Port, "api_url", cfg.APIURL,
			"store_backend", cfg.StoreBackend, "image_proxy", proxyCfg.Enabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openBackend builds the client state backend picked by STORE_BACKEND. The
// returned func releases its connections.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Backend, func(), error) {
	noop := func() {}
	opts := cfg.CookieOptions()

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("opening database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("pinging database: %w", err)
		}
		logger.Info("connected to client state database")

		if !cfg.SkipMigrations {
			if err := migrations.Up(db); err != nil {
				_ = db.Close()
				return nil, noop, fmt.Errorf("running migrations: %w", err)
			}
			logger.Info("migrations completed successfully")
		}

		repo := postgresRepo.NewClientStateRepository(db)
		go pruneIdleClients(ctx, repo, cfg.ClientStateIdle, logger)

		backend, err := session.NewClientBackend(session.NewRepoStore(repo), opts)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return backend, func() { _ = db.Close() }, nil

	case config.BackendRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)

		backend, err := session.NewClientBackend(session.NewRedisStore(rdb, cfg.ClientStateIdle), opts)
		if err != nil {
			_ = rdb.Close()
			return nil, noop, err
		}
		return backend, func() { _ = rdb.Close() }, nil

	default:
		backend, err := session.NewCookieStore(opts)
		if err != nil {
			return nil, noop, err
		}
		return backend, noop, nil
	}
}

// pruneIdleClients deletes the stored state of clients idle for longer than
// idle, once an hour until ctx ends. Redis expires keys on its own.
func pruneIdleClients(ctx context.Context, repo session.ClientStateRepository, idle time.Duration, logger *slog.Logger) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteIdle(ctx, time.Now().Add(-idle))
			if err != nil {
				logger.Warn("failed to prune idle client state", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned idle client state", "clients", n)
			}
		}
	}
}

func newImageProxy(cfg imageproxy.Config, processor *imageproxy.ImageProcessor, reg prometheus.Registerer, logger *slog.Logger) (*imageproxy.ImageProxyService, func(), error) {
	cache, err := imageproxy.NewDiskCache(cfg.CachePath, cfg.CacheMaxMB, cfg.CacheTTLDays, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating image cache: %w", err)
	}
	fetcher := imageproxy.NewOriginFetcher(cfg.Origin, cfg.FetchTimeout, cfg.MaxSourceSizeMB)
	service, err := imageproxy.NewService(cache, processor, fetcher, imageproxy.NewMetrics(reg), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating image proxy: %w", err)
	}

	stopCleanup := func() {}
	if cfg.CleanupInterval > 0 {
		stopCleanup = cache.StartCleanupJob(cfg.CleanupInterval)
	}
	logger.Info("image proxy enabled", "origin", cfg.Origin, "cache_path", cfg.CachePath)
	return service, stopCleanup, nil
}
