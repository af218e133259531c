package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avekrivov/warden-bot/internal/bot"
	"github.com/avekrivov/warden-bot/internal/commands"
	"github.com/avekrivov/warden-bot/internal/configcache"
	"github.com/avekrivov/warden-bot/internal/database"
	"github.com/avekrivov/warden-bot/internal/dedupe"
	"github.com/avekrivov/warden-bot/internal/guildconfig"
	"github.com/avekrivov/warden-bot/internal/health"
	"github.com/avekrivov/warden-bot/internal/jobs"
	"github.com/avekrivov/warden-bot/internal/jobs/handlers"
	"github.com/avekrivov/warden-bot/internal/lifecycle"
	"github.com/avekrivov/warden-bot/internal/middleware"
	"github.com/avekrivov/warden-bot/internal/moderation"
	"github.com/avekrivov/warden-bot/internal/platform"
	"github.com/avekrivov/warden-bot/internal/progression"
	"github.com/avekrivov/warden-bot/internal/ratelimit"
	"github.com/avekrivov/warden-bot/internal/schedule"
	"github.com/avekrivov/warden-bot/internal/store"
	"github.com/avekrivov/warden-bot/pkg/config"
	"github.com/avekrivov/warden-bot/pkg/graceful"
	"github.com/avekrivov/warden-bot/pkg/logger"
	pkgredis "github.com/avekrivov/warden-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Logger, cfg.Sentry.Enabled)
	slog.SetDefault(log)

	log.Info("starting warden bot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_port", cfg.Server.Port))

	if cfg.Sentry.Enabled {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("initialize sentry: %w", err)
		}
		defer sentry.Flush(5 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	documentStore := store.NewPostgresStore(db, log)

	// the cron scheduler and worker queue live in redis, so it is not optional
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("redis address is required")
	}

	redisWrapper, err := pkgredis.New(ctx, pkgredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisWrapper.Close()
	redisClient := redisWrapper.Client

	// redis-backed limiting with an in-memory fallback when redis degrades
	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(redisClient, log),
		ratelimit.NewMemoryLimiter(log),
		log,
	)

	cleaner := ratelimit.NewCleaner(redisClient, log, time.Hour)
	go cleaner.Run(ctx)

	rules := ratelimit.NewRules(cfg.RateLimit)
	config.Watch(v, cfg, rules.Update, log)

	var spamDetector moderation.SpamDetector = moderation.NoopSpamDetector{}
	if spamLimit, spamWindow, err := rules.GetSpamLimit(); err == nil {
		spamDetector = moderation.NewRateSpamDetector(limiter, spamLimit, spamWindow, log)
	}
	filter := moderation.NewFilter(spamDetector)

	configSvc := guildconfig.NewService(documentStore, nil, log)
	configCache := configcache.New(redisClient, configSvc)
	configSvc.SetInvalidator(configCache)

	engine := progression.NewEngine(documentStore, log)
	guard := dedupe.NewRedisGuard(redisClient, dedupe.DefaultTTL, log)

	session, err := bot.NewSession(*cfg)
	if err != nil {
		return err
	}

	client, err := platform.NewDiscordClient(session, log)
	if err != nil {
		return err
	}

	commandSvc := commands.NewService(documentStore, platform.NewCommandRegistrar(client), log)

	// scheduled messages run through asynq's cron scheduler and worker pool
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	scheduler := jobs.NewCronScheduler(redisOpt, log)
	registry := schedule.NewRegistry(documentStore, scheduler, log)

	worker := jobs.NewWorker(redisOpt, cfg.Jobs.Queues, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypeScheduleDispatch, handlers.NewDispatchHandler(client, log))

	processor := bot.NewEventProcessor(configCache, filter, engine, client, log)

	app, err := bot.New(*cfg, log, session, bot.Deps{
		Client:    client,
		Config:    configCache,
		ConfigSvc: configSvc,
		Commands:  commandSvc,
		Engine:    engine,
		Processor: processor,
		Schedules: registry,
		Guard:     guard,
		Limiter:   limiter,
		Rules:     rules,
	})
	if err != nil {
		return err
	}

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	checker.AddCheck("discord", health.NewDiscordChecker(session))
	probes := lifecycle.NewProbes(checker, log)

	httpServer := newObservabilityServer(cfg.Server, probes, log)

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("discord", func(ctx context.Context) error {
		app.Stop()
		return nil
	})
	shutdown.Register("scheduler", func(ctx context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("worker", func(ctx context.Context) error {
		worker.Shutdown()
		return nil
	})

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run()
	}()
	scheduler.Run()

	if err := app.Start(ctx); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.ListenAndServe(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-workerErr:
		if err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	case err := <-serverErr:
		if err != nil {
			log.Error("http server stopped", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.Server))
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}

func newObservabilityServer(cfg config.ServerConfig, probes lifecycle.HealthChecker, log *slog.Logger) *graceful.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	handler := logger.Middleware(middleware.New(log)(mux))

	return graceful.NewServer(log, &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}, shutdownTimeout(cfg))
}

func shutdownTimeout(cfg config.ServerConfig) time.Duration {
	timeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil || timeout <= 0 {
		return 15 * time.Second
	}
	return timeout
}
