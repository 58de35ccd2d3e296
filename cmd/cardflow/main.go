package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"

	"github.com/rechargehub/cardflow/internal/api"
	"github.com/rechargehub/cardflow/internal/apperr"
	"github.com/rechargehub/cardflow/internal/auth"
	"github.com/rechargehub/cardflow/internal/catalog"
	"github.com/rechargehub/cardflow/internal/database"
	"github.com/rechargehub/cardflow/internal/flow"
	"github.com/rechargehub/cardflow/internal/health"
	"github.com/rechargehub/cardflow/internal/lifecycle"
	"github.com/rechargehub/cardflow/internal/notify"
	"github.com/rechargehub/cardflow/internal/recorder"
	"github.com/rechargehub/cardflow/internal/repository"
	"github.com/rechargehub/cardflow/pkg/config"
	"github.com/rechargehub/cardflow/pkg/graceful"
	"github.com/rechargehub/cardflow/pkg/logger"
	"github.com/rechargehub/cardflow/pkg/metrics"
	pkgredis "github.com/rechargehub/cardflow/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)
	config.WatchLogLevel(v, logger.SetLevel)

	log.Info("starting cardflow service",
		slog.String("env", cfg.AppEnv),
		slog.String("addr", cfg.HTTP.Addr))

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
		return err
	}
	log.Info("database migrations applied")

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.New(ctx, pkgredis.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			PoolTimeout:  cfg.Redis.PoolTimeout,
			IdleTimeout:  cfg.Redis.IdleTimeout,
			MaxRetries:   cfg.Redis.MaxRetries,
		})
		if err != nil {
			return err
		}
		checker.AddCheck("redis", redisClient)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
		if err != nil {
			return err
		}
		notifier = tg
		checker.AddCheck("telegram", health.NewTelegramChecker(tg.Bot()))
	}

	var storage flow.Storage
	if redisClient != nil {
		storage = flow.NewRedisStorage(redisClient.Client, log)
	} else {
		storage = flow.NewMemoryStorage()
	}

	records := recorder.NewPostgresRecorder(db, log)
	controller := flow.NewController(flow.Deps{
		Storage:       storage,
		Verifications: records,
		Purchases:     records,
		Claims:        records,
		Notifier:      notifier,
		Logger:        log,
	})

	janitor := flow.NewJanitor(controller, log, cfg.Flow.SessionTTL, cfg.Flow.JanitorInterval)
	go janitor.Run(ctx)

	authSvc := auth.NewService(repository.NewUserRepository(db, log), cfg.Auth.JWTSecret, log)

	var cards catalog.Provider = catalog.NewPostgresProvider(db, log)
	if redisClient != nil {
		cards = catalog.NewCachedProvider(cards, redisClient.Client, time.Hour)
	}

	// Reference metrics so its init hooks into the flow recorders even if
	// nothing else imports the package.
	metrics.SetActiveSessions(0)

	server := api.NewServer(
		controller,
		authSvc,
		cards,
		checker,
		notifier,
		apperr.NewHandler(log, cfg.Sentry.Enabled),
		log,
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := lifecycle.NewShutdown(log, cfg.HTTP.ShutdownTimeout)
	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}

	err = graceful.NewServer(log, httpServer, cfg.HTTP.ShutdownTimeout).ListenAndServe(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if serr := shutdown.Execute(shutdownCtx); serr != nil {
		log.Error("shutdown hooks failed", slog.Any("error", serr))
	}

	log.Info("cardflow service stopped")

	return err
}
