package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/codexhunt/internal/config"
	"github.com/playperu/codexhunt/internal/database"
	"github.com/playperu/codexhunt/internal/game"
	"github.com/playperu/codexhunt/internal/handler/health"
	"github.com/playperu/codexhunt/internal/migrations"
	"github.com/playperu/codexhunt/internal/notify"
	"github.com/playperu/codexhunt/internal/questions"
	"github.com/playperu/codexhunt/internal/random"
	"github.com/playperu/codexhunt/internal/server"
	"github.com/playperu/codexhunt/internal/store"
	"github.com/playperu/codexhunt/internal/telemetry"
	"github.com/playperu/codexhunt/internal/throttle"
	"github.com/playperu/codexhunt/internal/token"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// --- Tracing ---
	shutdownTracing, err := telemetry.Setup(ctx, "codexhunt", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	// --- SQLite ---
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Redis (optional) ---
	var (
		limiter   *throttle.Limiter
		redisPing health.Checker
	)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		limiter = throttle.New(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
		redisPing = health.Redis(rdb)
		logger.Info("connected to redis")
	} else {
		logger.Warn("REDIS_URL not set, login throttling disabled")
	}

	// --- Game ---
	bank, err := loadQuestions(cfg.QuestionsPath)
	if err != nil {
		return err
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}

	var notifier notify.Notifier
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFrom != "" {
		notifier = notify.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.SMSCountryCode)
	} else {
		logger.Warn("twilio not configured, team codes will be logged")
		notifier = notify.NewLog(logger, cfg.SMSCountryCode)
	}

	svc, err := game.New(game.Deps{
		Store:         store.New(db),
		Signer:        token.NewSigner(cfg.SigningKey, cfg.TokenTTL),
		Notifier:      notifier,
		Questions:     bank,
		Random:        random.New(seed),
		Logger:        logger,
		RegisterKey:   cfg.RegisterKey,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating game service: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, svc, server.Options{
		Limiter:    limiter,
		TrustProxy: cfg.TrustProxy,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
				"sqlite": health.SQLite(db),
				"redis":  redisPing,
			}).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func loadQuestions(path string) (questions.Bank, error) {
	if path == "" {
		return questions.Default()
	}
	bank, err := questions.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading questions from %s: %w", path, err)
	}
	return bank, nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
