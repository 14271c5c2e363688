package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-autoresign/internal/application/notification"
	"github.com/go-autoresign/internal/application/poller"
	"github.com/go-autoresign/internal/application/resolver"
	"github.com/go-autoresign/internal/application/scanner"
	"github.com/go-autoresign/internal/config"
	"github.com/go-autoresign/internal/domain"
	"github.com/go-autoresign/internal/infrastructure/awsconf"
	"github.com/go-autoresign/internal/infrastructure/chess"
	"github.com/go-autoresign/internal/infrastructure/dynamo"
	"github.com/go-autoresign/internal/infrastructure/memory"
	s3infra "github.com/go-autoresign/internal/infrastructure/s3"
	"github.com/go-autoresign/internal/infrastructure/smtp"
	"github.com/go-autoresign/internal/infrastructure/sns"
	"github.com/go-autoresign/internal/pkg/clock"
	"github.com/go-autoresign/internal/pkg/i18n"
	transporthttp "github.com/go-autoresign/internal/transport/http"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// store is what the services need from a storage backend.
type store interface {
	FindNotificationCandidates(ctx context.Context, q domain.NotificationQuery) ([]domain.Game, error)
	FindResolutionCandidates(ctx context.Context, q domain.ResolutionQuery) ([]domain.Game, error)
	MarkNotified(ctx context.Context, ids []string, at time.Time) ([]string, error)
	Resolve(ctx context.Context, gameID string, result domain.Result, at time.Time) error
}

type playerStore interface {
	Get(ctx context.Context, playerID string) (*domain.Player, error)
	GetMany(ctx context.Context, playerIDs []string) ([]domain.Player, error)
	AddScore(ctx context.Context, playerID string, delta float64) error
	SetScore(ctx context.Context, playerID string, score float64) error
}

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file found, reading from environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	games, players, pub, sink, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}

	translations, err := i18n.NewProvider(cfg.DefaultLocale)
	if err != nil {
		return err
	}
	var limiter *rate.Limiter
	if cfg.MailRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.MailRate), max(cfg.MailBurst, 1))
	}

	rules := chess.NewRules()
	clk := clock.Real{}

	scanSvc, err := scanner.NewService(scanner.ServiceDeps{
		Games: games,
		Clock: clk,
		Params: scanner.Params{
			NotifyThresholdHours: cfg.NotifyHours,
			ResolveDelayHours:    cfg.ResolveHours,
			MinHistoryLength:     cfg.MinHistory,
		},
		Logger: logger.With("component", "scanner"),
	})
	if err != nil {
		return err
	}
	notifySvc := notification.NewService(notification.ServiceDeps{
		Players:      players,
		Rules:        rules,
		Mailer:       smtp.NewMailer(cfg),
		Translations: translations,
		Limiter:      limiter,
		GameURLBase:  cfg.GameURLBase,
		Logger:       logger.With("component", "notification"),
	})
	resolveDeps := resolver.ServiceDeps{
		Games:   games,
		Players: players,
		Rules:   rules,
		Clock:   clk,
		Logger:  logger.With("component", "resolver"),
	}
	if pub != nil {
		resolveDeps.Publisher = pub
	}
	resolveSvc := resolver.NewService(resolveDeps)

	pollDeps := poller.Deps{
		Scanner:    scanSvc,
		Notifier:   notifySvc,
		Resolver:   resolveSvc,
		Clock:      clk,
		Interval:   cfg.PollInterval(),
		DelayHours: cfg.ResolveHours,
		Logger:     logger.With("component", "poller"),
	}
	if sink != nil {
		pollDeps.Sink = sink
	}
	loop, err := poller.New(pollDeps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.StatusPort),
		Handler: transporthttp.NewRouter(ctx, &transporthttp.Deps{
			Ticks:     loop,
			Interval:  cfg.PollInterval().String(),
			Languages: i18n.Languages(),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("status server starting", "port", cfg.StatusPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server error", "err", err)
		}
	}()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()
	logger.Info("auto-resign worker started",
		"interval", cfg.PollInterval(),
		"notify_hours", cfg.NotifyHours,
		"resolve_hours", cfg.ResolveHours,
		"min_history", cfg.MinHistory,
		"storage", cfg.StorageType,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced status server shutdown", "err", err)
	}
	if err := <-loopDone; err != nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}

// buildBackends wires the storage backend and the optional AWS side channels.
// pub and sink are nil when their topic or bucket is not configured.
func buildBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, playerStore, *sns.Publisher, *s3infra.ReportStore, error) {
	if cfg.StorageType == config.StorageMemory {
		logger.Warn("using in-memory storage, state is lost on exit")
		m := memory.New()
		return m, m, nil, nil, nil
	}

	awsCfg, err := awsconf.Load(ctx, cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	client := dynamo.NewClient(awsCfg, cfg)
	if err := dynamo.Bootstrap(ctx, client, cfg.DynamoTables); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("bootstrap tables: %w", err)
	}

	var pub *sns.Publisher
	if cfg.SNSTopicARN != "" {
		pub = sns.NewPublisher(sns.NewClient(awsCfg, cfg), cfg.SNSTopicARN)
	}
	var sink *s3infra.ReportStore
	if cfg.ReportBucket != "" {
		sink = s3infra.NewReportStore(s3infra.NewClient(awsCfg, cfg), cfg.ReportBucket)
	}
	return dynamo.NewGameRepo(client, cfg.DynamoTables.Games),
		dynamo.NewPlayerRepo(client, cfg.DynamoTables.Players),
		pub, sink, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
