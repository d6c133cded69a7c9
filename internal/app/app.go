// Package app wires configuration, platform clients and services for the binaries.
package app

import (
	"context"
	"fmt"

	"giveaway-settlement/internal/common/cache"
	"giveaway-settlement/internal/common/config"
	"giveaway-settlement/internal/common/metrics"
	giveawayrepo "giveaway-settlement/internal/features/giveaway/repository/postgres"
	giveawayservice "giveaway-settlement/internal/features/giveaway/service"
	paymentsrepo "giveaway-settlement/internal/features/payments/repository/postgres"
	paymentsservice "giveaway-settlement/internal/features/payments/service"
	quizrepo "giveaway-settlement/internal/features/quiz/repository/redis"
	quizservice "giveaway-settlement/internal/features/quiz/service"
	"giveaway-settlement/internal/platform/opentdb"
	"giveaway-settlement/internal/platform/paystack"
	"giveaway-settlement/internal/platform/postgres"
	"giveaway-settlement/internal/platform/redis"
	"giveaway-settlement/internal/utils/random"
	"giveaway-settlement/internal/workers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Postgres *postgres.Client
	Redis    *redis.Client
	Paystack *paystack.Client

	Giveaways  giveawayservice.GiveawayService
	Quiz       quizservice.QuizService
	TopUps     paymentsservice.TopUpService
	Reconciler *paymentsservice.Reconciler
	Lifecycle  *giveawayservice.LifecycleController
	Winners    *giveawayservice.WinnerSelector
	Recipients *paymentsservice.RecipientRegistrar
	Payouts    *paymentsservice.PayoutScheduler
}

// New connects to Postgres and Redis and builds every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	pg, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if cfg.Postgres.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database schema applied")
	}

	rc, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	gateway := paystack.NewClient(paystack.Config{
		BaseURL:           cfg.Paystack.BaseURL,
		SecretKey:         cfg.Paystack.SecretKey,
		CallbackURL:       cfg.Paystack.CallbackURL,
		Timeout:           cfg.Paystack.Timeout,
		RequestsPerSecond: cfg.Paystack.RequestsPerSecond,
	}, logger.Named("paystack"), m)
	trivia := opentdb.NewClient(cfg.Quiz.ProviderURL, cfg.Quiz.Timeout, logger.Named("opentdb"))

	db := pg.GetDB()
	giveaways := giveawayrepo.NewGiveawayRepository(db)
	participants := giveawayrepo.NewParticipantRepository(db)
	transactions := paymentsrepo.NewTransactionRepository(db)
	rnd := random.CryptoSource{}

	reconciler := paymentsservice.NewReconciler(transactions, gateway, cfg.Paystack.LiveMode, logger.Named("reconciler"), m)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  m,
		Postgres: pg,
		Redis:    rc,
		Paystack: gateway,

		Giveaways: giveawayservice.NewGiveawayService(giveaways, participants,
			giveawayservice.NewCachedAccountResolver(gateway, cache.NewCacheService(rc.Client)), rnd, logger.Named("giveaways")),
		Quiz: quizservice.NewQuizService(trivia, quizrepo.NewRedisQuizRepository(rc.Client),
			giveawayservice.NewEligibilityEngine(participants, logger.Named("eligibility")),
			rnd, cfg.Quiz.AnswerTTL, logger.Named("quiz"), m),
		TopUps:     paymentsservice.NewTopUpService(giveaways, transactions, gateway, logger.Named("topups")),
		Reconciler: reconciler,
		Lifecycle:  giveawayservice.NewLifecycleController(giveaways, logger.Named("lifecycle"), m),
		Winners:    giveawayservice.NewWinnerSelector(giveaways, rnd, logger.Named("winners"), m),
		Recipients: paymentsservice.NewRecipientRegistrar(participants, gateway, 0, logger.Named("recipients")),
		Payouts: paymentsservice.NewPayoutScheduler(giveaways, participants, transactions, gateway, reconciler,
			logger.Named("payouts"), m),
	}, nil
}

// Jobs returns the periodic background jobs.
func (a *App) Jobs() []workers.Job {
	w := a.Config.Workers
	return []workers.Job{
		{Name: "lifecycle_sweep", Interval: w.LifecycleInterval, Run: func(ctx context.Context) error {
			_, err := a.Lifecycle.Sweep(ctx)
			return err
		}},
		{Name: "winner_selection", Interval: w.WinnersInterval, Run: func(ctx context.Context) error {
			_, err := a.Winners.SelectPending(ctx)
			return err
		}},
		{Name: "recipient_registration", Interval: w.RecipientInterval, Run: func(ctx context.Context) error {
			_, err := a.Recipients.Run(ctx)
			return err
		}},
		{Name: "payout", Interval: w.PayoutInterval, Run: func(ctx context.Context) error {
			_, err := a.Payouts.Run(ctx)
			return err
		}},
	}
}

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn("Failed to close redis", zap.Error(err))
	}
	if err := a.Postgres.Close(); err != nil {
		a.Logger.Warn("Failed to close postgres", zap.Error(err))
	}
}
