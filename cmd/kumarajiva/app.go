package main

import (
	"context"
	"fmt"
	"time"

	"kumarajiva/internal/config"
	"kumarajiva/internal/domain"
	"kumarajiva/internal/repository/sqlstore"
	"kumarajiva/internal/service"
	"kumarajiva/internal/srs"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	maxConnectRetries = 30
	connectRetryDelay = 2 * time.Second
)

// app holds everything the subcommands share
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	loc    *time.Location

	auth    *service.AuthService
	vocab   *service.VocabularyService
	review  *service.ReviewService
	planner *service.PlannerService
	quiz    *service.QuizService
	stats   *service.StatsService
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// bootstrap loads config, connects, migrates and wires the services
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	scheduler, err := srs.NewScheduler(cfg.Learning, loc)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("legacy_mode", cfg.LegacyMode),
	)

	// Connect to database with retries
	db, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Database connection established")

	if err := sqlstore.Migrate(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Database migrations completed")

	// Initialize repositories
	userRepo := sqlstore.NewUserRepo(db)
	vocabRepo := sqlstore.NewVocabularyRepo(db, logger)
	reviewRepo := sqlstore.NewReviewRepo(db, logger)
	progressRepo := sqlstore.NewProgressRepo(db)
	tx := sqlstore.NewTxRunner(db)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		loc:     loc,
		auth:    service.NewAuthService(userRepo, cfg.BotPassword),
		vocab:   service.NewVocabularyService(vocabRepo, tx, scheduler, logger),
		review:  service.NewReviewService(vocabRepo, reviewRepo, tx, scheduler, logger),
		planner: service.NewPlannerService(vocabRepo, reviewRepo, progressRepo, tx, scheduler, logger),
		quiz:    service.NewQuizService(vocabRepo, logger),
		stats:   service.NewStatsService(vocabRepo, progressRepo, scheduler, logger),
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// scope resolves the --owner flag
func (a *app) scope(owner int64) domain.Scope {
	if owner > 0 {
		return domain.UserScope(owner)
	}
	return domain.NewScope(nil, a.cfg.LegacyMode)
}

// connectDatabase opens the configured database, retrying while it comes up
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	var err error
	for i := 0; i < maxConnectRetries; i++ {
		var db *sqlx.DB
		db, err = sqlstore.Open(ctx, cfg.Database.Driver, cfg.DSN())
		if err == nil {
			return db, nil
		}

		logger.Warn("Failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxConnectRetries, err)
}

func runMigrate(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return nil
}
