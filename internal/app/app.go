// Package app wires configuration into the static data, the state store and
// the assistant. Both binaries build on it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/config"
	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/quran-assistant-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/quran-assistant-bot/internal/infra/redis"
	"github.com/aliskhannn/quran-assistant-bot/internal/infra/sqlite"
	"github.com/aliskhannn/quran-assistant-bot/internal/knowledge"
	"github.com/aliskhannn/quran-assistant-bot/internal/repository"
	"github.com/aliskhannn/quran-assistant-bot/internal/service"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

type App struct {
	Quran     *repository.QuranRepository
	Knowledge *repository.Knowledge
	Store     storage.StateStore
	Assistant *service.Assistant
	Facts     *service.FactService

	closers []func()
}

// New loads the static data, opens the configured store and builds the
// services. Close releases the store.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	loc, err := entities.ParseTimezoneLocation(cfg.Assistant.Timezone)
	if err != nil {
		return nil, fmt.Errorf("assistant timezone: %w", err)
	}

	quran, err := repository.NewQuranRepository(cfg.Data.QuranPath)
	if err != nil {
		return nil, fmt.Errorf("load quran: %w", err)
	}
	kb, err := repository.LoadKnowledge(cfg.Data.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}

	a := &App{Quran: quran, Knowledge: kb}

	store, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	logger.Info("static data loaded",
		zap.Int("surahs", len(quran.All())),
		zap.Int("entries", len(kb.Entries)),
		zap.Int("facts", len(kb.Facts)),
		zap.String("storage", cfg.Storage.Driver),
	)

	a.Assistant = service.NewAssistant(quran, kb, store, service.Options{
		MaxChatHistory:     cfg.Assistant.MaxChatHistory,
		MaxQuestionHistory: cfg.Assistant.MaxQuestionHistory,
		MaxFeedback:        cfg.Assistant.MaxFeedback,
		Thresholds: knowledge.Thresholds{
			Exact: cfg.Assistant.ExactThreshold,
			Fuzzy: cfg.Assistant.FuzzyThreshold,
		},
		SimilarityFloor: cfg.Assistant.SimilarityFloor,
		RandomSeed:      cfg.Assistant.RandomSeed,
		Location:        loc,
		SessionIdleTTL:  cfg.Assistant.SessionIdleTTL,
	}, logger)

	a.Facts = service.NewFactService(store, kb.Facts, cfg.Facts.Schedule, loc, cfg.Assistant.RandomSeed, logger)

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (storage.StateStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil

	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return pgrepo.NewStateRepository(postgres.NewTransactor(pool)), nil

	case config.DriverRedis:
		s, err := redis.Connect(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorageDriver, cfg.Storage.Driver)
	}
}

// Close releases the store connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
