package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/interpreter"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

const (
	globalSession      = "_global"
	keyFactSubscribers = "fact_subscribers"
)

// FactService keeps the daily-fact subscriptions and sends a random Quran
// fact to every subscriber on a cron schedule.
type FactService struct {
	store    storage.StateStore
	facts    interpreter.Facts
	notifier FactNotifier
	schedule string
	location *time.Location
	logger   *zap.Logger

	mu  sync.Mutex // guards rng and the subscriber read-modify-write
	rng *rand.Rand
}

// NewFactService creates a fact service. schedule is a five-field cron
// expression evaluated in loc.
func NewFactService(
	store storage.StateStore,
	facts []string,
	schedule string,
	loc *time.Location,
	seed int64,
	logger *zap.Logger,
) *FactService {
	if loc == nil {
		loc = time.UTC
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &FactService{
		store:    store,
		facts:    interpreter.Facts(facts),
		schedule: schedule,
		location: loc,
		logger:   logger,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// SetNotifier sets the notifier (called after handler is created).
func (s *FactService) SetNotifier(notifier FactNotifier) {
	s.notifier = notifier
}

// Random returns a random fact.
func (s *FactService) Random() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facts.Random(s.rng)
}

// Subscribe adds chatID to the daily-fact subscribers.
func (s *FactService) Subscribe(ctx context.Context, chatID int64) error {
	return s.updateSubscribers(ctx, func(ids []int64) []int64 {
		if slices.Contains(ids, chatID) {
			return ids
		}
		return append(ids, chatID)
	})
}

// Unsubscribe removes chatID from the daily-fact subscribers.
func (s *FactService) Unsubscribe(ctx context.Context, chatID int64) error {
	return s.updateSubscribers(ctx, func(ids []int64) []int64 {
		return slices.DeleteFunc(ids, func(id int64) bool { return id == chatID })
	})
}

// Subscribers returns the subscribed chat ids.
func (s *FactService) Subscribers(ctx context.Context) ([]int64, error) {
	data, err := s.store.Load(ctx, globalSession, keyFactSubscribers)
	if errors.Is(err, storage.ErrStateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	return ids, nil
}

func (s *FactService) updateSubscribers(ctx context.Context, fn func([]int64) []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.Subscribers(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(fn(ids))
	if err != nil {
		return fmt.Errorf("encode subscribers: %w", err)
	}
	if err := s.store.Save(ctx, globalSession, keyFactSubscribers, data); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	return nil
}

// Start runs the cron scheduler until ctx is done.
func (s *FactService) Start(ctx context.Context) {
	s.logger.Info("fact service started", zap.String("schedule", s.schedule))

	c := cron.New(cron.WithLocation(s.location))

	_, err := c.AddFunc(s.schedule, func() {
		s.logger.Info("cron triggered: sending daily facts")
		if err := s.SendDaily(ctx); err != nil {
			s.logger.Error("failed to send daily facts", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("fact service stopped")
}

// SendDaily sends one random fact to every subscriber. A failed delivery is
// logged and does not stop the others.
func (s *FactService) SendDaily(ctx context.Context) error {
	if s.notifier == nil {
		return errors.New("fact notifier is not set")
	}

	ids, err := s.Subscribers(ctx)
	if err != nil {
		return err
	}

	fact, ok := s.Random()
	if !ok {
		return nil
	}

	sent := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.notifier.SendFact(ctx, id, fact); err != nil {
			s.logger.Warn("failed to send fact", zap.Int64("chat_id", id), zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("daily facts sent", zap.Int("sent", sent), zap.Int("subscribers", len(ids)))
	return nil
}
