// Package redis stores session state in Redis as JSON strings.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

const keyPrefix = "quran:state"

// Store implements storage.StateStore on Redis. A zero ttl keeps values
// forever.
type Store struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Connect parses url, pings the server and returns a store.
func Connect(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return New(client, ttl), nil
}

func New(client redis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(session, name string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, session, name)
}

func (s *Store) Load(ctx context.Context, session, name string) ([]byte, error) {
	value, err := s.client.Get(ctx, key(session, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key(session, name), err)
	}
	return value, nil
}

func (s *Store) Save(ctx context.Context, session, name string, value []byte) error {
	if err := s.client.Set(ctx, key(session, name), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key(session, name), err)
	}
	return nil
}

func (s *Store) SaveAll(ctx context.Context, session string, values map[string][]byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, value := range values {
			pipe.Set(ctx, key(session, name), value, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, session, name string) error {
	if err := s.client.Del(ctx, key(session, name)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key(session, name), err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

var _ storage.StateStore = (*Store)(nil)
