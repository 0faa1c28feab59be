package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "quran:state:tg-1:chat_history", key("tg-1", "chat_history"))
}

// Runs against a real server when REDIS_TEST_URL is set.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, url, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	session := uuid.NewString()

	_, err = s.Load(ctx, session, "chat_history")
	require.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, s.SaveAll(ctx, session, map[string][]byte{
		"chat_history":  []byte(`[]`),
		"awaiting_fact": []byte(`true`),
	}))

	got, err := s.Load(ctx, session, "awaiting_fact")
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))

	ttl, err := s.client.TTL(ctx, key(session, "awaiting_fact")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.Delete(ctx, session, "awaiting_fact"))
	_, err = s.Load(ctx, session, "awaiting_fact")
	assert.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, s.Delete(ctx, session, "chat_history"))
}

func TestConnectInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url", 0)
	assert.Error(t, err)
}
