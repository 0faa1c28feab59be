package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-assistant-bot/internal/infra/postgres"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

// Runs against a real database when DATABASE_TEST_URL is set.
func newTestRepository(t *testing.T) *StateRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}

	pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolConfig{MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewStateRepository(postgres.NewTransactor(pool))
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	session := uuid.NewString()

	_, err := r.Load(ctx, session, "chat_history")
	require.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, r.Save(ctx, session, "preferred_style", []byte(`"short"`)))
	require.NoError(t, r.SaveAll(ctx, session, map[string][]byte{
		"preferred_style": []byte(`"formal"`),
		"awaiting_fact":   []byte(`false`),
	}))

	got, err := r.Load(ctx, session, "preferred_style")
	require.NoError(t, err)
	assert.JSONEq(t, `"formal"`, string(got))

	require.NoError(t, r.Delete(ctx, session, "preferred_style"))
	require.NoError(t, r.Delete(ctx, session, "preferred_style"))
	require.NoError(t, r.Delete(ctx, session, "awaiting_fact"))
}

func TestSaveAllRollsBack(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t)
	session := uuid.NewString()

	boom := errors.New("boom")
	err := r.tr.WithinTx(ctx, func(ctx context.Context) error {
		if err := r.Save(ctx, session, "awaiting_fact", []byte(`true`)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = r.Load(ctx, session, "awaiting_fact")
	assert.ErrorIs(t, err, storage.ErrStateNotFound)
}
