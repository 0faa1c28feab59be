package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s1, err := Open(path)
	require.NoError(t, err)
	v1, err := s1.AppliedMigrations()
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v2, err := s2.AppliedMigrations()
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, []int{1}, v2)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.Load(ctx, "42", "chat_history")
	require.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, s.Save(ctx, "42", "chat_history", []byte(`[{"role":"user"}]`)))
	require.NoError(t, s.Save(ctx, "42", "chat_history", []byte(`[]`)))

	got, err := s.Load(ctx, "42", "chat_history")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, s.SaveAll(ctx, "42", map[string][]byte{
		"preferred_style": []byte(`"formal"`),
		"awaiting_fact":   []byte(`true`),
	}))
	got, err = s.Load(ctx, "42", "awaiting_fact")
	require.NoError(t, err)
	assert.Equal(t, `true`, string(got))

	_, err = s.Load(ctx, "43", "awaiting_fact")
	assert.ErrorIs(t, err, storage.ErrStateNotFound)

	require.NoError(t, s.Delete(ctx, "42", "awaiting_fact"))
	_, err = s.Load(ctx, "42", "awaiting_fact")
	assert.ErrorIs(t, err, storage.ErrStateNotFound)
}
