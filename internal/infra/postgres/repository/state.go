package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quran-assistant-bot/internal/infra/postgres"
	"github.com/aliskhannn/quran-assistant-bot/internal/storage"
)

// StateRepository implements storage.StateStore on the session_state table.
type StateRepository struct {
	tr *postgres.Transactor
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(tr *postgres.Transactor) *StateRepository {
	return &StateRepository{tr: tr}
}

// Load returns the value stored under session and key.
func (r *StateRepository) Load(ctx context.Context, session, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM session_state
		WHERE session_id = $1 AND key = $2
	`

	var value []byte
	err := r.tr.Conn(ctx).QueryRow(ctx, query, session, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s/%s: %w", session, key, err)
	}

	return value, nil
}

// Save upserts a single value.
func (r *StateRepository) Save(ctx context.Context, session, key string, value []byte) error {
	query := `
		INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.tr.Conn(ctx).Exec(ctx, query, session, key, value); err != nil {
		return fmt.Errorf("save state %s/%s: %w", session, key, err)
	}

	return nil
}

// SaveAll upserts every value in one transaction.
func (r *StateRepository) SaveAll(ctx context.Context, session string, values map[string][]byte) error {
	return r.tr.WithinTx(ctx, func(ctx context.Context) error {
		for key, value := range values {
			if err := r.Save(ctx, session, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a value; deleting a missing value is not an error.
func (r *StateRepository) Delete(ctx context.Context, session, key string) error {
	query := `
		DELETE FROM session_state
		WHERE session_id = $1 AND key = $2
	`

	if _, err := r.tr.Conn(ctx).Exec(ctx, query, session, key); err != nil {
		return fmt.Errorf("delete state %s/%s: %w", session, key, err)
	}

	return nil
}

var _ storage.StateStore = (*StateRepository)(nil)
