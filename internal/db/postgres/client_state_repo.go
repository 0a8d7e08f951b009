package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"Welog/internal/session"
)

type postgresClientStateRepo struct {
	db *sql.DB
}

// NewClientStateRepository creates a PostgreSQL client state repository
func NewClientStateRepository(db *sql.DB) session.ClientStateRepository {
	return &postgresClientStateRepo{db: db}
}

// Get returns the value stored for one client key
func (r *postgresClientStateRepo) Get(ctx context.Context, clientID, key string) (string, error) {
	query := `SELECT value FROM client_state WHERE client_id = $1 AND key = $2`

	var value string
	err := r.db.QueryRowContext(ctx, query, clientID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", session.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get client state: %w", classify(err))
	}
	return value, nil
}

// Upsert stores value, replacing any previous one
func (r *postgresClientStateRepo) Upsert(ctx context.Context, clientID, key, value string) error {
	query := `
		INSERT INTO client_state (client_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, clientID, key, value); err != nil {
		return fmt.Errorf("failed to upsert client state: %w", classify(err))
	}
	return nil
}

// Delete removes one client key; a missing key is not an error
func (r *postgresClientStateRepo) Delete(ctx context.Context, clientID, key string) error {
	query := `DELETE FROM client_state WHERE client_id = $1 AND key = $2`

	if _, err := r.db.ExecContext(ctx, query, clientID, key); err != nil {
		return fmt.Errorf("failed to delete client state: %w", classify(err))
	}
	return nil
}

// DeleteIdle removes every client whose newest key is older than before
func (r *postgresClientStateRepo) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM client_state
		WHERE client_id IN (
			SELECT client_id FROM client_state
			GROUP BY client_id
			HAVING MAX(updated_at) < $1
		)`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle client state: %w", classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted client state: %w", err)
	}
	return n, nil
}

// ErrInvalidClientID is returned when the client id is not a UUID.
var ErrInvalidClientID = errors.New("invalid client id")

// classify maps postgres error codes worth telling apart.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_text_representation" {
		return fmt.Errorf("%w: %w", ErrInvalidClientID, err)
	}
	return err
}
