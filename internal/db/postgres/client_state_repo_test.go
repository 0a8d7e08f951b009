package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Welog/internal/session"
)

const testClientID = "6f1c2b7e-9a43-4d51-8f7e-0c2d4b6a8e11"

func newMockRepo(t *testing.T) (session.ClientStateRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewClientStateRepository(db), mock
}

func TestClientStateRepo_Get(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT value FROM client_state WHERE client_id = \$1 AND key = \$2`).
		WithArgs(testClientID, "token").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("tok"))

	v, err := repo.Get(context.Background(), testClientID, "token")
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientStateRepo_GetMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT value FROM client_state`).
		WithArgs(testClientID, "user").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := repo.Get(context.Background(), testClientID, "user")
	assert.ErrorIs(t, err, session.ErrStateNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientStateRepo_GetInvalidClientID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT value FROM client_state`).
		WithArgs("not-a-uuid", "user").
		WillReturnError(&pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.Get(context.Background(), "not-a-uuid", "user")
	assert.ErrorIs(t, err, ErrInvalidClientID)
	assert.NotErrorIs(t, err, session.ErrStateNotFound)
}

func TestClientStateRepo_Upsert(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO client_state .* ON CONFLICT \(client_id, key\)`).
		WithArgs(testClientID, "postDraft", `{"title":"x"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), testClientID, "postDraft", `{"title":"x"}`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientStateRepo_UpsertError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO client_state`).
		WillReturnError(errors.New("connection reset"))

	err := repo.Upsert(context.Background(), testClientID, "token", "tok")
	assert.ErrorContains(t, err, "connection reset")
}

func TestClientStateRepo_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM client_state WHERE client_id = \$1 AND key = \$2`).
		WithArgs(testClientID, "token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), testClientID, "token"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientStateRepo_DeleteIdle(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM client_state\s+WHERE client_id IN`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteIdle(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
