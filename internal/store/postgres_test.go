package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwellscan/survey-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetSession_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, floors, active_floor, created_at, updated_at FROM sessions WHERE id = \$1`).
		WithArgs("nonexistent-session").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetSession(context.Background(), "nonexistent-session")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSession(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	session := model.NewSession("Lake House")
	floorsJSON, err := json.Marshal(session.Floors)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, floors, active_floor, created_at, updated_at FROM sessions WHERE id = \$1`).
		WithArgs(session.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "floors", "active_floor", "created_at", "updated_at"}).
			AddRow(session.ID, session.Name, floorsJSON, 0, session.CreatedAt, session.UpdatedAt))

	got, err := s.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lake House", got.Name)
	require.Len(t, got.Floors, 1)
	assert.Equal(t, "Ground Floor", got.Floors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveSession_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs(pgxmock.AnyArg(), "Lake House", pgxmock.AnyArg(), 0, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session := model.NewSession("Lake House")
	err := s.SaveSession(context.Background(), &session)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteSession_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM sessions WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteSession(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReport_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs("session-1", pgxmock.AnyArg(), "en", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	report := &model.Report{
		OverallScore: 72,
		Summary:      "Balanced layout",
		Language:     "en",
		GeneratedAt:  time.Now().UTC(),
	}
	err := s.SaveReport(context.Background(), "session-1", report)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetReport_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT report FROM reports WHERE session_id = \$1`).
		WithArgs("session-1").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetReport(context.Background(), "session-1")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
