package retention

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/dmitrijs2005/kitlibrarian/internal/server/repositories/repomanager"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC)

type countRecorder struct{ n int }

func (r *countRecorder) AddAnonymized(n int) { r.n += n }

func newService(t *testing.T, days int) (*Service, sqlmock.Sqlmock, *sql.DB, *countRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	orig := randomSuffix
	t.Cleanup(func() { randomSuffix = orig })
	randomSuffix = func(n int) (string, error) { return "abc123", nil }

	rec := &countRecorder{}
	svc := NewService(db, repomanager.NewPostgresRepositoryManager(), days, testclock.NewClock(now), logging.Nop{}, rec)
	return svc, mock, db, rec
}

func TestRun_AnonymizesStaleBorrowers(t *testing.T) {
	svc, mock, db, rec := newService(t, 365)
	defer db.Close()

	cutoff := now.Add(-365 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT id, created_at FROM students`).
		WithArgs(cutoff, 500).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("s1", cutoff.AddDate(0, -1, 0)).
			AddRow("s2", cutoff.AddDate(0, -2, 0)))

	for _, id := range []string{"s1", "s2"} {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE students SET name`).
			WithArgs(id, "Anonymized abc123", "0000000000", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2}, res)
	assert.Equal(t, 2, rec.n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SkipsFailedRows(t *testing.T) {
	svc, mock, db, _ := newService(t, 30)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, created_at FROM students`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow("s1", now.AddDate(-1, 0, 0)).
			AddRow("s2", now.AddDate(-1, 0, 0)))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE students`).WithArgs("s1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE students`).WithArgs("s2", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_DisabledWhenDaysNotPositive(t *testing.T) {
	svc, mock, db, rec := newService(t, 0)
	defer db.Close()

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, rec.n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_SelectError(t *testing.T) {
	svc, mock, db, _ := newService(t, 365)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, created_at FROM students`).WillReturnError(errors.New("db down"))

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestRun_SuffixFailureSkipsRow(t *testing.T) {
	svc, mock, db, _ := newService(t, 365)
	defer db.Close()
	randomSuffix = func(int) (string, error) { return "", errors.New("entropy") }

	mock.ExpectQuery(`SELECT id, created_at FROM students`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("s1", now.AddDate(-2, 0, 0)))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
	require.NoError(t, mock.ExpectationsWereMet())
}
