package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/models"
)

func TestEventRepositoryListPublishedUpcoming(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM events e WHERE e.published = TRUE AND e.starts_at >= $1 ORDER BY e.starts_at ASC LIMIT 20 OFFSET 0")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "registered_count"}).AddRow("ev-1", "Youth Retreat", 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM events e WHERE e.published = TRUE AND e.starts_at >= $1")).
		WithArgs(from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.EventFilter{PublishedOnly: true, UpcomingFrom: &from})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].RegisteredCount)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateRegistrationWithinCapacity(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT id FROM events WHERE id = $1 FOR UPDATE")).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM event_registrations WHERE event_id = $1")).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec("INSERT INTO event_registrations").
		WithArgs(anyArgs(8)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reg := &models.EventRegistration{EventID: "ev-1", FullName: "Jane", Email: "jane@example.org"}
	require.NoError(t, repo.CreateRegistration(context.Background(), reg, 5))
	assert.NotEmpty(t, reg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreateRegistrationFull(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("FOR UPDATE").WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT").WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	err := repo.CreateRegistration(context.Background(), &models.EventRegistration{EventID: "ev-1"}, 5)
	assert.ErrorIs(t, err, ErrCapacityReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE events SET").
		WithArgs(anyArgs(10)...).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Event{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
