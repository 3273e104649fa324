package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/models"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func sampleParticipants() []models.QuizParticipant {
	mobile := "9876543210"
	return []models.QuizParticipant{
		{Name: "Jane Doe", Gender: "Female", DateOfBirth: "2004-02-11", MobileNo: &mobile},
		{Name: "John Roe", Gender: "Male", DateOfBirth: "2005-07-30"},
	}
}

func TestQuizRegistrationRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM quiz_registrations WHERE email = $1)")).
		WithArgs("jane@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.ExistsByEmail(context.Background(), "jane@example.org")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRegistrationRepositoryExistsByChurchError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM quiz_registrations WHERE church_name = $1)")).
		WithArgs("St. Mark's").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ExistsByChurch(context.Background(), "St. Mark's")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestQuizRegistrationRepositoryRecentGroupNumbers(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT group_number FROM quiz_registrations ORDER BY created_at DESC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"group_number"}).AddRow("12").AddRow("11").AddRow("legacy"))

	numbers, err := repo.RecentGroupNumbers(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "11", "legacy"}, numbers)
}

func TestQuizRegistrationRepositoryCreateWithParticipants(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO quiz_registrations").
		WithArgs(anyArgs(12)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO quiz_participants").
		WithArgs(anyArgs(14)...).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	reg := &models.QuizRegistration{LeaderName: "Jane Doe", ChurchName: "St. Mark's", Email: "jane@example.org", GroupNumber: "13"}
	participants := sampleParticipants()
	require.NoError(t, repo.CreateWithParticipants(context.Background(), reg, participants))

	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, 2, reg.ParticipantCount)
	assert.Equal(t, reg.ID, participants[1].RegistrationID)
	assert.Equal(t, 2, participants[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRegistrationRepositoryCreateRollsBackOnParticipantFailure(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO quiz_registrations").
		WithArgs(anyArgs(12)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO quiz_participants").
		WithArgs(anyArgs(14)...).
		WillReturnError(errors.New("value too long for type"))
	mock.ExpectRollback()

	err := repo.CreateWithParticipants(context.Background(), &models.QuizRegistration{GroupNumber: "1"}, sampleParticipants())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert quiz participants")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRegistrationRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT r.id, r.leader_name .* FROM quiz_registrations r WHERE r.id = \\$1").
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "leader_name", "church_name", "church_place", "language", "zone", "contact_number", "alternate_number", "email", "group_number", "participant_count", "created_at"}).
			AddRow("reg-1", "Jane Doe", "St. Mark's", "Kottayam", "English", "North", "98765", nil, "jane@example.org", "4", 2, now))
	mock.ExpectQuery("SELECT id, registration_id, position, name, gender, date_of_birth, mobile_no FROM quiz_participants").
		WithArgs("reg-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "registration_id", "position", "name", "gender", "date_of_birth", "mobile_no"}).
			AddRow("p1", "reg-1", 1, "Jane Doe", "Female", "2004-02-11", "98765").
			AddRow("p2", "reg-1", 2, "John Roe", "Male", "2005-07-30", nil))

	detail, err := repo.FindByID(context.Background(), "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "4", detail.GroupNumber)
	assert.Nil(t, detail.AlternateNumber)
	require.Len(t, detail.Participants, 2)
	assert.Nil(t, detail.Participants[1].MobileNo)
}

func TestQuizRegistrationRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery("FROM quiz_registrations r WHERE r.id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestQuizRegistrationRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM quiz_registrations r WHERE (LOWER(r.leader_name) LIKE $1 OR LOWER(r.church_name) LIKE $1 OR LOWER(r.email) LIKE $1 OR r.group_number = $2) AND r.zone = $3 ORDER BY r.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("%mark%", "Mark", "North").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_number"}).AddRow("reg-1", "4"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM quiz_registrations r WHERE")).
		WithArgs("%mark%", "Mark", "North").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.QuizRegistrationFilter{Search: "Mark", Zone: "North", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRegistrationRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM quiz_registrations WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}

func TestQuizRegistrationRepositorySummary(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewQuizRegistrationRepository(db)

	mock.ExpectQuery("SELECT zone, COUNT\\(\\*\\) AS registrations").
		WillReturnRows(sqlmock.NewRows([]string{"zone", "registrations", "participants"}).
			AddRow("North", 3, 14).
			AddRow("South", 2, 7))
	mock.ExpectQuery("SELECT group_number FROM quiz_registrations ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"group_number"}).AddRow("5"))

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalRegistrations)
	assert.Equal(t, 21, summary.TotalParticipants)
	assert.Equal(t, "5", summary.LatestGroupNumber)
}
