//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/pkg/database"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("events"),
		tcpostgres.WithUsername("events"),
		tcpostgres.WithPassword("events"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(dsn, "", nil))

	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestQuizRegistrationRepositoryIntegration(t *testing.T) {
	db := startPostgres(t)
	repo := NewQuizRegistrationRepository(db)
	ctx := context.Background()

	reg := &models.QuizRegistration{
		LeaderName:    "Mary",
		ChurchName:    "Grace Chapel",
		ChurchPlace:   "Kottayam",
		Language:      "English",
		Zone:          "North",
		ContactNumber: "9999999999",
		Email:         "mary@example.org",
		GroupNumber:   "1",
	}
	require.NoError(t, repo.CreateWithParticipants(ctx, reg, sampleParticipants()))

	detail, err := repo.FindByID(ctx, reg.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 2)

	exists, err := repo.ExistsByEmail(ctx, "mary@example.org")
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("duplicate email maps to its constraint", func(t *testing.T) {
		dup := *reg
		dup.ID = ""
		dup.ChurchName = "Other Church"
		dup.GroupNumber = "2"
		err := repo.CreateWithParticipants(ctx, &dup, sampleParticipants())
		constraint, ok := database.UniqueViolation(err)
		require.True(t, ok)
		assert.Equal(t, ConstraintQuizEmail, constraint)
	})

	t.Run("participant failure leaves no parent", func(t *testing.T) {
		broken := &models.QuizRegistration{
			LeaderName:    "John",
			ChurchName:    "Hope Church",
			ChurchPlace:   "Thrissur",
			Language:      "Malayalam",
			Zone:          "South",
			ContactNumber: "8888888888",
			Email:         "john@example.org",
			GroupNumber:   "3",
		}
		participants := sampleParticipants()
		participants[1].ID = detail.Participants[0].ID
		err := repo.CreateWithParticipants(ctx, broken, participants)
		require.Error(t, err)

		if broken.ID != "" {
			_, err = repo.FindByID(ctx, broken.ID)
			assert.ErrorIs(t, err, sql.ErrNoRows)
		}
		exists, err := repo.ExistsByEmail(ctx, "john@example.org")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
