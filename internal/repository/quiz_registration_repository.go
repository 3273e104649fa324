package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/church-events-api/internal/models"
)

// Unique index names on quiz_registrations, as created by the migrations.
const (
	ConstraintQuizEmail       = "quiz_registrations_email_key"
	ConstraintQuizChurch      = "quiz_registrations_church_name_key"
	ConstraintQuizGroupNumber = "quiz_registrations_group_number_key"
)

const quizRegistrationColumns = `r.id, r.leader_name, r.church_name, r.church_place, r.language, r.zone, r.contact_number, r.alternate_number, r.email, r.group_number, r.participant_count, r.created_at`

// QuizRegistrationRepository stores bible quiz groups and their participants.
type QuizRegistrationRepository struct {
	db *sqlx.DB
}

// NewQuizRegistrationRepository creates a new repository instance.
func NewQuizRegistrationRepository(db *sqlx.DB) *QuizRegistrationRepository {
	return &QuizRegistrationRepository{db: db}
}

// ExistsByEmail reports whether a registration already uses email (exact match).
func (r *QuizRegistrationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM quiz_registrations WHERE email = $1)`, email, "email")
}

// ExistsByChurch reports whether a registration already uses church (exact match).
func (r *QuizRegistrationRepository) ExistsByChurch(ctx context.Context, church string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM quiz_registrations WHERE church_name = $1)`, church, "church")
}

func (r *QuizRegistrationRepository) exists(ctx context.Context, query, value, field string) (bool, error) {
	var found bool
	if err := r.db.GetContext(ctx, &found, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check registration %s: %w", field, err)
	}
	return found, nil
}

// RecentGroupNumbers returns up to limit group numbers, newest first.
func (r *QuizRegistrationRepository) RecentGroupNumbers(ctx context.Context, limit int) ([]string, error) {
	const query = `SELECT group_number FROM quiz_registrations ORDER BY created_at DESC LIMIT $1`
	var numbers []string
	if err := r.db.SelectContext(ctx, &numbers, query, limit); err != nil {
		return nil, fmt.Errorf("list recent group numbers: %w", err)
	}
	return numbers, nil
}

// CreateWithParticipants inserts the registration and all participants in
// one transaction. Nothing is persisted unless every row is.
func (r *QuizRegistrationRepository) CreateWithParticipants(ctx context.Context, reg *models.QuizRegistration, participants []models.QuizParticipant) (err error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	reg.ParticipantCount = len(participants)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quiz registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertRegistration = `INSERT INTO quiz_registrations (id, leader_name, church_name, church_place, language, zone, contact_number, alternate_number, email, group_number, participant_count, created_at)
VALUES (:id, :leader_name, :church_name, :church_place, :language, :zone, :contact_number, :alternate_number, :email, :group_number, :participant_count, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertRegistration, reg); err != nil {
		return fmt.Errorf("insert quiz registration: %w", err)
	}

	if len(participants) > 0 {
		for i := range participants {
			if participants[i].ID == "" {
				participants[i].ID = uuid.NewString()
			}
			participants[i].RegistrationID = reg.ID
			participants[i].Position = i + 1
		}
		const insertParticipants = `INSERT INTO quiz_participants (id, registration_id, position, name, gender, date_of_birth, mobile_no)
VALUES (:id, :registration_id, :position, :name, :gender, :date_of_birth, :mobile_no)`
		if _, err = tx.NamedExecContext(ctx, insertParticipants, participants); err != nil {
			return fmt.Errorf("insert quiz participants: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit quiz registration: %w", err)
	}
	return nil
}

// FindByID loads a registration with its participants. Missing rows surface
// as sql.ErrNoRows.
func (r *QuizRegistrationRepository) FindByID(ctx context.Context, id string) (*models.QuizRegistrationDetail, error) {
	query := `SELECT ` + quizRegistrationColumns + ` FROM quiz_registrations r WHERE r.id = $1`
	var detail models.QuizRegistrationDetail
	if err := r.db.GetContext(ctx, &detail.QuizRegistration, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find quiz registration: %w", err)
	}

	const participantsQuery = `SELECT id, registration_id, position, name, gender, date_of_birth, mobile_no FROM quiz_participants WHERE registration_id = $1 ORDER BY position`
	if err := r.db.SelectContext(ctx, &detail.Participants, participantsQuery, id); err != nil {
		return nil, fmt.Errorf("list quiz participants: %w", err)
	}
	return &detail, nil
}

// List returns registrations matching filter, newest first, with the total count.
func (r *QuizRegistrationRepository) List(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistration, int, error) {
	where, args := quizFilterClause(filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s FROM quiz_registrations r%s ORDER BY r.created_at DESC LIMIT %d OFFSET %d", quizRegistrationColumns, where, pageSize, offset)
	var items []models.QuizRegistration
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list quiz registrations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM quiz_registrations r"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count quiz registrations: %w", err)
	}
	return items, total, nil
}

// ListForExport returns every matching registration with participant names
// joined in position order, oldest group first.
func (r *QuizRegistrationRepository) ListForExport(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistrationExportRow, error) {
	where, args := quizFilterClause(filter)
	query := `SELECT ` + quizRegistrationColumns + `, COALESCE(string_agg(p.name, '; ' ORDER BY p.position), '') AS participant_names
FROM quiz_registrations r LEFT JOIN quiz_participants p ON p.registration_id = r.id` + where + `
GROUP BY r.id ORDER BY r.created_at ASC`
	var rows []models.QuizRegistrationExportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("export quiz registrations: %w", err)
	}
	return rows, nil
}

// Delete removes a registration; participants go with it via ON DELETE CASCADE.
func (r *QuizRegistrationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quiz_registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quiz registration: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Summary aggregates registrations and participants per zone.
func (r *QuizRegistrationRepository) Summary(ctx context.Context) (*models.QuizSummary, error) {
	const zonesQuery = `SELECT zone, COUNT(*) AS registrations, COALESCE(SUM(participant_count), 0) AS participants
FROM quiz_registrations GROUP BY zone ORDER BY zone`
	summary := &models.QuizSummary{Zones: []models.ZoneSummary{}}
	if err := r.db.SelectContext(ctx, &summary.Zones, zonesQuery); err != nil {
		return nil, fmt.Errorf("summarise quiz zones: %w", err)
	}
	for _, z := range summary.Zones {
		summary.TotalRegistrations += z.Registrations
		summary.TotalParticipants += z.Participants
	}

	const latestQuery = `SELECT group_number FROM quiz_registrations ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &summary.LatestGroupNumber, latestQuery); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest group number: %w", err)
	}
	return summary, nil
}

func quizFilterClause(filter models.QuizRegistrationFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(r.leader_name) LIKE $%d OR LOWER(r.church_name) LIKE $%d OR LOWER(r.email) LIKE $%d OR r.group_number = $%d)", n, n, n, n+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%", strings.TrimSpace(filter.Search))
	}
	if filter.Zone != "" {
		conditions = append(conditions, fmt.Sprintf("r.zone = $%d", len(args)+1))
		args = append(args, filter.Zone)
	}
	if filter.Language != "" {
		conditions = append(conditions, fmt.Sprintf("r.language = $%d", len(args)+1))
		args = append(args, filter.Language)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
