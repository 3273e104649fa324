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

// Unique index names on the event tables.
const (
	ConstraintEventSlug              = "events_slug_key"
	ConstraintEventRegistrationEmail = "event_registrations_event_email_key"
)

const eventColumns = `e.id, e.title, e.slug, e.description, e.venue, e.starts_at, e.registration_deadline, e.capacity, e.published, e.created_at, e.updated_at,
(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id) AS registered_count`

// EventRepository provides access to events and their sign-ups.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new repository instance.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching filter ordered by start time with the total count.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	var conditions []string
	var args []interface{}

	if filter.PublishedOnly {
		conditions = append(conditions, "e.published = TRUE")
	}
	if filter.UpcomingFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.starts_at >= $%d", len(args)+1))
		args = append(args, *filter.UpcomingFrom)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.title) LIKE $%d OR LOWER(e.venue) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	listQuery := fmt.Sprintf("SELECT %s FROM events e%s ORDER BY e.starts_at ASC LIMIT %d OFFSET %d", eventColumns, where, pageSize, (page-1)*pageSize)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM events e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// FindByID returns an event with its current registration count.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, title, slug, description, venue, starts_at, registration_deadline, capacity, published, created_at, updated_at)
VALUES (:id, :title, :slug, :description, :venue, :starts_at, :registration_deadline, :capacity, :published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, slug = :slug, description = :description, venue = :venue, starts_at = :starts_at,
registration_deadline = :registration_deadline, capacity = :capacity, published = :published, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an event and its registrations.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateRegistration stores a sign-up. The event row is locked for the
// capacity check so concurrent sign-ups cannot overbook it.
func (r *EventRepository) CreateRegistration(ctx context.Context, reg *models.EventRegistration, capacity int) (err error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event registration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if capacity > 0 {
		if _, err = tx.ExecContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, reg.EventID); err != nil {
			return fmt.Errorf("lock event: %w", err)
		}
		var taken int
		if err = tx.GetContext(ctx, &taken, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, reg.EventID); err != nil {
			return fmt.Errorf("count event registrations: %w", err)
		}
		if taken >= capacity {
			err = ErrCapacityReached
			return err
		}
	}

	const query = `INSERT INTO event_registrations (id, event_id, full_name, email, phone, church, notes, created_at)
VALUES (:id, :event_id, :full_name, :email, :phone, :church, :notes, :created_at)`
	if _, err = tx.NamedExecContext(ctx, query, reg); err != nil {
		return fmt.Errorf("insert event registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit event registration: %w", err)
	}
	return nil
}

// ErrCapacityReached is returned when an event has no seats left.
var ErrCapacityReached = errors.New("event capacity reached")

// ListRegistrations returns sign-ups for an event, oldest first.
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	const query = `SELECT id, event_id, full_name, email, phone, church, notes, created_at FROM event_registrations WHERE event_id = $1 ORDER BY created_at ASC`
	var regs []models.EventRegistration
	if err := r.db.SelectContext(ctx, &regs, query, eventID); err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	return regs, nil
}
