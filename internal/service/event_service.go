package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/internal/repository"
	"github.com/noah-isme/church-events-api/pkg/database"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

type eventStore interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	CreateRegistration(ctx context.Context, reg *models.EventRegistration, capacity int) error
	ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error)
}

type eventNotifier interface {
	NotifyEventRegistration(ctx context.Context, event models.Event, reg models.EventRegistration)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// EventService manages events and public sign-ups.
type EventService struct {
	repo      eventStore
	notifier  eventNotifier
	validator *validator.Validate
	policy    *bluemonday.Policy
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs an event service.
func NewEventService(repo eventStore, notifier eventNotifier, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		repo:      repo,
		notifier:  notifier,
		validator: validate,
		policy:    bluemonday.UGCPolicy(),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// ListUpcoming returns published events that have not started yet.
func (s *EventService) ListUpcoming(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error) {
	from := s.now().UTC()
	return s.list(ctx, models.EventFilter{PublishedOnly: true, UpcomingFrom: &from, Search: search, Page: page, PageSize: pageSize})
}

// ListAll returns every event for administrators.
func (s *EventService) ListAll(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error) {
	return s.list(ctx, models.EventFilter{Search: search, Page: page, PageSize: pageSize})
}

func (s *EventService) list(ctx context.Context, filter models.EventFilter) ([]models.Event, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns an event. Unpublished events are hidden unless includeDrafts.
func (s *EventService) Get(ctx context.Context, id string, includeDrafts bool) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if !event.Published && !includeDrafts {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found")
	}
	return event, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, req dto.EventRequest) (*models.Event, error) {
	event, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, s.mapWriteError(err, "failed to create event")
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("slug", event.Slug))
	return event, nil
}

// Update replaces an event's details.
func (s *EventService) Update(ctx context.Context, id string, req dto.EventRequest) (*models.Event, error) {
	existing, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	event, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	event.ID = existing.ID
	event.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found")
		}
		return nil, s.mapWriteError(err, "failed to update event")
	}
	event.RegisteredCount = existing.RegisteredCount
	return event, nil
}

// Delete removes an event with its sign-ups.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// Register signs an attendee up for a published, open event and sends the
// confirmation.
func (s *EventService) Register(ctx context.Context, eventID string, req dto.EventRegistrationRequest) (*dto.EventRegistrationResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Church = strings.TrimSpace(req.Church)
	req.Notes = strings.TrimSpace(req.Notes)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRegistration("event", OutcomeInvalid)
		return nil, appErrors.Clone(appErrors.ErrValidation, FirstValidationMessage(err))
	}

	event, err := s.Get(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if !event.RegistrationOpen(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrRegistrationClosed, "Registration for this event is closed")
	}
	if event.Full() {
		return nil, appErrors.Clone(appErrors.ErrEventFull, "This event is fully booked")
	}

	reg := &models.EventRegistration{
		EventID:  event.ID,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Church:   req.Church,
		Notes:    s.policy.Sanitize(req.Notes),
	}
	if err := s.repo.CreateRegistration(ctx, reg, event.Capacity); err != nil {
		if errors.Is(err, repository.ErrCapacityReached) {
			return nil, appErrors.Clone(appErrors.ErrEventFull, "This event is fully booked")
		}
		if constraint, ok := database.UniqueViolation(err); ok && constraint == repository.ConstraintEventRegistrationEmail {
			s.metrics.RecordRegistration("event", OutcomeDuplicate)
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "Duplicate email: "+req.Email)
		}
		s.metrics.RecordRegistration("event", OutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	s.metrics.RecordRegistration("event", OutcomeSuccess)
	s.logger.Info("event registration recorded", zap.String("event_id", event.ID), zap.String("registration_id", reg.ID))

	if s.notifier != nil {
		s.notifier.NotifyEventRegistration(ctx, *event, *reg)
	}
	return &dto.EventRegistrationResponse{Success: true, Message: "Registration successful", RegistrationID: reg.ID}, nil
}

// ListRegistrations returns sign-ups for an event.
func (s *EventService) ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	if _, err := s.Get(ctx, eventID, true); err != nil {
		return nil, err
	}
	regs, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, nil
}

func (s *EventService) fromRequest(req dto.EventRequest) (*models.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Venue = strings.TrimSpace(req.Venue)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, FirstValidationMessage(err))
	}
	if req.RegistrationDeadline != nil && req.RegistrationDeadline.After(req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Registration deadline must be before the event starts")
	}
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug is invalid")
	}
	return &models.Event{
		Title:                req.Title,
		Slug:                 slug,
		Description:          s.policy.Sanitize(req.Description),
		Venue:                req.Venue,
		StartsAt:             req.StartsAt.UTC(),
		RegistrationDeadline: req.RegistrationDeadline,
		Capacity:             req.Capacity,
		Published:            req.Published,
	}, nil
}

func (s *EventService) mapWriteError(err error, msg string) error {
	if constraint, ok := database.UniqueViolation(err); ok && constraint == repository.ConstraintEventSlug {
		return appErrors.Clone(appErrors.ErrConflict, "An event with this slug already exists")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, msg)
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
