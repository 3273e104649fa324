package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

// QuizCachePrefix namespaces cached quiz admin payloads.
const QuizCachePrefix = "quiz:"

const quizSummaryKey = QuizCachePrefix + "summary"

type quizAdminStore interface {
	FindByID(ctx context.Context, id string) (*models.QuizRegistrationDetail, error)
	List(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistration, int, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*models.QuizSummary, error)
}

// QuizAdminService backs the administrator views of quiz registrations.
type QuizAdminService struct {
	repo       quizAdminStore
	documents  *DocumentService
	cache      *CacheService
	summaryTTL time.Duration
	logger     *zap.Logger
}

// NewQuizAdminService constructs the service. cache may be nil.
func NewQuizAdminService(repo quizAdminStore, documents *DocumentService, cache *CacheService, summaryTTL time.Duration, logger *zap.Logger) *QuizAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaryTTL <= 0 {
		summaryTTL = time.Minute
	}
	return &QuizAdminService{repo: repo, documents: documents, cache: cache, summaryTTL: summaryTTL, logger: logger}
}

// List returns a page of registrations.
func (s *QuizAdminService) List(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistration, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a registration with participants.
func (s *QuizAdminService) Get(ctx context.Context, id string) (*models.QuizRegistrationDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return detail, nil
}

// Document renders the registration form again from stored data.
func (s *QuizAdminService) Document(ctx context.Context, id string) (string, []byte, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	pdf, err := s.documents.Render(detail)
	if err != nil {
		return "", nil, err
	}
	return DocumentFilename(detail.GroupNumber), pdf, nil
}

// Delete removes a registration, its participants and its stored form.
func (s *QuizAdminService) Delete(ctx context.Context, id string) error {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	if s.documents != nil {
		s.documents.Remove(detail.ID, detail.GroupNumber)
	}
	_ = s.cache.Invalidate(ctx, QuizCachePrefix)
	s.logger.Info("quiz registration deleted", zap.String("registration_id", id), zap.String("group_number", detail.GroupNumber))
	return nil
}

// Summary returns per-zone totals and reports whether it came from cache.
func (s *QuizAdminService) Summary(ctx context.Context) (*models.QuizSummary, bool, error) {
	return Remember(ctx, s.cache, quizSummaryKey, s.summaryTTL, func(ctx context.Context) (*models.QuizSummary, error) {
		summary, err := s.repo.Summary(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
		}
		summary.GeneratedAt = time.Now().UTC()
		return summary, nil
	})
}
