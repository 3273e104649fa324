package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/internal/repository"
	"github.com/noah-isme/church-events-api/pkg/database"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/otp"
)

type quizRegistrationStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByChurch(ctx context.Context, church string) (bool, error)
	RecentGroupNumbers(ctx context.Context, limit int) ([]string, error)
	CreateWithParticipants(ctx context.Context, reg *models.QuizRegistration, participants []models.QuizParticipant) error
}

type quizNotifier interface {
	NotifyQuizRegistration(ctx context.Context, detail *models.QuizRegistrationDetail, pdf []byte)
}

type emailVerifier interface {
	CheckVerification(token, email string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, prefix string) error
}

// RegistrationConfig tunes the quiz registration pipeline.
type RegistrationConfig struct {
	Limits                ParticipantLimits
	SequenceScanLimit     int
	GroupNumberMaxRetries int
	RequireVerifiedEmail  bool
}

// RegistrationService runs a quiz submission through validation, duplicate
// checks, group number allocation, persistence, document rendering and
// notification.
type RegistrationService struct {
	repo      quizRegistrationStore
	validator *RegistrationValidator
	sequence  *SequenceAllocator
	documents *DocumentService
	notifier  quizNotifier
	verifier  emailVerifier
	cache     cacheInvalidator
	metrics   *MetricsService
	logger    *zap.Logger
	config    RegistrationConfig
}

// NewRegistrationService wires the pipeline. verifier and cache may be nil.
func NewRegistrationService(
	repo quizRegistrationStore,
	validator *RegistrationValidator,
	documents *DocumentService,
	notifier quizNotifier,
	verifier emailVerifier,
	cache cacheInvalidator,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg RegistrationConfig,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = NewRegistrationValidator(nil, cfg.Limits)
	}
	if cfg.GroupNumberMaxRetries <= 0 {
		cfg.GroupNumberMaxRetries = 3
	}
	return &RegistrationService{
		repo:      repo,
		validator: validator,
		sequence:  NewSequenceAllocator(repo, cfg.SequenceScanLimit, logger),
		documents: documents,
		notifier:  notifier,
		verifier:  verifier,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
	}
}

// Register records a quiz group and returns the allocated group number with
// the rendered form. Notification failures never fail the call.
func (s *RegistrationService) Register(ctx context.Context, req dto.QuizRegistrationRequest) (*dto.QuizRegistrationResponse, error) {
	if err := s.validator.Validate(&req); err != nil {
		s.metrics.RecordRegistration("quiz", OutcomeInvalid)
		return nil, err
	}
	if err := s.checkVerification(req); err != nil {
		s.metrics.RecordRegistration("quiz", OutcomeInvalid)
		return nil, err
	}
	if err := s.checkDuplicates(ctx, req); err != nil {
		return nil, err
	}

	reg, participants := buildQuizRegistration(req)
	if err := s.persist(ctx, reg, participants); err != nil {
		return nil, err
	}
	logger := s.logger.With(zap.String("registration_id", reg.ID), zap.String("group_number", reg.GroupNumber))
	logger.Info("quiz registration recorded", zap.Int("participants", len(participants)))
	s.metrics.RecordRegistration("quiz", OutcomeSuccess)
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, QuizCachePrefix)
	}

	detail := &models.QuizRegistrationDetail{QuizRegistration: *reg, Participants: participants}
	resp := &dto.QuizRegistrationResponse{
		Success:        true,
		Message:        "Registration successful",
		RegistrationID: reg.ID,
		GroupNumber:    reg.GroupNumber,
	}

	var pdf []byte
	if s.documents != nil {
		var err error
		pdf, err = s.documents.Render(detail)
		if err != nil {
			logger.Error("registration form could not be rendered", zap.Error(err))
			resp.Message = "Registration successful, the registration form is temporarily unavailable"
		} else {
			resp.PDFDownload = DataURI(pdf)
			stored, err := s.documents.Store(ctx, reg.ID, reg.GroupNumber, pdf)
			if err != nil {
				logger.Warn("registration form not stored", zap.Error(err))
			} else if stored != nil {
				resp.DocumentURL = stored.URL
			}
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyQuizRegistration(ctx, detail, pdf)
	}
	return resp, nil
}

func (s *RegistrationService) checkVerification(req dto.QuizRegistrationRequest) error {
	if !s.config.RequireVerifiedEmail || s.verifier == nil {
		return nil
	}
	if req.VerificationEmail != "" && !sameEmail(req.VerificationEmail, req.Email) {
		return appErrors.Clone(appErrors.ErrEmailNotVerified, "Verified email does not match the submitted email")
	}
	return s.verifier.CheckVerification(req.VerificationToken, req.Email)
}

func (s *RegistrationService) checkDuplicates(ctx context.Context, req dto.QuizRegistrationRequest) error {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.metrics.RecordRegistration("quiz", OutcomeError)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing registrations")
	}
	if exists {
		s.metrics.RecordRegistration("quiz", OutcomeDuplicate)
		return appErrors.Clone(appErrors.ErrDuplicate, "Duplicate email: "+req.Email)
	}

	exists, err = s.repo.ExistsByChurch(ctx, req.Church)
	if err != nil {
		s.metrics.RecordRegistration("quiz", OutcomeError)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing registrations")
	}
	if exists {
		s.metrics.RecordRegistration("quiz", OutcomeDuplicate)
		return appErrors.Clone(appErrors.ErrDuplicate, "Duplicate church: "+req.Church)
	}
	return nil
}

// persist allocates a group number and writes the registration, allocating
// again when a concurrent submission took the same number.
func (s *RegistrationService) persist(ctx context.Context, reg *models.QuizRegistration, participants []models.QuizParticipant) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 25 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.config.GroupNumberMaxRetries-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		reg.GroupNumber = s.sequence.Next(ctx)
		err := s.repo.CreateWithParticipants(ctx, reg, participants)
		if err == nil {
			return nil
		}
		constraint, unique := database.UniqueViolation(err)
		if unique && constraint == repository.ConstraintQuizGroupNumber {
			s.logger.Warn("group number taken, allocating again", zap.String("group_number", reg.GroupNumber), zap.Int("attempt", attempt))
			return err
		}
		return backoff.Permanent(err)
	}, retry)
	if err == nil {
		return nil
	}

	if constraint, unique := database.UniqueViolation(err); unique {
		switch constraint {
		case repository.ConstraintQuizEmail:
			s.metrics.RecordRegistration("quiz", OutcomeDuplicate)
			return appErrors.Clone(appErrors.ErrDuplicate, "Duplicate email: "+reg.Email)
		case repository.ConstraintQuizChurch:
			s.metrics.RecordRegistration("quiz", OutcomeDuplicate)
			return appErrors.Clone(appErrors.ErrDuplicate, "Duplicate church: "+reg.ChurchName)
		}
	}
	s.metrics.RecordRegistration("quiz", OutcomeError)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "registration was interrupted")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
}

func buildQuizRegistration(req dto.QuizRegistrationRequest) (*models.QuizRegistration, []models.QuizParticipant) {
	reg := &models.QuizRegistration{
		LeaderName:    req.LeaderName,
		ChurchName:    req.Church,
		ChurchPlace:   req.ChurchPlace,
		Language:      req.Language,
		Zone:          req.Zone,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		CreatedAt:     time.Now().UTC(),
	}
	if req.AlternateNumber != "" {
		alt := req.AlternateNumber
		reg.AlternateNumber = &alt
	}

	participants := make([]models.QuizParticipant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participant := models.QuizParticipant{Name: p.Name, Gender: p.Gender, DateOfBirth: p.DOB}
		if p.MobileNo != "" {
			mobile := p.MobileNo
			participant.MobileNo = &mobile
		}
		participants = append(participants, participant)
	}
	return reg, participants
}

func sameEmail(a, b string) bool {
	return otp.NormalizeEmail(a) == otp.NormalizeEmail(b)
}
