package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/export"
	"github.com/noah-isme/church-events-api/pkg/storage"
)

type documentStore interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
}

type documentSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

// DocumentConfig describes how rendered forms are labelled and linked.
type DocumentConfig struct {
	Organization string
	EventName    string
	// DownloadPath is the public route prefix tokens are appended to,
	// e.g. /api/v1/documents.
	DownloadPath string
}

// StoredDocument describes a persisted registration form.
type StoredDocument struct {
	Path      string
	URL       string
	ExpiresAt time.Time
}

// DocumentService renders registration forms and manages their stored copies.
type DocumentService struct {
	store   documentStore
	signer  documentSigner
	metrics *MetricsService
	logger  *zap.Logger
	config  DocumentConfig
}

// NewDocumentService constructs a document service. Storage is optional; without
// it forms are only returned inline.
func NewDocumentService(store documentStore, signer documentSigner, metrics *MetricsService, logger *zap.Logger, cfg DocumentConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/documents"
	}
	return &DocumentService{store: store, signer: signer, metrics: metrics, logger: logger, config: cfg}
}

// DocumentFilename is the attachment name for a group's form.
func DocumentFilename(groupNumber string) string {
	return fmt.Sprintf("BibleQuiz_Registration_%s.pdf", groupNumber)
}

// DataURI wraps PDF bytes for inline download by browsers.
func DataURI(pdf []byte) string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf)
}

// Render produces the printable form for a stored registration.
func (s *DocumentService) Render(detail *models.QuizRegistrationDetail) ([]byte, error) {
	form := export.RegistrationForm{
		Organization:  s.config.Organization,
		EventName:     s.config.EventName,
		GroupNumber:   detail.GroupNumber,
		LeaderName:    detail.LeaderName,
		Church:        detail.ChurchName,
		ChurchPlace:   detail.ChurchPlace,
		Language:      detail.Language,
		Zone:          detail.Zone,
		ContactNumber: detail.ContactNumber,
		Email:         detail.Email,
		SubmittedAt:   detail.CreatedAt,
		Participants:  make([]export.FormParticipant, 0, len(detail.Participants)),
	}
	if detail.AlternateNumber != nil {
		form.AlternateNumber = *detail.AlternateNumber
	}
	for _, p := range detail.Participants {
		row := export.FormParticipant{Name: p.Name, Gender: p.Gender, DateOfBirth: p.DateOfBirth}
		if p.MobileNo != nil {
			row.MobileNo = *p.MobileNo
		}
		form.Participants = append(form.Participants, row)
	}

	start := time.Now()
	pdf, err := export.RenderRegistrationForm(form)
	s.metrics.ObserveRender(time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render registration form")
	}
	return pdf, nil
}

// Store saves pdf for registrationID and returns a signed download link. It
// returns nil when document storage is not configured.
func (s *DocumentService) Store(ctx context.Context, registrationID, groupNumber string, pdf []byte) (*StoredDocument, error) {
	if s.store == nil || s.signer == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, err := s.store.Save(documentPath(registrationID, groupNumber), pdf)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store registration form")
	}
	token, expiresAt, err := s.signer.Generate(registrationID, stored)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign document link")
	}
	return &StoredDocument{
		Path:      stored,
		URL:       strings.TrimRight(s.config.DownloadPath, "/") + "/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a signed link to the stored file.
func (s *DocumentService) Open(ctx context.Context, token string) (string, []byte, error) {
	if s.store == nil || s.signer == nil {
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return "", nil, appErrors.Clone(appErrors.ErrForbidden, "document link has expired")
		}
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	data, err := s.store.Read(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read document")
	}
	return path.Base(relPath), data, nil
}

// Remove deletes the stored form of a registration, ignoring missing files.
func (s *DocumentService) Remove(registrationID, groupNumber string) {
	if s.store == nil {
		return
	}
	relPath := documentPath(registrationID, groupNumber)
	if err := s.store.Delete(relPath); err != nil {
		s.logger.Warn("failed to delete stored document", zap.String("path", relPath), zap.Error(err))
	}
}

func documentPath(registrationID, groupNumber string) string {
	return path.Join("quiz", registrationID, DocumentFilename(groupNumber))
}
