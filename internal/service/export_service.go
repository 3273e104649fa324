package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type quizExportSource interface {
	ListForExport(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistrationExportRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered export ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders registration listings as CSV or PDF.
type ExportService struct {
	source    quizExportSource
	csv       csvRenderer
	pdf       pdfRenderer
	eventName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the defaults.
func NewExportService(source quizExportSource, eventName string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if eventName == "" {
		eventName = "Bible Quiz"
	}
	return &ExportService{source: source, csv: csv, pdf: pdf, eventName: eventName, logger: logger, now: time.Now}
}

// ParseExportFormat accepts "csv" or "pdf", case-insensitively. Empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

// Registrations renders every registration matching filter.
func (s *ExportService) Registrations(ctx context.Context, filter models.QuizRegistrationFilter, format ExportFormat) (*ExportResult, error) {
	rows, err := s.source.ListForExport(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations for export")
	}
	dataset := buildRegistrationDataset(rows)

	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportPDF:
		data, err = s.pdf.Render(dataset, s.eventName+" Registrations")
		contentType = "application/pdf"
	default:
		format = ExportCSV
		data, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s_registrations_%s.%s", sanitizeFilename(s.eventName), s.now().UTC().Format("20060102_150405"), format)
	s.logger.Info("registrations exported", zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return &ExportResult{Filename: filename, ContentType: contentType, Data: data, Rows: len(rows)}, nil
}

func buildRegistrationDataset(rows []models.QuizRegistrationExportRow) export.Dataset {
	headers := []string{"Group", "Leader", "Church", "Place", "Language", "Zone", "Contact", "Alternate", "Email", "Participants", "Names", "Registered"}
	dataset := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		alternate := ""
		if row.AlternateNumber != nil {
			alternate = *row.AlternateNumber
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Group":        row.GroupNumber,
			"Leader":       row.LeaderName,
			"Church":       row.ChurchName,
			"Place":        row.ChurchPlace,
			"Language":     row.Language,
			"Zone":         row.Zone,
			"Contact":      row.ContactNumber,
			"Alternate":    alternate,
			"Email":        row.Email,
			"Participants": strconv.Itoa(row.ParticipantCount),
			"Names":        row.ParticipantNames,
			"Registered":   row.CreatedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	return dataset
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "export"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
