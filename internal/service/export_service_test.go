package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

type exportSourceMock struct {
	rows   []models.QuizRegistrationExportRow
	err    error
	filter models.QuizRegistrationFilter
}

func (m *exportSourceMock) ListForExport(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistrationExportRow, error) {
	m.filter = filter
	return m.rows, m.err
}

func exportRows() []models.QuizRegistrationExportRow {
	return []models.QuizRegistrationExportRow{{
		QuizRegistration: models.QuizRegistration{
			GroupNumber: "7", LeaderName: "Mary", ChurchName: "=Grace", Zone: "North",
			Email: "mary@example.org", ParticipantCount: 2, CreatedAt: time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC),
		},
		ParticipantNames: "Jane, John",
	}}
}

func newTestExportService(source *exportSourceMock) *ExportService {
	svc := NewExportService(source, "Bible Quiz", nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	source := &exportSourceMock{rows: exportRows()}
	svc := newTestExportService(source)

	result, err := svc.Registrations(context.Background(), models.QuizRegistrationFilter{Zone: "North"}, ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "Bible_Quiz_registrations_20260202_090000.csv", result.Filename)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "North", source.filter.Zone)

	body := string(result.Data)
	assert.True(t, strings.HasPrefix(body, "\uFEFFGroup,Leader"))
	assert.Contains(t, body, "'=Grace")
	assert.Contains(t, body, `"Jane, John"`)
}

func TestExportServicePDF(t *testing.T) {
	svc := newTestExportService(&exportSourceMock{rows: exportRows()})

	result, err := svc.Registrations(context.Background(), models.QuizRegistrationFilter{}, ExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportServiceSourceError(t *testing.T) {
	svc := newTestExportService(&exportSourceMock{err: errors.New("db down")})
	_, err := svc.Registrations(context.Background(), models.QuizRegistrationFilter{}, ExportCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportPDF, f)

	f, err = ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, f)

	_, err = ParseExportFormat("xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
