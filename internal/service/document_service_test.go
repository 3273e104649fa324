package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/storage"
)

func sampleDetail() *models.QuizRegistrationDetail {
	mobile := "9876543210"
	return &models.QuizRegistrationDetail{
		QuizRegistration: models.QuizRegistration{
			ID:            "reg-1",
			LeaderName:    "Mary Thomas",
			ChurchName:    "Grace Chapel",
			ChurchPlace:   "Kottayam",
			Language:      "English",
			Zone:          "North",
			ContactNumber: "9999999999",
			Email:         "mary@example.org",
			GroupNumber:   "42",
			CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		Participants: []models.QuizParticipant{
			{Position: 1, Name: "Jane", Gender: "Female", DateOfBirth: "2004-02-11", MobileNo: &mobile},
			{Position: 2, Name: "John", Gender: "Male", DateOfBirth: "2005-07-30"},
		},
	}
}

func newTestDocumentService(t *testing.T) (*DocumentService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("document-secret", time.Hour)
	return NewDocumentService(store, signer, nil, nil, DocumentConfig{EventName: "Bible Quiz", DownloadPath: "/api/v1/documents/"}), store
}

func TestDocumentServiceRender(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	pdf, err := svc.Render(sampleDetail())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestDocumentServiceStoreAndOpen(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	ctx := context.Background()

	doc, err := svc.Store(ctx, "reg-1", "42", []byte("%PDF-1.3 test"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, strings.HasPrefix(doc.URL, "/api/v1/documents/"))

	token := strings.TrimPrefix(doc.URL, "/api/v1/documents/")
	name, data, err := svc.Open(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "BibleQuiz_Registration_42.pdf", name)
	assert.Equal(t, "%PDF-1.3 test", string(data))

	svc.Remove("reg-1", "42")
	_, _, err = svc.Open(ctx, token)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDocumentServiceOpenRejectsTamperedToken(t *testing.T) {
	svc, _ := newTestDocumentService(t)
	_, _, err := svc.Open(context.Background(), "reg-1.123.abc.def")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestDocumentServiceWithoutStorage(t *testing.T) {
	svc := NewDocumentService(nil, nil, nil, nil, DocumentConfig{})
	doc, err := svc.Store(context.Background(), "reg-1", "1", []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDataURI(t *testing.T) {
	uri := DataURI([]byte("%PDF"))
	assert.Equal(t, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString([]byte("%PDF")), uri)
}
