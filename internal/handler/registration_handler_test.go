package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/dto"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

type quizRegistrationServiceMock struct {
	resp    *dto.QuizRegistrationResponse
	err     error
	lastReq dto.QuizRegistrationRequest
	called  bool
}

func (m *quizRegistrationServiceMock) Register(ctx context.Context, req dto.QuizRegistrationRequest) (*dto.QuizRegistrationResponse, error) {
	m.called = true
	m.lastReq = req
	return m.resp, m.err
}

func postJSON(t *testing.T, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRegistrationHandlerSubmitCreated(t *testing.T) {
	mockSvc := &quizRegistrationServiceMock{resp: &dto.QuizRegistrationResponse{
		Success:        true,
		Message:        "Registration successful",
		RegistrationID: "reg-1",
		GroupNumber:    "7",
		PDFDownload:    "data:application/pdf;base64,JVBERi0=",
	}}
	handler := NewRegistrationHandler(mockSvc)

	c, w := postJSON(t, "/bible-quiz/registrations", `{"leaderName":"Mary Thomas","email":"mary@example.org","participants":[{"name":"A"},{"name":"B"}]}`)
	handler.Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.called)
	assert.Equal(t, "Mary Thomas", mockSvc.lastReq.LeaderName)
	assert.Len(t, mockSvc.lastReq.Participants, 2)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "7", body["groupNumber"])
	assert.Equal(t, "reg-1", body["registrationId"])
	assert.NotContains(t, body, "data")
}

func TestRegistrationHandlerSubmitValidationFailure(t *testing.T) {
	mockSvc := &quizRegistrationServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "At least 2 participants are required")}
	handler := NewRegistrationHandler(mockSvc)

	c, w := postJSON(t, "/bible-quiz/registrations", `{"leaderName":"Mary"}`)
	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "At least 2 participants are required", body["message"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRegistrationHandlerSubmitDuplicate(t *testing.T) {
	mockSvc := &quizRegistrationServiceMock{err: appErrors.Clone(appErrors.ErrDuplicate, "Duplicate email: mary@example.org")}
	handler := NewRegistrationHandler(mockSvc)

	c, w := postJSON(t, "/bible-quiz/registrations", `{"leaderName":"Mary"}`)
	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Duplicate email: mary@example.org", decodeBody(t, w)["message"])
}

func TestRegistrationHandlerSubmitMalformedBody(t *testing.T) {
	mockSvc := &quizRegistrationServiceMock{}
	handler := NewRegistrationHandler(mockSvc)

	c, w := postJSON(t, "/bible-quiz/registrations", `{"leaderName":`)
	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.called)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestRegistrationHandlerSubmitInternalErrorHidesCause(t *testing.T) {
	mockSvc := &quizRegistrationServiceMock{err: appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")}
	handler := NewRegistrationHandler(mockSvc)

	c, w := postJSON(t, "/bible-quiz/registrations", `{}`)
	handler.Submit(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "failed to save registration", body["message"])
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
