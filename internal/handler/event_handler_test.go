package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

type eventServiceMock struct {
	events        []models.Event
	event         *models.Event
	err           error
	registerResp  *dto.EventRegistrationResponse
	lastSearch    string
	lastPage      int
	lastEventID   string
	includeDrafts bool
	deleted       string
}

func (m *eventServiceMock) ListUpcoming(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error) {
	m.lastSearch = search
	m.lastPage = page
	return m.events, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: len(m.events)}, m.err
}

func (m *eventServiceMock) ListAll(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error) {
	m.includeDrafts = true
	return m.ListUpcoming(ctx, search, page, pageSize)
}

func (m *eventServiceMock) Get(ctx context.Context, id string, includeDrafts bool) (*models.Event, error) {
	m.lastEventID = id
	m.includeDrafts = includeDrafts
	return m.event, m.err
}

func (m *eventServiceMock) Create(ctx context.Context, req dto.EventRequest) (*models.Event, error) {
	return m.event, m.err
}

func (m *eventServiceMock) Update(ctx context.Context, id string, req dto.EventRequest) (*models.Event, error) {
	m.lastEventID = id
	return m.event, m.err
}

func (m *eventServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func (m *eventServiceMock) Register(ctx context.Context, eventID string, req dto.EventRegistrationRequest) (*dto.EventRegistrationResponse, error) {
	m.lastEventID = eventID
	return m.registerResp, m.err
}

func (m *eventServiceMock) ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error) {
	m.lastEventID = eventID
	return []models.EventRegistration{{ID: "r1", EventID: eventID}}, m.err
}

func TestEventHandlerListUpcoming(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{events: []models.Event{{ID: "e1", Title: "Youth Camp", StartsAt: time.Now().Add(24 * time.Hour)}}}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/events?search=%20camp%20&page=2", nil)

	handler.ListUpcoming(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "camp", mockSvc.lastSearch)
	assert.Equal(t, 2, mockSvc.lastPage)
	body := decodeBody(t, w)
	assert.Len(t, body["data"], 1)
	assert.NotNil(t, body["pagination"])
}

func TestEventHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "event not found")}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/events/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, mockSvc.includeDrafts)
	assert.Equal(t, "missing", mockSvc.lastEventID)
}

func TestEventHandlerRegister(t *testing.T) {
	mockSvc := &eventServiceMock{registerResp: &dto.EventRegistrationResponse{Success: true, Message: "Registration successful", RegistrationID: "r1"}}
	handler := NewEventHandler(mockSvc)

	c, w := postJSON(t, "/events/e1/registrations", `{"fullName":"John","email":"john@example.org"}`)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "e1", mockSvc.lastEventID)
	assert.Equal(t, "r1", decodeBody(t, w)["registrationId"])
}

func TestEventHandlerRegisterClosed(t *testing.T) {
	mockSvc := &eventServiceMock{err: appErrors.Clone(appErrors.ErrRegistrationClosed, "Registration for this event is closed")}
	handler := NewEventHandler(mockSvc)

	c, w := postJSON(t, "/events/e1/registrations", `{"fullName":"John","email":"john@example.org"}`)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	handler.Register(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "REGISTRATION_CLOSED", body["code"])
}

func TestEventHandlerCreateInvalidBody(t *testing.T) {
	handler := NewEventHandler(&eventServiceMock{})

	c, w := postJSON(t, "/admin/events", `{"title":`)
	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	require.Contains(t, body, "error")
}

func TestEventHandlerAdminGetIncludesDrafts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{event: &models.Event{ID: "e1", Title: "Draft"}}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin/events/e1", nil)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.AdminGet(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.includeDrafts)
}

func TestEventHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &eventServiceMock{}
	handler := NewEventHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/admin/events/e1", nil)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "e1", mockSvc.deleted)
}
