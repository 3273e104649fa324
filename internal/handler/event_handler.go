package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/internal/models"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/response"
)

type eventService interface {
	ListUpcoming(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error)
	ListAll(ctx context.Context, search string, page, pageSize int) ([]models.Event, *models.Pagination, error)
	Get(ctx context.Context, id string, includeDrafts bool) (*models.Event, error)
	Create(ctx context.Context, req dto.EventRequest) (*models.Event, error)
	Update(ctx context.Context, id string, req dto.EventRequest) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, eventID string, req dto.EventRegistrationRequest) (*dto.EventRegistrationResponse, error)
	ListRegistrations(ctx context.Context, eventID string) ([]models.EventRegistration, error)
}

// EventHandler exposes public event listings, sign-up and admin management.
type EventHandler struct {
	events eventService
}

// NewEventHandler builds a new handler.
func NewEventHandler(events eventService) *EventHandler {
	return &EventHandler{events: events}
}

// ListUpcoming godoc
// @Summary List upcoming events
// @Tags Events
// @Produce json
// @Param search query string false "Search title or venue"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) ListUpcoming(c *gin.Context) {
	page, size := pageParams(c)
	events, pagination, err := h.events.ListUpcoming(c.Request.Context(), strings.TrimSpace(c.Query("search")), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get a published event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Register godoc
// @Summary Sign up for an event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRegistrationRequest true "Attendee"
// @Success 201 {object} dto.EventRegistrationResponse
// @Failure 400 {object} response.FailureBody
// @Failure 404 {object} response.FailureBody
// @Router /events/{id}/registrations [post]
func (h *EventHandler) Register(c *gin.Context) {
	var req dto.EventRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid registration payload"))
		return
	}

	res, err := h.events.Register(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Result(c, http.StatusCreated, res)
}

// AdminList godoc
// @Summary List all events including drafts
// @Tags Admin Events
// @Produce json
// @Param search query string false "Search title or venue"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events [get]
func (h *EventHandler) AdminList(c *gin.Context) {
	page, size := pageParams(c)
	events, pagination, err := h.events.ListAll(c.Request.Context(), strings.TrimSpace(c.Query("search")), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// AdminGet godoc
// @Summary Get any event
// @Tags Admin Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id} [get]
func (h *EventHandler) AdminGet(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create an event
// @Tags Admin Events
// @Accept json
// @Produce json
// @Param payload body dto.EventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Replace an event
// @Tags Admin Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body dto.EventRequest true "Event"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete an event and its registrations
// @Tags Admin Events
// @Param id path string true "Event ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListRegistrations godoc
// @Summary List sign-ups for an event
// @Tags Admin Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id}/registrations [get]
func (h *EventHandler) ListRegistrations(c *gin.Context) {
	regs, err := h.events.ListRegistrations(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, regs, nil)
}
