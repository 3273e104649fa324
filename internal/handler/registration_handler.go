package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/internal/dto"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/response"
)

type quizRegistrationService interface {
	Register(ctx context.Context, req dto.QuizRegistrationRequest) (*dto.QuizRegistrationResponse, error)
}

// RegistrationHandler accepts bible quiz group registrations from the public form.
type RegistrationHandler struct {
	service quizRegistrationService
}

// NewRegistrationHandler builds a new handler.
func NewRegistrationHandler(service quizRegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Submit godoc
// @Summary Register a bible quiz group
// @Description Validates the group, allocates a group number and returns the registration form as a PDF data URI
// @Tags Bible Quiz
// @Accept json
// @Produce json
// @Param payload body dto.QuizRegistrationRequest true "Group registration"
// @Success 201 {object} dto.QuizRegistrationResponse
// @Failure 400 {object} response.FailureBody
// @Failure 403 {object} response.FailureBody
// @Failure 500 {object} response.FailureBody
// @Router /bible-quiz/registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.QuizRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid registration payload"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Result(c, http.StatusCreated, res)
}
