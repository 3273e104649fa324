package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/internal/middleware"
	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/internal/service"
	"github.com/noah-isme/church-events-api/pkg/response"
)

type quizAdminService interface {
	List(ctx context.Context, filter models.QuizRegistrationFilter) ([]models.QuizRegistration, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.QuizRegistrationDetail, error)
	Document(ctx context.Context, id string) (string, []byte, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (*models.QuizSummary, bool, error)
}

type quizExporter interface {
	Registrations(ctx context.Context, filter models.QuizRegistrationFilter, format service.ExportFormat) (*service.ExportResult, error)
}

// QuizAdminHandler exposes the bible quiz back office.
type QuizAdminHandler struct {
	quiz    quizAdminService
	exports quizExporter
}

// NewQuizAdminHandler builds a new handler.
func NewQuizAdminHandler(quiz quizAdminService, exports quizExporter) *QuizAdminHandler {
	return &QuizAdminHandler{quiz: quiz, exports: exports}
}

// List godoc
// @Summary List quiz registrations
// @Tags Admin Bible Quiz
// @Produce json
// @Param search query string false "Search leader, church, email or group number"
// @Param zone query string false "Zone"
// @Param language query string false "Language"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/bible-quiz/registrations [get]
func (h *QuizAdminHandler) List(c *gin.Context) {
	items, pagination, err := h.quiz.List(c.Request.Context(), quizFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a quiz registration with participants
// @Tags Admin Bible Quiz
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/bible-quiz/registrations/{id} [get]
func (h *QuizAdminHandler) Get(c *gin.Context) {
	detail, err := h.quiz.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Document godoc
// @Summary Render the registration form again
// @Tags Admin Bible Quiz
// @Produce application/pdf
// @Param id path string true "Registration ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/bible-quiz/registrations/{id}/document [get]
func (h *QuizAdminHandler) Document(c *gin.Context) {
	filename, pdf, err := h.quiz.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "application/pdf", pdf)
}

// Delete godoc
// @Summary Delete a quiz registration
// @Tags Admin Bible Quiz
// @Param id path string true "Registration ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/bible-quiz/registrations/{id} [delete]
func (h *QuizAdminHandler) Delete(c *gin.Context) {
	if err := h.quiz.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Registration totals per zone
// @Tags Admin Bible Quiz
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/bible-quiz/summary [get]
func (h *QuizAdminHandler) Summary(c *gin.Context) {
	start := time.Now()
	summary, cacheHit, err := h.quiz.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// Export godoc
// @Summary Export quiz registrations
// @Tags Admin Bible Quiz
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param search query string false "Search"
// @Param zone query string false "Zone"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/bible-quiz/export [get]
func (h *QuizAdminHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.DefaultQuery("format", string(service.ExportCSV)))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Registrations(c.Request.Context(), quizFilterFromQuery(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	response.Attachment(c, result.Filename, result.ContentType, result.Data)
}

func quizFilterFromQuery(c *gin.Context) models.QuizRegistrationFilter {
	page, size := pageParams(c)
	return models.QuizRegistrationFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Zone:     strings.TrimSpace(c.Query("zone")),
		Language: strings.TrimSpace(c.Query("language")),
		Page:     page,
		PageSize: size,
	}
}
