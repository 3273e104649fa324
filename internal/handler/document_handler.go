package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/pkg/response"
)

type documentOpener interface {
	Open(ctx context.Context, token string) (string, []byte, error)
}

// DocumentHandler serves stored registration forms behind signed links.
type DocumentHandler struct {
	documents documentOpener
}

// NewDocumentHandler builds a new handler.
func NewDocumentHandler(documents documentOpener) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Download godoc
// @Summary Download a stored registration form
// @Tags Documents
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	filename, data, err := h.documents.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, filename, "application/pdf", data)
}
