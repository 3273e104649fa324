package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/internal/middleware"
	"github.com/noah-isme/church-events-api/internal/models"
)

const defaultPageSize = 20

// claimsFromContext returns the admin claims stored by middleware.JWT.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := c.Value(middleware.ContextUserKey).(*models.JWTClaims)
	return claims
}

// pageParams reads page and limit (or page_size) from the query string.
// Missing or non-numeric values fall back to the first page of 20; range
// clamping is left to the services.
func pageParams(c *gin.Context) (page, size int) {
	page, size = 1, defaultPageSize
	if n, err := strconv.Atoi(c.Query("page")); err == nil {
		page = n
	}
	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("page_size")
	}
	if n, err := strconv.Atoi(raw); err == nil {
		size = n
	}
	return page, size
}
