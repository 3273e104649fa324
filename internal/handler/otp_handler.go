package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/church-events-api/internal/dto"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/response"
)

type otpService interface {
	Send(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error)
	Verify(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error)
}

// OTPHandler exposes email verification endpoints.
type OTPHandler struct {
	service otpService
}

// NewOTPHandler builds a new handler.
func NewOTPHandler(service otpService) *OTPHandler {
	return &OTPHandler{service: service}
}

// Send godoc
// @Summary Send an email verification code
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.SendOTPRequest true "Email to verify"
// @Success 200 {object} dto.SendOTPResponse
// @Failure 400 {object} response.FailureBody
// @Failure 429 {object} response.FailureBody
// @Router /otp/send [post]
func (h *OTPHandler) Send(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.service.Send(c.Request.Context(), req)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Result(c, http.StatusOK, res)
}

// Verify godoc
// @Summary Verify an email verification code
// @Description Returns a verification token on success. Failed attempts report how many tries remain.
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.VerifyOTPRequest true "Code and challenge token"
// @Success 200 {object} dto.VerifyOTPResponse
// @Failure 400 {object} dto.VerifyOTPResponse
// @Router /otp/verify [post]
func (h *OTPHandler) Verify(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		if res == nil {
			response.Failure(c, err)
			return
		}
		response.Result(c, appErrors.StatusOf(err), res)
		return
	}
	response.Result(c, http.StatusOK, res)
}
