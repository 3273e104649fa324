package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/pkg/cache"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/otp"
)

type otpSender interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// OTPConfig tunes code lifetime, attempts and resend throttling.
type OTPConfig struct {
	TTL             time.Duration
	MaxAttempts     int
	ResendInterval  time.Duration
	VerificationTTL time.Duration
	ExposeCode      bool
}

// OTPService issues and checks email verification codes.
type OTPService struct {
	signer    *otp.Signer
	counter   cache.Counter
	sender    otpSender
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    OTPConfig
}

// NewOTPService constructs an OTP service.
func NewOTPService(signer *otp.Signer, counter cache.Counter, sender otpSender, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg OTPConfig) *OTPService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = otp.MaxAttempts
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = time.Hour
	}
	return &OTPService{signer: signer, counter: counter, sender: sender, validator: validate, metrics: metrics, logger: logger, config: cfg}
}

// Send generates a fresh code for the address, mails it and returns the
// signed challenge. A new challenge supersedes any earlier one because its
// nonce differs.
func (s *OTPService) Send(ctx context.Context, req dto.SendOTPRequest) (*dto.SendOTPResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, FirstValidationMessage(err))
	}
	email := otp.NormalizeEmail(req.Email)

	throttleKey := "otp:send:" + email
	throttled := s.config.ResendInterval > 0
	if throttled {
		ok, err := s.counter.Acquire(ctx, throttleKey, s.config.ResendInterval)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check resend interval")
		}
		if !ok {
			s.metrics.RecordOTPEvent("throttled")
			return nil, appErrors.Clone(appErrors.ErrOTPThrottled, "Please wait before requesting another code")
		}
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate code")
	}
	token, claims, err := s.signer.IssueChallenge(email, code, s.config.TTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign code")
	}

	if err := s.sender.SendOTP(ctx, email, code, s.config.TTL); err != nil {
		s.logger.Error("failed to send verification code", zap.String("email", email), zap.Error(err))
		// No code reached the user, so the resend window must not hold.
		if throttled {
			if relErr := s.counter.Release(ctx, throttleKey); relErr != nil {
				s.logger.Warn("failed to release resend throttle", zap.String("email", email), zap.Error(relErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to send verification code")
	}
	s.metrics.RecordOTPEvent("sent")

	resp := &dto.SendOTPResponse{
		Success:   true,
		Message:   "Verification code sent",
		Token:     token,
		ExpiresAt: claims.Expiry(),
	}
	if s.config.ExposeCode {
		resp.OTP = code
	}
	return resp, nil
}

// Verify checks a candidate code against its challenge. Attempts are counted
// per challenge; once the limit is spent further calls are rejected without
// comparing the code. On failure the returned response still reports the
// attempts left.
func (s *OTPService) Verify(ctx context.Context, req dto.VerifyOTPRequest) (*dto.VerifyOTPResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, FirstValidationMessage(err))
	}

	claims, err := s.signer.Parse(req.Token, otp.PurposeChallenge)
	if err != nil {
		s.metrics.RecordOTPEvent("rejected")
		if errors.Is(err, otp.ErrExpired) {
			return nil, appErrors.Clone(appErrors.ErrOTPExpired, "Verification code has expired, please request a new one")
		}
		return nil, appErrors.Clone(appErrors.ErrOTPInvalid, "Invalid verification request")
	}
	if claims.Email != otp.NormalizeEmail(req.Email) {
		s.metrics.RecordOTPEvent("rejected")
		return nil, appErrors.Clone(appErrors.ErrOTPInvalid, "Verification code was sent to a different email")
	}

	ttl := time.Until(claims.Expiry())
	if ttl <= 0 {
		ttl = time.Second
	}
	attempt, err := s.counter.Incr(ctx, "otp:attempts:"+claims.Nonce, ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attempt")
	}
	if int(attempt) > s.config.MaxAttempts {
		s.metrics.RecordOTPEvent("locked")
		return &dto.VerifyOTPResponse{Message: "Too many incorrect attempts, please request a new code"},
			appErrors.Clone(appErrors.ErrOTPAttemptsExceeded, "Too many incorrect attempts, please request a new code")
	}

	remaining := s.config.MaxAttempts - int(attempt)
	if !s.signer.MatchCode(claims, req.OTP) {
		s.metrics.RecordOTPEvent("mismatch")
		if remaining == 0 {
			msg := "Too many incorrect attempts, please request a new code"
			return &dto.VerifyOTPResponse{Message: msg}, appErrors.Clone(appErrors.ErrOTPAttemptsExceeded, msg)
		}
		msg := fmt.Sprintf("Invalid OTP, %d attempt(s) remaining", remaining)
		return &dto.VerifyOTPResponse{Message: msg, AttemptsRemaining: remaining}, appErrors.Clone(appErrors.ErrOTPInvalid, msg)
	}

	proof, proofClaims, err := s.signer.IssueVerification(claims.Email, s.config.VerificationTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue verification token")
	}
	s.metrics.RecordOTPEvent("verified")
	expiresAt := proofClaims.Expiry()
	return &dto.VerifyOTPResponse{
		Success:           true,
		Message:           "Email verified",
		VerificationToken: proof,
		ExpiresAt:         &expiresAt,
		AttemptsRemaining: remaining,
	}, nil
}

// CheckVerification confirms that token proves ownership of email.
func (s *OTPService) CheckVerification(token, email string) error {
	if token == "" {
		return appErrors.Clone(appErrors.ErrEmailNotVerified, "Please verify your email address before submitting")
	}
	claims, err := s.signer.Parse(token, otp.PurposeVerification)
	if err != nil {
		if errors.Is(err, otp.ErrExpired) {
			return appErrors.Clone(appErrors.ErrEmailNotVerified, "Email verification has expired, please verify again")
		}
		return appErrors.Clone(appErrors.ErrEmailNotVerified, "Please verify your email address before submitting")
	}
	if claims.Email != otp.NormalizeEmail(email) {
		return appErrors.Clone(appErrors.ErrEmailNotVerified, "Verified email does not match the submitted email")
	}
	return nil
}
