package dto

import "time"

// SendOTPRequest asks for a verification code to be mailed.
type SendOTPRequest struct {
	Email string `json:"email" validate:"required,simple_email"`
}

// SendOTPResponse carries the signed challenge. OTP is only present when
// the server is configured to expose codes.
type SendOTPResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	OTP       string    `json:"otp,omitempty"`
}

// VerifyOTPRequest submits a candidate code against a challenge token.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,simple_email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
	Token string `json:"token" validate:"required"`
}

// VerifyOTPResponse reports the outcome and, on success, a proof token for
// the registration submission.
type VerifyOTPResponse struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message"`
	VerificationToken string     `json:"verificationToken,omitempty"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	AttemptsRemaining int        `json:"attemptsRemaining"`
}
