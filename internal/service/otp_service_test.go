package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/church-events-api/internal/dto"
	"github.com/noah-isme/church-events-api/pkg/cache"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
	"github.com/noah-isme/church-events-api/pkg/otp"
)

type otpSenderMock struct {
	email string
	code  string
	err   error
}

func (m *otpSenderMock) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	m.email, m.code = email, code
	return m.err
}

func newTestOTPService(sender *otpSenderMock, cfg OTPConfig) *OTPService {
	return NewOTPService(otp.NewSigner("otp-secret"), cache.NewMemoryCounter(time.Minute), sender, nil, nil, nil, cfg)
}

func TestOTPServiceSendAndVerify(t *testing.T) {
	sender := &otpSenderMock{}
	svc := newTestOTPService(sender, OTPConfig{})
	ctx := context.Background()

	sent, err := svc.Send(ctx, dto.SendOTPRequest{Email: "Mary@Example.org"})
	require.NoError(t, err)
	assert.Empty(t, sent.OTP)
	assert.Equal(t, "mary@example.org", sender.email)
	assert.Len(t, sender.code, otp.CodeLength)

	verified, err := svc.Verify(ctx, dto.VerifyOTPRequest{Email: "mary@example.org", OTP: sender.code, Token: sent.Token})
	require.NoError(t, err)
	assert.True(t, verified.Success)
	require.NotEmpty(t, verified.VerificationToken)

	require.NoError(t, svc.CheckVerification(verified.VerificationToken, "MARY@example.org"))
	err = svc.CheckVerification(verified.VerificationToken, "other@example.org")
	assert.True(t, appErrors.Is(err, appErrors.ErrEmailNotVerified))
}

func TestOTPServiceExposeCode(t *testing.T) {
	sender := &otpSenderMock{}
	svc := newTestOTPService(sender, OTPConfig{ExposeCode: true})

	sent, err := svc.Send(context.Background(), dto.SendOTPRequest{Email: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, sender.code, sent.OTP)
}

func TestOTPServiceResendThrottled(t *testing.T) {
	svc := newTestOTPService(&otpSenderMock{}, OTPConfig{ResendInterval: time.Minute})
	ctx := context.Background()

	_, err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPThrottled))
}

func TestOTPServiceSendFailure(t *testing.T) {
	svc := newTestOTPService(&otpSenderMock{err: errors.New("smtp down")}, OTPConfig{})
	_, err := svc.Send(context.Background(), dto.SendOTPRequest{Email: "a@b.co"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestOTPServiceSendFailureDoesNotHoldResendWindow(t *testing.T) {
	sender := &otpSenderMock{err: errors.New("smtp down")}
	svc := newTestOTPService(sender, OTPConfig{ResendInterval: time.Minute})
	ctx := context.Background()

	_, err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	require.True(t, appErrors.Is(err, appErrors.ErrInternal))

	sender.err = nil
	sent, err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	require.NoError(t, err)
	assert.NotEmpty(t, sent.Token)

	_, err = svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPThrottled))
}

func TestOTPServiceAttemptsExhausted(t *testing.T) {
	sender := &otpSenderMock{}
	svc := newTestOTPService(sender, OTPConfig{})
	ctx := context.Background()

	sent, err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	require.NoError(t, err)
	wrong := "000000"
	if sender.code == wrong {
		wrong = "111111"
	}

	resp, err := svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@b.co", OTP: wrong, Token: sent.Token})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPInvalid))
	assert.Equal(t, 2, resp.AttemptsRemaining)

	resp, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@b.co", OTP: wrong, Token: sent.Token})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPInvalid))
	assert.Equal(t, 1, resp.AttemptsRemaining)

	_, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@b.co", OTP: wrong, Token: sent.Token})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPAttemptsExceeded))

	// The right code no longer helps once the attempts are spent.
	_, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@b.co", OTP: sender.code, Token: sent.Token})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPAttemptsExceeded))
}

func TestOTPServiceRejectsForeignEmailAndBadToken(t *testing.T) {
	sender := &otpSenderMock{}
	svc := newTestOTPService(sender, OTPConfig{})
	ctx := context.Background()

	sent, err := svc.Send(ctx, dto.SendOTPRequest{Email: "a@b.co"})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "c@d.co", OTP: sender.code, Token: sent.Token})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPInvalid))

	_, err = svc.Verify(ctx, dto.VerifyOTPRequest{Email: "a@b.co", OTP: sender.code, Token: sent.Token + "x"})
	assert.True(t, appErrors.Is(err, appErrors.ErrOTPInvalid))
}
