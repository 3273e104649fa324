package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSessionHappyPath(t *testing.T) {
	var s Session
	assert.Equal(t, NotSent, s.State())
	assert.ErrorIs(t, s.Verify("123456"), ErrNotSent)

	s.Sent("leader@example.org", "123456")
	assert.Equal(t, Sent, s.State())
	assert.Equal(t, 3, s.AttemptsRemaining())

	require.NoError(t, s.Verify("123456"))
	assert.Equal(t, Verified, s.State())
}

func TestSessionFourthVerifyRejectedWithoutComparison(t *testing.T) {
	var s Session
	s.Sent("leader@example.org", "123456")

	assert.ErrorIs(t, s.Verify("000000"), ErrMismatch)
	assert.ErrorIs(t, s.Verify("111111"), ErrMismatch)
	assert.ErrorIs(t, s.Verify("222222"), ErrAttemptsExceeded)
	assert.Equal(t, NotSent, s.State())

	// the correct code no longer helps
	assert.ErrorIs(t, s.Verify("123456"), ErrAttemptsExceeded)
	assert.Equal(t, NotSent, s.State())
}

func TestSessionResendResetsBudget(t *testing.T) {
	var s Session
	s.Sent("leader@example.org", "123456")
	_ = s.Verify("000000")
	_ = s.Verify("000000")

	s.Sent("leader@example.org", "654321")
	assert.Equal(t, 3, s.AttemptsRemaining())
	assert.ErrorIs(t, s.Verify("123456"), ErrMismatch, "previous code must be invalidated")
	require.NoError(t, s.Verify("654321"))
}

func TestSessionNeverVerifiesAfterExhaustion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.StringMatching(`[0-9]{6}`).Draw(t, "code")
		var s Session
		s.Sent("a@b.co", code)

		wrong := 0
		for wrong < MaxAttempts {
			guess := rapid.StringMatching(`[0-9]{6}`).Draw(t, "guess")
			if guess == code {
				continue
			}
			_ = s.Verify(guess)
			wrong++
		}

		if s.State() != NotSent {
			t.Fatalf("state after %d mismatches = %s", wrong, s.State())
		}
		if err := s.Verify(code); err != ErrAttemptsExceeded {
			t.Fatalf("verify after exhaustion = %v", err)
		}
	})
}
