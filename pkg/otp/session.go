package otp

import (
	"crypto/subtle"
	"errors"
)

// State is a position in the verification flow.
type State int

const (
	NotSent State = iota
	Sent
	Verified
)

func (s State) String() string {
	switch s {
	case NotSent:
		return "not_sent"
	case Sent:
		return "sent"
	case Verified:
		return "verified"
	default:
		return "unknown"
	}
}

// MaxAttempts is the number of mismatches tolerated per send.
const MaxAttempts = 3

var (
	ErrNotSent          = errors.New("otp: no code has been sent")
	ErrAttemptsExceeded = errors.New("otp: attempts exhausted, request a new code")
	ErrMismatch         = errors.New("otp: code does not match")
)

// Session holds one client's verification flow. It is not safe for
// concurrent use.
type Session struct {
	email    string
	code     string
	state    State
	failures int
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Email returns the address the current code was sent to.
func (s *Session) Email() string { return s.email }

// AttemptsRemaining returns how many comparisons are left for the current code.
func (s *Session) AttemptsRemaining() int {
	if s.state != Sent {
		return 0
	}
	return MaxAttempts - s.failures
}

// Sent records that code was delivered to email. Any previous code is
// invalidated and the attempt budget is reset, so it also serves as resend.
func (s *Session) Sent(email, code string) {
	s.email = email
	s.code = code
	s.state = Sent
	s.failures = 0
}

// Verify compares candidate against the current code. After MaxAttempts
// mismatches the session falls back to NotSent and further calls are
// rejected without comparing.
func (s *Session) Verify(candidate string) error {
	switch s.state {
	case Verified:
		return nil
	case NotSent:
		if s.failures >= MaxAttempts {
			return ErrAttemptsExceeded
		}
		return ErrNotSent
	}

	if subtle.ConstantTimeCompare([]byte(candidate), []byte(s.code)) == 1 {
		s.state = Verified
		s.code = ""
		return nil
	}

	s.failures++
	if s.failures >= MaxAttempts {
		s.state = NotSent
		s.code = ""
		return ErrAttemptsExceeded
	}
	return ErrMismatch
}
