package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	dup := Clone(ErrDuplicate, "Duplicate email: a@b.co")
	wrapped := fmt.Errorf("submit: %w", dup)

	got := FromError(wrapped)
	assert.Equal(t, "DUPLICATE_REGISTRATION", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "Duplicate email: a@b.co", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	_ = Clone(ErrValidation, "leaderName is required")
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrNotFound.Code, ErrNotFound.Status, "registration not found")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrDuplicate))
	assert.False(t, Is(nil, ErrNotFound))
	assert.Equal(t, http.StatusTooManyRequests, ErrOTPThrottled.Status)
}

func TestStandardErrorsIsMatchesClones(t *testing.T) {
	err := fmt.Errorf("verify: %w", Clone(ErrOTPExpired, "code expired at 10:02"))
	assert.True(t, errors.Is(err, ErrOTPExpired))
	assert.False(t, errors.Is(err, ErrOTPInvalid))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusOf(nil))
	assert.Equal(t, http.StatusForbidden, StatusOf(ErrEmailNotVerified))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(sql.ErrConnDone))
}
