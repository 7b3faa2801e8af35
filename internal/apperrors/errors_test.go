package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("slot %s taken", "09:00")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, KindUnavailable, KindOf(errors.New("disk on fire")))
}

func TestErrorMessage(t *testing.T) {
	err := InvalidTransition("cannot move appointment from %s to %s", "completed", "completed")
	assert.Equal(t, "INVALID_TRANSITION: cannot move appointment from completed to completed", err.Error())

	cause := errors.New("connection refused")
	wrapped := Unavailable("failed to load appointment", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestIs(t *testing.T) {
	assert.True(t, Is(Validation("reason required"), KindValidation))
	assert.False(t, Is(Validation("reason required"), KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}
