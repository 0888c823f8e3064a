package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndCodeExtraction(t *testing.T) {
	err := NotFound("invoice_not_found", "invoice not found")

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "invoice_not_found", CodeOf(err))
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	inner := Conflict("schedule_conflict", "time slot conflicts with another appointment")
	wrapped := fmt.Errorf("booking: %w", inner)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, "schedule_conflict", CodeOf(wrapped))
}

func TestPlainErrorIsUnknown(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Empty(t, CodeOf(err))
	assert.False(t, IsKind(err, KindInternal))
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.Equal(t, KindInternal, KindOf(err))
	assert.ErrorIs(t, err, cause)
}
