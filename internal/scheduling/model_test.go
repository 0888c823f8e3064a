package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlapsHalfOpen(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
	}

	assert.True(t, Overlaps(at(9, 0), at(10, 0), at(9, 30), at(10, 30)))
	assert.True(t, Overlaps(at(9, 0), at(10, 0), at(8, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(10, 0), at(9, 0), at(10, 0)))

	// Touching endpoints do not overlap.
	assert.False(t, Overlaps(at(9, 0), at(10, 0), at(10, 0), at(11, 0)))
	assert.False(t, Overlaps(at(10, 0), at(11, 0), at(9, 0), at(10, 0)))
	assert.False(t, Overlaps(at(9, 0), at(10, 0), at(11, 0), at(12, 0)))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusScheduled, StatusConfirmed))
	assert.True(t, CanTransition(StatusScheduled, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusConfirmed, StatusNoShow))
	assert.True(t, CanTransition(StatusCompleted, StatusCompleted))

	assert.False(t, CanTransition(StatusCompleted, StatusScheduled))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusNoShow, StatusScheduled))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
}
