package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// allowedTransitions is the appointment lifecycle. Completed, cancelled and
// no-show are terminal.
var allowedTransitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether an appointment may move from one status to
// another. Staying in the same status is always permitted.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID         uuid.UUID
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	Type       string
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Patch lists exactly the appointment fields an update may touch.
// Nil means leave unchanged.
type Patch struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	Title      *string
	StartTime  *time.Time
	EndTime    *time.Time
	Status     *Status
	Type       *string
	Notes      *string
}

// Overlaps is the canonical overlap predicate for half-open intervals
// [aStart, aEnd) and [bStart, bEnd). An interval ending exactly when the
// other begins does not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
