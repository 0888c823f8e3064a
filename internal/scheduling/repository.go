package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Window is an optional start-time filter for list reads. Nil bounds are
// unbounded.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	List(ctx context.Context, w Window, limit, offset int) ([]Appointment, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, w Window, limit, offset int) ([]Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, w Window, limit, offset int) ([]Appointment, error)

	// HasConflict reports whether a non-cancelled appointment for the provider
	// overlaps [start, end). excludeID, when non-nil, skips that appointment
	// so an update does not conflict with itself.
	HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)

	Create(ctx context.Context, a *Appointment) error
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
