package directory

import (
	"context"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, patch PatientPatch) (*Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) (bool, error)
	ListPatients(ctx context.Context, limit, offset int) ([]Patient, error)

	CreateStaff(ctx context.Context, s *Staff) error
	GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error)
	UpdateStaff(ctx context.Context, id uuid.UUID, patch StaffPatch) (*Staff, error)
	DeleteStaff(ctx context.Context, id uuid.UUID) (bool, error)
	ListStaff(ctx context.Context, limit, offset int) ([]Staff, error)
}
