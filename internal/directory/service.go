package directory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return nil, apperr.Validation("invalid_patient_name", "first and last name are required")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.CreatePatient(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, patch PatientPatch) (*Patient, error) {
	if patch.FirstName != nil && strings.TrimSpace(*patch.FirstName) == "" {
		return nil, apperr.Validation("invalid_patient_name", "first name cannot be empty")
	}
	if patch.LastName != nil && strings.TrimSpace(*patch.LastName) == "" {
		return nil, apperr.Validation("invalid_patient_name", "last name cannot be empty")
	}
	return s.repo.UpdatePatient(ctx, id, patch)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.DeletePatient(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]Patient, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListPatients(ctx, limit, offset)
}

// PatientExists resolves a patient reference before another module writes
// a row pointing at it.
func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetPatientByID(ctx, id)
	return err
}

// -- Staff --

func (s *Service) CreateStaff(ctx context.Context, st *Staff) (*Staff, error) {
	if strings.TrimSpace(st.FirstName) == "" || strings.TrimSpace(st.LastName) == "" {
		return nil, apperr.Validation("invalid_staff_name", "first and last name are required")
	}
	if strings.TrimSpace(st.Role) == "" {
		return nil, apperr.Validation("invalid_staff_role", "role is required")
	}
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	now := time.Now()
	st.CreatedAt = now
	st.UpdatedAt = now
	if err := s.repo.CreateStaff(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetStaffByID(ctx, id)
}

func (s *Service) UpdateStaff(ctx context.Context, id uuid.UUID, patch StaffPatch) (*Staff, error) {
	if patch.Role != nil && strings.TrimSpace(*patch.Role) == "" {
		return nil, apperr.Validation("invalid_staff_role", "role cannot be empty")
	}
	return s.repo.UpdateStaff(ctx, id, patch)
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.DeleteStaff(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, limit, offset int) ([]Staff, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListStaff(ctx, limit, offset)
}

// ProviderExists resolves a staff reference used as an appointment provider.
func (s *Service) ProviderExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetStaffByID(ctx, id)
	return err
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
