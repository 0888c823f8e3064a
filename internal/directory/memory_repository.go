package directory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

// MemoryRepository is an in-memory Repository used by tests and local tooling.
type MemoryRepository struct {
	mu       sync.Mutex
	patients map[uuid.UUID]Patient
	staff    map[uuid.UUID]Staff
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients: make(map[uuid.UUID]Patient),
		staff:    make(map[uuid.UUID]Staff),
	}
}

func (r *MemoryRepository) CreatePatient(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = *p
	return nil
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient_not_found", "patient not found")
	}
	cp := p
	return &cp, nil
}

func (r *MemoryRepository) UpdatePatient(_ context.Context, id uuid.UUID, patch PatientPatch) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient_not_found", "patient not found")
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Email != nil {
		p.Email = patch.Email
	}
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	if patch.DateOfBirth != nil {
		p.DateOfBirth = patch.DateOfBirth
	}
	p.UpdatedAt = time.Now()
	r.patients[id] = p
	cp := p
	return &cp, nil
}

func (r *MemoryRepository) DeletePatient(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return false, nil
	}
	delete(r.patients, id)
	return true, nil
}

func (r *MemoryRepository) ListPatients(_ context.Context, limit, offset int) ([]Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	return page(all, limit, offset), nil
}

func (r *MemoryRepository) CreateStaff(_ context.Context, s *Staff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staff[s.ID] = *s
	return nil
}

func (r *MemoryRepository) GetStaffByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.staff[id]
	if !ok {
		return nil, apperr.NotFound("staff_not_found", "staff member not found")
	}
	cp := s
	return &cp, nil
}

func (r *MemoryRepository) UpdateStaff(_ context.Context, id uuid.UUID, patch StaffPatch) (*Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.staff[id]
	if !ok {
		return nil, apperr.NotFound("staff_not_found", "staff member not found")
	}
	if patch.FirstName != nil {
		s.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		s.LastName = *patch.LastName
	}
	if patch.Role != nil {
		s.Role = *patch.Role
	}
	if patch.Specialty != nil {
		s.Specialty = patch.Specialty
	}
	if patch.Email != nil {
		s.Email = patch.Email
	}
	if patch.Phone != nil {
		s.Phone = patch.Phone
	}
	if patch.Active != nil {
		s.Active = *patch.Active
	}
	s.UpdatedAt = time.Now()
	r.staff[id] = s
	cp := s
	return &cp, nil
}

func (r *MemoryRepository) DeleteStaff(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.staff[id]; !ok {
		return false, nil
	}
	delete(r.staff, id)
	return true, nil
}

func (r *MemoryRepository) ListStaff(_ context.Context, limit, offset int) ([]Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Staff, 0, len(r.staff))
	for _, s := range r.staff {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastName != all[j].LastName {
			return all[i].LastName < all[j].LastName
		}
		return all[i].FirstName < all[j].FirstName
	})
	return page(all, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
