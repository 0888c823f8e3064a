package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

// MemoryRepository is an in-memory Repository used by tests.
type MemoryRepository struct {
	mu    sync.Mutex
	appts map[uuid.UUID]Appointment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appts: make(map[uuid.UUID]Appointment)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment_not_found", "appointment not found")
	}
	cp := a
	return &cp, nil
}

func (r *MemoryRepository) HasConflict(_ context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.ProviderID != providerID || a.Status == StatusCancelled {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appts[a.ID] = *a
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment_not_found", "appointment not found")
	}
	if patch.PatientID != nil {
		a.PatientID = *patch.PatientID
	}
	if patch.ProviderID != nil {
		a.ProviderID = *patch.ProviderID
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.StartTime != nil {
		a.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		a.EndTime = *patch.EndTime
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Type != nil {
		a.Type = *patch.Type
	}
	if patch.Notes != nil {
		a.Notes = patch.Notes
	}
	a.UpdatedAt = time.Now()
	r.appts[id] = a
	cp := a
	return &cp, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appts[id]; !ok {
		return false, nil
	}
	delete(r.appts, id)
	return true, nil
}

func (r *MemoryRepository) List(_ context.Context, w Window, limit, offset int) ([]Appointment, error) {
	return r.list(limit, offset, func(a Appointment) bool { return w.contains(a.StartTime) }), nil
}

func (r *MemoryRepository) ListByProvider(_ context.Context, providerID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	return r.list(limit, offset, func(a Appointment) bool {
		return a.ProviderID == providerID && w.contains(a.StartTime)
	}), nil
}

func (r *MemoryRepository) ListByPatient(_ context.Context, patientID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	return r.list(limit, offset, func(a Appointment) bool {
		return a.PatientID == patientID && w.contains(a.StartTime)
	}), nil
}

func (w Window) contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

func (r *MemoryRepository) list(limit, offset int, keep func(Appointment) bool) []Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []Appointment
	for _, a := range r.appts {
		if keep(a) {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.Before(all[j].StartTime) })
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
