package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caretrack/hospital-backend/internal/apperr"
	redisclient "github.com/caretrack/hospital-backend/internal/redis"
)

// Directory resolves foreign-key references before a write.
type Directory interface {
	PatientExists(ctx context.Context, id uuid.UUID) error
	ProviderExists(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo   Repository
	dir    Directory
	locker redisclient.Locker
	now    func() time.Time
}

func NewService(repo Repository, dir Directory, locker redisclient.Locker) *Service {
	return &Service{
		repo:   repo,
		dir:    dir,
		locker: locker,
		now:    time.Now,
	}
}

type CreateInput struct {
	PatientID  uuid.UUID
	ProviderID uuid.UUID
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status // defaults to scheduled
	Type       string
	Notes      *string
}

// Create books an appointment. The conflict check and the insert run inside
// a provider-scoped lock so concurrent bookings for the same provider cannot
// both pass the check.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := s.dir.PatientExists(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if err := s.dir.ProviderExists(ctx, in.ProviderID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("invalid_title", "title is required")
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, apperr.Validation("invalid_time_range", "end time must be after start time")
	}
	if in.StartTime.Before(s.now()) {
		return nil, apperr.Validation("start_in_past", "appointment cannot start in the past")
	}

	status := in.Status
	if status == "" {
		status = StatusScheduled
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid_status", "invalid appointment status")
	}

	var created *Appointment

	err := s.locker.WithProviderLock(ctx, in.ProviderID, func(lockCtx context.Context) error {
		conflict, err := s.repo.HasConflict(lockCtx, in.ProviderID, in.StartTime, in.EndTime, nil)
		if err != nil {
			return err
		}
		if conflict {
			return apperr.Conflict("schedule_conflict", "time slot conflicts with another appointment")
		}

		now := s.now()
		appt := &Appointment{
			ID:         uuid.New(),
			PatientID:  in.PatientID,
			ProviderID: in.ProviderID,
			Title:      in.Title,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			Status:     status,
			Type:       in.Type,
			Notes:      in.Notes,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Create(lockCtx, appt); err != nil {
			return err
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, apperr.Conflict("provider_busy", "provider schedule is being updated, please retry")
		}
		return nil, err
	}

	return created, nil
}

// Update applies a partial update. A change to the time window or the
// provider re-runs the conflict check with the appointment excluded from
// its own comparison.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperr.Validation("invalid_status", "invalid appointment status")
		}
		if !CanTransition(existing.Status, *patch.Status) {
			return nil, apperr.Validation("invalid_status_transition", "appointment status cannot change from "+string(existing.Status)+" to "+string(*patch.Status))
		}
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperr.Validation("invalid_title", "title cannot be empty")
	}

	if patch.PatientID != nil && *patch.PatientID != existing.PatientID {
		if err := s.dir.PatientExists(ctx, *patch.PatientID); err != nil {
			return nil, err
		}
	}

	newProvider := existing.ProviderID
	if patch.ProviderID != nil {
		newProvider = *patch.ProviderID
	}
	newStart := existing.StartTime
	if patch.StartTime != nil {
		newStart = *patch.StartTime
	}
	newEnd := existing.EndTime
	if patch.EndTime != nil {
		newEnd = *patch.EndTime
	}

	timingChanged := !newStart.Equal(existing.StartTime) ||
		!newEnd.Equal(existing.EndTime) ||
		newProvider != existing.ProviderID

	if !timingChanged {
		return s.repo.Update(ctx, id, patch)
	}

	if !newStart.Before(newEnd) {
		return nil, apperr.Validation("invalid_time_range", "end time must be after start time")
	}
	if newProvider != existing.ProviderID {
		if err := s.dir.ProviderExists(ctx, newProvider); err != nil {
			return nil, err
		}
	}

	var updated *Appointment

	err = s.locker.WithProviderLock(ctx, newProvider, func(lockCtx context.Context) error {
		excludeID := id
		conflict, err := s.repo.HasConflict(lockCtx, newProvider, newStart, newEnd, &excludeID)
		if err != nil {
			return err
		}
		if conflict {
			return apperr.Conflict("schedule_conflict", "time slot conflicts with another appointment")
		}

		updated, err = s.repo.Update(lockCtx, id, patch)
		return err
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, apperr.Conflict("provider_busy", "provider schedule is being updated, please retry")
		}
		return nil, err
	}

	return updated, nil
}

// Delete hard-deletes an appointment. Deleting an absent appointment is not
// an error; it reports false.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, w Window, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, w, limit, offset)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByProvider(ctx, providerID, w, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListByPatient(ctx, patientID, w, limit, offset)
}

// AppointmentExists resolves an appointment reference for other modules.
func (s *Service) AppointmentExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.repo.GetByID(ctx, id)
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
