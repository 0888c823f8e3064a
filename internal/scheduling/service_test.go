package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

type stubDirectory struct {
	missingPatients  map[uuid.UUID]bool
	missingProviders map[uuid.UUID]bool
}

func (d *stubDirectory) PatientExists(_ context.Context, id uuid.UUID) error {
	if d.missingPatients[id] {
		return apperr.NotFound("patient_not_found", "patient not found")
	}
	return nil
}

func (d *stubDirectory) ProviderExists(_ context.Context, id uuid.UUID) error {
	if d.missingProviders[id] {
		return apperr.NotFound("staff_not_found", "staff member not found")
	}
	return nil
}

// noopLocker runs the callback inline. Lock behavior itself is covered by
// the redis package.
type noopLocker struct{}

func (noopLocker) WithProviderLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &stubDirectory{}, noopLocker{})
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	return svc, repo
}

func validInput() CreateInput {
	return CreateInput{
		PatientID:  uuid.New(),
		ProviderID: uuid.New(),
		Title:      "Annual checkup",
		StartTime:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestCreateDefaultsToScheduled(t *testing.T) {
	svc, _ := newTestService()

	appt, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.NotEqual(t, uuid.Nil, appt.ID)
}

func TestCreateRejectsInvalidWindow(t *testing.T) {
	svc, _ := newTestService()

	in := validInput()
	in.EndTime = in.StartTime
	_, err := svc.Create(context.Background(), in)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	in = validInput()
	in.StartTime, in.EndTime = in.EndTime, in.StartTime
	_, err = svc.Create(context.Background(), in)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateRejectsPastStart(t *testing.T) {
	svc, _ := newTestService()

	in := validInput()
	in.StartTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in.EndTime = in.StartTime.Add(30 * time.Minute)

	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, "start_in_past", apperr.CodeOf(err))
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	repo := NewMemoryRepository()
	in := validInput()
	dir := &stubDirectory{missingPatients: map[uuid.UUID]bool{in.PatientID: true}}
	svc := NewService(repo, dir, noopLocker{})

	_, err := svc.Create(context.Background(), in)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateDetectsOverlap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := validInput()
	_, err := svc.Create(ctx, first)
	require.NoError(t, err)

	cases := []struct {
		name       string
		start, end time.Time
		conflict   bool
	}{
		{"identical window", first.StartTime, first.EndTime, true},
		{"overlaps the tail", first.StartTime.Add(15 * time.Minute), first.EndTime.Add(15 * time.Minute), true},
		{"overlaps the head", first.StartTime.Add(-15 * time.Minute), first.StartTime.Add(15 * time.Minute), true},
		{"fully contains", first.StartTime.Add(-15 * time.Minute), first.EndTime.Add(15 * time.Minute), true},
		{"contained within", first.StartTime.Add(5 * time.Minute), first.EndTime.Add(-5 * time.Minute), true},
		{"starts at the end", first.EndTime, first.EndTime.Add(30 * time.Minute), false},
		{"ends at the start", first.StartTime.Add(-30 * time.Minute), first.StartTime, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := first
			in.PatientID = uuid.New()
			in.StartTime = tc.start
			in.EndTime = tc.end

			_, err := svc.Create(ctx, in)
			if tc.conflict {
				require.Error(t, err)
				assert.Equal(t, "schedule_conflict", apperr.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateIgnoresOtherProviderAndCancelled(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := validInput()
	created, err := svc.Create(ctx, first)
	require.NoError(t, err)

	// Same window, different provider: fine.
	other := first
	other.ProviderID = uuid.New()
	_, err = svc.Create(ctx, other)
	assert.NoError(t, err)

	// Cancel the first, rebook the freed window.
	cancelled := StatusCancelled
	_, err = svc.Update(ctx, created.ID, Patch{Status: &cancelled})
	require.NoError(t, err)

	rebook := first
	rebook.PatientID = uuid.New()
	_, err = svc.Create(ctx, rebook)
	assert.NoError(t, err)
}

func TestUpdateExcludesSelfFromConflictCheck(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// Shift by 10 minutes; the new window overlaps the appointment's own
	// current window and nothing else.
	newStart := created.StartTime.Add(10 * time.Minute)
	newEnd := created.EndTime.Add(10 * time.Minute)

	updated, err := svc.Update(ctx, created.ID, Patch{StartTime: &newStart, EndTime: &newEnd})
	require.NoError(t, err)
	assert.True(t, updated.StartTime.Equal(newStart))
	assert.True(t, updated.EndTime.Equal(newEnd))
}

func TestUpdateRescheduleConflicts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	second := validInput()
	second.ProviderID = first.ProviderID
	second.StartTime = first.EndTime
	second.EndTime = first.EndTime.Add(30 * time.Minute)
	other, err := svc.Create(ctx, second)
	require.NoError(t, err)

	// Move the second appointment on top of the first.
	_, err = svc.Update(ctx, other.ID, Patch{StartTime: &first.StartTime, EndTime: &first.EndTime})
	require.Error(t, err)
	assert.Equal(t, "schedule_conflict", apperr.CodeOf(err))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	confirmed := StatusConfirmed
	appt, err := svc.Update(ctx, created.ID, Patch{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, appt.Status)

	completed := StatusCompleted
	appt, err = svc.Update(ctx, created.ID, Patch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, appt.Status)

	// Completed is terminal.
	scheduled := StatusScheduled
	_, err = svc.Update(ctx, created.ID, Patch{Status: &scheduled})
	require.Error(t, err)
	assert.Equal(t, "invalid_status_transition", apperr.CodeOf(err))
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService()

	title := "Follow-up"
	_, err := svc.Update(context.Background(), uuid.New(), Patch{Title: &title})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteReportsPresence(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListByProviderAndPatient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validInput()
	first, err := svc.Create(ctx, in)
	require.NoError(t, err)

	in2 := validInput()
	in2.StartTime = in.EndTime
	in2.EndTime = in.EndTime.Add(time.Hour)
	_, err = svc.Create(ctx, in2)
	require.NoError(t, err)

	byProvider, err := svc.ListByProvider(ctx, first.ProviderID, Window{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, byProvider, 1)

	byPatient, err := svc.ListByPatient(ctx, first.PatientID, Window{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)

	all, err := svc.List(ctx, Window{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Window bounded to the first appointment's start time.
	to := first.StartTime
	windowed, err := svc.List(ctx, Window{To: &to}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, windowed, 1)
}
