package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

func TestPatientLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.CreatePatient(ctx, &Patient{FirstName: "  ", LastName: "Diop"})
	assert.Equal(t, "invalid_patient_name", apperr.CodeOf(err))

	p, err := svc.CreatePatient(ctx, &Patient{FirstName: "Awa", LastName: "Diop"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, p.ID)

	assert.NoError(t, svc.PatientExists(ctx, p.ID))
	assert.True(t, apperr.IsKind(svc.PatientExists(ctx, uuid.New()), apperr.KindNotFound))

	empty := ""
	_, err = svc.UpdatePatient(ctx, p.ID, PatientPatch{FirstName: &empty})
	assert.Equal(t, "invalid_patient_name", apperr.CodeOf(err))

	name := "Aminata"
	updated, err := svc.UpdatePatient(ctx, p.ID, PatientPatch{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Aminata", updated.FirstName)

	deleted, err := svc.DeletePatient(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeletePatient(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStaffRequiresRole(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.CreateStaff(ctx, &Staff{FirstName: "Greg", LastName: "House"})
	assert.Equal(t, "invalid_staff_role", apperr.CodeOf(err))

	st, err := svc.CreateStaff(ctx, &Staff{FirstName: "Greg", LastName: "House", Role: "doctor", Active: true})
	require.NoError(t, err)

	assert.NoError(t, svc.ProviderExists(ctx, st.ID))

	list, err := svc.ListStaff(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
