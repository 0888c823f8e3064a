package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/hospital-backend/internal/billing"
	"github.com/caretrack/hospital-backend/internal/directory"
	"github.com/caretrack/hospital-backend/internal/scheduling"
)

const testSecret = "test-secret"

type inlineLocker struct{}

func (inlineLocker) WithProviderLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestRouter() http.Handler {
	dirSvc := directory.NewService(directory.NewMemoryRepository())
	schedSvc := scheduling.NewService(scheduling.NewMemoryRepository(), dirSvc, inlineLocker{})
	billSvc := billing.NewService(billing.NewMemoryRepository(), dirSvc, schedSvc)

	return NewRouter(RouterConfig{
		Scheduling: schedSvc,
		Billing:    billSvc,
		Directory:  dirSvc,
		Env:        "test",
		Version:    "test",
		JWTSecret:  testSecret,
	})
}

func testToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func createTestPatient(t *testing.T, router http.Handler, token string) string {
	t.Helper()
	rec, env := doRequest(t, router, http.MethodPost, "/patients/", map[string]any{
		"first_name": "Ada",
		"last_name":  "Ndiaye",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	return env.Data.(map[string]any)["id"].(string)
}

func createTestDoctor(t *testing.T, router http.Handler, token string) string {
	t.Helper()
	rec, env := doRequest(t, router, http.MethodPost, "/staff/", map[string]any{
		"first_name": "Greg",
		"last_name":  "House",
		"role":       "doctor",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	return env.Data.(map[string]any)["id"].(string)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter()

	rec, env := doRequest(t, router, http.MethodGet, "/appointments/", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = doRequest(t, router, http.MethodGet, "/appointments/", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	rec, _ = doRequest(t, router, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	router := newTestRouter()
	token := testToken(t)

	patientID := createTestPatient(t, router, token)
	doctorID := createTestDoctor(t, router, token)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(30 * time.Minute)

	book := map[string]any{
		"patient_id":  patientID,
		"provider_id": doctorID,
		"title":       "Annual checkup",
		"start_time":  start.Format(time.RFC3339),
		"end_time":    end.Format(time.RFC3339),
	}

	rec, env := doRequest(t, router, http.MethodPost, "/appointments/", book, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)

	apptID := env.Data.(map[string]any)["id"].(string)
	assert.Equal(t, "scheduled", env.Data.(map[string]any)["status"])

	// Same provider, overlapping window: 409.
	book["start_time"] = start.Add(15 * time.Minute).Format(time.RFC3339)
	book["end_time"] = end.Add(15 * time.Minute).Format(time.RFC3339)
	rec, env = doRequest(t, router, http.MethodPost, "/appointments/", book, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)

	// Back-to-back is fine.
	book["start_time"] = end.Format(time.RFC3339)
	book["end_time"] = end.Add(30 * time.Minute).Format(time.RFC3339)
	rec, _ = doRequest(t, router, http.MethodPost, "/appointments/", book, token)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doRequest(t, router, http.MethodGet, "/appointments/"+apptID, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doRequest(t, router, http.MethodGet, "/appointments/doctor/"+doctorID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data, 2)

	rec, env = doRequest(t, router, http.MethodPut, "/appointments/"+apptID, map[string]any{"status": "confirmed"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "confirmed", env.Data.(map[string]any)["status"])

	rec, env = doRequest(t, router, http.MethodPut, "/appointments/"+apptID, map[string]any{"status": "bogus"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, env = doRequest(t, router, http.MethodDelete, "/appointments/"+apptID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env.Data)

	rec, _ = doRequest(t, router, http.MethodGet, "/appointments/"+apptID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingUnknownPatient(t *testing.T) {
	router := newTestRouter()
	token := testToken(t)
	doctorID := createTestDoctor(t, router, token)

	start := time.Now().Add(24 * time.Hour)
	rec, _ := doRequest(t, router, http.MethodPost, "/appointments/", map[string]any{
		"patient_id":  uuid.NewString(),
		"provider_id": doctorID,
		"title":       "Checkup",
		"start_time":  start.Format(time.RFC3339),
		"end_time":    start.Add(time.Hour).Format(time.RFC3339),
	}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillingFlow(t *testing.T) {
	router := newTestRouter()
	token := testToken(t)
	patientID := createTestPatient(t, router, token)

	rec, env := doRequest(t, router, http.MethodPost, "/billing/invoices", map[string]any{
		"patient_id": patientID,
		"due_date":   time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		"items": []map[string]any{
			{"description": "Consultation", "quantity": 1, "unit_price": "150.00"},
			{"description": "Blood panel", "quantity": 2, "unit_price": "42.50"},
		},
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	invoice := env.Data.(map[string]any)
	invoiceID := invoice["id"].(string)
	assert.Equal(t, "draft", invoice["status"])
	assert.Equal(t, "235", invoice["total_amount"])
	assert.Equal(t, "235", invoice["balance"])

	rec, env = doRequest(t, router, http.MethodPost, "/billing/payments", map[string]any{
		"invoice_id":     invoiceID,
		"amount":         "100.00",
		"payment_method": "card",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	// The acting user comes from the token, not the body.
	assert.Equal(t, "user-123", env.Data.(map[string]any)["processed_by"])

	rec, env = doRequest(t, router, http.MethodGet, "/billing/invoices/"+invoiceID, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partially_paid", env.Data.(map[string]any)["status"])

	// Overpaying the remainder is rejected.
	rec, _ = doRequest(t, router, http.MethodPost, "/billing/payments", map[string]any{
		"invoice_id":     invoiceID,
		"amount":         "200.00",
		"payment_method": "card",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = doRequest(t, router, http.MethodGet, fmt.Sprintf("/billing/invoices/%s/payments", invoiceID), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data, 1)

	rec, env = doRequest(t, router, http.MethodGet, "/billing/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := env.Data.(map[string]any)
	assert.Equal(t, float64(1), stats["invoice_count"])
	assert.Equal(t, "100", stats["total_paid"])

	// Non-draft invoices cannot be deleted.
	rec, _ = doRequest(t, router, http.MethodDelete, "/billing/invoices/"+invoiceID, nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectoryFlow(t *testing.T) {
	router := newTestRouter()
	token := testToken(t)

	patientID := createTestPatient(t, router, token)

	rec, env := doRequest(t, router, http.MethodPut, "/patients/"+patientID, map[string]any{
		"first_name": "Aminata",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aminata", env.Data.(map[string]any)["first_name"])

	rec, env = doRequest(t, router, http.MethodGet, "/patients/", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.Data, 1)

	rec, _ = doRequest(t, router, http.MethodDelete, "/patients/"+patientID, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodGet, "/patients/"+patientID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Staff validation.
	rec, _ = doRequest(t, router, http.MethodPost, "/staff/", map[string]any{
		"first_name": "No",
		"last_name":  "Role",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
