package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

type stubDirectory struct {
	missing map[uuid.UUID]bool
}

func (d *stubDirectory) PatientExists(_ context.Context, id uuid.UUID) error {
	if d.missing[id] {
		return apperr.NotFound("patient_not_found", "patient not found")
	}
	return nil
}

type stubAppointments struct {
	missing map[uuid.UUID]bool
}

func (a *stubAppointments) AppointmentExists(_ context.Context, id uuid.UUID) error {
	if a.missing[id] {
		return apperr.NotFound("appointment_not_found", "appointment not found")
	}
	return nil
}

func newTestService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &stubDirectory{}, &stubAppointments{})
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validInvoiceInput() CreateInvoiceInput {
	return CreateInvoiceInput{
		PatientID: uuid.New(),
		DueDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []ItemInput{
			{Description: "Consultation", Quantity: 1, UnitPrice: money("150.00")},
			{Description: "Blood panel", Quantity: 2, UnitPrice: money("42.50")},
		},
	}
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	svc, _ := newTestService()

	inv, err := svc.CreateInvoice(context.Background(), validInvoiceInput())
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, inv.Status)
	assert.True(t, inv.TotalAmount.Equal(money("235.00")), "total was %s", inv.TotalAmount)
	assert.True(t, inv.AmountPaid.IsZero())
	assert.True(t, inv.Balance.Equal(inv.TotalAmount))

	require.Len(t, inv.Items, 2)
	assert.True(t, inv.Items[0].Amount.Equal(money("150.00")))
	assert.True(t, inv.Items[1].Amount.Equal(money("85.00")))
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validInvoiceInput()
	in.Items = nil
	_, err := svc.CreateInvoice(ctx, in)
	assert.Equal(t, "empty_items", apperr.CodeOf(err))

	in = validInvoiceInput()
	in.DueDate = time.Time{}
	_, err = svc.CreateInvoice(ctx, in)
	assert.Equal(t, "missing_due_date", apperr.CodeOf(err))

	in = validInvoiceInput()
	in.Items[0].Quantity = 0
	_, err = svc.CreateInvoice(ctx, in)
	assert.Equal(t, "invalid_item_quantity", apperr.CodeOf(err))

	in = validInvoiceInput()
	in.Items[0].UnitPrice = money("-1.00")
	_, err = svc.CreateInvoice(ctx, in)
	assert.Equal(t, "invalid_item_price", apperr.CodeOf(err))
}

func TestCreateInvoiceRejectsUnknownPatient(t *testing.T) {
	repo := NewMemoryRepository()
	in := validInvoiceInput()
	dir := &stubDirectory{missing: map[uuid.UUID]bool{in.PatientID: true}}
	svc := NewService(repo, dir, &stubAppointments{})

	_, err := svc.CreateInvoice(context.Background(), in)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPaymentSequence(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	// Partial payment moves the invoice to partially_paid.
	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        money("100.00"),
		PaymentMethod: "card",
		ProcessedBy:   "front-desk",
	})
	require.NoError(t, err)

	inv, err = svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, inv.Status)
	assert.True(t, inv.AmountPaid.Equal(money("100.00")))
	assert.True(t, inv.Balance.Equal(money("135.00")))
	assert.Nil(t, inv.PaidDate)

	// Settling the remainder flips it to paid and stamps the paid date.
	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        money("135.00"),
		PaymentMethod: "cash",
		ProcessedBy:   "front-desk",
	})
	require.NoError(t, err)

	inv, err = svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, inv.Status)
	assert.True(t, inv.Balance.IsZero())
	require.NotNil(t, inv.PaidDate)
	require.NotNil(t, inv.PaymentMethod)
	assert.Equal(t, "cash", *inv.PaymentMethod)

	payments, err := svc.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.True(t, payments[0].Amount.Add(payments[1].Amount).Equal(inv.AmountPaid))
}

func TestOverpaymentRejectedWithoutSideEffects(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        money("235.01"),
		PaymentMethod: "card",
		ProcessedBy:   "front-desk",
	})
	require.Error(t, err)
	assert.Equal(t, "payment_exceeds_balance", apperr.CodeOf(err))

	after, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, after.Status)
	assert.True(t, after.AmountPaid.IsZero())
	assert.True(t, after.Balance.Equal(after.TotalAmount))

	payments, err := svc.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        decimal.Zero,
		PaymentMethod: "card",
	})
	assert.Equal(t, "invalid_payment_amount", apperr.CodeOf(err))

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID: inv.ID,
		Amount:    money("10.00"),
	})
	assert.Equal(t, "missing_payment_method", apperr.CodeOf(err))

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     uuid.New(),
		Amount:        money("10.00"),
		PaymentMethod: "card",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestPaidInvoiceAdmitsOnlyStatusCorrection(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        inv.TotalAmount,
		PaymentMethod: "card",
		ProcessedBy:   "front-desk",
	})
	require.NoError(t, err)

	notes := "adjusted"
	_, err = svc.UpdateInvoice(ctx, inv.ID, Patch{Notes: &notes})
	assert.Equal(t, "invoice_paid", apperr.CodeOf(err))

	sent := StatusSent
	_, err = svc.UpdateInvoice(ctx, inv.ID, Patch{Status: &sent, Notes: &notes})
	assert.Equal(t, "invoice_paid", apperr.CodeOf(err))

	partiallyPaid := StatusPartiallyPaid
	updated, err := svc.UpdateInvoice(ctx, inv.ID, Patch{Status: &partiallyPaid})
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, updated.Status)
}

func TestDeleteInvoiceDraftOnly(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	sent := StatusSent
	_, err = svc.UpdateInvoice(ctx, inv.ID, Patch{Status: &sent})
	require.NoError(t, err)

	_, err = svc.DeleteInvoice(ctx, inv.ID)
	assert.Equal(t, "invoice_not_draft", apperr.CodeOf(err))

	// Still retrievable after the rejected delete.
	_, err = svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)

	draft, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	deleted, err := svc.DeleteInvoice(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteInvoice(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCancelledInvoiceKeepsStatusOnPartialPayment(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	cancelled := StatusCancelled
	_, err = svc.UpdateInvoice(ctx, inv.ID, Patch{Status: &cancelled})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     inv.ID,
		Amount:        money("50.00"),
		PaymentMethod: "card",
		ProcessedBy:   "front-desk",
	})
	require.NoError(t, err)

	after, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, after.Status)
	assert.True(t, after.AmountPaid.Equal(money("50.00")))
}

func TestStatsAggregation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateInvoice(ctx, validInvoiceInput())
	require.NoError(t, err)

	second, err := svc.CreateInvoice(ctx, CreateInvoiceInput{
		PatientID: uuid.New(),
		DueDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:     []ItemInput{{Description: "X-ray", Quantity: 1, UnitPrice: money("65.00")}},
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		InvoiceID:     second.ID,
		Amount:        money("65.00"),
		PaymentMethod: "card",
		ProcessedBy:   "front-desk",
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.InvoiceCount)
	assert.True(t, stats.TotalInvoiced.Equal(money("300.00")), "invoiced %s", stats.TotalInvoiced)
	assert.True(t, stats.TotalPaid.Equal(money("65.00")))
	assert.True(t, stats.OutstandingBalance.Equal(first.TotalAmount))
	assert.Equal(t, 1, stats.CountsByStatus[StatusDraft])
	assert.Equal(t, 1, stats.CountsByStatus[StatusPaid])

	from := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.GetStats(ctx, &from, &to)
	assert.Equal(t, "invalid_date_range", apperr.CodeOf(err))
}

func TestMarkOverdueInvoices(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	in := validInvoiceInput()
	in.DueDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	inv, err := svc.CreateInvoice(ctx, in)
	require.NoError(t, err)

	// Draft invoices are not swept even when past due.
	n, err := svc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	sent := StatusSent
	_, err = svc.UpdateInvoice(ctx, inv.ID, Patch{Status: &sent})
	require.NoError(t, err)

	n, err = svc.MarkOverdueInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, after.Status)
}
