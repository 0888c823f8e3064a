package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

// Directory resolves patient references before a write.
type Directory interface {
	PatientExists(ctx context.Context, id uuid.UUID) error
}

// Appointments resolves appointment references an invoice may carry.
type Appointments interface {
	AppointmentExists(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo  Repository
	dir   Directory
	appts Appointments
	now   func() time.Time
}

func NewService(repo Repository, dir Directory, appts Appointments) *Service {
	return &Service{
		repo:  repo,
		dir:   dir,
		appts: appts,
		now:   time.Now,
	}
}

type ItemInput struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	ServiceCode *string
	TaxRate     *decimal.Decimal
}

type CreateInvoiceInput struct {
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	Items         []ItemInput
	DueDate       time.Time
	Status        Status // defaults to draft
	Notes         *string
}

// CreateInvoice computes line amounts and the invoice total, then persists
// the invoice and its items in one transaction. Items are immutable after
// this point.
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error) {
	if err := s.dir.PatientExists(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if in.AppointmentID != nil {
		if err := s.appts.AppointmentExists(ctx, *in.AppointmentID); err != nil {
			return nil, err
		}
	}

	if len(in.Items) == 0 {
		return nil, apperr.Validation("empty_items", "invoice must have at least one item")
	}
	if in.DueDate.IsZero() {
		return nil, apperr.Validation("missing_due_date", "due date is required")
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid_status", "invalid invoice status")
	}

	invoiceID := uuid.New()
	total := decimal.Zero
	items := make([]Item, 0, len(in.Items))

	for _, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return nil, apperr.Validation("invalid_item_description", "item description is required")
		}
		if it.Quantity <= 0 {
			return nil, apperr.Validation("invalid_item_quantity", "item quantity must be greater than zero")
		}
		if it.UnitPrice.IsNegative() {
			return nil, apperr.Validation("invalid_item_price", "item unit price cannot be negative")
		}

		amount := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(amount)

		items = append(items, Item{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      amount,
			ServiceCode: it.ServiceCode,
			TaxRate:     it.TaxRate,
		})
	}

	now := s.now()
	inv := &Invoice{
		ID:            invoiceID,
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		TotalAmount:   total,
		AmountPaid:    decimal.Zero,
		Balance:       total,
		Status:        status,
		DueDate:       in.DueDate,
		Notes:         in.Notes,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

type RecordPaymentInput struct {
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	TransactionID *string
	Notes         *string
	ProcessedBy   string
	ProcessedDate *time.Time // defaults to now
}

// RecordPayment applies a payment to a ledger. The payment insert and the
// recomputed invoice state commit together or not at all; an overpayment is
// rejected outright with no partial application of the excess.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("invalid_payment_amount", "payment amount must be greater than zero")
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, apperr.Validation("missing_payment_method", "payment method is required")
	}

	processedDate := s.now()
	if in.ProcessedDate != nil {
		processedDate = *in.ProcessedDate
	}

	return s.repo.ApplyPayment(ctx, in.InvoiceID, func(inv *Invoice) (*Payment, LedgerUpdate, error) {
		if in.Amount.GreaterThan(inv.Balance) {
			return nil, LedgerUpdate{}, apperr.Validation("payment_exceeds_balance", "payment amount cannot exceed the invoice balance")
		}

		payment := &Payment{
			ID:            uuid.New(),
			InvoiceID:     inv.ID,
			Amount:        in.Amount,
			PaymentMethod: in.PaymentMethod,
			TransactionID: in.TransactionID,
			Notes:         in.Notes,
			ProcessedBy:   in.ProcessedBy,
			ProcessedDate: processedDate,
		}

		update := deriveLedger(inv, payment)
		return payment, update, nil
	})
}

// deriveLedger recomputes the ledger after a payment. A settled balance
// flips the invoice to paid and stamps the paid date and method; a partial
// balance yields partially_paid, except that a cancelled invoice is never
// silently moved to partially_paid.
func deriveLedger(inv *Invoice, p *Payment) LedgerUpdate {
	amountPaid := inv.AmountPaid.Add(p.Amount)
	balance := inv.TotalAmount.Sub(amountPaid)

	update := LedgerUpdate{
		AmountPaid:    amountPaid,
		Balance:       balance,
		Status:        inv.Status,
		PaidDate:      inv.PaidDate,
		PaymentMethod: inv.PaymentMethod,
	}

	switch {
	case !balance.IsPositive():
		update.Status = StatusPaid
		paidDate := p.ProcessedDate
		update.PaidDate = &paidDate
		method := p.PaymentMethod
		update.PaymentMethod = &method
	case balance.LessThan(inv.TotalAmount) && inv.Status != StatusCancelled:
		update.Status = StatusPartiallyPaid
	}

	return update
}

// UpdateInvoice applies a partial update. A paid invoice admits only an
// explicit status correction back to partially_paid or sent.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation("invalid_status", "invalid invoice status")
	}

	if inv.Status == StatusPaid {
		correction := patch.Status != nil &&
			(*patch.Status == StatusPartiallyPaid || *patch.Status == StatusSent) &&
			patch.DueDate == nil && patch.PaymentMethod == nil && patch.Notes == nil
		if !correction {
			return nil, apperr.Validation("invoice_paid", "paid invoices cannot be modified")
		}
	}

	return s.repo.UpdateInvoice(ctx, id, patch)
}

// DeleteInvoice removes a draft invoice and its items. Any other status is
// rejected and the invoice stays retrievable.
func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) (bool, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if inv.Status != StatusDraft {
		return false, apperr.Validation("invoice_not_draft", "only draft invoices can be deleted")
	}
	return s.repo.DeleteInvoice(ctx, id)
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoiceByID(ctx, id)
}

func (s *Service) ListInvoices(ctx context.Context, limit, offset int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListInvoices(ctx, limit, offset)
}

func (s *Service) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error) {
	if _, err := s.repo.GetInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *Service) GetStats(ctx context.Context, from, to *time.Time) (*Stats, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperr.Validation("invalid_date_range", "end date must not be before start date")
	}
	return s.repo.Stats(ctx, from, to)
}

// MarkOverdueInvoices is intended to be called by the worker periodically.
func (s *Service) MarkOverdueInvoices(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdue(ctx, s.now())
}
