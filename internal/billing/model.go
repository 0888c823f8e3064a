package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft         Status = "draft"
	StatusSent          Status = "sent"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
	StatusCancelled     Status = "cancelled"
	StatusPartiallyPaid Status = "partially_paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled, StatusPartiallyPaid:
		return true
	}
	return false
}

// Invoice is the ledger head. AmountPaid, Balance and Status change only
// through payment application; Balance = TotalAmount - AmountPaid.
type Invoice struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	AppointmentID *uuid.UUID
	TotalAmount   decimal.Decimal
	AmountPaid    decimal.Decimal
	Balance       decimal.Decimal
	Status        Status
	DueDate       time.Time
	PaidDate      *time.Time
	PaymentMethod *string
	Notes         *string
	Items         []Item
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item is an invoice line. Items are fixed when the invoice is created;
// Amount = Quantity x UnitPrice.
type Item struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	ServiceCode *string
	TaxRate     *decimal.Decimal
}

// Payment rows are append-only; the sum of a ledger's payments equals the
// invoice's AmountPaid.
type Payment struct {
	ID            uuid.UUID
	InvoiceID     uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod string
	TransactionID *string
	Notes         *string
	ProcessedBy   string
	ProcessedDate time.Time
}

// Patch lists exactly the invoice fields a plain update may touch.
// Monetary fields are deliberately absent; they move only via payments.
type Patch struct {
	Status        *Status
	DueDate       *time.Time
	PaymentMethod *string
	Notes         *string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Status == nil && p.DueDate == nil && p.PaymentMethod == nil && p.Notes == nil
}

// LedgerUpdate is the recomputed invoice state applied atomically with a
// payment insert.
type LedgerUpdate struct {
	AmountPaid    decimal.Decimal
	Balance       decimal.Decimal
	Status        Status
	PaidDate      *time.Time
	PaymentMethod *string
}

// Stats is the read-only aggregation over invoices and payments.
type Stats struct {
	TotalInvoiced      decimal.Decimal
	TotalPaid          decimal.Decimal
	OutstandingBalance decimal.Decimal
	InvoiceCount       int
	CountsByStatus     map[Status]int
}
