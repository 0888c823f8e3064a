package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all DB interactions needed by the service. Multi-row
// writes (invoice + items, payment + ledger update, cascading delete) are
// single transactions; partial application is never observable.
type Repository interface {
	// CreateInvoice persists the invoice and its items atomically.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoiceByID returns the invoice with its items.
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, limit, offset int) ([]Invoice, error)

	UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch) (*Invoice, error)

	// DeleteInvoice removes the invoice and cascades to its items and
	// payments. Reports false when the invoice does not exist.
	DeleteInvoice(ctx context.Context, id uuid.UUID) (bool, error)

	// ApplyPayment loads the invoice under a write lock, invokes fn to
	// validate and derive the new ledger state, then inserts the payment and
	// updates the invoice in the same transaction. An error from fn rolls
	// everything back.
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, fn func(inv *Invoice) (*Payment, LedgerUpdate, error)) (*Payment, error)

	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)

	Stats(ctx context.Context, from, to *time.Time) (*Stats, error)

	// MarkOverdue moves sent and partially paid invoices whose due date has
	// passed to overdue, returning how many rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}
