package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

// MemoryRepository is an in-memory Repository used by tests.
type MemoryRepository struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]Invoice
	payments map[uuid.UUID][]Payment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		invoices: make(map[uuid.UUID]Invoice),
		payments: make(map[uuid.UUID][]Payment),
	}
}

func (r *MemoryRepository) CreateInvoice(_ context.Context, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

func (r *MemoryRepository) GetInvoiceByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, apperr.NotFound("invoice_not_found", "invoice not found")
	}
	cp := cloneInvoice(inv)
	return &cp, nil
}

func (r *MemoryRepository) ListInvoices(_ context.Context, limit, offset int) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		all = append(all, cloneInvoice(inv))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryRepository) UpdateInvoice(_ context.Context, id uuid.UUID, patch Patch) (*Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, apperr.NotFound("invoice_not_found", "invoice not found")
	}
	if patch.Status != nil {
		inv.Status = *patch.Status
	}
	if patch.DueDate != nil {
		inv.DueDate = *patch.DueDate
	}
	if patch.PaymentMethod != nil {
		inv.PaymentMethod = patch.PaymentMethod
	}
	if patch.Notes != nil {
		inv.Notes = patch.Notes
	}
	inv.UpdatedAt = time.Now()
	r.invoices[id] = inv
	cp := cloneInvoice(inv)
	return &cp, nil
}

func (r *MemoryRepository) DeleteInvoice(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[id]; !ok {
		return false, nil
	}
	delete(r.invoices, id)
	delete(r.payments, id)
	return true, nil
}

func (r *MemoryRepository) ApplyPayment(_ context.Context, invoiceID uuid.UUID, fn func(inv *Invoice) (*Payment, LedgerUpdate, error)) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, apperr.NotFound("invoice_not_found", "invoice not found")
	}

	snapshot := cloneInvoice(inv)
	payment, update, err := fn(&snapshot)
	if err != nil {
		return nil, err
	}

	r.payments[invoiceID] = append(r.payments[invoiceID], *payment)
	inv.AmountPaid = update.AmountPaid
	inv.Balance = update.Balance
	inv.Status = update.Status
	inv.PaidDate = update.PaidDate
	inv.PaymentMethod = update.PaymentMethod
	inv.UpdatedAt = time.Now()
	r.invoices[invoiceID] = inv

	cp := *payment
	return &cp, nil
}

func (r *MemoryRepository) ListPayments(_ context.Context, invoiceID uuid.UUID) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Payment, len(r.payments[invoiceID]))
	copy(out, r.payments[invoiceID])
	sort.Slice(out, func(i, j int) bool { return out[i].ProcessedDate.Before(out[j].ProcessedDate) })
	return out, nil
}

func (r *MemoryRepository) Stats(_ context.Context, from, to *time.Time) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &Stats{
		TotalInvoiced:      decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
		CountsByStatus:     make(map[Status]int),
	}

	for _, inv := range r.invoices {
		if !inWindow(inv.CreatedAt, from, to) {
			continue
		}
		stats.InvoiceCount++
		stats.CountsByStatus[inv.Status]++
		stats.TotalInvoiced = stats.TotalInvoiced.Add(inv.TotalAmount)
		if inv.Status != StatusCancelled {
			stats.OutstandingBalance = stats.OutstandingBalance.Add(inv.Balance)
		}
	}

	for _, ps := range r.payments {
		for _, p := range ps {
			if inWindow(p.ProcessedDate, from, to) {
				stats.TotalPaid = stats.TotalPaid.Add(p.Amount)
			}
		}
	}

	return stats, nil
}

func (r *MemoryRepository) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, inv := range r.invoices {
		if (inv.Status == StatusSent || inv.Status == StatusPartiallyPaid) && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			inv.UpdatedAt = time.Now()
			r.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

func inWindow(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func cloneInvoice(inv Invoice) Invoice {
	items := make([]Item, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	return inv
}
