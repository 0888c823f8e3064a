package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const invoiceColumns = `id, patient_id, appointment_id, total_amount, amount_paid, balance, status, due_date, paid_date, payment_method, notes, created_at, updated_at`
const paymentColumns = `id, invoice_id, amount, payment_method, transaction_id, notes, processed_by, processed_date`

// Helpers

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice

	err := row.Scan(
		&inv.ID,
		&inv.PatientID,
		&inv.AppointmentID,
		&inv.TotalAmount,
		&inv.AmountPaid,
		&inv.Balance,
		&inv.Status,
		&inv.DueDate,
		&inv.PaidDate,
		&inv.PaymentMethod,
		&inv.Notes,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("invoice_not_found", "invoice not found")
		}
		return nil, apperr.Internal(err)
	}

	return &inv, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	var taxRate decimal.NullDecimal

	err := row.Scan(
		&it.ID,
		&it.InvoiceID,
		&it.Description,
		&it.Quantity,
		&it.UnitPrice,
		&it.Amount,
		&it.ServiceCode,
		&taxRate,
	)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if taxRate.Valid {
		d := taxRate.Decimal
		it.TaxRate = &d
	}
	return &it, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment

	err := row.Scan(
		&p.ID,
		&p.InvoiceID,
		&p.Amount,
		&p.PaymentMethod,
		&p.TransactionID,
		&p.Notes,
		&p.ProcessedBy,
		&p.ProcessedDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("payment_not_found", "payment not found")
		}
		return nil, apperr.Internal(err)
	}

	return &p, nil
}

func taxRateArg(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

// Interface methods

func (r *PgRepository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Internal(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, patient_id, appointment_id, total_amount, amount_paid, balance, status, due_date, paid_date, payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, inv.ID, inv.PatientID, inv.AppointmentID, inv.TotalAmount, inv.AmountPaid, inv.Balance,
		inv.Status, inv.DueDate, inv.PaidDate, inv.PaymentMethod, inv.Notes, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return apperr.Internal(err)
	}

	for _, it := range inv.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, amount, service_code, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, it.ID, it.InvoiceID, it.Description, it.Quantity, it.UnitPrice, it.Amount, it.ServiceCode, taxRateArg(it.TaxRate))
		if err != nil {
			return apperr.Internal(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *PgRepository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
	`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PgRepository) loadItems(ctx context.Context, q querier, invoiceID uuid.UUID) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, amount, service_code, tax_rate
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY id
	`, invoiceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return items, nil
}

func (r *PgRepository) ListInvoices(ctx context.Context, limit, offset int) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var result []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return result, nil
}

func (r *PgRepository) UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch) (*Invoice, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE invoices
		SET status         = COALESCE($2, status),
		    due_date       = COALESCE($3, due_date),
		    payment_method = COALESCE($4, payment_method),
		    notes          = COALESCE($5, notes),
		    updated_at     = now()
		WHERE id = $1
		RETURNING `+invoiceColumns+`
	`, id, patch.Status, patch.DueDate, patch.PaymentMethod, patch.Notes)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

func (r *PgRepository) DeleteInvoice(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, apperr.Internal(err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE invoice_id = $1`, id); err != nil {
		return false, apperr.Internal(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, id); err != nil {
		return false, apperr.Internal(err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, apperr.Internal(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, fn func(inv *Invoice) (*Payment, LedgerUpdate, error)) (*Payment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback(ctx)

	// Lock the invoice row so concurrent payments serialize.
	row := tx.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`, invoiceID)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	payment, update, err := fn(inv)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, payment_method, transaction_id, notes, processed_by, processed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, payment.ID, payment.InvoiceID, payment.Amount, payment.PaymentMethod,
		payment.TransactionID, payment.Notes, payment.ProcessedBy, payment.ProcessedDate)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices
		SET amount_paid    = $2,
		    balance        = $3,
		    status         = $4,
		    paid_date      = $5,
		    payment_method = $6,
		    updated_at     = now()
		WHERE id = $1
	`, invoiceID, update.AmountPaid, update.Balance, update.Status, update.PaidDate, update.PaymentMethod)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(err)
	}

	return payment, nil
}

func (r *PgRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE invoice_id = $1
		ORDER BY processed_date
	`, invoiceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var result []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return result, nil
}

func (r *PgRepository) Stats(ctx context.Context, from, to *time.Time) (*Stats, error) {
	stats := &Stats{
		TotalInvoiced:      decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
		CountsByStatus:     make(map[Status]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status,
		       COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(SUM(balance), 0)
		FROM invoices
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		GROUP BY status
	`, from, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		var invoiced, balance decimal.Decimal
		if err := rows.Scan(&status, &count, &invoiced, &balance); err != nil {
			return nil, apperr.Internal(err)
		}
		stats.CountsByStatus[status] = count
		stats.InvoiceCount += count
		stats.TotalInvoiced = stats.TotalInvoiced.Add(invoiced)
		if status != StatusCancelled {
			stats.OutstandingBalance = stats.OutstandingBalance.Add(balance)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE ($1::timestamptz IS NULL OR processed_date >= $1)
		  AND ($2::timestamptz IS NULL OR processed_date <= $2)
	`, from, to).Scan(&stats.TotalPaid)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return stats, nil
}

func (r *PgRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status     = 'overdue',
		    updated_at = now()
		WHERE status IN ('sent', 'partially_paid')
		  AND due_date < $1
	`, asOf)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return tag.RowsAffected(), nil
}
