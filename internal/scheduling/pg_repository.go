package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `id, patient_id, provider_id, title, start_time, end_time, status, type, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProviderID,
		&a.Title,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Type,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment_not_found", "appointment not found")
		}
		return nil, apperr.Internal(err)
	}

	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// HasConflict applies the half-open overlap predicate in SQL: a row
// conflicts iff start_time < $3 AND $2 < end_time. Cancelled rows are
// excluded, as is the excluded appointment itself.
func (r *PgRepository) HasConflict(ctx context.Context, providerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	var conflict bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE provider_id = $1
			  AND status <> 'cancelled'
			  AND start_time < $3
			  AND $2 < end_time
			  AND ($4::uuid IS NULL OR id <> $4)
		)
	`, providerID, start, end, excludeID).Scan(&conflict)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return conflict, nil
}

func (r *PgRepository) Create(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, provider_id, title, start_time, end_time, status, type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.PatientID, a.ProviderID, a.Title, a.StartTime, a.EndTime, a.Status, a.Type, a.Notes, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *PgRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id  = COALESCE($2, patient_id),
		    provider_id = COALESCE($3, provider_id),
		    title       = COALESCE($4, title),
		    start_time  = COALESCE($5, start_time),
		    end_time    = COALESCE($6, end_time),
		    status      = COALESCE($7, status),
		    type        = COALESCE($8, type),
		    notes       = COALESCE($9, notes),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, patch.PatientID, patch.ProviderID, patch.Title, patch.StartTime, patch.EndTime, patch.Status, patch.Type, patch.Notes)
	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) List(ctx context.Context, w Window, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1::timestamptz IS NULL OR start_time >= $1)
		  AND ($2::timestamptz IS NULL OR start_time <= $2)
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4
	`, w.From, w.To, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time <= $3)
		ORDER BY start_time
		LIMIT $4 OFFSET $5
	`, providerID, w.From, w.To, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, w Window, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time <= $3)
		ORDER BY start_time
		LIMIT $4 OFFSET $5
	`, patientID, w.From, w.To, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return result, nil
}
