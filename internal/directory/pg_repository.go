package directory

import (
	"context"
	"errors"

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

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("patient_not_found", "patient not found")
		}
		return nil, apperr.Internal(err)
	}

	return &p, nil
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff

	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Role,
		&s.Specialty,
		&s.Email,
		&s.Phone,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("staff_not_found", "staff member not found")
		}
		return nil, apperr.Internal(err)
	}

	return &s, nil
}

// Interface methods

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) UpdatePatient(ctx context.Context, id uuid.UUID, patch PatientPatch) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET first_name    = COALESCE($2, first_name),
		    last_name     = COALESCE($3, last_name),
		    email         = COALESCE($4, email),
		    phone         = COALESCE($5, phone),
		    date_of_birth = COALESCE($6, date_of_birth),
		    updated_at    = now()
		WHERE id = $1
		RETURNING id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at
	`, id, patch.FirstName, patch.LastName, patch.Email, patch.Phone, patch.DateOfBirth)
	return scanPatient(row)
}

func (r *PgRepository) DeletePatient(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) ListPatients(ctx context.Context, limit, offset int) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, phone, date_of_birth, created_at, updated_at
		FROM patients
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
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

func (r *PgRepository) CreateStaff(ctx context.Context, s *Staff) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, role, specialty, email, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.FirstName, s.LastName, s.Role, s.Specialty, s.Email, s.Phone, s.Active, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (r *PgRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, role, specialty, email, phone, active, created_at, updated_at
		FROM staff
		WHERE id = $1
	`, id)
	return scanStaff(row)
}

func (r *PgRepository) UpdateStaff(ctx context.Context, id uuid.UUID, patch StaffPatch) (*Staff, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE staff
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name),
		    role       = COALESCE($4, role),
		    specialty  = COALESCE($5, specialty),
		    email      = COALESCE($6, email),
		    phone      = COALESCE($7, phone),
		    active     = COALESCE($8, active),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, first_name, last_name, role, specialty, email, phone, active, created_at, updated_at
	`, id, patch.FirstName, patch.LastName, patch.Role, patch.Specialty, patch.Email, patch.Phone, patch.Active)
	return scanStaff(row)
}

func (r *PgRepository) DeleteStaff(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRepository) ListStaff(ctx context.Context, limit, offset int) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, role, specialty, email, phone, active, created_at, updated_at
		FROM staff
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err)
	}

	return result, nil
}
