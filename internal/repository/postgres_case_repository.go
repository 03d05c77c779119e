package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentallab/backend/internal/domain"
)

// PostgresCaseRepository implements CaseRepository using PostgreSQL
type PostgresCaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCaseRepository creates a new PostgresCaseRepository
func NewPostgresCaseRepository(pool *pgxpool.Pool) *PostgresCaseRepository {
	return &PostgresCaseRepository{pool: pool}
}

const caseColumns = `id, case_number, dentist_id, patient_name, case_type, status, due_date, COALESCE(notes, ''), created_at, updated_at`

func scanCase(row pgx.Row) (*domain.Case, error) {
	c := &domain.Case{}
	err := row.Scan(
		&c.ID,
		&c.CaseNumber,
		&c.DentistID,
		&c.PatientName,
		&c.CaseType,
		&c.Status,
		&c.DueDate,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Create persists a new case
func (r *PostgresCaseRepository) Create(ctx context.Context, c *domain.Case) error {
	query := `
		INSERT INTO cases (id, case_number, dentist_id, patient_name, case_type, status, due_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.CaseNumber,
		c.DentistID,
		c.PatientName,
		c.CaseType,
		c.Status,
		c.DueDate,
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// GetByID retrieves a case by id
func (r *PostgresCaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	return scanCase(r.pool.QueryRow(ctx, query, id))
}

// List returns cases matching the filter, newest first
func (r *PostgresCaseRepository) List(ctx context.Context, filter *CaseFilter) ([]*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	args := []interface{}{}

	if filter != nil && filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $1`
	}
	if filter != nil && filter.DentistID != "" {
		args = append(args, filter.DentistID)
		if len(args) == 1 {
			query += ` AND dentist_id = $1`
		} else {
			query += ` AND dentist_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// UpdateStatus moves a case to a new workflow state
func (r *PostgresCaseRepository) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	query := `UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}
