package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentallab/backend/internal/domain"
)

// PostgresDentistRepository implements DentistRepository using PostgreSQL
type PostgresDentistRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDentistRepository creates a new PostgresDentistRepository
func NewPostgresDentistRepository(pool *pgxpool.Pool) *PostgresDentistRepository {
	return &PostgresDentistRepository{pool: pool}
}

const dentistColumns = `id, name, COALESCE(clinic, ''), email, COALESCE(phone, ''), is_active, created_at, updated_at`

func scanDentist(row pgx.Row) (*domain.Dentist, error) {
	d := &domain.Dentist{}
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Clinic,
		&d.Email,
		&d.Phone,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// Create persists a new dentist
func (r *PostgresDentistRepository) Create(ctx context.Context, d *domain.Dentist) error {
	query := `
		INSERT INTO dentists (id, name, clinic, email, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.Name,
		d.Clinic,
		d.Email,
		d.Phone,
		d.IsActive,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

// GetByID retrieves a dentist by id
func (r *PostgresDentistRepository) GetByID(ctx context.Context, id string) (*domain.Dentist, error) {
	query := `SELECT ` + dentistColumns + ` FROM dentists WHERE id = $1`
	return scanDentist(r.pool.QueryRow(ctx, query, id))
}

// List returns all dentists, alphabetically
func (r *PostgresDentistRepository) List(ctx context.Context) ([]*domain.Dentist, error) {
	query := `SELECT ` + dentistColumns + ` FROM dentists ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dentists []*domain.Dentist
	for rows.Next() {
		d, err := scanDentist(rows)
		if err != nil {
			return nil, err
		}
		dentists = append(dentists, d)
	}
	return dentists, rows.Err()
}
