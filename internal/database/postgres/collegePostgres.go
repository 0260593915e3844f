package repository

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type collegeRepository struct {
	db querier
}

const collegeColumns = `id, name, address, city, state, country, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCollege(row rowScanner) (*entity.College, error) {
	var college entity.College
	err := row.Scan(
		&college.ID,
		&college.Name,
		&college.Address,
		&college.City,
		&college.State,
		&college.Country,
		&college.CreatedAt,
		&college.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &college, nil
}

func (r *collegeRepository) Create(ctx context.Context, college *entity.College) error {
	query := `
		INSERT INTO colleges (id, name, address, city, state, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		college.ID,
		college.Name,
		college.Address,
		college.City,
		college.State,
		college.Country,
		college.CreatedAt,
		college.UpdatedAt,
	)
	return mapError(err)
}

func (r *collegeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.College, error) {
	query := `SELECT ` + collegeColumns + ` FROM colleges WHERE id = $1`

	college, err := scanCollege(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, entity.ErrCollegeNotFound)
	}
	return college, nil
}

func (r *collegeRepository) GetByName(ctx context.Context, name string) (*entity.College, error) {
	query := `SELECT ` + collegeColumns + ` FROM colleges WHERE name = $1`

	college, err := scanCollege(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, notFound(err, entity.ErrCollegeNotFound)
	}
	return college, nil
}

func (r *collegeRepository) GetAll(ctx context.Context) ([]*entity.College, error) {
	query := `SELECT ` + collegeColumns + ` FROM colleges ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query colleges: %w", err))
	}
	defer rows.Close()

	var colleges []*entity.College
	for rows.Next() {
		college, err := scanCollege(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan college: %w", err)
		}
		colleges = append(colleges, college)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating colleges: %w", err))
	}
	return colleges, nil
}

func (r *collegeRepository) Update(ctx context.Context, college *entity.College) error {
	query := `
		UPDATE colleges
		SET name = $1, address = $2, city = $3, state = $4, country = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		college.Name,
		college.Address,
		college.City,
		college.State,
		college.Country,
		college.UpdatedAt,
		college.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(result, entity.ErrCollegeNotFound)
}

func (r *collegeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM colleges WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return entity.ErrCollegeHasDependents
	}
	if err != nil {
		return mapError(fmt.Errorf("failed to delete college: %w", err))
	}
	return expectAffected(result, entity.ErrCollegeNotFound)
}
