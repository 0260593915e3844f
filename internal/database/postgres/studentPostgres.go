package repository

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type studentRepository struct {
	db querier
}

const studentColumns = `id, student_id, first_name, last_name, email, phone_number,
	department, year_of_study, college_id, created_at, updated_at`

func scanStudent(row rowScanner) (*entity.Student, error) {
	var student entity.Student
	err := row.Scan(
		&student.ID,
		&student.StudentID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&student.PhoneNumber,
		&student.Department,
		&student.YearOfStudy,
		&student.CollegeID,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *entity.Student) error {
	query := `
		INSERT INTO students (
			id, student_id, first_name, last_name, email, phone_number,
			department, year_of_study, college_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.StudentID,
		student.FirstName,
		student.LastName,
		student.Email,
		student.PhoneNumber,
		student.Department,
		student.YearOfStudy,
		student.CollegeID,
		student.CreatedAt,
		student.UpdatedAt,
	)
	return mapError(err)
}

func (r *studentRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE ` + where + ` = $1`

	student, err := scanStudent(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, notFound(err, entity.ErrStudentNotFound)
	}
	return student, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	return r.getOne(ctx, "id", id)
}

func (r *studentRepository) GetByStudentID(ctx context.Context, studentID string) (*entity.Student, error) {
	return r.getOne(ctx, "student_id", studentID)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*entity.Student, error) {
	return r.getOne(ctx, "email", email)
}

func (r *studentRepository) list(ctx context.Context, where string, args ...interface{}) ([]*entity.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ` + where + ` ORDER BY last_name, first_name, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query students: %w", err))
	}
	defer rows.Close()

	var students []*entity.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating students: %w", err))
	}
	return students, nil
}

func (r *studentRepository) GetAll(ctx context.Context) ([]*entity.Student, error) {
	return r.list(ctx, "")
}

func (r *studentRepository) GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.Student, error) {
	return r.list(ctx, "WHERE college_id = $1", collegeID)
}

func (r *studentRepository) Search(ctx context.Context, term string) ([]*entity.Student, error) {
	searchPattern := "%" + term + "%"
	return r.list(ctx, "WHERE student_id ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1", searchPattern)
}

func (r *studentRepository) Update(ctx context.Context, student *entity.Student) error {
	query := `
		UPDATE students
		SET student_id = $1, first_name = $2, last_name = $3, email = $4, phone_number = $5,
			department = $6, year_of_study = $7, college_id = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.db.ExecContext(ctx, query,
		student.StudentID,
		student.FirstName,
		student.LastName,
		student.Email,
		student.PhoneNumber,
		student.Department,
		student.YearOfStudy,
		student.CollegeID,
		student.UpdatedAt,
		student.ID,
	)
	if err != nil {
		return mapError(fmt.Errorf("failed to update student: %w", err))
	}
	return expectAffected(result, entity.ErrStudentNotFound)
}

func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return entity.ErrStudentHasDependents
	}
	if err != nil {
		return mapError(fmt.Errorf("failed to delete student: %w", err))
	}
	return expectAffected(result, entity.ErrStudentNotFound)
}
