package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"
	"github.com/ds124wfegd/college-events/pkg/postgres"

	"github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repositories struct {
	colleges      *collegeRepository
	students      *studentRepository
	events        *eventRepository
	registrations *registrationRepository
	attendance    *attendanceRepository
	feedback      *feedbackRepository
	users         *userRepository
}

func newRepositories(q querier) *repositories {
	return &repositories{
		colleges:      &collegeRepository{db: q},
		students:      &studentRepository{db: q},
		events:        &eventRepository{db: q},
		registrations: &registrationRepository{db: q},
		attendance:    &attendanceRepository{db: q},
		feedback:      &feedbackRepository{db: q},
		users:         &userRepository{db: q},
	}
}

func (r *repositories) Colleges() database.CollegeRepository           { return r.colleges }
func (r *repositories) Students() database.StudentRepository           { return r.students }
func (r *repositories) Events() database.EventRepository               { return r.events }
func (r *repositories) Registrations() database.RegistrationRepository { return r.registrations }
func (r *repositories) Attendance() database.AttendanceRepository      { return r.attendance }
func (r *repositories) Feedback() database.FeedbackRepository          { return r.feedback }
func (r *repositories) Users() database.UserRepository                 { return r.users }

type Store struct {
	*repositories
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{repositories: newRepositories(db), db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos database.Repositories) error) error {
	return s.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *Store) InReadTx(ctx context.Context, fn func(ctx context.Context, repos database.Repositories) error) error {
	return s.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (s *Store) withTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, repos database.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return mapError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var constraintErrors = map[string]error{
	postgres.ConstraintCollegeName:        entity.ErrCollegeAlreadyExists,
	postgres.ConstraintStudentNumber:      entity.ErrStudentIDTaken,
	postgres.ConstraintStudentEmail:       entity.ErrStudentEmailTaken,
	postgres.ConstraintStudentCollege:     entity.ErrCollegeNotFound,
	postgres.ConstraintEventCollege:       entity.ErrCollegeNotFound,
	postgres.ConstraintActiveRegistration: entity.ErrDuplicateRegistration,
	postgres.ConstraintFeedbackPair:       entity.ErrDuplicateFeedback,
	postgres.ConstraintUsername:           entity.ErrUsernameTaken,
	postgres.ConstraintUserEmail:          entity.ErrUserEmailTaken,
}

// mapError turns driver errors into domain errors: known constraint violations
// become their Conflict/NotFound sentinel, connection trouble becomes Unavailable.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
			return mapped
		}
		switch {
		case pqErr.Code == "23505", pqErr.Code == "23503":
			return fmt.Errorf("%w: %s", entity.ErrInvalidInput, pqErr.Message)
		case pqErr.Code == "40001", pqErr.Code == "40P01":
			// serialization failure / deadlock: safe for the caller to retry
			return entity.Unavailable(err)
		case strings.HasPrefix(string(pqErr.Code), "08"), strings.HasPrefix(string(pqErr.Code), "53"),
			strings.HasPrefix(string(pqErr.Code), "57"):
			return entity.Unavailable(err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return entity.Unavailable(err)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return mapError(err)
}

func expectAffected(result sql.Result, sentinel error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sentinel
	}
	return nil
}

// whereBuilder collects AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
