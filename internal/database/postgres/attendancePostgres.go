package repository

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/college-events/internal/entity"
	"github.com/ds124wfegd/college-events/pkg/postgres"

	"github.com/google/uuid"
)

type attendanceRepository struct {
	db querier
}

const attendanceColumns = `id, student_id, event_id, is_present, attendance_time`

func scanAttendance(row rowScanner) (*entity.Attendance, error) {
	var attendance entity.Attendance
	err := row.Scan(
		&attendance.ID,
		&attendance.StudentID,
		&attendance.EventID,
		&attendance.IsPresent,
		&attendance.AttendanceTime,
	)
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func attendanceWhere(filter entity.AttendanceFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter.StudentID != nil {
		w.add("student_id = $%d", *filter.StudentID)
	}
	if filter.EventID != nil {
		w.add("event_id = $%d", *filter.EventID)
	}
	if filter.PresentOnly {
		w.addRaw("is_present")
	}
	return w
}

// Upsert keeps the original row id when the pair is marked again; the
// returned id and timestamp are written back into attendance.
func (r *attendanceRepository) Upsert(ctx context.Context, attendance *entity.Attendance) error {
	query := `
		INSERT INTO attendances (id, student_id, event_id, is_present, attendance_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT ` + postgres.ConstraintAttendancePair + ` DO UPDATE
		SET is_present = EXCLUDED.is_present, attendance_time = EXCLUDED.attendance_time
		RETURNING id, attendance_time
	`

	err := r.db.QueryRowContext(ctx, query,
		attendance.ID,
		attendance.StudentID,
		attendance.EventID,
		attendance.IsPresent,
		attendance.AttendanceTime,
	).Scan(&attendance.ID, &attendance.AttendanceTime)
	if err != nil {
		return mapError(fmt.Errorf("failed to upsert attendance: %w", err))
	}
	return nil
}

func (r *attendanceRepository) Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE student_id = $1 AND event_id = $2`

	attendance, err := scanAttendance(r.db.QueryRowContext(ctx, query, studentID, eventID))
	if err != nil {
		return nil, notFound(err, entity.ErrAttendanceNotFound)
	}
	return attendance, nil
}

func (r *attendanceRepository) List(ctx context.Context, filter entity.AttendanceFilter) ([]*entity.Attendance, error) {
	w := attendanceWhere(filter)
	query := `SELECT ` + attendanceColumns + ` FROM attendances` + w.String() +
		` ORDER BY attendance_time ASC, id`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(fmt.Errorf("failed to query attendances: %w", err))
	}
	defer rows.Close()

	var records []*entity.Attendance
	for rows.Next() {
		attendance, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, attendance)
	}

	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Errorf("error iterating attendances: %w", err))
	}
	return records, nil
}

func (r *attendanceRepository) Count(ctx context.Context, filter entity.AttendanceFilter) (int, error) {
	w := attendanceWhere(filter)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendances`+w.String(), w.args...).Scan(&count); err != nil {
		return 0, mapError(fmt.Errorf("failed to count attendances: %w", err))
	}
	return count, nil
}

func (r *attendanceRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendances WHERE student_id = $1`, studentID)
	return mapError(err)
}

func (r *attendanceRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendances WHERE event_id = $1`, eventID)
	return mapError(err)
}
