package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type attendanceRepository struct {
	v *view
}

func attendanceMatches(a entity.Attendance, filter entity.AttendanceFilter) bool {
	return matches(filter.StudentID, a.StudentID) &&
		matches(filter.EventID, a.EventID) &&
		(!filter.PresentOnly || a.IsPresent)
}

func (r attendanceRepository) Upsert(ctx context.Context, attendance *entity.Attendance) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.students[attendance.StudentID]; !ok {
			return entity.ErrStudentNotFound
		}
		if _, ok := t.events[attendance.EventID]; !ok {
			return entity.ErrEventNotFound
		}
		for id, a := range t.attendance {
			if a.StudentID == attendance.StudentID && a.EventID == attendance.EventID {
				attendance.ID = id
				break
			}
		}
		t.attendance[attendance.ID] = *attendance
		return nil
	})
}

func (r attendanceRepository) Get(ctx context.Context, studentID, eventID uuid.UUID) (*entity.Attendance, error) {
	var attendance *entity.Attendance
	err := r.v.read(ctx, func(t *tables) error {
		for _, a := range t.attendance {
			if a.StudentID == studentID && a.EventID == eventID {
				a := a
				attendance = &a
				return nil
			}
		}
		return entity.ErrAttendanceNotFound
	})
	return attendance, err
}

func (r attendanceRepository) List(ctx context.Context, filter entity.AttendanceFilter) ([]*entity.Attendance, error) {
	var records []*entity.Attendance
	err := r.v.read(ctx, func(t *tables) error {
		for _, a := range t.attendance {
			if attendanceMatches(a, filter) {
				a := a
				records = append(records, &a)
			}
		}
		return nil
	})
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.AttendanceTime.Equal(b.AttendanceTime) {
			return a.AttendanceTime.Before(b.AttendanceTime)
		}
		return lessID(a.ID, b.ID)
	})
	return records, err
}

func (r attendanceRepository) Count(ctx context.Context, filter entity.AttendanceFilter) (int, error) {
	count := 0
	err := r.v.read(ctx, func(t *tables) error {
		for _, a := range t.attendance {
			if attendanceMatches(a, filter) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r attendanceRepository) DeleteByStudentID(ctx context.Context, studentID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, a := range t.attendance {
			if a.StudentID == studentID {
				delete(t.attendance, id)
			}
		}
		return nil
	})
}

func (r attendanceRepository) DeleteByEventID(ctx context.Context, eventID uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		for id, a := range t.attendance {
			if a.EventID == eventID {
				delete(t.attendance, id)
			}
		}
		return nil
	})
}
