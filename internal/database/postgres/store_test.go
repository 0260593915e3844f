package repository

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/ds124wfegd/college-events/internal/entity"
	"github.com/ds124wfegd/college-events/pkg/postgres"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRegistrationWhere(t *testing.T) {
	studentID, eventID := uuid.New(), uuid.New()

	w := registrationWhere(entity.RegistrationFilter{StudentID: &studentID, EventID: &eventID})
	assert.Equal(t, " WHERE student_id = $1 AND event_id = $2 AND cancelled_at IS NULL", w.String())
	assert.Equal(t, []interface{}{studentID, eventID}, w.args)

	w = registrationWhere(entity.RegistrationFilter{IncludeCancelled: true})
	assert.Empty(t, w.String())
	assert.Empty(t, w.args)
}

func TestAttendanceWhere(t *testing.T) {
	eventID := uuid.New()

	w := attendanceWhere(entity.AttendanceFilter{EventID: &eventID, PresentOnly: true})
	assert.Equal(t, " WHERE event_id = $1 AND is_present", w.String())
	assert.Len(t, w.args, 1)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
		kind entity.Kind
	}{
		{
			name: "unique college name",
			err:  &pq.Error{Code: "23505", Constraint: postgres.ConstraintCollegeName},
			want: entity.ErrCollegeAlreadyExists,
			kind: entity.KindConflict,
		},
		{
			name: "active registration index",
			err:  &pq.Error{Code: "23505", Constraint: postgres.ConstraintActiveRegistration},
			want: entity.ErrDuplicateRegistration,
			kind: entity.KindConflict,
		},
		{
			name: "unknown constraint",
			err:  &pq.Error{Code: "23505", Constraint: "something_else"},
			kind: entity.KindInvalidArgument,
		},
		{
			name: "serialization failure",
			err:  &pq.Error{Code: "40001"},
			kind: entity.KindUnavailable,
		},
		{
			name: "connection exception",
			err:  &pq.Error{Code: "08006"},
			kind: entity.KindUnavailable,
		},
		{
			name: "bad connection",
			err:  driver.ErrBadConn,
			kind: entity.KindUnavailable,
		},
		{
			name: "other",
			err:  errors.New("boom"),
			kind: entity.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
			assert.Equal(t, tt.kind, entity.KindOf(got))
		})
	}

	assert.NoError(t, mapError(nil))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(sql.ErrNoRows, entity.ErrEventNotFound), entity.ErrEventNotFound)
	assert.Equal(t, entity.KindUnavailable, entity.KindOf(notFound(sql.ErrConnDone, entity.ErrEventNotFound)))
}
