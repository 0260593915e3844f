// Package memory is an in-process implementation of database.Store used by
// tests and by the memory storage driver.
package memory

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

var (
	errClosed   = errors.New("memory store is closed")
	errReadOnly = errors.New("write inside read-only transaction")
)

type tables struct {
	colleges      map[uuid.UUID]entity.College
	students      map[uuid.UUID]entity.Student
	events        map[uuid.UUID]entity.Event
	registrations map[uuid.UUID]entity.Registration
	attendance    map[uuid.UUID]entity.Attendance
	feedback      map[uuid.UUID]entity.Feedback
	users         map[uuid.UUID]entity.User
}

func newTables() *tables {
	return &tables{
		colleges:      make(map[uuid.UUID]entity.College),
		students:      make(map[uuid.UUID]entity.Student),
		events:        make(map[uuid.UUID]entity.Event),
		registrations: make(map[uuid.UUID]entity.Registration),
		attendance:    make(map[uuid.UUID]entity.Attendance),
		feedback:      make(map[uuid.UUID]entity.Feedback),
		users:         make(map[uuid.UUID]entity.User),
	}
}

func cloneMap[V any](src map[uuid.UUID]V) map[uuid.UUID]V {
	dst := make(map[uuid.UUID]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// clone copies every table. Stored values hold no shared mutable state
// (cancelledAt is replaced, never written through), so a shallow copy is enough.
func (t *tables) clone() *tables {
	return &tables{
		colleges:      cloneMap(t.colleges),
		students:      cloneMap(t.students),
		events:        cloneMap(t.events),
		registrations: cloneMap(t.registrations),
		attendance:    cloneMap(t.attendance),
		feedback:      cloneMap(t.feedback),
		users:         cloneMap(t.users),
	}
}

type Store struct {
	mu     sync.RWMutex
	t      *tables
	closed bool
	direct *view
}

func NewStore() *Store {
	s := &Store{t: newTables()}
	s.direct = &view{s: s, mode: modeDirect}
	return s
}

func (s *Store) Colleges() database.CollegeRepository           { return s.direct.Colleges() }
func (s *Store) Students() database.StudentRepository           { return s.direct.Students() }
func (s *Store) Events() database.EventRepository               { return s.direct.Events() }
func (s *Store) Registrations() database.RegistrationRepository { return s.direct.Registrations() }
func (s *Store) Attendance() database.AttendanceRepository      { return s.direct.Attendance() }
func (s *Store) Feedback() database.FeedbackRepository          { return s.direct.Feedback() }
func (s *Store) Users() database.UserRepository                 { return s.direct.Users() }

// InTx holds the write lock for the whole of fn and restores the previous
// state when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos database.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return entity.Unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return entity.Unavailable(errClosed)
	}

	snapshot := s.t.clone()
	if err := fn(ctx, &view{s: s, mode: modeTx}); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

func (s *Store) InReadTx(ctx context.Context, fn func(ctx context.Context, repos database.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return entity.Unavailable(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return entity.Unavailable(errClosed)
	}
	return fn(ctx, &view{s: s, mode: modeReadTx})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type viewMode int

const (
	modeDirect viewMode = iota
	modeTx
	modeReadTx
)

// view binds the repositories either to the store itself (each call takes
// the lock) or to a transaction that already holds it.
type view struct {
	s    *Store
	mode viewMode
}

func (v *view) Colleges() database.CollegeRepository           { return collegeRepository{v} }
func (v *view) Students() database.StudentRepository           { return studentRepository{v} }
func (v *view) Events() database.EventRepository               { return eventRepository{v} }
func (v *view) Registrations() database.RegistrationRepository { return registrationRepository{v} }
func (v *view) Attendance() database.AttendanceRepository      { return attendanceRepository{v} }
func (v *view) Feedback() database.FeedbackRepository          { return feedbackRepository{v} }
func (v *view) Users() database.UserRepository                 { return userRepository{v} }

func (v *view) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return entity.Unavailable(err)
	}
	if v.mode != modeDirect {
		return fn(v.s.t)
	}

	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if v.s.closed {
		return entity.Unavailable(errClosed)
	}
	return fn(v.s.t)
}

func (v *view) write(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return entity.Unavailable(err)
	}
	switch v.mode {
	case modeReadTx:
		return errReadOnly
	case modeTx:
		return fn(v.s.t)
	}

	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.closed {
		return entity.Unavailable(errClosed)
	}
	return fn(v.s.t)
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matches(filter *uuid.UUID, id uuid.UUID) bool {
	return filter == nil || *filter == id
}

var _ database.Store = (*Store)(nil)
