package memory

import (
	"context"
	"sort"

	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
)

type studentRepository struct {
	v *view
}

func (t *tables) checkStudent(student *entity.Student) error {
	if _, ok := t.colleges[student.CollegeID]; !ok {
		return entity.ErrCollegeNotFound
	}
	for id, s := range t.students {
		if id == student.ID {
			continue
		}
		if s.StudentID == student.StudentID {
			return entity.ErrStudentIDTaken
		}
		if s.Email == student.Email {
			return entity.ErrStudentEmailTaken
		}
	}
	return nil
}

func (r studentRepository) Create(ctx context.Context, student *entity.Student) error {
	return r.v.write(ctx, func(t *tables) error {
		if err := t.checkStudent(student); err != nil {
			return err
		}
		t.students[student.ID] = *student
		return nil
	})
}

func (r studentRepository) find(ctx context.Context, match func(s entity.Student) bool) (*entity.Student, error) {
	var student *entity.Student
	err := r.v.read(ctx, func(t *tables) error {
		for _, s := range t.students {
			if match(s) {
				s := s
				student = &s
				return nil
			}
		}
		return entity.ErrStudentNotFound
	})
	return student, err
}

func (r studentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	var student entity.Student
	err := r.v.read(ctx, func(t *tables) error {
		s, ok := t.students[id]
		if !ok {
			return entity.ErrStudentNotFound
		}
		student = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r studentRepository) GetByStudentID(ctx context.Context, studentID string) (*entity.Student, error) {
	return r.find(ctx, func(s entity.Student) bool { return s.StudentID == studentID })
}

func (r studentRepository) GetByEmail(ctx context.Context, email string) (*entity.Student, error) {
	return r.find(ctx, func(s entity.Student) bool { return s.Email == email })
}

func (r studentRepository) list(ctx context.Context, match func(s entity.Student) bool) ([]*entity.Student, error) {
	var students []*entity.Student
	err := r.v.read(ctx, func(t *tables) error {
		for _, s := range t.students {
			if match(s) {
				s := s
				students = append(students, &s)
			}
		}
		return nil
	})
	sort.Slice(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return lessID(a.ID, b.ID)
	})
	return students, err
}

func (r studentRepository) GetAll(ctx context.Context) ([]*entity.Student, error) {
	return r.list(ctx, func(entity.Student) bool { return true })
}

func (r studentRepository) GetByCollegeID(ctx context.Context, collegeID uuid.UUID) ([]*entity.Student, error) {
	return r.list(ctx, func(s entity.Student) bool { return s.CollegeID == collegeID })
}

func (r studentRepository) Search(ctx context.Context, term string) ([]*entity.Student, error) {
	return r.list(ctx, func(s entity.Student) bool {
		return containsFold(s.StudentID, term) || containsFold(s.FirstName, term) || containsFold(s.LastName, term)
	})
}

func (r studentRepository) Update(ctx context.Context, student *entity.Student) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.students[student.ID]; !ok {
			return entity.ErrStudentNotFound
		}
		if err := t.checkStudent(student); err != nil {
			return err
		}
		t.students[student.ID] = *student
		return nil
	})
}

func (r studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.v.write(ctx, func(t *tables) error {
		if _, ok := t.students[id]; !ok {
			return entity.ErrStudentNotFound
		}
		for _, reg := range t.registrations {
			if reg.StudentID == id {
				return entity.ErrStudentHasDependents
			}
		}
		for _, a := range t.attendance {
			if a.StudentID == id {
				return entity.ErrStudentHasDependents
			}
		}
		for _, f := range t.feedback {
			if f.StudentID == id {
				return entity.ErrStudentHasDependents
			}
		}
		delete(t.students, id)
		return nil
	})
}
