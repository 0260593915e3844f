package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type StudentRequest struct {
	StudentID   string    `json:"studentId" validate:"required,max=20"`
	FirstName   string    `json:"firstName" validate:"required,max=50"`
	LastName    string    `json:"lastName" validate:"required,max=50"`
	Email       string    `json:"email" validate:"required,email,max=255"`
	PhoneNumber string    `json:"phoneNumber" validate:"max=20"`
	Department  string    `json:"department" validate:"max=100"`
	YearOfStudy int       `json:"yearOfStudy" validate:"min=1,max=10"`
	CollegeID   uuid.UUID `json:"collegeId" validate:"required"`
}

func (r *StudentRequest) normalize() {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Department = strings.TrimSpace(r.Department)
}

type studentService struct {
	*base
}

func (s *studentService) CreateStudent(ctx context.Context, req *StudentRequest) (*entity.Student, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	req.normalize()
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now()
	student := &entity.Student{
		ID:          uuid.New(),
		StudentID:   req.StudentID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Department:  req.Department,
		YearOfStudy: req.YearOfStudy,
		CollegeID:   req.CollegeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if _, err := repos.Colleges().GetByID(ctx, req.CollegeID); err != nil {
			return err
		}
		return repos.Students().Create(ctx, student)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	logrus.WithFields(logrus.Fields{"student_id": student.ID, "number": student.StudentID}).Info("Student created")
	s.notify(ctx, entity.NewNotification(entity.NotificationStudentChanged, ptr(student.ID), nil, nil))
	return student, nil
}

func (s *studentService) GetStudent(ctx context.Context, id uuid.UUID) (*entity.Student, error) {
	return s.store.Students().GetByID(ctx, id)
}

func (s *studentService) GetStudentByStudentID(ctx context.Context, studentID string) (*entity.Student, error) {
	return s.store.Students().GetByStudentID(ctx, strings.TrimSpace(studentID))
}

func (s *studentService) GetAllStudents(ctx context.Context) ([]*entity.Student, error) {
	return s.store.Students().GetAll(ctx)
}

func (s *studentService) GetStudentsByCollege(ctx context.Context, collegeID uuid.UUID) ([]*entity.Student, error) {
	return s.store.Students().GetByCollegeID(ctx, collegeID)
}

func (s *studentService) SearchStudents(ctx context.Context, term string) ([]*entity.Student, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.store.Students().GetAll(ctx)
	}
	return s.store.Students().Search(ctx, term)
}

func (s *studentService) UpdateStudent(ctx context.Context, id uuid.UUID, req *StudentRequest) (*entity.Student, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	req.normalize()
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var student *entity.Student
	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		current, err := repos.Students().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.CollegeID != req.CollegeID {
			if _, err := repos.Colleges().GetByID(ctx, req.CollegeID); err != nil {
				return err
			}
		}

		current.StudentID = req.StudentID
		current.FirstName = req.FirstName
		current.LastName = req.LastName
		current.Email = req.Email
		current.PhoneNumber = req.PhoneNumber
		current.Department = req.Department
		current.YearOfStudy = req.YearOfStudy
		current.CollegeID = req.CollegeID
		current.UpdatedAt = s.now()

		if err := repos.Students().Update(ctx, current); err != nil {
			return err
		}
		student = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, entity.NewNotification(entity.NotificationStudentChanged, ptr(id), nil, nil))
	return student, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, id uuid.UUID, cascade bool) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		if cascade {
			if _, err := repos.Students().GetByID(ctx, id); err != nil {
				return err
			}
			return deleteStudentTree(ctx, repos, id)
		}
		return repos.Students().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"student_id": id, "cascade": cascade}).Info("Student deleted")
	s.notify(ctx, entity.NewNotification(entity.NotificationStudentChanged, ptr(id), nil, nil))
	return nil
}

// deleteStudentTree removes the student's feedback, attendance and
// registrations before the student row itself.
func deleteStudentTree(ctx context.Context, repos database.Repositories, id uuid.UUID) error {
	if err := repos.Feedback().DeleteByStudentID(ctx, id); err != nil {
		return err
	}
	if err := repos.Attendance().DeleteByStudentID(ctx, id); err != nil {
		return err
	}
	if err := repos.Registrations().DeleteByStudentID(ctx, id); err != nil {
		return err
	}
	return repos.Students().Delete(ctx, id)
}
