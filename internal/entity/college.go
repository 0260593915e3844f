package entity

import (
	"time"

	"github.com/google/uuid"
)

type College struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	City      string    `json:"city" db:"city"`
	State     string    `json:"state" db:"state"`
	Country   string    `json:"country" db:"country"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Student struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StudentID   string    `json:"studentId" db:"student_id"`
	FirstName   string    `json:"firstName" db:"first_name"`
	LastName    string    `json:"lastName" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	Department  string    `json:"department" db:"department"`
	YearOfStudy int       `json:"yearOfStudy" db:"year_of_study"`
	CollegeID   uuid.UUID `json:"collegeId" db:"college_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
