package entity

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// AttendanceStats is the record-based attendance summary of one event:
// only pairs with an explicit attendance row are counted.
type AttendanceStats struct {
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func NewAttendanceStats(present, total int) AttendanceStats {
	return AttendanceStats{
		Present:    present,
		Total:      total,
		Percentage: Percentage(present, total, 1),
	}
}

// SystemStats - сводные показатели по всем мероприятиям
type SystemStats struct {
	TotalEvents           int     `json:"totalEvents"`
	TotalRegistrations    int     `json:"totalRegistrations"`
	TotalAttendances      int     `json:"totalAttendances"`
	TotalFeedbacks        int     `json:"totalFeedbacks"`
	AverageAttendanceRate float64 `json:"averageAttendanceRate"`
}

type EventPopularity struct {
	EventID           uuid.UUID `json:"eventId"`
	EventName         string    `json:"eventName"`
	EventDate         EventTime `json:"eventDate"`
	MaxCapacity       int       `json:"maxCapacity"`
	RegistrationCount int       `json:"registrationCount"`
	AttendanceCount   int       `json:"attendanceCount"`
	AverageRating     float64   `json:"averageRating"`
	FeedbackCount     int       `json:"feedbackCount"`
	PopularityScore   float64   `json:"popularityScore"`
}

// EventAttendanceReport is registration-based: registered students without
// an attendance row count as absent.
type EventAttendanceReport struct {
	EventID              uuid.UUID `json:"eventId"`
	EventName            string    `json:"eventName"`
	EventDate            EventTime `json:"eventDate"`
	TotalRegistrations   int       `json:"totalRegistrations"`
	PresentAttendances   int       `json:"presentAttendances"`
	AbsentCount          int       `json:"absentCount"`
	AttendancePercentage float64   `json:"attendancePercentage"`
}

func NewEventAttendanceReport(e Event, registrations, present int) EventAttendanceReport {
	return EventAttendanceReport{
		EventID:              e.ID,
		EventName:            e.Name,
		EventDate:            e.EventDate,
		TotalRegistrations:   registrations,
		PresentAttendances:   present,
		AbsentCount:          registrations - present,
		AttendancePercentage: Percentage(present, registrations, 2),
	}
}

// PopularityWeights weigh the three [0,100] terms of the popularity score.
type PopularityWeights struct {
	Registrations  float64 `mapstructure:"registrations"`
	AttendanceRate float64 `mapstructure:"attendance_rate"`
	AverageRating  float64 `mapstructure:"average_rating"`
}

var DefaultPopularityWeights = PopularityWeights{
	Registrations:  0.4,
	AttendanceRate: 0.4,
	AverageRating:  0.2,
}

// CalculatePopularityScore вычисляет оценку популярности мероприятия (0-100)
func (p *EventPopularity) CalculatePopularityScore(w PopularityWeights) float64 {
	fill := clamp100(ratio(p.RegistrationCount, p.MaxCapacity) * 100)
	attendance := clamp100(ratio(p.AttendanceCount, p.RegistrationCount) * 100)
	rating := clamp100(p.AverageRating / MaxRating * 100)

	score := w.Registrations*fill + w.AttendanceRate*attendance + w.AverageRating*rating
	return Round(score, 2)
}

func (p *EventPopularity) String() string {
	return fmt.Sprintf(
		"Event: %s, Registrations: %d/%d, Attended: %d, Rating: %.1f, Popularity: %.2f",
		p.EventName,
		p.RegistrationCount,
		p.MaxCapacity,
		p.AttendanceCount,
		p.AverageRating,
		p.PopularityScore,
	)
}

// Percentage returns part/total*100 rounded to the given decimals, 0 when total is 0.
func Percentage(part, total, decimals int) float64 {
	if total == 0 {
		return 0
	}
	return Round(float64(part)/float64(total)*100, decimals)
}

func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func ratio(a, b int) float64 {
	if b <= 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func clamp100(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
