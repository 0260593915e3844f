package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Cache keys of the system-wide reports. Stored keys carry the cache
// generation as a suffix, see reportKey.
const (
	ReportKeyStatistics = "reports:statistics"
	ReportKeyPopularity = "reports:event-popularity"
	ReportKeyAttendance = "reports:attendance"

	ReportGenerationKey = "reports:gen"
)

type reportService struct {
	*base
	cache   ReportCache
	weights entity.PopularityWeights
}

type pair struct {
	studentID uuid.UUID
	eventID   uuid.UUID
}

// eventAggregate holds the per-event counts every report is built from.
type eventAggregate struct {
	event             entity.Event
	registrations     int
	attendance        int // attendance records
	present           int // present records
	registeredPresent int // present records that still have an active registration
	feedbacks         int
	ratingSum         int
}

func (a *eventAggregate) averageRating() float64 {
	if a.feedbacks == 0 {
		return 0
	}
	return entity.Round(float64(a.ratingSum)/float64(a.feedbacks), 1)
}

// snapshot loads every event with its counts inside one read transaction.
func (s *reportService) snapshot(ctx context.Context, eventID *uuid.UUID) ([]*eventAggregate, error) {
	var aggregates []*eventAggregate

	err := s.store.InReadTx(ctx, func(ctx context.Context, repos database.Repositories) error {
		byID := make(map[uuid.UUID]*eventAggregate)
		if eventID != nil {
			event, err := repos.Events().GetByID(ctx, *eventID)
			if err != nil {
				return err
			}
			agg := &eventAggregate{event: event.Event}
			byID[event.ID] = agg
			aggregates = append(aggregates, agg)
		} else {
			events, err := repos.Events().GetAll(ctx)
			if err != nil {
				return err
			}
			for _, e := range events {
				agg := &eventAggregate{event: e.Event}
				byID[e.ID] = agg
				aggregates = append(aggregates, agg)
			}
		}

		registrations, err := repos.Registrations().List(ctx, entity.RegistrationFilter{EventID: eventID})
		if err != nil {
			return err
		}
		active := make(map[pair]struct{}, len(registrations))
		for _, r := range registrations {
			if agg, ok := byID[r.EventID]; ok {
				agg.registrations++
				active[pair{r.StudentID, r.EventID}] = struct{}{}
			}
		}

		records, err := repos.Attendance().List(ctx, entity.AttendanceFilter{EventID: eventID})
		if err != nil {
			return err
		}
		for _, a := range records {
			agg, ok := byID[a.EventID]
			if !ok {
				continue
			}
			agg.attendance++
			if a.IsPresent {
				agg.present++
				if _, ok := active[pair{a.StudentID, a.EventID}]; ok {
					agg.registeredPresent++
				}
			}
		}

		feedbacks, err := repos.Feedback().List(ctx, entity.FeedbackFilter{EventID: eventID})
		if err != nil {
			return err
		}
		for _, f := range feedbacks {
			if agg, ok := byID[f.EventID]; ok {
				agg.feedbacks++
				agg.ratingSum += f.Rating
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

func (s *reportService) GetStatistics(ctx context.Context) (*entity.SystemStats, error) {
	var stats entity.SystemStats
	key, cacheable := s.reportKey(ctx, ReportKeyStatistics)
	if cacheable && s.cached(ctx, key, &stats) {
		return &stats, nil
	}

	aggregates, err := s.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}

	var (
		rateSum    float64
		rateEvents int
	)
	stats.TotalEvents = len(aggregates)
	for _, agg := range aggregates {
		stats.TotalRegistrations += agg.registrations
		stats.TotalAttendances += agg.attendance
		stats.TotalFeedbacks += agg.feedbacks

		// events without registrations stay out of the mean
		if agg.registrations > 0 {
			rateSum += entity.NewAttendanceStats(agg.present, agg.attendance).Percentage
			rateEvents++
		}
	}
	if rateEvents > 0 {
		stats.AverageAttendanceRate = entity.Round(rateSum/float64(rateEvents), 2)
	}

	if cacheable {
		s.save(ctx, key, &stats)
	}
	return &stats, nil
}

// GetEventPopularity ranks by score, then earlier date, then id.
func (s *reportService) GetEventPopularity(ctx context.Context) ([]*entity.EventPopularity, error) {
	var result []*entity.EventPopularity
	key, cacheable := s.reportKey(ctx, ReportKeyPopularity)
	if cacheable && s.cached(ctx, key, &result) {
		return result, nil
	}

	aggregates, err := s.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}

	result = make([]*entity.EventPopularity, 0, len(aggregates))
	for _, agg := range aggregates {
		p := &entity.EventPopularity{
			EventID:           agg.event.ID,
			EventName:         agg.event.Name,
			EventDate:         agg.event.EventDate,
			MaxCapacity:       agg.event.MaxCapacity,
			RegistrationCount: agg.registrations,
			AttendanceCount:   agg.registeredPresent,
			AverageRating:     agg.averageRating(),
			FeedbackCount:     agg.feedbacks,
		}
		p.PopularityScore = p.CalculatePopularityScore(s.weights)
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		if !a.EventDate.Equal(b.EventDate.Time) {
			return a.EventDate.Before(b.EventDate.Time)
		}
		return a.EventID.String() < b.EventID.String()
	})

	if cacheable {
		s.save(ctx, key, result)
	}
	return result, nil
}

func (s *reportService) GetAttendanceReport(ctx context.Context) ([]*entity.EventAttendanceReport, error) {
	var result []*entity.EventAttendanceReport
	key, cacheable := s.reportKey(ctx, ReportKeyAttendance)
	if cacheable && s.cached(ctx, key, &result) {
		return result, nil
	}

	aggregates, err := s.snapshot(ctx, nil)
	if err != nil {
		return nil, err
	}

	result = make([]*entity.EventAttendanceReport, 0, len(aggregates))
	for _, agg := range aggregates {
		report := entity.NewEventAttendanceReport(agg.event, agg.registrations, agg.registeredPresent)
		result = append(result, &report)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.AttendancePercentage != b.AttendancePercentage {
			return a.AttendancePercentage > b.AttendancePercentage
		}
		if !a.EventDate.Equal(b.EventDate.Time) {
			return a.EventDate.Before(b.EventDate.Time)
		}
		return a.EventID.String() < b.EventID.String()
	})

	if cacheable {
		s.save(ctx, key, result)
	}
	return result, nil
}

func (s *reportService) GetEventAttendanceReport(ctx context.Context, eventID uuid.UUID) (*entity.EventAttendanceReport, error) {
	aggregates, err := s.snapshot(ctx, &eventID)
	if err != nil {
		return nil, err
	}
	agg := aggregates[0]
	report := entity.NewEventAttendanceReport(agg.event, agg.registrations, agg.registeredPresent)
	return &report, nil
}

// reportKey binds key to the current cache generation. It must be taken before
// the snapshot: a mutation committed after that bumps the generation and the
// result is stored under a key nobody reads anymore.
func (s *reportService) reportKey(ctx context.Context, key string) (string, bool) {
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Report cache generation unavailable")
		return "", false
	}
	return fmt.Sprintf("%s:%d", key, gen), true
}

func (s *reportService) cached(ctx context.Context, key string, dest interface{}) bool {
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Report cache read failed")
		return false
	}
	return ok
}

func (s *reportService) save(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Report cache write failed")
	}
}
