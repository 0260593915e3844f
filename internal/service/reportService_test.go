package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ds124wfegd/college-events/internal/database"
	"github.com/ds124wfegd/college-events/internal/database/memory"
	"github.com/ds124wfegd/college-events/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	env                *testEnv
	busy, half, silent *entity.EventWithAvailability
}

// newReportFixture builds three events:
// busy   - capacity 4, 4 registered, 3 present, 1 absent, ratings 5,3,4
// half   - capacity 10, 2 registered, 1 present, 1 without a record
// silent - capacity 10, nothing
func newReportFixture(t *testing.T) *reportFixture {
	env := newTestEnv(t)
	college := env.college("MIT")
	f := &reportFixture{
		env:    env,
		busy:   env.event(college.ID, 4, testStart.Add(24*time.Hour)),
		half:   env.event(college.ID, 10, testStart.Add(48*time.Hour)),
		silent: env.event(college.ID, 10, testStart.Add(72*time.Hour)),
	}

	ratings := []int{5, 3, 4}
	for i, st := range env.students(college.ID, 4) {
		env.register(st.ID, f.busy.ID)
		env.mark(st.ID, f.busy.ID, i < 3)
		if i < 3 {
			env.feedback(st.ID, f.busy.ID, ratings[i])
		}
	}

	for i, st := range env.students(college.ID, 2) {
		env.register(st.ID, f.half.ID)
		if i == 0 {
			env.mark(st.ID, f.half.ID, true)
		}
	}
	return f
}

func TestStatistics(t *testing.T) {
	f := newReportFixture(t)

	stats, err := f.env.svc.Reports.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &entity.SystemStats{
		TotalEvents:           3,
		TotalRegistrations:    6,
		TotalAttendances:      5,
		TotalFeedbacks:        3,
		AverageAttendanceRate: 87.5,
	}, stats)
}

func TestStatisticsEmptyStore(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.svc.Reports.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &entity.SystemStats{}, stats)
}

func TestEventPopularity(t *testing.T) {
	f := newReportFixture(t)

	result, err := f.env.svc.Reports.GetEventPopularity(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, f.busy.ID, result[0].EventID)
	assert.Equal(t, 86.0, result[0].PopularityScore)
	assert.Equal(t, 4.0, result[0].AverageRating)
	assert.Equal(t, 3, result[0].AttendanceCount)
	assert.Equal(t, 3, result[0].FeedbackCount)

	assert.Equal(t, f.half.ID, result[1].EventID)
	assert.Equal(t, 28.0, result[1].PopularityScore)

	assert.Equal(t, f.silent.ID, result[2].EventID)
	assert.Zero(t, result[2].PopularityScore)
}

func TestEventPopularityTieOrder(t *testing.T) {
	env := newTestEnv(t)
	college := env.college("MIT")
	later := env.event(college.ID, 5, testStart.Add(48*time.Hour))
	a := env.event(college.ID, 5, testStart)
	b := env.event(college.ID, 5, testStart)

	first, second := a.ID, b.ID
	if second.String() < first.String() {
		first, second = second, first
	}

	for i := 0; i < 3; i++ {
		result, err := env.svc.Reports.GetEventPopularity(context.Background())
		require.NoError(t, err)
		ids := []uuid.UUID{result[0].EventID, result[1].EventID, result[2].EventID}
		assert.Equal(t, []uuid.UUID{first, second, later.ID}, ids)
	}
}

func TestAttendanceReport(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	result, err := f.env.svc.Reports.GetAttendanceReport(ctx)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, f.busy.ID, result[0].EventID)
	assert.Equal(t, 4, result[0].TotalRegistrations)
	assert.Equal(t, 3, result[0].PresentAttendances)
	assert.Equal(t, 1, result[0].AbsentCount)
	assert.Equal(t, 75.0, result[0].AttendancePercentage)

	assert.Equal(t, f.half.ID, result[1].EventID)
	assert.Equal(t, 1, result[1].AbsentCount, "registered without a record counts as absent")
	assert.Equal(t, 50.0, result[1].AttendancePercentage)

	assert.Equal(t, f.silent.ID, result[2].EventID)
	assert.Zero(t, result[2].AttendancePercentage)

	single, err := f.env.svc.Reports.GetEventAttendanceReport(ctx, f.half.ID)
	require.NoError(t, err)
	assert.Equal(t, result[1], single)

	_, err = f.env.svc.Reports.GetEventAttendanceReport(ctx, uuid.New())
	assert.ErrorIs(t, err, entity.ErrEventNotFound)
}

func TestAttendanceReportAfterForcedCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	college := env.college("MIT")
	student := env.student(college.ID)
	event := env.event(college.ID, 5, testStart)
	env.register(student.ID, event.ID)
	env.mark(student.ID, event.ID, true)

	require.NoError(t, env.svc.Registrations.Cancel(ctx, student.ID, event.ID, true))

	report, err := env.svc.Reports.GetEventAttendanceReport(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalRegistrations)
	assert.Zero(t, report.PresentAttendances)
	assert.Zero(t, report.AbsentCount)
}

// mapCache keeps JSON copies like the redis cache does.
type mapCache struct {
	mu   sync.Mutex
	gen  int64
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) Publish(context.Context, *entity.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return nil
}

// afterReadStore runs a hook once, right after the next read transaction ends.
type afterReadStore struct {
	database.Store
	afterRead func()
}

func (s *afterReadStore) InReadTx(ctx context.Context, fn func(ctx context.Context, repos database.Repositories) error) error {
	err := s.Store.InReadTx(ctx, fn)
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	return err
}

func TestReportsUseCache(t *testing.T) {
	cache := newMapCache()
	svc := NewServices(memory.NewStore(), cache, cache, DefaultOptions())
	ctx := context.Background()

	first, err := svc.Reports.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Contains(t, cache.data, ReportKeyStatistics+":0")

	second, err := svc.Reports.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.Colleges.CreateCollege(adminCtx(), &CollegeRequest{Name: "MIT"})
	require.NoError(t, err)

	_, err = svc.Reports.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits, "a mutation retires cached reports")
	assert.Contains(t, cache.data, ReportKeyStatistics+":1")
}

func TestMutationDuringReportIsNotHiddenByCache(t *testing.T) {
	env := newTestEnv(t)
	college := env.college("MIT")
	student := env.student(college.ID)
	event := env.event(college.ID, 10, testStart.Add(24*time.Hour))

	cache := newMapCache()
	store := &afterReadStore{Store: env.store}
	svc := NewServices(store, cache, cache, DefaultOptions())
	ctx := context.Background()

	// registration commits between the report snapshot and the cache write
	store.afterRead = func() {
		_, err := svc.Registrations.Register(ctx, student.ID, event.ID)
		require.NoError(t, err)
	}

	stale, err := svc.Reports.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.TotalRegistrations)

	fresh, err := svc.Reports.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.TotalRegistrations)
	assert.Equal(t, 0, cache.hits)
}
