package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/schedule"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type mockClassRepo struct {
	items          map[string]*models.GymClass
	deleted        []string
	deletedSeries  []string
	seriesRowCount int64
	listErr        error
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.GymClass) error {
	if m.items == nil {
		m.items = make(map[string]*models.GymClass)
	}
	if class.ID == "" {
		class.ID = "generated"
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.GymClass, error) {
	if class, ok := m.items[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ListForWindow(ctx context.Context, gymID string, start, end time.Time) ([]models.GymClass, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.GymClass
	for _, class := range m.items {
		if class.GymID == gymID {
			out = append(out, *class)
		}
	}
	return out, nil
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, int, error) {
	classes, err := m.ListForWindow(ctx, filter.GymID, time.Time{}, time.Time{})
	if err != nil {
		return nil, 0, err
	}
	return classes, len(classes), nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockClassRepo) DeleteSeries(ctx context.Context, parentRecurrenceID string) (int64, error) {
	m.deletedSeries = append(m.deletedSeries, parentRecurrenceID)
	return m.seriesRowCount, nil
}

type mockClassCache struct {
	store      map[string][]byte
	getCalls   int
	setCalls   int
	invalidate int
}

func (m *mockClassCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.getCalls++
	return appErrors.ErrCacheMiss
}

func (m *mockClassCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalls++
	return nil
}

func (m *mockClassCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidate++
	return nil
}

func validCreateRequest() dto.CreateClassRequest {
	return dto.CreateClassRequest{
		GymID:     "gym-1",
		Title:     "Morning Jiu-Jitsu",
		Date:      "2025-04-16",
		StartTime: "09:00",
		EndTime:   "10:30",
		Level:     "Fundamentals",
		Capacity:  25,
	}
}

func TestClassServiceCreateOneOff(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{})

	class, err := svc.Create(context.Background(), "user-1", validCreateRequest())
	require.NoError(t, err)
	assert.False(t, class.IsRecurring)
	assert.Nil(t, class.ParentRecurrenceID)
	assert.Empty(t, class.RecurrenceRule)
	assert.Equal(t, "09:00", class.StartTime)
	assert.Equal(t, "user-1", class.CreatedBy)
}

func TestClassServiceCreateWeeklyStoresRule(t *testing.T) {
	repo := &mockClassRepo{}
	cache := &mockClassCache{}
	svc := NewClassService(repo, cache, nil, nil, ClassConfig{CacheEnabled: true})

	req := validCreateRequest()
	req.IsRecurring = true
	req.RecurrsMonday = true
	req.RecurrsWednesday = true

	class, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.True(t, class.IsRecurring)
	require.NotNil(t, class.ParentRecurrenceID)
	assert.Contains(t, class.RecurrenceRule, "FREQ=WEEKLY")

	rule, err := schedule.RuleFromRRule(class.RecurrenceRule)
	require.NoError(t, err)
	assert.True(t, rule.Equal(schedule.Weekly(1, 3)))
	assert.Equal(t, 1, cache.invalidate, "create must invalidate cached windows")
}

func TestClassServiceCreateAllDaysIsDaily(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{})

	req := validCreateRequest()
	req.IsRecurring = true
	req.RecurrsMonday = true
	req.RecurrsTuesday = true
	req.RecurrsWednesday = true
	req.RecurrsThursday = true
	req.RecurrsFriday = true
	req.RecurrsSaturday = true
	req.RecurrsSunday = true
	req.RecurrenceEndDate = "2025-04-30"

	class, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Contains(t, class.RecurrenceRule, "FREQ=DAILY")
	assert.Contains(t, class.RecurrenceRule, "UNTIL")
}

func TestClassServiceCreateRejectsBadInput(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, nil, nil, nil, ClassConfig{})

	req := validCreateRequest()
	req.Date = "16/04/2025"
	_, err := svc.Create(context.Background(), "user-1", req)
	require.Error(t, err)

	req = validCreateRequest()
	req.StartTime = "25:99"
	_, err = svc.Create(context.Background(), "user-1", req)
	require.Error(t, err)

	req = validCreateRequest()
	req.Title = ""
	_, err = svc.Create(context.Background(), "user-1", req)
	require.Error(t, err)
}

func TestClassServiceListOccurrencesExpandsWeekly(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{HorizonDays: 14})

	req := validCreateRequest()
	req.IsRecurring = true
	req.RecurrsMonday = true
	req.RecurrsWednesday = true
	created, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)

	start := time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	occurrences, err := svc.ListOccurrences(context.Background(), "gym-1", start, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.NotEmpty(t, occurrences)

	var starts []time.Time
	for _, occ := range occurrences {
		starts = append(starts, occ.Start)
		require.NotNil(t, occ.ParentRecurrenceID)
		assert.Equal(t, *created.ParentRecurrenceID, *occ.ParentRecurrenceID, "stored parent id survives expansion")
		assert.Equal(t, created.ID, occ.ClassID)
		assert.Equal(t, "#22c55e", occ.Color)
		assert.Equal(t, 90, occ.Extended.DurationMinutes)
	}
	assert.Contains(t, starts, time.Date(2025, 4, 16, 9, 0, 0, 0, time.UTC))
	assert.Contains(t, starts, time.Date(2025, 4, 21, 9, 0, 0, 0, time.UTC))
	assert.Contains(t, starts, time.Date(2025, 4, 23, 9, 0, 0, 0, time.UTC))
	assert.NotContains(t, starts, time.Date(2025, 4, 18, 9, 0, 0, 0, time.UTC))
}

func TestClassServiceListOccurrencesWindowClipsSeries(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{})

	req := validCreateRequest()
	req.IsRecurring = true
	req.RecurrsWednesday = true
	_, err := svc.Create(context.Background(), "user-1", req)
	require.NoError(t, err)

	// A window starting after the anchor omits the anchor occurrence.
	start := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	occurrences, err := svc.ListOccurrences(context.Background(), "gym-1", start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, time.Date(2025, 4, 23, 9, 0, 0, 0, time.UTC), occurrences[0].Start)
}

func TestClassServiceListOccurrencesUsesCache(t *testing.T) {
	repo := &mockClassRepo{}
	cache := &mockClassCache{}
	svc := NewClassService(repo, cache, nil, nil, ClassConfig{CacheEnabled: true, CacheTTL: time.Minute})

	start := time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListOccurrences(context.Background(), "gym-1", start, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.getCalls)
	assert.Equal(t, 1, cache.setCalls)
}

func TestClassServiceDeleteScopesGym(t *testing.T) {
	repo := &mockClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{})

	class, err := svc.Create(context.Background(), "user-1", validCreateRequest())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "other-gym", class.ID)
	require.Error(t, err)

	require.NoError(t, svc.Delete(context.Background(), "gym-1", class.ID))
	assert.Equal(t, []string{class.ID}, repo.deleted)
}

func TestClassServiceDeleteSeriesNotFound(t *testing.T) {
	repo := &mockClassRepo{seriesRowCount: 0}
	svc := NewClassService(repo, nil, nil, nil, ClassConfig{})

	_, err := svc.DeleteSeries(context.Background(), "gym-1", "parent-1")
	require.Error(t, err)

	repo.seriesRowCount = 3
	rows, err := svc.DeleteSeries(context.Background(), "gym-1", "parent-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows)
}
