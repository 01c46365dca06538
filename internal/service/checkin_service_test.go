package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type mockCheckinRepo struct {
	created []models.Checkin
	count   int
	exists  bool
}

func (m *mockCheckinRepo) Create(ctx context.Context, checkin *models.Checkin) error {
	checkin.ID = "checkin-1"
	if checkin.CheckedInAt.IsZero() {
		checkin.CheckedInAt = time.Now().UTC()
	}
	m.created = append(m.created, *checkin)
	return nil
}

func (m *mockCheckinRepo) CountForOccurrence(ctx context.Context, classID string, occurrenceDate time.Time) (int, error) {
	return m.count, nil
}

func (m *mockCheckinRepo) Exists(ctx context.Context, classID, memberID string, occurrenceDate time.Time) (bool, error) {
	return m.exists, nil
}

func (m *mockCheckinRepo) List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, int, error) {
	return nil, 0, nil
}

type mockMemberRepo struct {
	members map[string]*models.Member
}

func (m *mockMemberRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		cp := *member
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassFinder struct {
	classes map[string]*models.GymClass
}

func (m *mockClassFinder) FindByID(ctx context.Context, id string) (*models.GymClass, error) {
	if class, ok := m.classes[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func checkinFixtures(capacity int) (*mockCheckinRepo, *mockMemberRepo, *mockClassFinder) {
	checkins := &mockCheckinRepo{}
	members := &mockMemberRepo{members: map[string]*models.Member{
		"m1": {ID: "m1", GymID: "gym-1", FullName: "Ana", Active: true},
		"m2": {ID: "m2", GymID: "gym-1", FullName: "Bo", Active: false},
	}}
	classes := &mockClassFinder{classes: map[string]*models.GymClass{
		"c1": {ID: "c1", GymID: "gym-1", Title: "Yoga", Capacity: capacity},
	}}
	return checkins, members, classes
}

func validCheckinRequest() dto.CheckinRequest {
	return dto.CheckinRequest{MemberID: "m1", ClassID: "c1", OccurrenceDate: "2025-04-16"}
}

func TestCheckinHappyPath(t *testing.T) {
	checkins, members, classes := checkinFixtures(20)
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	checkin, err := svc.Checkin(context.Background(), "gym-1", validCheckinRequest())
	require.NoError(t, err)
	assert.Equal(t, "m1", checkin.MemberID)
	assert.Equal(t, "c1", checkin.ClassID)
	assert.False(t, checkin.CheckedInAt.IsZero())
	require.Len(t, checkins.created, 1)
}

func TestCheckinRejectsDuplicate(t *testing.T) {
	checkins, members, classes := checkinFixtures(20)
	checkins.exists = true
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	_, err := svc.Checkin(context.Background(), "gym-1", validCheckinRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyCheckedIn.Code, appErr.Code)
	assert.Empty(t, checkins.created)
}

func TestCheckinEnforcesCapacity(t *testing.T) {
	checkins, members, classes := checkinFixtures(12)
	checkins.count = 12
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	_, err := svc.Checkin(context.Background(), "gym-1", validCheckinRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrCapacityReached.Code, appErr.Code)
}

func TestCheckinDefaultsCapacityWhenUnset(t *testing.T) {
	checkins, members, classes := checkinFixtures(0)
	checkins.count = 19
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	_, err := svc.Checkin(context.Background(), "gym-1", validCheckinRequest())
	require.NoError(t, err)

	checkins.created = nil
	checkins.count = 20
	_, err = svc.Checkin(context.Background(), "gym-1", validCheckinRequest())
	require.Error(t, err)
}

func TestCheckinRejectsInactiveMember(t *testing.T) {
	checkins, members, classes := checkinFixtures(20)
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	req := validCheckinRequest()
	req.MemberID = "m2"
	_, err := svc.Checkin(context.Background(), "gym-1", req)
	require.Error(t, err)
}

func TestCheckinRejectsCrossGym(t *testing.T) {
	checkins, members, classes := checkinFixtures(20)
	svc := NewCheckinService(checkins, members, classes, nil, nil)

	_, err := svc.Checkin(context.Background(), "gym-2", validCheckinRequest())
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
