package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/schedule"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type checkinRepository interface {
	Create(ctx context.Context, checkin *models.Checkin) error
	CountForOccurrence(ctx context.Context, classID string, occurrenceDate time.Time) (int, error)
	Exists(ctx context.Context, classID, memberID string, occurrenceDate time.Time) (bool, error)
	List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, int, error)
}

type checkinMemberRepository interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

type checkinClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.GymClass, error)
}

// CheckinService handles the kiosk check-in flow: capacity enforcement and
// the once-per-occurrence guard.
type CheckinService struct {
	checkins  checkinRepository
	members   checkinMemberRepository
	classes   checkinClassRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// WithMetrics attaches instrumentation. Optional; nil-safe throughout.
func (s *CheckinService) WithMetrics(m *MetricsService) *CheckinService {
	s.metrics = m
	return s
}

// NewCheckinService constructs a CheckinService.
func NewCheckinService(checkins checkinRepository, members checkinMemberRepository, classes checkinClassRepository, validate *validator.Validate, logger *zap.Logger) *CheckinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CheckinService{checkins: checkins, members: members, classes: classes, validator: validate, logger: logger}
}

// Checkin records a member attending one class occurrence.
func (s *CheckinService) Checkin(ctx context.Context, gymID string, req dto.CheckinRequest) (*models.Checkin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkin payload")
	}

	occurrenceDate, err := time.ParseInLocation("2006-01-02", req.OccurrenceDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid occurrence_date, expected YYYY-MM-DD")
	}

	member, err := s.members.FindByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	if member.GymID != gymID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "member belongs to another gym")
	}
	if !member.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "membership is inactive")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.GymID != gymID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another gym")
	}

	exists, err := s.checkins.Exists(ctx, class.ID, member.ID, occurrenceDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing checkin")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyCheckedIn, "member already checked in to this class today")
	}

	capacity := class.Capacity
	if capacity <= 0 {
		capacity = schedule.DefaultCapacity
	}
	count, err := s.checkins.CountForOccurrence(ctx, class.ID, occurrenceDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count checkins")
	}
	if count >= capacity {
		return nil, appErrors.Clone(appErrors.ErrCapacityReached, "class occurrence is at capacity")
	}

	checkin := &models.Checkin{
		GymID:          gymID,
		ClassID:        class.ID,
		MemberID:       member.ID,
		OccurrenceDate: occurrenceDate,
	}
	if err := s.checkins.Create(ctx, checkin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record checkin")
	}

	s.metrics.RecordCheckin()
	s.logger.Info("member checked in",
		zap.String("gym_id", gymID),
		zap.String("class_id", class.ID),
		zap.String("member_id", member.ID),
		zap.Time("occurrence_date", occurrenceDate))
	return checkin, nil
}

// List returns check-ins matching the filter.
func (s *CheckinService) List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, *models.Pagination, error) {
	if filter.GymID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	checkins, total, err := s.checkins.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list checkins")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return checkins, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
