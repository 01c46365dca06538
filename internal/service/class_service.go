package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/schedule"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

type classRepository interface {
	Create(ctx context.Context, class *models.GymClass) error
	FindByID(ctx context.Context, id string) (*models.GymClass, error)
	ListForWindow(ctx context.Context, gymID string, start, end time.Time) ([]models.GymClass, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, int, error)
	Delete(ctx context.Context, id string) error
	DeleteSeries(ctx context.Context, parentRecurrenceID string) (int64, error)
}

type classCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ClassConfig tunes schedule expansion and caching.
type ClassConfig struct {
	HorizonDays  int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ClassService owns the class schedule: it persists class templates (the rule,
// not a materialized list) and expands them into concrete occurrences on read.
type ClassService struct {
	repo      classRepository
	cache     classCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    ClassConfig
}

// WithMetrics attaches instrumentation. Optional; nil-safe throughout.
func (s *ClassService) WithMetrics(m *MetricsService) *ClassService {
	s.metrics = m
	return s
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, cache classCache, validate *validator.Validate, logger *zap.Logger, config ClassConfig) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.HorizonDays <= 0 {
		config.HorizonDays = schedule.DefaultHorizonDays
	}
	return &ClassService{repo: repo, cache: cache, validator: validate, logger: logger, config: config}
}

// Create validates the payload, derives the recurrence rule from the weekday
// flags, and persists the class template. All seven flags set encodes a daily
// class; otherwise the flagged days form a weekly rule.
func (s *ClassService) Create(ctx context.Context, userID string, req dto.CreateClassRequest) (*models.GymClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class title is required")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", req.Date))
	}

	startClock, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	endClock, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return nil, err
	}

	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = schedule.DefaultCapacity
	}

	class := &models.GymClass{
		GymID:       req.GymID,
		Title:       req.Title,
		Date:        date,
		StartTime:   startClock.String(),
		EndTime:     endClock.String(),
		Instructor:  req.Instructor,
		Level:       schedule.ParseSkillLevel(req.Level).String(),
		AgeGroup:    req.AgeGroup,
		Capacity:    capacity,
		IsRecurring: rule.Freq != schedule.FreqNone,
		CreatedBy:   userID,
	}
	if class.IsRecurring {
		parentID := uuid.NewString()
		class.ParentRecurrenceID = &parentID
		class.RecurrenceRule = rule.RRule()
	}

	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist class")
	}

	s.invalidateCache(ctx, req.GymID)
	s.logger.Info("class created",
		zap.String("class_id", class.ID),
		zap.String("gym_id", class.GymID),
		zap.Bool("recurring", class.IsRecurring))
	return class, nil
}

// ListOccurrences expands every stored class for the gym into concrete
// occurrences within the window. A zero start defaults to today; a zero end
// defaults to start plus the configured horizon.
func (s *ClassService) ListOccurrences(ctx context.Context, gymID string, start, end time.Time) ([]models.Occurrence, error) {
	if gymID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	if start.IsZero() {
		start = schedule.DateOf(time.Now().UTC())
	} else {
		start = schedule.DateOf(start)
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, s.config.HorizonDays)
	} else {
		end = schedule.DateOf(end)
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "window end precedes start")
	}

	cacheKey := occurrenceCacheKey(gymID, start, end)
	if s.config.CacheEnabled && s.cache != nil {
		var cached []models.Occurrence
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("occurrence cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	classes, err := s.repo.ListForWindow(ctx, gymID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}

	occurrences := make([]models.Occurrence, 0, len(classes))
	for _, class := range classes {
		expanded, err := s.expandClass(class, start, end)
		if err != nil {
			s.logger.Warn("skipping class with unusable schedule",
				zap.String("class_id", class.ID), zap.Error(err))
			continue
		}
		occurrences = append(occurrences, expanded...)
	}
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].Start.Equal(occurrences[j].Start) {
			return occurrences[i].Title < occurrences[j].Title
		}
		return occurrences[i].Start.Before(occurrences[j].Start)
	})

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, occurrences, s.config.CacheTTL); err != nil {
			s.logger.Warn("occurrence cache write failed", zap.Error(err))
		}
	}
	s.metrics.RecordExpansion()
	return occurrences, nil
}

// ListClasses returns the stored class rows without expansion.
func (s *ClassService) ListClasses(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, *models.Pagination, error) {
	if filter.GymID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "gym_id is required")
	}
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return classes, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one stored class row, scoped to the gym.
func (s *ClassService) Get(ctx context.Context, gymID, classID string) (*models.GymClass, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.GymID != gymID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class belongs to another gym")
	}
	return class, nil
}

// Delete removes one class, scoped to the gym.
func (s *ClassService) Delete(ctx context.Context, gymID, classID string) error {
	if _, err := s.Get(ctx, gymID, classID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.invalidateCache(ctx, gymID)
	s.logger.Info("class deleted", zap.String("class_id", classID), zap.String("gym_id", gymID))
	return nil
}

// DeleteSeries removes every class sharing the parent recurrence id.
func (s *ClassService) DeleteSeries(ctx context.Context, gymID, parentRecurrenceID string) (int64, error) {
	if parentRecurrenceID == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "parent recurrence id is required")
	}
	rows, err := s.repo.DeleteSeries(ctx, parentRecurrenceID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete series")
	}
	if rows == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "recurrence series not found")
	}
	s.invalidateCache(ctx, gymID)
	s.logger.Info("class series deleted",
		zap.String("parent_recurrence_id", parentRecurrenceID),
		zap.Int64("rows", rows))
	return rows, nil
}

// expandClass turns one stored class row into its occurrences inside the
// window. The stored parent recurrence id and rule text replace the fresh
// ones the materializer mints, so repeated listings stay stable per series.
func (s *ClassService) expandClass(class models.GymClass, start, end time.Time) ([]models.Occurrence, error) {
	rule, err := schedule.RuleFromRRule(class.RecurrenceRule)
	if err != nil {
		return nil, err
	}

	startClock, err := schedule.ParseClock(class.StartTime)
	if err != nil {
		return nil, err
	}
	endClock, err := schedule.ParseClock(class.EndTime)
	if err != nil {
		return nil, err
	}

	anchor := schedule.DateOf(class.Date)
	horizon := int(end.Sub(anchor).Hours() / 24)
	if horizon < 0 {
		return nil, nil
	}

	dates := schedule.Expand(anchor, rule, horizon)
	inWindow := dates[:0]
	for _, d := range dates {
		if !d.Before(start) && !d.After(end) {
			inWindow = append(inWindow, d)
		}
	}
	if len(inWindow) == 0 {
		return nil, nil
	}

	def := schedule.ClassDefinition{
		ClassID:    class.ID,
		Title:      class.Title,
		Date:       anchor,
		StartTime:  startClock,
		EndTime:    endClock,
		Instructor: class.Instructor,
		Level:      schedule.ParseSkillLevel(class.Level),
		AgeGroup:   class.AgeGroup,
		Capacity:   class.Capacity,
	}
	occurrences, err := schedule.Materialize(def, inWindow, rule)
	if err != nil {
		return nil, err
	}
	if class.IsRecurring {
		for i := range occurrences {
			occurrences[i].ParentRecurrenceID = class.ParentRecurrenceID
			occurrences[i].RecurrenceRule = class.RecurrenceRule
		}
	}
	return occurrences, nil
}

// invalidateCache drops every cached occurrence window for the gym.
func (s *ClassService) invalidateCache(ctx context.Context, gymID string) {
	if !s.config.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("occurrences:%s:*", gymID)); err != nil {
		s.logger.Warn("occurrence cache invalidation failed", zap.String("gym_id", gymID), zap.Error(err))
	}
}

func occurrenceCacheKey(gymID string, start, end time.Time) string {
	return fmt.Sprintf("occurrences:%s:%s:%s", gymID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// ruleFromRequest maps the wire recurrence flags onto a rule. All seven
// weekday flags set is the historical encoding for a daily class.
func ruleFromRequest(req dto.CreateClassRequest) (schedule.Rule, error) {
	if !req.IsRecurring {
		return schedule.Rule{Freq: schedule.FreqNone}, nil
	}

	var endDate *time.Time
	if req.RecurrenceEndDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.RecurrenceEndDate, time.UTC)
		if err != nil {
			return schedule.Rule{}, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("invalid recurrence_end_date %q, expected YYYY-MM-DD", req.RecurrenceEndDate))
		}
		endDate = &parsed
	}

	if req.AllDays() {
		return schedule.Daily(endDate), nil
	}
	rule := schedule.Rule{Freq: schedule.FreqWeekly, Days: req.DayFlags(), EndDate: endDate}
	return rule, nil
}
