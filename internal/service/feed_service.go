package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/schedule"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
	"github.com/flexfit/gym-api/pkg/storage"
)

type feedClassRepository interface {
	ListForWindow(ctx context.Context, gymID string, start, end time.Time) ([]models.GymClass, error)
}

// FeedConfig tunes the calendar feed.
type FeedConfig struct {
	Enabled     bool
	HorizonDays int
}

// FeedService renders a gym's schedule as an iCalendar feed. Recurring
// classes are emitted as single VEVENTs carrying their RRULE, so subscribing
// calendar apps expand the series themselves.
type FeedService struct {
	classes feedClassRepository
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	config  FeedConfig
}

// NewFeedService constructs a FeedService.
func NewFeedService(classes feedClassRepository, signer *storage.SignedURLSigner, logger *zap.Logger, config FeedConfig) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.HorizonDays <= 0 {
		config.HorizonDays = 90
	}
	return &FeedService{classes: classes, signer: signer, logger: logger, config: config}
}

// Token mints a signed feed token for the gym, so calendar apps can subscribe
// without a JWT.
func (s *FeedService) Token(gymID string) (string, time.Time, error) {
	token, expiresAt, err := s.signer.Generate(gymID, "calendar.ics")
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign feed token")
	}
	return token, expiresAt, nil
}

// VerifyToken checks a feed token and returns the gym it grants.
func (s *FeedService) VerifyToken(token string) (string, error) {
	gymID, _, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid feed token")
	}
	return gymID, nil
}

// Render produces the ICS document for the gym's schedule.
func (s *FeedService) Render(ctx context.Context, gymID string) (string, error) {
	if !s.config.Enabled {
		return "", appErrors.Clone(appErrors.ErrNotFound, "calendar feed is disabled")
	}

	start := schedule.DateOf(time.Now().UTC())
	end := start.AddDate(0, 0, s.config.HorizonDays)
	classes, err := s.classes.ListForWindow(ctx, gymID, start, end)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes for feed")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//FlexFit//Gym Schedule//EN")
	cal.SetName("Gym Schedule")

	now := time.Now().UTC()
	for _, class := range classes {
		startClock, err := schedule.ParseClock(class.StartTime)
		if err != nil {
			s.logger.Warn("skipping class with bad start time in feed", zap.String("class_id", class.ID), zap.Error(err))
			continue
		}
		endClock, err := schedule.ParseClock(class.EndTime)
		if err != nil {
			s.logger.Warn("skipping class with bad end time in feed", zap.String("class_id", class.ID), zap.Error(err))
			continue
		}

		anchor := schedule.DateOf(class.Date)
		event := cal.AddEvent(fmt.Sprintf("%s@flexfit", class.ID))
		event.SetDtStampTime(now)
		event.SetStartAt(schedule.Combine(anchor, startClock))
		event.SetEndAt(schedule.Combine(anchor, endClock))
		event.SetSummary(class.Title)
		if class.Instructor != "" {
			event.SetDescription(fmt.Sprintf("Instructor: %s", class.Instructor))
		}
		if class.IsRecurring && class.RecurrenceRule != "" {
			event.AddRrule(class.RecurrenceRule)
		}
	}

	return cal.Serialize(), nil
}
