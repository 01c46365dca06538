// Package eventstore holds the client-side event collection for a calendar
// view and reconciles it against the persistence collaborator. The store
// never patches incrementally: after any mutation it is cleared and fully
// re-fetched, so the visible list can never drift from the server.
package eventstore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/internal/schedule"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

// State describes the store lifecycle: Empty → Loading → Populated, and back
// to Loading on every refresh trigger.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	default:
		return "empty"
	}
}

// Collaborator is the persistence boundary the store reconciles against.
type Collaborator interface {
	CreateClass(ctx context.Context, req dto.CreateClassRequest) (*models.GymClass, error)
	ListOccurrences(ctx context.Context, gymID string, start, end time.Time) ([]models.Occurrence, error)
	DeleteClass(ctx context.Context, classID string) error
	DeleteSeries(ctx context.Context, parentRecurrenceID string) error
}

// Window is the date range the store currently displays.
type Window struct {
	Start time.Time
	End   time.Time
}

// Store owns the occurrence list for one gym's calendar view. It has exactly
// one writer at a time: a busy flag rejects re-entrant operations instead of
// serializing them, mirroring the UI convention of disabling the triggering
// control while an operation is in flight.
type Store struct {
	collab Collaborator
	gymID  string
	logger *zap.Logger

	mu     sync.Mutex
	busy   bool
	state  State
	window Window
	events []models.Occurrence
}

// New constructs an empty store for the gym.
func New(collab Collaborator, gymID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{collab: collab, gymID: gymID, logger: logger, state: StateEmpty}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	return s.state
}

// Events returns a copy of the current occurrence list.
func (s *Store) Events() []models.Occurrence {
	out := make([]models.Occurrence, len(s.events))
	copy(out, s.events)
	return out
}

// SubmitAndRefresh sends the create payload to the collaborator and, only on
// success, clears and re-fetches the full occurrence list for the window. A
// submit failure leaves the local view untouched; a refetch failure empties
// the store rather than displaying stale data as current.
func (s *Store) SubmitAndRefresh(ctx context.Context, req dto.CreateClassRequest, window Window) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if _, err := s.collab.CreateClass(ctx, req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "create class failed")
	}
	return s.refresh(ctx, window)
}

// DeleteAndRefresh removes one occurrence/class, then refreshes.
func (s *Store) DeleteAndRefresh(ctx context.Context, classID string, window Window) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := s.collab.DeleteClass(ctx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "delete class failed")
	}
	return s.refresh(ctx, window)
}

// DeleteSeries removes every occurrence sharing the parent recurrence id,
// then refreshes.
func (s *Store) DeleteSeries(ctx context.Context, parentRecurrenceID string, window Window) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := s.collab.DeleteSeries(ctx, parentRecurrenceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "delete series failed")
	}
	return s.refresh(ctx, window)
}

// Reload re-fetches the window without a preceding mutation.
func (s *Store) Reload(ctx context.Context, window Window) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	return s.refresh(ctx, window)
}

func (s *Store) refresh(ctx context.Context, window Window) error {
	s.state = StateLoading
	s.events = nil
	s.window = window

	events, err := s.collab.ListOccurrences(ctx, s.gymID, window.Start, window.End)
	if err != nil {
		s.state = StateEmpty
		s.logger.Warn("event refetch failed", zap.String("gym_id", s.gymID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "event list refetch failed")
	}

	// The store was cleared above, so the fetched list replaces it wholesale;
	// Dedupe is for merging into a non-empty view.
	s.events = events
	s.state = StatePopulated
	return nil
}

// acquire claims the single-writer gate. Concurrent operations are rejected,
// not queued.
func (s *Store) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return appErrors.Clone(appErrors.ErrConflict, "another calendar operation is in flight")
	}
	s.busy = true
	return nil
}

func (s *Store) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Dedupe removes from incoming every occurrence whose (title, start) pair is
// already present in existing, and, for recurring occurrences, those whose
// (title, parent recurrence id) is present in existing with a structurally
// equal rule. Suppressing a duplicate is a normal silent outcome, not an
// error. Incoming is only filtered against existing, never against itself, so
// a fresh materialized series merged into an empty view passes through
// unchanged and the operation is idempotent.
func Dedupe(existing, incoming []models.Occurrence) []models.Occurrence {
	type slotKey struct {
		title string
		start int64
	}
	type seriesKey struct {
		title  string
		parent string
	}

	slots := make(map[slotKey]struct{}, len(existing))
	series := make(map[seriesKey]string)
	for _, o := range existing {
		slots[slotKey{o.Title, o.Start.Unix()}] = struct{}{}
		if o.IsRecurring() {
			series[seriesKey{o.Title, *o.ParentRecurrenceID}] = o.RecurrenceRule
		}
	}

	out := make([]models.Occurrence, 0, len(incoming))
	for _, o := range incoming {
		if _, dup := slots[slotKey{o.Title, o.Start.Unix()}]; dup {
			continue
		}
		if o.IsRecurring() {
			if ruleText, present := series[seriesKey{o.Title, *o.ParentRecurrenceID}]; present && rulesEqual(ruleText, o.RecurrenceRule) {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

func rulesEqual(a, b string) bool {
	if a == b {
		return true
	}
	parsedA, errA := schedule.RuleFromRRule(a)
	parsedB, errB := schedule.RuleFromRRule(b)
	if errA != nil || errB != nil {
		return false
	}
	return parsedA.Equal(parsedB)
}
