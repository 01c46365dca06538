package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flexfit/gym-api/internal/models"
)

// CheckinRepository manages persistence for member check-ins.
type CheckinRepository struct {
	db *sqlx.DB
}

// NewCheckinRepository constructs a check-in repository.
func NewCheckinRepository(db *sqlx.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// Create persists a new check-in record.
func (r *CheckinRepository) Create(ctx context.Context, checkin *models.Checkin) error {
	if checkin.ID == "" {
		checkin.ID = uuid.NewString()
	}
	if checkin.CheckedInAt.IsZero() {
		checkin.CheckedInAt = time.Now().UTC()
	}

	const query = `INSERT INTO checkins (id, gym_id, class_id, member_id, occurrence_date, checked_in_at)
		VALUES (:id, :gym_id, :class_id, :member_id, :occurrence_date, :checked_in_at)`
	if _, err := r.db.NamedExecContext(ctx, query, checkin); err != nil {
		return fmt.Errorf("insert checkin: %w", err)
	}
	return nil
}

// CountForOccurrence returns how many members are checked in to one class
// occurrence.
func (r *CheckinRepository) CountForOccurrence(ctx context.Context, classID string, occurrenceDate time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM checkins WHERE class_id = $1 AND occurrence_date = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, occurrenceDate); err != nil {
		return 0, fmt.Errorf("count checkins for occurrence: %w", err)
	}
	return count, nil
}

// Exists reports whether the member has already checked in to the occurrence.
func (r *CheckinRepository) Exists(ctx context.Context, classID, memberID string, occurrenceDate time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM checkins WHERE class_id = $1 AND member_id = $2 AND occurrence_date = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classID, memberID, occurrenceDate); err != nil {
		return false, fmt.Errorf("check existing checkin: %w", err)
	}
	return exists, nil
}

// List returns check-ins matching filter criteria with member and class info
// joined in, paginated.
func (r *CheckinRepository) List(ctx context.Context, filter models.CheckinFilter) ([]models.CheckinDetail, int, error) {
	base := `FROM checkins ci
		JOIN members m ON m.id = ci.member_id
		JOIN gym_classes gc ON gc.id = ci.class_id
		WHERE ci.gym_id = $1`
	args := []interface{}{filter.GymID}

	var conditions []string
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("ci.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.MemberID != "" {
		conditions = append(conditions, fmt.Sprintf("ci.member_id = $%d", len(args)+1))
		args = append(args, filter.MemberID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("ci.occurrence_date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("ci.occurrence_date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ci.id, ci.gym_id, ci.class_id, ci.member_id, ci.occurrence_date, ci.checked_in_at,
		m.full_name AS member_name, gc.title AS class_title
		%s ORDER BY ci.checked_in_at DESC LIMIT %d OFFSET %d`, base, size, offset)
	var checkins []models.CheckinDetail
	if err := r.db.SelectContext(ctx, &checkins, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list checkins: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count checkins: %w", err)
	}
	return checkins, total, nil
}

// ListBetween returns every check-in for the gym inside the date range,
// unpaginated, for report generation.
func (r *CheckinRepository) ListBetween(ctx context.Context, gymID string, start, end time.Time) ([]models.CheckinDetail, error) {
	const query = `SELECT ci.id, ci.gym_id, ci.class_id, ci.member_id, ci.occurrence_date, ci.checked_in_at,
		m.full_name AS member_name, gc.title AS class_title
		FROM checkins ci
		JOIN members m ON m.id = ci.member_id
		JOIN gym_classes gc ON gc.id = ci.class_id
		WHERE ci.gym_id = $1 AND ci.occurrence_date BETWEEN $2 AND $3
		ORDER BY ci.occurrence_date, ci.checked_in_at`
	var checkins []models.CheckinDetail
	if err := r.db.SelectContext(ctx, &checkins, query, gymID, start, end); err != nil {
		return nil, fmt.Errorf("list checkins between: %w", err)
	}
	return checkins, nil
}
