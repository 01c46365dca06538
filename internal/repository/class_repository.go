package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flexfit/gym-api/internal/models"
)

// ClassRepository manages persistence for gym classes. Recurring classes are
// stored as a single row carrying the recurrence rule; expansion into
// occurrences happens in the service layer.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `id, gym_id, title, date, start_time, end_time, instructor, level, age_group, capacity, is_recurring, recurrence_rule, parent_recurrence_id, created_by, created_at, updated_at`

// Create persists a new class row.
func (r *ClassRepository) Create(ctx context.Context, class *models.GymClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `INSERT INTO gym_classes (id, gym_id, title, date, start_time, end_time, instructor, level, age_group, capacity, is_recurring, recurrence_rule, parent_recurrence_id, created_by, created_at, updated_at)
		VALUES (:id, :gym_id, :title, :date, :start_time, :end_time, :instructor, :level, :age_group, :capacity, :is_recurring, :recurrence_rule, :parent_recurrence_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("insert class: %w", err)
	}
	return nil
}

// FindByID returns a class row by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.GymClass, error) {
	query := fmt.Sprintf("SELECT %s FROM gym_classes WHERE id = $1 LIMIT 1", classColumns)
	var class models.GymClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	return &class, nil
}

// ListForWindow returns every class that can contribute occurrences to the
// window: one-off classes dated inside it, plus recurring classes anchored on
// or before its end. The rule's own end date bounds expansion later.
func (r *ClassRepository) ListForWindow(ctx context.Context, gymID string, start, end time.Time) ([]models.GymClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM gym_classes
		WHERE gym_id = $1
		AND ((is_recurring = FALSE AND date BETWEEN $2 AND $3) OR (is_recurring = TRUE AND date <= $3))
		ORDER BY date, start_time`, classColumns)

	var classes []models.GymClass
	if err := r.db.SelectContext(ctx, &classes, query, gymID, start, end); err != nil {
		return nil, fmt.Errorf("list classes for window: %w", err)
	}
	return classes, nil
}

// List returns stored class rows matching filter criteria, paginated.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.GymClass, int, error) {
	base := "FROM gym_classes WHERE gym_id = $1"
	args := []interface{}{filter.GymID}

	var conditions []string
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(level) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY date, start_time LIMIT %d OFFSET %d", classColumns, base, size, offset)
	var classes []models.GymClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// Delete removes one class row.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM gym_classes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete class rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSeries removes every class row sharing the parent recurrence id and
// returns how many rows were removed.
func (r *ClassRepository) DeleteSeries(ctx context.Context, parentRecurrenceID string) (int64, error) {
	const query = `DELETE FROM gym_classes WHERE parent_recurrence_id = $1`
	result, err := r.db.ExecContext(ctx, query, parentRecurrenceID)
	if err != nil {
		return 0, fmt.Errorf("delete class series: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete class series rows affected: %w", err)
	}
	return rows, nil
}
