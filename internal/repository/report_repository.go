package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/flexfit/gym-api/internal/models"
)

// ReportRepository tracks asynchronous attendance report jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, gym_id, format, start_date, end_date, status, file_path, fail_reason, requested_by, created_at, completed_at`

// Create persists a new report job in PENDING state.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportJobPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO report_jobs (id, gym_id, format, start_date, end_date, status, file_path, fail_reason, requested_by, created_at)
		VALUES (:id, :gym_id, :format, :start_date, :end_date, :status, :file_path, :fail_reason, :requested_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("insert report job: %w", err)
	}
	return nil
}

// FindByID returns a report job by identifier.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE id = $1 LIMIT 1", reportColumns)
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report job: %w", err)
	}
	return &job, nil
}

// MarkRunning transitions a job to RUNNING.
func (r *ReportRepository) MarkRunning(ctx context.Context, id string) error {
	const query = `UPDATE report_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportJobRunning); err != nil {
		return fmt.Errorf("mark report job running: %w", err)
	}
	return nil
}

// MarkCompleted records the generated file path and completion time.
func (r *ReportRepository) MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error {
	const query = `UPDATE report_jobs SET status = $2, file_path = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportJobCompleted, filePath, completedAt); err != nil {
		return fmt.Errorf("mark report job completed: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason.
func (r *ReportRepository) MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error {
	const query = `UPDATE report_jobs SET status = $2, fail_reason = $3, completed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ReportJobFailed, reason, completedAt); err != nil {
		return fmt.Errorf("mark report job failed: %w", err)
	}
	return nil
}

// ListByGym returns the most recent report jobs for a gym.
func (r *ReportRepository) ListByGym(ctx context.Context, gymID string, limit int) ([]models.ReportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM report_jobs WHERE gym_id = $1 ORDER BY created_at DESC LIMIT %d", reportColumns, limit)
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, gymID); err != nil {
		return nil, fmt.Errorf("list report jobs: %w", err)
	}
	return jobs, nil
}
