package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	"github.com/flexfit/gym-api/pkg/export"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
	"github.com/flexfit/gym-api/pkg/jobs"
	"github.com/flexfit/gym-api/pkg/storage"
)

type reportRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error
	ListByGym(ctx context.Context, gymID string, limit int) ([]models.ReportJob, error)
}

type reportCheckinRepository interface {
	ListBetween(ctx context.Context, gymID string, start, end time.Time) ([]models.CheckinDetail, error)
}

// ReportConfig tunes the background report workers.
type ReportConfig struct {
	Workers    int
	QueueSize  int
	MaxRetries int
	RetryDelay time.Duration
}

// ReportService generates attendance exports asynchronously: a request
// creates a PENDING job, a worker renders the file and stores it, and the
// caller polls the job until COMPLETED, then downloads via a signed token.
type ReportService struct {
	reports   reportRepository
	checkins  reportCheckinRepository
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	queue     *jobs.Queue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// WithMetrics attaches instrumentation. Optional; nil-safe throughout.
func (s *ReportService) WithMetrics(m *MetricsService) *ReportService {
	s.metrics = m
	return s
}

// NewReportService constructs a ReportService with its own worker queue.
func NewReportService(reports reportRepository, checkins reportCheckinRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}

	s := &ReportService{
		reports:   reports,
		checkins:  checkins,
		store:     store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("attendance-reports", s.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.QueueSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the report workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the report workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// Request validates the payload, persists a PENDING job, and enqueues it.
func (s *ReportService) Request(ctx context.Context, gymID, userID string, req dto.CreateReportRequest) (*models.ReportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_date, expected YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date precedes start_date")
	}

	job := &models.ReportJob{
		GymID:       gymID,
		Format:      req.Format,
		StartDate:   start,
		EndDate:     end,
		Status:      models.ReportJobPending,
		RequestedBy: userID,
	}
	if err := s.reports.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "attendance-report", Payload: job.ID}); err != nil {
		s.logger.Error("failed to enqueue report job", zap.String("job_id", job.ID), zap.Error(err))
		if markErr := s.reports.MarkFailed(ctx, job.ID, "queue unavailable", time.Now().UTC()); markErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report queue unavailable")
	}
	return job, nil
}

// Get returns a report job scoped to the gym.
func (s *ReportService) Get(ctx context.Context, gymID, jobID string) (*models.ReportJob, error) {
	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.GymID != gymID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another gym")
	}
	return job, nil
}

// List returns recent report jobs for the gym.
func (s *ReportService) List(ctx context.Context, gymID string, limit int) ([]models.ReportJob, error) {
	jobsList, err := s.reports.ListByGym(ctx, gymID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list report jobs")
	}
	return jobsList, nil
}

// DownloadToken mints a signed token for a completed job's file.
func (s *ReportService) DownloadToken(job *models.ReportJob) (string, time.Time, error) {
	if job.Status != models.ReportJobCompleted || job.FilePath == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "report is not ready for download")
	}
	token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, expiresAt, nil
}

// OpenDownload validates a signed token and opens the referenced file.
func (s *ReportService) OpenDownload(ctx context.Context, token string) (*os.File, *models.ReportJob, error) {
	jobID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	if job.FilePath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match report file")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file missing")
	}
	return file, job, nil
}

// handleJob renders one queued report.
func (s *ReportService) handleJob(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected report payload %T", job.Payload)
	}
	return s.process(ctx, jobID)
}

func (s *ReportService) process(ctx context.Context, jobID string) error {
	job, err := s.reports.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", jobID, err)
	}
	if err := s.reports.MarkRunning(ctx, job.ID); err != nil {
		return fmt.Errorf("mark report running: %w", err)
	}

	checkins, err := s.checkins.ListBetween(ctx, job.GymID, job.StartDate, job.EndDate)
	if err != nil {
		s.fail(ctx, job.ID, job.Format, "failed to load attendance data")
		return fmt.Errorf("load checkins for report %s: %w", job.ID, err)
	}

	dataset := attendanceDataset(checkins)
	var rendered []byte
	switch job.Format {
	case "pdf":
		rendered, err = s.pdf.Render(dataset, fmt.Sprintf("Attendance %s to %s",
			job.StartDate.Format("2006-01-02"), job.EndDate.Format("2006-01-02")))
	default:
		rendered, err = s.csv.Render(dataset)
	}
	if err != nil {
		s.fail(ctx, job.ID, job.Format, "failed to render report")
		return fmt.Errorf("render report %s: %w", job.ID, err)
	}

	filename := fmt.Sprintf("attendance-%s-%s.%s", job.GymID, job.ID, job.Format)
	relPath, err := s.store.Save(filename, rendered)
	if err != nil {
		s.fail(ctx, job.ID, job.Format, "failed to store report file")
		return fmt.Errorf("store report %s: %w", job.ID, err)
	}

	if err := s.reports.MarkCompleted(ctx, job.ID, relPath, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark report completed: %w", err)
	}
	s.metrics.RecordReport(job.Format, "completed")
	s.logger.Info("report completed",
		zap.String("job_id", job.ID),
		zap.String("gym_id", job.GymID),
		zap.String("format", job.Format),
		zap.Int("rows", len(checkins)))
	return nil
}

func (s *ReportService) fail(ctx context.Context, jobID, format, reason string) {
	s.metrics.RecordReport(format, "failed")
	if err := s.reports.MarkFailed(ctx, jobID, reason, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func attendanceDataset(checkins []models.CheckinDetail) export.Dataset {
	headers := []string{"Date", "Class", "Member", "Checked In At"}
	rows := make([]map[string]string, 0, len(checkins))
	for _, ci := range checkins {
		rows = append(rows, map[string]string{
			"Date":          ci.OccurrenceDate.Format("2006-01-02"),
			"Class":         ci.ClassTitle,
			"Member":        ci.MemberName,
			"Checked In At": ci.CheckedInAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
