package models

import "time"

// ReportJobStatus enumerates report generation states.
type ReportJobStatus string

const (
	ReportJobPending   ReportJobStatus = "PENDING"
	ReportJobRunning   ReportJobStatus = "RUNNING"
	ReportJobCompleted ReportJobStatus = "COMPLETED"
	ReportJobFailed    ReportJobStatus = "FAILED"
)

// ReportJob tracks one asynchronous attendance export.
type ReportJob struct {
	ID          string          `db:"id" json:"id"`
	GymID       string          `db:"gym_id" json:"gym_id"`
	Format      string          `db:"format" json:"format"`
	StartDate   time.Time       `db:"start_date" json:"start_date"`
	EndDate     time.Time       `db:"end_date" json:"end_date"`
	Status      ReportJobStatus `db:"status" json:"status"`
	FilePath    string          `db:"file_path" json:"file_path,omitempty"`
	FailReason  string          `db:"fail_reason" json:"fail_reason,omitempty"`
	RequestedBy string          `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
