package dto

// CreateReportRequest asks for an asynchronous attendance export.
type CreateReportRequest struct {
	Format    string `json:"format" validate:"required,oneof=csv pdf"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}
