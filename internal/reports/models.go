package reports

import (
	"errors"
	"time"

	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/google/uuid"
)

// Constants for validation
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	KindDashboard = "dashboard"
	KindEffect    = "effect"
	KindAll       = "all"

	StatusReady  = "ready"
	StatusFailed = "failed"
)

// Errors
var (
	ErrInvalidFormat  = errors.New("invalid format")
	ErrInvalidKind    = errors.New("invalid kind")
	ErrReportNotFound = errors.New("report not found")
)

// ViewNotReadyError is returned when a requested view could not be
// loaded into a ready state, so there is nothing to export.
type ViewNotReadyError struct {
	Kind    string
	State   string
	Message string
}

func (e *ViewNotReadyError) Error() string {
	return "reports: " + e.Kind + " view is " + e.State
}

// Report represents a generated report metadata
type Report struct {
	ID          uuid.UUID
	OwnerUserID string
	Kind        string
	Format      string
	State       string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	Status      string
	CreatedAt   time.Time
}

// Snapshot — данные видов, попадающие в один отчёт
type Snapshot struct {
	Kind        string
	GeneratedAt time.Time
	Dashboard   *dashboard.View
	Effect      *effect.View
}

// CreateReportRequest is the request to create a new report
type CreateReportRequest struct {
	Kind   string `json:"kind"`   // "dashboard", "effect" or "all"
	Format string `json:"format"` // "pdf" or "csv"
}

// ReportDTO is the response representation of a report
type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Format      string    `json:"format"`
	State       string    `json:"state"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportsResponse is the list response
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/pdf"
}
