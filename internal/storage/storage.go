package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("report not found")

// Статусы отчёта
const (
	ReportStatusReady  = "ready"
	ReportStatusFailed = "failed"
)

// ReportsStorage — интерфейс для работы с метаданными отчётов.
// Сами файлы лежат в blob.Store под ObjectKey.
type ReportsStorage interface {
	// CreateReport создаёт новый отчёт
	CreateReport(ctx context.Context, report *ReportMeta) error

	// GetReport возвращает отчёт по ID или ErrNotFound
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)

	// ListReports возвращает отчёты владельца, новые первыми
	ListReports(ctx context.Context, ownerUserID string, limit, offset int) ([]ReportMeta, error)

	// DeleteReport удаляет метаданные отчёта или возвращает ErrNotFound
	DeleteReport(ctx context.Context, id uuid.UUID) error

	// Close закрывает соединение (для Postgres)
	Close() error
}

// ReportMeta — метаданные отчёта
type ReportMeta struct {
	ID          uuid.UUID
	OwnerUserID string
	Kind        string // "dashboard", "effect" or "all"
	Format      string // "pdf" or "csv"
	State       string // view state at generation time
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	Status      string // "ready" or "failed"
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
