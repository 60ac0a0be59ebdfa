package reports

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fdg312/careview/internal/auth"
	"github.com/fdg312/careview/internal/blob"
	"github.com/fdg312/careview/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles reports business logic
type Service struct {
	reportsStorage storage.ReportsStorage
	blobStore      blob.Store
	generator      *Generator
	presignTTL     int
	listLimit      int
	logger         *zap.Logger
	now            func() time.Time
}

// NewService creates a new reports service
func NewService(
	reportsStorage storage.ReportsStorage,
	blobStore blob.Store,
	generator *Generator,
	presignTTL int,
	listLimit int,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listLimit <= 0 {
		listLimit = 50
	}
	return &Service{
		reportsStorage: reportsStorage,
		blobStore:      blobStore,
		generator:      generator,
		presignTTL:     presignTTL,
		listLimit:      listLimit,
		logger:         logger.Named("reports"),
		now:            time.Now,
	}
}

// CreateReport loads the requested views with the caller's credential,
// renders them and stores the file under the current owner.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest, authorization string) (*Report, error) {
	req.Kind = strings.ToLower(strings.TrimSpace(req.Kind))
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if req.Kind == "" {
		req.Kind = KindAll
	}

	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}
	if req.Kind != KindDashboard && req.Kind != KindEffect && req.Kind != KindAll {
		return nil, ErrInvalidKind
	}

	snap, err := s.generator.Collect(ctx, req.Kind, authorization)
	if err != nil {
		return nil, err
	}

	data, err := s.generator.Render(snap, req.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	owner := auth.OwnerID(ctx)
	objectKey := fmt.Sprintf("reports/%s/%s_%s_%s.%s",
		ownerSegment(owner),
		req.Kind,
		s.now().UTC().Format("20060102T150405"),
		uuid.New().String(),
		req.Format,
	)
	contentType := contentTypeFor(req.Format)

	size, err := s.blobStore.PutObject(ctx, objectKey, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	meta := &storage.ReportMeta{
		OwnerUserID: owner,
		Kind:        req.Kind,
		Format:      req.Format,
		State:       snap.State(),
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   size,
		Status:      StatusReady,
	}

	if err := s.reportsStorage.CreateReport(ctx, meta); err != nil {
		// файл без метаданных никто не найдёт
		if delErr := s.blobStore.DeleteObject(context.WithoutCancel(ctx), objectKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned report object", zap.String("key", objectKey), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save report metadata: %w", err)
	}

	s.logger.Info("report created",
		zap.String("id", meta.ID.String()),
		zap.String("kind", meta.Kind),
		zap.String("format", meta.Format),
		zap.String("state", meta.State),
		zap.Int64("size_bytes", meta.SizeBytes),
	)

	return toReport(meta), nil
}

// GetReport retrieves a report by ID. Reports of other owners are reported
// as not found.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	meta, err := s.reportsStorage.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if meta.OwnerUserID != auth.OwnerID(ctx) {
		return nil, ErrReportNotFound
	}

	return toReport(meta), nil
}

// ListReports lists reports of the current owner, newest first
func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]Report, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	if offset < 0 {
		offset = 0
	}

	metaList, err := s.reportsStorage.ListReports(ctx, auth.OwnerID(ctx), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]Report, len(metaList))
	for i := range metaList {
		reports[i] = *toReport(&metaList[i])
	}

	return reports, nil
}

// DeleteReport deletes a report
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobStore.DeleteObject(ctx, report.ObjectKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		// метаданные важнее: без них файл всё равно недоступен
		s.logger.Warn("failed to delete report object", zap.String("key", report.ObjectKey), zap.Error(err))
	}

	if err := s.reportsStorage.DeleteReport(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report metadata: %w", err)
	}

	return nil
}

// PresignedURL returns a temporary URL for the stored file or
// blob.ErrPresignUnsupported when the file must be streamed by the API.
func (s *Service) PresignedURL(ctx context.Context, report *Report) (string, error) {
	url, err := s.blobStore.PresignGet(ctx, report.ObjectKey, s.presignTTL)
	if err != nil {
		if errors.Is(err, blob.ErrPresignUnsupported) {
			return "", err
		}
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

// DownloadURL returns a presigned URL when the blob store supports it and
// the API download endpoint otherwise.
func (s *Service) DownloadURL(ctx context.Context, report *Report, baseURL string) (string, error) {
	url, err := s.PresignedURL(ctx, report)
	if err == nil {
		return url, nil
	}
	if !errors.Is(err, blob.ErrPresignUnsupported) {
		return "", err
	}
	return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), report.ID.String()), nil
}

// ReportData reads the stored report file
func (s *Service) ReportData(ctx context.Context, report *Report) ([]byte, error) {
	data, err := s.blobStore.GetObject(ctx, report.ObjectKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return data, nil
}

// Filename is the attachment name used for downloads
func (r *Report) Filename() string {
	return fmt.Sprintf("careview_%s_%s.%s", r.Kind, r.CreatedAt.UTC().Format("20060102"), r.Format)
}

func toReport(meta *storage.ReportMeta) *Report {
	return &Report{
		ID:          meta.ID,
		OwnerUserID: meta.OwnerUserID,
		Kind:        meta.Kind,
		Format:      meta.Format,
		State:       meta.State,
		ObjectKey:   meta.ObjectKey,
		ContentType: meta.ContentType,
		SizeBytes:   meta.SizeBytes,
		Status:      meta.Status,
		CreatedAt:   meta.CreatedAt,
	}
}

// ownerSegment escapes a user id for use as one object key segment:
// "/" and "." never reach the key as is, so "../x" stays inside reports/.
func ownerSegment(owner string) string {
	return strings.ReplaceAll(url.PathEscape(owner), ".", "%2E")
}
