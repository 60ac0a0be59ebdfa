package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/careview/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage — in-memory реализация ReportsStorage
type MemoryStorage struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]storage.ReportMeta
	now     func() time.Time
}

var _ storage.ReportsStorage = (*MemoryStorage)(nil)

// New создаёт пустое хранилище
func New() *MemoryStorage {
	return &MemoryStorage{
		reports: make(map[uuid.UUID]storage.ReportMeta),
		now:     time.Now,
	}
}

// CreateReport создаёт новый отчёт
func (s *MemoryStorage) CreateReport(ctx context.Context, report *storage.ReportMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	now := s.now()
	report.CreatedAt = now
	report.UpdatedAt = now

	s.reports[report.ID] = *report
	return nil
}

// GetReport возвращает отчёт по ID
func (s *MemoryStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return &report, nil
}

// ListReports возвращает список отчётов с пагинацией
func (s *MemoryStorage) ListReports(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]storage.ReportMeta, 0)
	for _, r := range s.reports {
		if r.OwnerUserID == ownerUserID {
			filtered = append(filtered, r)
		}
	}

	// created_at DESC, id для стабильности
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID.String() < filtered[j].ID.String()
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(filtered) {
		return []storage.ReportMeta{}, nil
	}

	end := len(filtered)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return filtered[offset:end], nil
}

// DeleteReport удаляет отчёт
func (s *MemoryStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.reports, id)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
