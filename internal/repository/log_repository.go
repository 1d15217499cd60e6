package repository

import (
	"context"
	"errors"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrPresetExists   = errors.New("preset name already in use")
)

type LogRepository interface {
	Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error)
}

// AuditWriter persists ingested audit records.
type AuditWriter interface {
	StoreRecords(ctx context.Context, records []model.AuditRecord) error
}

// AuditPruner deletes records older than a cutoff and reports how many went.
type AuditPruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditBackend is what a search backend provides.
type AuditBackend interface {
	LogRepository
	AuditWriter
	AuditPruner
}

type PresetRepository interface {
	Create(ctx context.Context, preset *model.SavedSearch) error
	List(ctx context.Context) ([]model.SavedSearch, error)
	Get(ctx context.Context, id uint) (*model.SavedSearch, error)
	Delete(ctx context.Context, id uint) error
}
