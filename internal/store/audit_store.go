package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/pattern"
	"audit-log-search/internal/repository"

	"github.com/rs/zerolog/log"
)

type inMemoryAuditStore struct {
	records []model.AuditRecord // kept sorted by time ascending
	mu      sync.RWMutex
}

// NewInMemoryAuditStore is the "memory" search backend. Records are lost on
// restart.
func NewInMemoryAuditStore() repository.AuditBackend {
	return &inMemoryAuditStore{}
}

func (s *inMemoryAuditStore) StoreRecords(ctx context.Context, records []model.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		r.Time = r.Time.UTC()
		// insert after any record with the same time to keep arrival order
		i := sort.Search(len(s.records), func(i int) bool { return s.records[i].Time.After(r.Time) })
		s.records = append(s.records, model.AuditRecord{})
		copy(s.records[i+1:], s.records[i:])
		s.records[i] = r
	}
	log.Debug().Int("count", len(records)).Int("total", len(s.records)).Msg("Stored audit records in memory")
	return nil
}

func (s *inMemoryAuditStore) Search(ctx context.Context, req dto.LogSearchRequest) (*dto.LogSearchResponse, error) {
	matchers := make(map[string]pattern.Pattern, len(req.Filter))
	for field, p := range req.Filter {
		if p != "" {
			matchers[field] = pattern.Parse(p)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]model.AuditRecord, 0)
	for _, r := range s.records {
		if !inRange(r.Time, req.TimeRange) || !matchAll(r, matchers) {
			continue
		}
		matched = append(matched, r)
	}
	if req.Order == dto.OrderTimeDesc {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	results := []model.AuditRecord{}
	if req.PageNo < 0 || req.PageSize <= 0 || req.PageNo > len(matched)/req.PageSize {
		return &dto.LogSearchResponse{Results: results}, nil
	}
	from := req.PageNo * req.PageSize
	if from < len(matched) {
		to := from + req.PageSize
		if to > len(matched) {
			to = len(matched)
		}
		results = append(results, matched[from:to]...)
	}
	return &dto.LogSearchResponse{Results: results}, nil
}

func (s *inMemoryAuditStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.records), func(i int) bool { return !s.records[i].Time.Before(cutoff) })
	s.records = append([]model.AuditRecord(nil), s.records[i:]...)
	return int64(i), nil
}

func inRange(t time.Time, tr dto.TimeRange) bool {
	if !tr.Start.IsZero() && t.Before(tr.Start) {
		return false
	}
	if !tr.End.IsZero() && t.After(tr.End) {
		return false
	}
	return true
}

func matchAll(r model.AuditRecord, matchers map[string]pattern.Pattern) bool {
	for field, m := range matchers {
		v, ok := r.Field(field)
		if !ok || !m.Match(v) {
			return false
		}
	}
	return true
}
