package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/util"

	"github.com/rs/zerolog/log"
)

var ErrInvalidAuditEntry = errors.New("invalid audit entry")

// AuditPublisher hands converted records to the next stage: the Kafka topic
// or the search backend directly.
type AuditPublisher interface {
	Publish(ctx context.Context, records []model.AuditRecord) error
}

type AuditPublisherFunc func(ctx context.Context, records []model.AuditRecord) error

func (f AuditPublisherFunc) Publish(ctx context.Context, records []model.AuditRecord) error {
	return f(ctx, records)
}

type AuditIngestService interface {
	Ingest(ctx context.Context, entries []dto.AuditEntry) (int, error)
}

type auditIngestService struct {
	publisher AuditPublisher
	now       func() time.Time
}

func NewAuditIngestService(publisher AuditPublisher) AuditIngestService {
	return &auditIngestService{
		publisher: publisher,
		now:       time.Now,
	}
}

// Ingest converts and publishes a batch of entries, returning how many were
// accepted. Empty probe entries are skipped; one invalid entry rejects the
// whole batch.
func (s *auditIngestService) Ingest(ctx context.Context, entries []dto.AuditEntry) (int, error) {
	records := make([]model.AuditRecord, 0, len(entries))
	for i, entry := range entries {
		if entry.IsEmpty() {
			continue
		}
		record, err := ToAuditRecord(entry, s.now)
		if err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		log.Debug().Int("entries", len(entries)).Msg("No audit records to publish")
		return 0, nil
	}

	if err := s.publisher.Publish(ctx, records); err != nil {
		log.Error().Err(err).Int("count", len(records)).Msg("Failed to publish audit records")
		return 0, fmt.Errorf("publish audit records: %w", err)
	}
	log.Debug().Int("count", len(records)).Msg("Published audit records")
	return len(records), nil
}

// ToAuditRecord maps an audit entry to the searchable record. A missing time
// is replaced by now().
func ToAuditRecord(entry dto.AuditEntry, now func() time.Time) (model.AuditRecord, error) {
	record := model.AuditRecord{
		APIName:               entry.API.Name,
		AccessKey:             entry.AccessKey,
		Bucket:                entry.API.Bucket,
		Object:                entry.API.Object,
		RemoteHost:            entry.RemoteHost,
		RequestID:             entry.RequestID,
		UserAgent:             entry.UserAgent,
		ResponseStatus:        entry.API.Status,
		ResponseStatusCode:    entry.API.StatusCode,
		RequestContentLength:  entry.API.InputBytes,
		ResponseContentLength: entry.API.OutputBytes,
	}

	if entry.Time == "" {
		record.Time = now().UTC()
	} else {
		t, err := util.ParseTimeFlexible(entry.Time)
		if err != nil {
			return model.AuditRecord{}, fmt.Errorf("%w: %v", ErrInvalidAuditEntry, err)
		}
		record.Time = t
	}

	switch {
	case entry.API.TimeToResponseInNS != "":
		ns, err := entry.API.TimeToResponseInNS.Int64()
		if err != nil {
			return model.AuditRecord{}, fmt.Errorf("%w: timeToResponseInNS: %v", ErrInvalidAuditEntry, err)
		}
		record.TimeToResponseNs = ns
	case entry.API.TimeToResponse != "":
		ns, err := util.ParseDurationNs(entry.API.TimeToResponse)
		if err != nil {
			return model.AuditRecord{}, fmt.Errorf("%w: timeToResponse: %v", ErrInvalidAuditEntry, err)
		}
		record.TimeToResponseNs = ns
	}
	return record, nil
}
