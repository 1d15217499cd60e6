package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/config"
	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/store"
)

func TestPruneExpired(t *testing.T) {
	backend := store.NewInMemoryAuditStore()
	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	require.NoError(t, backend.StoreRecords(context.Background(), []model.AuditRecord{
		{Time: now.Add(-40 * 24 * time.Hour), RequestID: "old"},
		{Time: now.Add(-time.Hour), RequestID: "new"},
	}))
	cfg := &config.Config{}
	cfg.Retention.Period = 30 * 24 * time.Hour
	svc := NewRetentionService(backend, cfg).(*retentionService)
	svc.now = func() time.Time { return now }

	deleted, err := svc.PruneExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	res, err := backend.Search(context.Background(), dto.LogSearchRequest{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "new", res.Results[0].RequestID)
}

func TestPruneExpiredWithoutPeriod(t *testing.T) {
	deleted, err := NewRetentionService(store.NewInMemoryAuditStore(), &config.Config{}).PruneExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
