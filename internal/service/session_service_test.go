package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/config"
	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/search"
	"audit-log-search/internal/store"
)

func seededQueryService(t *testing.T, n int) LogQueryService {
	backend := store.NewInMemoryAuditStore()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.AuditRecord, n)
	for i := range records {
		bucket := "photos"
		if i%2 == 1 {
			bucket = "backups"
		}
		records[i] = model.AuditRecord{Time: base.Add(time.Duration(i) * time.Minute), Bucket: bucket, APIName: "PutObject"}
	}
	require.NoError(t, backend.StoreRecords(context.Background(), records))
	return NewLogQueryService(backend, enabledConfig())
}

func newTestSessionService(t *testing.T, n int) SessionService {
	return NewSessionService(store.NewInMemorySessionStore(time.Minute, 4), seededQueryService(t, n))
}

func TestSessionLoadAndNext(t *testing.T) {
	svc := newTestSessionService(t, 250)
	ctx := context.Background()

	view, err := svc.Create(ctx, dto.SessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, dto.SortDesc, view.Sort.Direction)
	assert.Equal(t, search.DefaultColumns, view.VisibleColumns)

	page, err := svc.Load(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "loaded", page.Outcome)
	assert.Equal(t, 100, page.Count)

	page, err = svc.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)

	page, err = svc.Next(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, page.Count)
	assert.Len(t, page.View.Records, 250)
	assert.Equal(t, 3, page.View.Cursor)
	assert.True(t, page.View.Records[0].Time.After(page.View.Records[249].Time))
}

func TestSessionFilterAndSort(t *testing.T) {
	svc := newTestSessionService(t, 10)
	ctx := context.Background()
	view, err := svc.Create(ctx, dto.SessionRequest{Filter: dto.SearchFilter{dto.FieldBucket: "back*"}})
	require.NoError(t, err)

	page, err := svc.Load(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Count)

	view, err = svc.ApplyFilter(ctx, view.ID, dto.SessionRequest{Filter: dto.SearchFilter{dto.FieldBucket: "photos"}})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Cursor)

	page, err = svc.ApplySort(ctx, view.ID, "asc")
	require.NoError(t, err)
	assert.Equal(t, dto.SortAsc, page.View.Sort.Direction)
	require.Len(t, page.View.Records, 5)
	assert.Equal(t, "photos", page.View.Records[0].Bucket)
	assert.True(t, page.View.Records[0].Time.Before(page.View.Records[4].Time))
}

func TestSessionRejectsInvalidInput(t *testing.T) {
	svc := newTestSessionService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.SessionRequest{Filter: dto.SearchFilter{"owner": "x"}})
	assert.ErrorIs(t, err, logquery.ErrInvalidFilter)

	view, err := svc.Create(ctx, dto.SessionRequest{})
	require.NoError(t, err)
	_, err = svc.ApplySort(ctx, view.ID, "sideways")
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = svc.ToggleColumn(ctx, view.ID, "owner")
	assert.ErrorIs(t, err, search.ErrUnknownColumn)

	_, err = svc.View(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionToggleColumnAndDelete(t *testing.T) {
	svc := newTestSessionService(t, 0)
	ctx := context.Background()
	view, err := svc.Create(ctx, dto.SessionRequest{})
	require.NoError(t, err)

	view, err = svc.ToggleColumn(ctx, view.ID, "user_agent")
	require.NoError(t, err)
	assert.NotContains(t, view.VisibleColumns, "user_agent")

	require.NoError(t, svc.Delete(ctx, view.ID))
	assert.ErrorIs(t, svc.Delete(ctx, view.ID), store.ErrSessionNotFound)
}

func TestSessionReportsFailure(t *testing.T) {
	boom := errors.New("backend down")
	query := NewLogQueryService(&fakeLogRepository{err: boom}, enabledConfig())
	svc := NewSessionService(store.NewInMemorySessionStore(time.Minute, 4), query)
	ctx := context.Background()
	view, err := svc.Create(ctx, dto.SessionRequest{})
	require.NoError(t, err)

	page, err := svc.Load(ctx, view.ID)

	require.NoError(t, err)
	assert.Equal(t, "failed", page.Outcome)
	assert.Equal(t, "backend down", page.Error)
	assert.Equal(t, "backend down", page.View.LastError)
	assert.False(t, page.View.IsLoading)
}

func TestSessionDisabledSearch(t *testing.T) {
	query := NewLogQueryService(&fakeLogRepository{}, &config.Config{})
	svc := NewSessionService(store.NewInMemorySessionStore(time.Minute, 4), query)
	ctx := context.Background()
	view, err := svc.Create(ctx, dto.SessionRequest{})
	require.NoError(t, err)

	page, err := svc.Load(ctx, view.ID)

	require.NoError(t, err)
	assert.Equal(t, "disabled", page.Outcome)
	assert.Empty(t, page.Error)
}
