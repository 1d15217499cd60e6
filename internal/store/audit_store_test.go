package store

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T) *inMemoryAuditStore {
	t.Helper()
	s := NewInMemoryAuditStore().(*inMemoryAuditStore)
	records := []model.AuditRecord{
		{Time: base.Add(3 * time.Minute), APIName: "GetObject", Bucket: "mybucket-logs", Object: "a.txt", RequestID: "r3", ResponseStatus: "OK"},
		{Time: base.Add(1 * time.Minute), APIName: "PutObject", Bucket: "mybucket-logs", Object: "b.txt", RequestID: "r1", ResponseStatus: "OK"},
		{Time: base.Add(2 * time.Minute), APIName: "PutObject", Bucket: "photos", Object: "c.jpg", RequestID: "r2", ResponseStatus: "NotFound"},
		{Time: base.Add(4 * time.Minute), APIName: "DeleteObject", Bucket: "mybucket-data", Object: "d.bin", RequestID: "r4", ResponseStatus: "OK"},
	}
	require.NoError(t, s.StoreRecords(context.Background(), records))
	return s
}

func ids(records []model.AuditRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RequestID
	}
	return out
}

func TestInMemorySearchOrdering(t *testing.T) {
	s := seed(t)

	resp, err := s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeDesc, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"r4", "r3", "r2", "r1"}, ids(resp.Results))

	resp, err = s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeAsc, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, ids(resp.Results))
}

func TestInMemorySearchFilters(t *testing.T) {
	s := seed(t)
	tests := []struct {
		name   string
		filter dto.SearchFilter
		want   []string
	}{
		{"wildcard bucket", dto.SearchFilter{dto.FieldBucket: "mybucket-*"}, []string{"r1", "r3", "r4"}},
		{"and across fields", dto.SearchFilter{dto.FieldBucket: "mybucket-*", dto.FieldAPIName: "PutObject"}, []string{"r1"}},
		{"single char", dto.SearchFilter{dto.FieldObject: ".\\.txt"}, []string{"r1", "r3"}},
		{"status", dto.SearchFilter{dto.FieldResponseStatus: "NotFound"}, []string{"r2"}},
		{"empty pattern ignored", dto.SearchFilter{dto.FieldBucket: ""}, []string{"r1", "r2", "r3", "r4"}},
		{"no match", dto.SearchFilter{dto.FieldAccessKey: "admin"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Search(context.Background(), dto.LogSearchRequest{Filter: tt.filter, Order: dto.OrderTimeAsc, PageSize: 100})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(resp.Results))
		})
	}
}

func TestInMemorySearchTimeRangeIsInclusive(t *testing.T) {
	s := seed(t)
	resp, err := s.Search(context.Background(), dto.LogSearchRequest{
		TimeRange: dto.TimeRange{Start: base.Add(2 * time.Minute), End: base.Add(3 * time.Minute)},
		Order:     dto.OrderTimeAsc,
		PageSize:  100,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r3"}, ids(resp.Results))
}

func TestInMemorySearchPaging(t *testing.T) {
	s := NewInMemoryAuditStore()
	var records []model.AuditRecord
	for i := 0; i < 137; i++ {
		records = append(records, model.AuditRecord{Time: base.Add(time.Duration(i) * time.Second), RequestID: fmt.Sprintf("r%03d", i)})
	}
	require.NoError(t, s.StoreRecords(context.Background(), records))

	p0, err := s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeDesc, PageNo: 0, PageSize: 100})
	require.NoError(t, err)
	p1, err := s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeDesc, PageNo: 1, PageSize: 100})
	require.NoError(t, err)
	p2, err := s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeDesc, PageNo: 2, PageSize: 100})
	require.NoError(t, err)

	assert.Len(t, p0.Results, 100)
	assert.Len(t, p1.Results, 37)
	assert.NotNil(t, p2.Results)
	assert.Empty(t, p2.Results)
	assert.Equal(t, "r136", p0.Results[0].RequestID)
	assert.Equal(t, "r000", p1.Results[36].RequestID)
}

func TestInMemorySearchHugePageIsEmpty(t *testing.T) {
	s := seed(t)

	for _, pageNo := range []int{math.MaxInt, math.MaxInt / 100, -1} {
		res, err := s.Search(context.Background(), dto.LogSearchRequest{PageNo: pageNo, PageSize: 100})
		require.NoError(t, err)
		assert.NotNil(t, res.Results)
		assert.Empty(t, res.Results, "pageNo %d", pageNo)
	}
}

func TestInMemoryPruneBefore(t *testing.T) {
	s := seed(t)
	n, err := s.PruneBefore(context.Background(), base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	resp, err := s.Search(context.Background(), dto.LogSearchRequest{Order: dto.OrderTimeAsc, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r4"}, ids(resp.Results))
}
