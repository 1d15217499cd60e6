package timescaledb

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/logquery"
)

const selectPrefix = "SELECT time, api_name, access_key, bucket, object, remote_host, request_id, user_agent, " +
	"response_status, response_status_code, request_content_length, response_content_length, time_to_response_ns FROM audit_records"

func TestBuildSearchSQLWithoutFilters(t *testing.T) {
	query, args := buildSearchSQL("audit_records", dto.LogSearchRequest{Order: dto.OrderTimeDesc, PageSize: 100})

	assert.Equal(t, selectPrefix+" ORDER BY time DESC LIMIT $1 OFFSET $2", query)
	assert.Equal(t, []interface{}{100, 0}, args)
}

func TestBuildSearchSQLWithFiltersAndRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	query, args := buildSearchSQL("audit_records", dto.LogSearchRequest{
		Filter: dto.SearchFilter{
			dto.FieldBucket:         "mybucket-*",
			dto.FieldResponseStatus: "OK",
			dto.FieldObject:         "50%_off.",
		},
		TimeRange: dto.TimeRange{Start: start, End: end},
		Order:     dto.OrderTimeAsc,
		PageNo:    2,
		PageSize:  100,
	})

	assert.Equal(t, selectPrefix+
		` WHERE time >= $1 AND time <= $2 AND bucket LIKE $3 ESCAPE '\' AND object LIKE $4 ESCAPE '\' AND response_status = $5`+
		" ORDER BY time ASC LIMIT $6 OFFSET $7", query)
	assert.Equal(t, []interface{}{start, end, "mybucket-%", `50\%\_off_`, "OK", 100, 200}, args)
}

func TestSearchRejectsPagePastWindowWithoutQuerying(t *testing.T) {
	store := &timescaleAuditStore{tableName: auditRecordsTableName}

	res, err := store.Search(context.Background(), dto.LogSearchRequest{PageNo: math.MaxInt, PageSize: 100})
	require.ErrorIs(t, err, logquery.ErrInvalidPaging)
	assert.Nil(t, res)
}
