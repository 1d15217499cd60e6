package logquery

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/internal/dto"
)

func TestEncodeSingleFilterPair(t *testing.T) {
	v := Encode(dto.LogSearchRequest{
		Filter: dto.SearchFilter{dto.FieldBucket: "mybucket-*"},
		Order:  dto.OrderTimeDesc,
	})

	assert.Equal(t, []string{"bucket:mybucket-*"}, v["fp"])
	assert.Equal(t, "reqinfo", v.Get("q"))
	assert.Equal(t, "100", v.Get("pageSize"))
	assert.Equal(t, "0", v.Get("pageNo"))
	assert.Equal(t, "timeDesc", v.Get("order"))
	assert.NotContains(t, v, "timeStart")
	assert.NotContains(t, v, "timeEnd")
}

func TestEncodeOmitsEmptyPredicatesAndKeepsFieldOrder(t *testing.T) {
	v := Encode(dto.LogSearchRequest{
		Filter: dto.SearchFilter{
			dto.FieldResponseStatus: "OK",
			dto.FieldAPIName:        "PutObject",
			dto.FieldBucket:         "",
			"unknown":               "x",
		},
		PageNo: 3,
	})

	assert.Equal(t, []string{"api_name:PutObject", "response_status:OK"}, v["fp"])
	assert.Equal(t, "3", v.Get("pageNo"))
	assert.Equal(t, "timeAsc", v.Get("order"), "anything other than timeDesc sorts ascending")
}

func TestEncodeTimeRangeInUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
	end := time.Date(2024, 3, 1, 14, 30, 0, 500_000_000, loc)

	v := Encode(dto.LogSearchRequest{TimeRange: dto.TimeRange{Start: start, End: end}})

	assert.Equal(t, "2024-03-01T10:00:00.000Z", v.Get("timeStart"))
	assert.Equal(t, "2024-03-01T12:30:00.500Z", v.Get("timeEnd"))
}

func TestDecodeRoundTripsEncode(t *testing.T) {
	in := dto.LogSearchRequest{
		Filter:    dto.SearchFilter{dto.FieldObject: `photos/*.jpg`, dto.FieldAccessKey: "minio"},
		TimeRange: dto.TimeRange{Start: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Order:     dto.OrderTimeDesc,
		PageNo:    7,
		PageSize:  50,
	}

	out, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in.Filter, out.Filter)
	assert.True(t, in.TimeRange.Start.Equal(out.TimeRange.Start))
	assert.True(t, out.TimeRange.End.IsZero())
	assert.Equal(t, in.Order, out.Order)
	assert.Equal(t, 7, out.PageNo)
	assert.Equal(t, 50, out.PageSize)
}

func TestDecodeDefaults(t *testing.T) {
	out, err := Decode(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, out.Filter)
	assert.Equal(t, DefaultPageSize, out.PageSize)
	assert.Equal(t, 0, out.PageNo)
	assert.Equal(t, dto.OrderTimeDesc, out.Order)
}

func TestDecodeFilterValueMayContainColon(t *testing.T) {
	out, err := Decode(url.Values{"fp": {"user_agent:MinIO (linux; amd64) minio-go/v7.0.0:extra"}})
	require.NoError(t, err)
	assert.Equal(t, "MinIO (linux; amd64) minio-go/v7.0.0:extra", out.Filter[dto.FieldUserAgent])
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   error
	}{
		{"wrong kind", url.Values{"q": {"metrics"}}, ErrUnsupportedKind},
		{"unknown field", url.Values{"fp": {"owner:me"}}, ErrInvalidFilter},
		{"missing separator", url.Values{"fp": {"bucket"}}, ErrInvalidFilter},
		{"duplicate field", url.Values{"fp": {"bucket:a", "bucket:b"}}, ErrInvalidFilter},
		{"page size zero", url.Values{"pageSize": {"0"}}, ErrInvalidPaging},
		{"page size too big", url.Values{"pageSize": {"5000"}}, ErrInvalidPaging},
		{"negative page", url.Values{"pageNo": {"-1"}}, ErrInvalidPaging},
		{"page number overflows offset", url.Values{"pageNo": {"9223372036854775807"}}, ErrInvalidPaging},
		{"page past result window", url.Values{"pageNo": {"100"}}, ErrInvalidPaging},
		{"large page past result window", url.Values{"pageNo": {"10"}, "pageSize": {"1000"}}, ErrInvalidPaging},
		{"bad order", url.Values{"order": {"sizeDesc"}}, ErrInvalidOrder},
		{"bad time", url.Values{"timeStart": {"yesterday"}}, ErrInvalidTimeRange},
		{"end before start", url.Values{
			"timeStart": {"2024-01-02T00:00:00Z"},
			"timeEnd":   {"2024-01-01T00:00:00Z"},
		}, ErrInvalidTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.values)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckWindow(t *testing.T) {
	assert.NoError(t, CheckWindow(99, 100))
	assert.NoError(t, CheckWindow(9, 1000))
	assert.NoError(t, CheckWindow(32, 300))
	assert.ErrorIs(t, CheckWindow(33, 300), ErrInvalidPaging)
	assert.ErrorIs(t, CheckWindow(math.MaxInt, 100), ErrInvalidPaging)
	assert.ErrorIs(t, CheckWindow(0, 0), ErrInvalidPaging)
}

func TestDecodeLastPageInsideWindow(t *testing.T) {
	out, err := Decode(url.Values{"pageNo": {"99"}})
	require.NoError(t, err)
	assert.Equal(t, 99, out.PageNo)
}
