// Package logquery converts audit log search requests to and from the
// query-string contract of GET /api/v1/logs/search.
package logquery

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/util"
)

const (
	// QueryKind is the only search kind the endpoint serves.
	QueryKind = "reqinfo"

	DefaultPageSize = 100
	MaxPageSize     = 1000

	// MaxResultWindow bounds pageNo*pageSize+pageSize, matching the default
	// Elasticsearch index.max_result_window.
	MaxResultWindow = 10000

	// TimeLayout is UTC ISO-8601 with milliseconds.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"

	paramKind      = "q"
	paramFilter    = "fp"
	paramPageSize  = "pageSize"
	paramPageNo    = "pageNo"
	paramOrder     = "order"
	paramTimeStart = "timeStart"
	paramTimeEnd   = "timeEnd"
)

var (
	ErrUnsupportedKind  = errors.New("unsupported search kind")
	ErrInvalidFilter    = errors.New("invalid filter pair")
	ErrInvalidPaging    = errors.New("invalid paging parameters")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// Encode builds the query parameters for one page request. Empty predicates
// are omitted, so they never constrain the search.
func Encode(req dto.LogSearchRequest) url.Values {
	v := url.Values{}
	v.Set(paramKind, QueryKind)
	for _, field := range dto.FilterFields {
		if pattern := req.Filter[field]; pattern != "" {
			v.Add(paramFilter, field+":"+pattern)
		}
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v.Set(paramPageSize, strconv.Itoa(pageSize))
	v.Set(paramPageNo, strconv.Itoa(req.PageNo))
	order := req.Order
	if order != dto.OrderTimeDesc {
		order = dto.OrderTimeAsc
	}
	v.Set(paramOrder, order)
	if !req.TimeRange.Start.IsZero() {
		v.Set(paramTimeStart, FormatTime(req.TimeRange.Start))
	}
	if !req.TimeRange.End.IsZero() {
		v.Set(paramTimeEnd, FormatTime(req.TimeRange.End))
	}
	return v
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// CheckWindow rejects pages that end past MaxResultWindow. The product
// pageNo*pageSize is never computed, so huge page numbers cannot wrap.
func CheckWindow(pageNo, pageSize int) error {
	if pageNo < 0 || pageSize <= 0 {
		return fmt.Errorf("%w: page %d of size %d", ErrInvalidPaging, pageNo, pageSize)
	}
	if pageNo >= MaxResultWindow/pageSize {
		return fmt.Errorf("%w: page %d of size %d ends past record %d", ErrInvalidPaging, pageNo, pageSize, MaxResultWindow)
	}
	return nil
}

// Decode parses and validates the query parameters of a search request.
func Decode(v url.Values) (dto.LogSearchRequest, error) {
	req := dto.LogSearchRequest{
		Filter:   dto.SearchFilter{},
		Order:    dto.OrderTimeDesc,
		PageSize: DefaultPageSize,
	}

	if kind := v.Get(paramKind); kind != "" && kind != QueryKind {
		return req, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	for _, pair := range v[paramFilter] {
		field, pattern, ok := strings.Cut(pair, ":")
		if !ok || !dto.IsFilterField(field) {
			return req, fmt.Errorf("%w: %q", ErrInvalidFilter, pair)
		}
		if pattern == "" {
			continue
		}
		if _, dup := req.Filter[field]; dup {
			return req, fmt.Errorf("%w: %q given more than once", ErrInvalidFilter, field)
		}
		req.Filter[field] = pattern
	}

	if s := v.Get(paramPageSize); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size <= 0 || size > MaxPageSize {
			return req, fmt.Errorf("%w: pageSize %q", ErrInvalidPaging, s)
		}
		req.PageSize = size
	}
	if s := v.Get(paramPageNo); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 0 {
			return req, fmt.Errorf("%w: pageNo %q", ErrInvalidPaging, s)
		}
		req.PageNo = page
	}
	if err := CheckWindow(req.PageNo, req.PageSize); err != nil {
		return req, err
	}

	switch order := v.Get(paramOrder); order {
	case "":
	case dto.OrderTimeAsc, dto.OrderTimeDesc:
		req.Order = order
	default:
		return req, fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}

	if s := v.Get(paramTimeStart); s != "" {
		t, err := util.ParseTimeFlexible(s)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
		}
		req.TimeRange.Start = t
	}
	if s := v.Get(paramTimeEnd); s != "" {
		t, err := util.ParseTimeFlexible(s)
		if err != nil {
			return req, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
		}
		req.TimeRange.End = t
	}
	if !req.TimeRange.Start.IsZero() && !req.TimeRange.End.IsZero() && req.TimeRange.End.Before(req.TimeRange.Start) {
		return req, fmt.Errorf("%w: timeEnd before timeStart", ErrInvalidTimeRange)
	}

	return req, nil
}
