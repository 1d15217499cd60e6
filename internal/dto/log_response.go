package dto

import (
	"time"

	"audit-log-search/internal/model"
)

// Filterable fields, in the order filter pairs are emitted.
const (
	FieldBucket         = "bucket"
	FieldObject         = "object"
	FieldAPIName        = "api_name"
	FieldAccessKey      = "access_key"
	FieldRequestID      = "request_id"
	FieldUserAgent      = "user_agent"
	FieldResponseStatus = "response_status"
)

var FilterFields = []string{
	FieldBucket,
	FieldObject,
	FieldAPIName,
	FieldAccessKey,
	FieldRequestID,
	FieldUserAgent,
	FieldResponseStatus,
}

// IsFilterField reports whether name is one of FilterFields.
func IsFilterField(name string) bool {
	for _, f := range FilterFields {
		if f == name {
			return true
		}
	}
	return false
}

// SearchFilter maps a filter field to a wildcard pattern. Empty patterns are
// treated as absent.
type SearchFilter map[string]string

// Equal compares two filters ignoring empty patterns.
func (f SearchFilter) Equal(other SearchFilter) bool {
	for _, field := range FilterFields {
		if f[field] != other[field] {
			return false
		}
	}
	return true
}

// Clone returns a copy holding only the non-empty known predicates.
func (f SearchFilter) Clone() SearchFilter {
	out := make(SearchFilter, len(f))
	for _, field := range FilterFields {
		if v := f[field]; v != "" {
			out[field] = v
		}
	}
	return out
}

// TimeRange bounds are inclusive; a zero bound is unbounded.
type TimeRange struct {
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// SortSpec always sorts on the record time.
type SortSpec struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

func DefaultSort() SortSpec {
	return SortSpec{Field: "time", Direction: SortDesc}
}

// Order tokens understood by the search endpoint.
const (
	OrderTimeAsc  = "timeAsc"
	OrderTimeDesc = "timeDesc"
)

// OrderToken maps the sort direction to the server token; anything other
// than DESC sorts ascending.
func (s SortSpec) OrderToken() string {
	if s.Direction == SortDesc {
		return OrderTimeDesc
	}
	return OrderTimeAsc
}

// LogSearchRequest is one page request against the audit log search.
type LogSearchRequest struct {
	Filter    SearchFilter
	TimeRange TimeRange
	Order     string
	PageNo    int
	PageSize  int
}

type LogSearchResponse struct {
	Results []model.AuditRecord `json:"results"`
}

type FeaturesResponse struct {
	Features []string `json:"features"`
}
