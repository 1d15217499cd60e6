package search

import (
	"errors"
	"strconv"

	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
)

var ErrUnknownColumn = errors.New("unknown column")

// AllColumns lists every column a record can be displayed with.
var AllColumns = []string{
	"time",
	"api_name",
	"access_key",
	"bucket",
	"object",
	"remote_host",
	"request_id",
	"user_agent",
	"response_status",
	"request_content_length",
	"response_content_length",
	"time_to_response_ns",
}

// DefaultColumns is the initial visible column set.
var DefaultColumns = []string{
	"time",
	"api_name",
	"access_key",
	"bucket",
	"object",
	"remote_host",
	"request_id",
	"user_agent",
	"response_status",
}

func IsColumn(id string) bool {
	for _, c := range AllColumns {
		if c == id {
			return true
		}
	}
	return false
}

// toggleColumn removes id from cols when present and appends it otherwise.
func toggleColumn(cols []string, id string) []string {
	out := make([]string, 0, len(cols)+1)
	found := false
	for _, c := range cols {
		if c == id {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

// ColumnValue renders the cell of record r in column id.
func ColumnValue(r model.AuditRecord, id string) string {
	switch id {
	case "time":
		return logquery.FormatTime(r.Time)
	case "remote_host":
		return r.RemoteHost
	case "request_content_length":
		return strconv.FormatInt(r.RequestContentLength, 10)
	case "response_content_length":
		return strconv.FormatInt(r.ResponseContentLength, 10)
	case "time_to_response_ns":
		return strconv.FormatInt(r.TimeToResponseNs, 10)
	}
	v, _ := r.Field(id)
	return v
}
