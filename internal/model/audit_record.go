package model

import "time"

// AuditRecord is one request-info entry returned by the audit log search.
type AuditRecord struct {
	Time                  time.Time `json:"time"`
	APIName               string    `json:"api_name"`
	AccessKey             string    `json:"access_key"`
	Bucket                string    `json:"bucket"`
	Object                string    `json:"object"`
	RemoteHost            string    `json:"remote_host"`
	RequestID             string    `json:"request_id"`
	UserAgent             string    `json:"user_agent"`
	ResponseStatus        string    `json:"response_status"`
	ResponseStatusCode    int       `json:"response_status_code"`
	RequestContentLength  int64     `json:"request_content_length"`
	ResponseContentLength int64     `json:"response_content_length"`
	TimeToResponseNs      int64     `json:"time_to_response_ns"`
}

// Field returns the string value of a filterable field, ok is false for
// fields that cannot be filtered on.
func (r AuditRecord) Field(name string) (string, bool) {
	switch name {
	case "bucket":
		return r.Bucket, true
	case "object":
		return r.Object, true
	case "api_name":
		return r.APIName, true
	case "access_key":
		return r.AccessKey, true
	case "request_id":
		return r.RequestID, true
	case "user_agent":
		return r.UserAgent, true
	case "response_status":
		return r.ResponseStatus, true
	}
	return "", false
}
