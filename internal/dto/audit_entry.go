package dto

import "encoding/json"

// AuditEntry is the document an object storage server's HTTP audit target
// posts for every request it serves.
type AuditEntry struct {
	Version      string   `json:"version"`
	DeploymentID string   `json:"deploymentid,omitempty"`
	Time         string   `json:"time"`
	Trigger      string   `json:"trigger,omitempty"`
	API          AuditAPI `json:"api"`
	RemoteHost   string   `json:"remotehost,omitempty"`
	RequestID    string   `json:"requestID,omitempty"`
	UserAgent    string   `json:"userAgent,omitempty"`
	AccessKey    string   `json:"accessKey,omitempty"`
}

type AuditAPI struct {
	Name               string      `json:"name,omitempty"`
	Bucket             string      `json:"bucket,omitempty"`
	Object             string      `json:"object,omitempty"`
	Status             string      `json:"status,omitempty"`
	StatusCode         int         `json:"statusCode,omitempty"`
	InputBytes         int64       `json:"rx"`
	OutputBytes        int64       `json:"tx"`
	TimeToResponse     string      `json:"timeToResponse,omitempty"`
	TimeToResponseInNS json.Number `json:"timeToResponseInNS,omitempty"`
}

// IsEmpty reports an entry without any request data, such as the "{}" probe
// a target sends when it is initialised.
func (e AuditEntry) IsEmpty() bool {
	return e.Time == "" && e.API.Name == "" && e.RequestID == ""
}

type IngestResponse struct {
	Accepted int `json:"accepted"`
}
