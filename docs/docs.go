// Package docs holds the OpenAPI description served by gin-swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/logs/search": {
            "get": {
                "description": "Returns one page of request-info audit records matching every filter pair, ordered by time.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Search audit logs",
                "parameters": [
                    {"enum": ["reqinfo"], "type": "string", "description": "Search kind", "name": "q", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Filter pair field:pattern", "name": "fp", "in": "query"},
                    {"maximum": 1000, "minimum": 1, "type": "integer", "description": "Records per page (default: 100)", "name": "pageSize", "in": "query"},
                    {"minimum": 0, "type": "integer", "description": "Zero-based page index; the page must end within the first 10000 records", "name": "pageNo", "in": "query"},
                    {"enum": ["timeAsc", "timeDesc"], "type": "string", "description": "Sort order (default: timeDesc)", "name": "order", "in": "query"},
                    {"type": "string", "description": "Inclusive start, ISO 8601 or epoch milliseconds", "name": "timeStart", "in": "query"},
                    {"type": "string", "description": "Inclusive end, ISO 8601 or epoch milliseconds", "name": "timeEnd", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.LogSearchResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/model.Response"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/model.Response"}},
                    "503": {"description": "Log search is not enabled", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/session/features": {
            "get": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "List enabled features",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.FeaturesResponse"}}
                }
            }
        },
        "/api/v1/audit": {
            "post": {
                "security": [{"Bearer": []}],
                "description": "Webhook for an object storage HTTP audit target. Accepts one entry or a JSON array of entries.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Ingest audit entries",
                "parameters": [
                    {"description": "Audit entry", "name": "entry", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AuditEntry"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.IngestResponse"}},
                    "400": {"description": "Malformed entry", "schema": {"$ref": "#/definitions/model.Response"}},
                    "403": {"description": "Invalid token", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/console/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Open a console search session",
                "parameters": [
                    {"description": "Initial filter, time range and sort", "name": "session", "in": "body", "schema": {"$ref": "#/definitions/dto.SessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}},
                    "429": {"description": "Too many open sessions", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Get the view of a session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            },
            "delete": {
                "tags": ["console"],
                "summary": "Close a session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}/filter": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Replace the filter and time range",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Filter and time range", "name": "filter", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}/sort": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Change the sort direction",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Sort direction", "name": "sort", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SortRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PageResponse"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}/load": {
            "post": {
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Start the search from page 0",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PageResponse"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}/next": {
            "post": {
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Load the next page",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PageResponse"}}
                }
            }
        },
        "/api/v1/console/sessions/{id}/columns/{column}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["console"],
                "summary": "Toggle a visible column",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Column ID", "name": "column", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}}
                }
            }
        },
        "/api/v1/logs/presets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "List saved searches",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.PresetResponse"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Save a search",
                "parameters": [
                    {"description": "Saved search", "name": "preset", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PresetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.PresetResponse"}},
                    "409": {"description": "Name already in use", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        },
        "/api/v1/logs/presets/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presets"],
                "summary": "Get a saved search",
                "parameters": [{"type": "integer", "description": "Preset ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PresetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            },
            "delete": {
                "tags": ["presets"],
                "summary": "Delete a saved search",
                "parameters": [{"type": "integer", "description": "Preset ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/model.Response"}}
                }
            }
        }
    },
    "definitions": {
        "model.AuditRecord": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "api_name": {"type": "string"},
                "access_key": {"type": "string"},
                "bucket": {"type": "string"},
                "object": {"type": "string"},
                "remote_host": {"type": "string"},
                "request_id": {"type": "string"},
                "user_agent": {"type": "string"},
                "response_status": {"type": "string"},
                "response_status_code": {"type": "integer"},
                "request_content_length": {"type": "integer"},
                "response_content_length": {"type": "integer"},
                "time_to_response_ns": {"type": "integer"}
            }
        },
        "model.Response": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "data": {}
            }
        },
        "dto.LogSearchResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/model.AuditRecord"}}
            }
        },
        "dto.FeaturesResponse": {
            "type": "object",
            "properties": {
                "features": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.AuditAPI": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "bucket": {"type": "string"},
                "object": {"type": "string"},
                "status": {"type": "string"},
                "statusCode": {"type": "integer"},
                "rx": {"type": "integer"},
                "tx": {"type": "integer"},
                "timeToResponse": {"type": "string"},
                "timeToResponseInNS": {"type": "string"}
            }
        },
        "dto.AuditEntry": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "deploymentid": {"type": "string"},
                "time": {"type": "string"},
                "trigger": {"type": "string"},
                "api": {"$ref": "#/definitions/dto.AuditAPI"},
                "remotehost": {"type": "string"},
                "requestID": {"type": "string"},
                "userAgent": {"type": "string"},
                "accessKey": {"type": "string"}
            }
        },
        "dto.IngestResponse": {
            "type": "object",
            "properties": {
                "accepted": {"type": "integer"}
            }
        },
        "dto.TimeRange": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"}
            }
        },
        "dto.SortSpec": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "direction": {"type": "string", "enum": ["ASC", "DESC"]}
            }
        },
        "dto.SortRequest": {
            "type": "object",
            "required": ["direction"],
            "properties": {
                "direction": {"type": "string", "enum": ["ASC", "DESC"]}
            }
        },
        "dto.SessionRequest": {
            "type": "object",
            "properties": {
                "filter": {"type": "object", "additionalProperties": {"type": "string"}},
                "time_range": {"$ref": "#/definitions/dto.TimeRange"},
                "sort": {"$ref": "#/definitions/dto.SortSpec"}
            }
        },
        "dto.SessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/model.AuditRecord"}},
                "is_loading": {"type": "boolean"},
                "visible_columns": {"type": "array", "items": {"type": "string"}},
                "sort": {"$ref": "#/definitions/dto.SortSpec"},
                "cursor": {"type": "integer"},
                "filter": {"type": "object", "additionalProperties": {"type": "string"}},
                "time_range": {"$ref": "#/definitions/dto.TimeRange"},
                "last_error": {"type": "string"}
            }
        },
        "dto.PageResponse": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["loaded", "busy", "disabled", "stale", "failed"]},
                "page": {"type": "integer"},
                "count": {"type": "integer"},
                "error": {"type": "string"},
                "view": {"$ref": "#/definitions/dto.SessionView"}
            }
        },
        "dto.PresetRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "filter": {"type": "object", "additionalProperties": {"type": "string"}},
                "time_range": {"$ref": "#/definitions/dto.TimeRange"},
                "sort": {"$ref": "#/definitions/dto.SortSpec"}
            }
        },
        "dto.PresetResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "filter": {"type": "object", "additionalProperties": {"type": "string"}},
                "time_range": {"$ref": "#/definitions/dto.TimeRange"},
                "sort": {"$ref": "#/definitions/dto.SortSpec"},
                "created_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Audit webhook token, raw or with the Bearer prefix.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Audit Log Search API",
	Description:      "Paginated search over object storage audit logs, with webhook ingest, console sessions and saved searches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
