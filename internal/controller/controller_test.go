package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/config"
	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"
	"audit-log-search/internal/service"
	"audit-log-search/internal/store"
)

type testServer struct {
	router  *gin.Engine
	backend repository.AuditBackend
}

func newTestServer(t *testing.T, searchEnabled bool, apiKey string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Search.Enabled = searchEnabled
	backend := store.NewInMemoryAuditStore()
	query := service.NewLogQueryService(backend, cfg)
	ingest := service.NewAuditIngestService(service.AuditPublisherFunc(backend.StoreRecords))
	sessions := service.NewSessionService(store.NewInMemorySessionStore(time.Minute, 8), query)

	router := gin.New()
	RegisterLogRoutes(router, NewLogController(query))
	RegisterAuditRoutes(router, NewAuditController(ingest, apiKey))
	RegisterSessionRoutes(router, NewSessionController(sessions))
	return &testServer{router: router, backend: backend}
}

func (s *testServer) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seed(t *testing.T, records ...model.AuditRecord) {
	t.Helper()
	require.NoError(t, s.backend.StoreRecords(context.Background(), records))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSearchLogsEndpoint(t *testing.T) {
	s := newTestServer(t, true, "")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.seed(t,
		model.AuditRecord{Time: base, Bucket: "mybucket-1", APIName: "PutObject"},
		model.AuditRecord{Time: base.Add(time.Minute), Bucket: "mybucket-2", APIName: "GetObject"},
		model.AuditRecord{Time: base.Add(2 * time.Minute), Bucket: "other", APIName: "PutObject"},
	)

	w := s.do(t, http.MethodGet, "/api/v1/logs/search?q=reqinfo&fp=bucket:mybucket-*&pageSize=100&pageNo=0&order=timeDesc", "")

	require.Equal(t, http.StatusOK, w.Code)
	res := decode[dto.LogSearchResponse](t, w)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "mybucket-2", res.Results[0].Bucket)
	assert.Equal(t, "mybucket-1", res.Results[1].Bucket)
}

func TestSearchLogsRejectsPagePastResultWindow(t *testing.T) {
	s := newTestServer(t, true, "")
	s.seed(t, model.AuditRecord{Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Bucket: "logs"})

	for _, pageNo := range []string{"9223372036854775807", "100"} {
		w := s.do(t, http.MethodGet, "/api/v1/logs/search?q=reqinfo&pageSize=100&pageNo="+pageNo, "")

		assert.Equal(t, http.StatusBadRequest, w.Code, pageNo)
		assert.Contains(t, decode[model.Response](t, w).Message, "invalid paging parameters")
	}
}

func TestSearchLogsEmptyResultIsArray(t *testing.T) {
	s := newTestServer(t, true, "")

	w := s.do(t, http.MethodGet, "/api/v1/logs/search?q=reqinfo", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())
}

func TestSearchLogsRejectsBadQuery(t *testing.T) {
	s := newTestServer(t, true, "")

	for _, target := range []string{
		"/api/v1/logs/search?q=errors",
		"/api/v1/logs/search?fp=owner:me",
		"/api/v1/logs/search?pageSize=5000",
		"/api/v1/logs/search?order=random",
		"/api/v1/logs/search?timeStart=soon",
	} {
		w := s.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.NotEmpty(t, decode[model.Response](t, w).Message, target)
	}
}

func TestSearchLogsDisabled(t *testing.T) {
	s := newTestServer(t, false, "")

	w := s.do(t, http.MethodGet, "/api/v1/logs/search?q=reqinfo", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "log search is not enabled", decode[model.Response](t, w).Message)
}

func TestFeaturesEndpoint(t *testing.T) {
	s := newTestServer(t, true, "")

	w := s.do(t, http.MethodGet, "/api/v1/session/features", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"log-search"}, decode[dto.FeaturesResponse](t, w).Features)
}

func TestAuditWebhook(t *testing.T) {
	s := newTestServer(t, true, "s3cr3t")
	entries := `[
		{"version":"1","time":"2024-05-01T10:00:00Z","api":{"name":"PutObject","bucket":"photos","statusCode":200,"timeToResponse":"3ms"},"requestID":"a"},
		{"version":"1","time":"2024-05-01T10:00:01Z","api":{"name":"GetObject","bucket":"photos"},"requestID":"b"}
	]`

	w := s.do(t, http.MethodPost, "/api/v1/audit", entries)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/audit", entries, "Authorization", "Bearer s3cr3t")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 2, decode[dto.IngestResponse](t, w).Accepted)

	w = s.do(t, http.MethodPost, "/api/v1/audit", `{}`, "Authorization", "s3cr3t")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 0, decode[dto.IngestResponse](t, w).Accepted)

	w = s.do(t, http.MethodPost, "/api/v1/audit", `{"time":`, "Authorization", "s3cr3t")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/logs/search?fp=api_name:PutObject", "")
	res := decode[dto.LogSearchResponse](t, w)
	require.Len(t, res.Results, 1)
	assert.Equal(t, int64(3000000), res.Results[0].TimeToResponseNs)
}

func TestConsoleSessionFlow(t *testing.T) {
	s := newTestServer(t, true, "")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		s.seed(t, model.AuditRecord{Time: base.Add(time.Duration(i) * time.Second), APIName: "PutObject"})
	}

	w := s.do(t, http.MethodPost, "/api/v1/console/sessions", `{"filter":{"api_name":"Put*"}}`)
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[dto.SessionView](t, w)
	require.NotEmpty(t, view.ID)
	path := "/api/v1/console/sessions/" + view.ID

	w = s.do(t, http.MethodPost, path+"/load", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.PageResponse](t, w)
	assert.Equal(t, "loaded", page.Outcome)
	assert.Equal(t, 100, page.Count)

	w = s.do(t, http.MethodPost, path+"/next", "")
	page = decode[dto.PageResponse](t, w)
	assert.Equal(t, 50, page.Count)
	assert.Len(t, page.View.Records, 150)

	w = s.do(t, http.MethodPut, path+"/sort", `{"direction":"ASC"}`)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[dto.PageResponse](t, w)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 1, page.View.Cursor)
	assert.True(t, page.View.Records[0].Time.Equal(base))

	w = s.do(t, http.MethodPut, path+"/filter", `{"filter":{"owner":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path+"/columns/remote_host", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[dto.SessionView](t, w).VisibleColumns, "remote_host")

	w = s.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
