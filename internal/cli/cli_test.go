package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"
	"audit-log-search/internal/prefs"
)

type fakeServer struct {
	mu       sync.Mutex
	features []string
	total    int
	queries  []string
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/session/features", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.FeaturesResponse{Features: f.features})
	})
	mux.HandleFunc("/api/v1/logs/search", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.RawQuery)
		f.mu.Unlock()
		pageNo, _ := strconv.Atoi(r.URL.Query().Get("pageNo"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		results := []model.AuditRecord{}
		for i := pageNo * pageSize; i < f.total && i < (pageNo+1)*pageSize; i++ {
			results = append(results, model.AuditRecord{
				Time:      base.Add(-time.Duration(i) * time.Second),
				Bucket:    "photos",
				APIName:   "PutObject",
				RequestID: fmt.Sprintf("req-%03d", i),
			})
		}
		json.NewEncoder(w).Encode(dto.LogSearchResponse{Results: results})
	})
	return mux
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := RunWithArgs("test", args, &out)
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "logsearch test\n", out)
}

func TestSubcommandsRecognized(t *testing.T) {
	for _, name := range []string{"search", "columns", "features"} {
		parser, _, _ := buildParser(&bytes.Buffer{})
		assert.NotNil(t, parser.Find(name), name)
	}
}

func TestSearchLoadsRequestedPages(t *testing.T) {
	fake := &fakeServer{features: []string{"log-search"}, total: 150}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")

	out, err := runCLI(t, "--server", srv.URL, "--prefs", prefsPath, "--json",
		"search", "--bucket", "photo*", "--pages", "3", "--column", "request_id")

	require.NoError(t, err)
	var res jsonSearchOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 150, res.Count)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "req-000", res.Results[0]["request_id"])
	assert.Equal(t, "req-149", res.Results[149]["request_id"])
	assert.Len(t, res.Results[0], 1)

	require.Len(t, fake.queries, 2, "a short page ends the search")
	assert.Contains(t, fake.queries[0], "fp=bucket%3Aphoto%2A")
	assert.Contains(t, fake.queries[0], "order=timeDesc")
	assert.Contains(t, fake.queries[1], "pageNo=1")
}

func TestSearchTableOutput(t *testing.T) {
	fake := &fakeServer{features: []string{"log-search"}, total: 2}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, prefs.NewManager(prefsPath).Save(prefs.Preferences{VisibleColumns: []string{"bucket", "request_id"}}))

	out, err := runCLI(t, "--server", srv.URL, "--prefs", prefsPath, "search", "--order", "asc")

	require.NoError(t, err)
	assert.Contains(t, out, "BUCKET  REQUEST_ID")
	assert.Contains(t, out, "photos  req-000")
	assert.Contains(t, out, "2 records, 1 pages loaded")
	assert.Contains(t, fake.queries[0], "order=timeAsc")
}

func TestSearchDisabledServer(t *testing.T) {
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	_, err := runCLI(t, "--server", srv.URL, "--prefs", filepath.Join(t.TempDir(), "p.json"), "search")

	assert.ErrorIs(t, err, ErrSearchDisabled)
	assert.Empty(t, fake.queries)
}

func TestColumnsTogglePersists(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.json")

	out, err := runCLI(t, "--prefs", prefsPath, "columns", "--toggle", "user_agent", "--toggle", "time_to_response_ns")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] user_agent")
	assert.Contains(t, out, "[x] time_to_response_ns")

	p, err := prefs.NewManager(prefsPath).Load()
	require.NoError(t, err)
	assert.NotContains(t, p.VisibleColumns, "user_agent")
	assert.Equal(t, "time_to_response_ns", p.VisibleColumns[len(p.VisibleColumns)-1])

	_, err = runCLI(t, "--prefs", prefsPath, "columns", "--toggle", "owner")
	assert.Error(t, err)
}

func TestParseSince(t *testing.T) {
	d, err := parseSince("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = parseSince("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = parseSince("soon")
	assert.Error(t, err)
}
