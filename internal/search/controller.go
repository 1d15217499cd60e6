// Package search holds the paginated audit log search controller: it owns
// the filter, sort and page cursor of a search session, guards against
// overlapping fetches and accumulates the pages it receives.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"audit-log-search/internal/dto"
	"audit-log-search/internal/model"

	"github.com/rs/zerolog/log"
)

// PageSize is the number of records requested per page.
const PageSize = 100

type Outcome int

const (
	// Loaded means the page was fetched and merged into the session.
	Loaded Outcome = iota
	// Busy means another fetch of the session was still pending.
	Busy
	// Disabled means the search feature is off; no call was made.
	Disabled
	// Stale means the session was reset while the fetch was pending and
	// its response was dropped.
	Stale
	// Failed means the service returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Busy:
		return "busy"
	case Disabled:
		return "disabled"
	case Stale:
		return "stale"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// PageResult is the single value delivered by a fetch future.
type PageResult struct {
	Generation uint64
	Page       int
	Records    []model.AuditRecord
	Outcome    Outcome
	Err        error
}

// View is a snapshot of the session for presentation. Version grows with
// every snapshot taken, so a larger Version is a newer state.
type View struct {
	Version        uint64
	Records        []model.AuditRecord
	IsLoading      bool
	InFlight       bool
	VisibleColumns []string
	Sort           dto.SortSpec
	Cursor         int
	Filter         dto.SearchFilter
	TimeRange      dto.TimeRange
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithPresenter(p Presenter) Option {
	return func(c *Controller) { c.presenter = p }
}

// WithFeatureGate sets the check consulted before every fetch.
func WithFeatureGate(enabled func() bool) Option {
	return func(c *Controller) { c.enabled = enabled }
}

func WithPageSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithColumns sets the initial visible columns; unknown ids are dropped.
func WithColumns(cols []string) Option {
	return func(c *Controller) {
		c.columns = c.columns[:0]
		for _, col := range cols {
			if IsColumn(col) {
				c.columns = append(c.columns, col)
			}
		}
	}
}

func WithSort(s dto.SortSpec) Option {
	return func(c *Controller) { c.sort = normalizeSort(s) }
}

// Controller is safe for concurrent use. The service is called outside the
// session lock.
type Controller struct {
	svc       Service
	notifier  Notifier
	presenter Presenter
	enabled   func() bool
	pageSize  int

	mu         sync.Mutex
	filter     dto.SearchFilter
	timeRange  dto.TimeRange
	sort       dto.SortSpec
	cursor     int
	records    []model.AuditRecord
	inFlight   bool
	loading    bool
	dirty      bool
	generation uint64
	version    uint64
	columns    []string

	// presentMu serialises presenter calls; presented is the last Version
	// handed out.
	presentMu sync.Mutex
	presented uint64
}

func NewController(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:      svc,
		enabled:  func() bool { return true },
		pageSize: PageSize,
		filter:   dto.SearchFilter{},
		sort:     dto.DefaultSort(),
		records:  []model.AuditRecord{},
		columns:  append([]string(nil), DefaultColumns...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ApplyFilter replaces the filter. When it differs from the current one the
// cursor goes back to 0 and the next trigger starts a fresh search; nothing
// is fetched here.
func (c *Controller) ApplyFilter(f dto.SearchFilter) bool {
	c.mu.Lock()
	if c.filter.Equal(f) {
		c.mu.Unlock()
		return false
	}
	c.filter = f.Clone()
	c.invalidateLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	c.present(view)
	return true
}

// ApplyTimeRange behaves like ApplyFilter for the time bounds.
func (c *Controller) ApplyTimeRange(tr dto.TimeRange) bool {
	tr = dto.TimeRange{Start: utc(tr.Start), End: utc(tr.End)}
	c.mu.Lock()
	if c.timeRange.Start.Equal(tr.Start) && c.timeRange.End.Equal(tr.End) {
		c.mu.Unlock()
		return false
	}
	c.timeRange = tr
	c.invalidateLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	c.present(view)
	return true
}

// ApplySort replaces the sort and immediately reloads page 0, replacing the
// accumulated records.
func (c *Controller) ApplySort(ctx context.Context, s dto.SortSpec) <-chan PageResult {
	c.mu.Lock()
	c.sort = normalizeSort(s)
	c.resetLocked()
	return c.startLocked(ctx)
}

// TriggerInitialLoad clears the session and fetches page 0.
func (c *Controller) TriggerInitialLoad(ctx context.Context) <-chan PageResult {
	c.mu.Lock()
	c.resetLocked()
	return c.startLocked(ctx)
}

// LoadNextPage fetches the page at the cursor and appends it. It returns a
// Busy result right away when a fetch of this session is pending.
func (c *Controller) LoadNextPage(ctx context.Context) <-chan PageResult {
	c.mu.Lock()
	if c.enabled() {
		if c.inFlight {
			res := PageResult{Generation: c.generation, Page: c.cursor, Outcome: Busy}
			c.mu.Unlock()
			return resolved(res)
		}
		if c.dirty {
			c.resetLocked()
		}
	}
	return c.startLocked(ctx)
}

// ToggleColumn flips the visibility of a column and returns the new set.
func (c *Controller) ToggleColumn(id string) ([]string, error) {
	if !IsColumn(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, id)
	}
	c.mu.Lock()
	c.columns = toggleColumn(c.columns, id)
	cols := append([]string(nil), c.columns...)
	view := c.viewLocked()
	c.mu.Unlock()

	c.present(view)
	return cols, nil
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// invalidateLocked supersedes any pending fetch and marks the session dirty.
// Records stay visible until the next trigger.
func (c *Controller) invalidateLocked() {
	c.cursor = 0
	c.generation++
	c.inFlight = false
	c.loading = false
	c.dirty = true
}

func (c *Controller) resetLocked() {
	c.cursor = 0
	c.records = []model.AuditRecord{}
	c.generation++
	c.inFlight = false
	c.dirty = false
}

// startLocked is entered with c.mu held and releases it.
func (c *Controller) startLocked(ctx context.Context) <-chan PageResult {
	if !c.enabled() {
		c.loading = false
		res := PageResult{Generation: c.generation, Page: c.cursor, Outcome: Disabled}
		view := c.viewLocked()
		c.mu.Unlock()

		c.present(view)
		return resolved(res)
	}

	c.inFlight = true
	c.loading = true
	gen := c.generation
	req := dto.LogSearchRequest{
		Filter:    c.filter.Clone(),
		TimeRange: c.timeRange,
		Order:     c.sort.OrderToken(),
		PageNo:    c.cursor,
		PageSize:  c.pageSize,
	}
	view := c.viewLocked()
	c.mu.Unlock()

	c.present(view)

	out := make(chan PageResult, 1)
	go func() {
		defer close(out)
		out <- c.fetch(ctx, gen, req)
	}()
	return out
}

func (c *Controller) fetch(ctx context.Context, gen uint64, req dto.LogSearchRequest) PageResult {
	resp, err := c.svc.Search(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		log.Debug().Uint64("generation", gen).Int("page", req.PageNo).Msg("Dropping stale search response")
		return PageResult{Generation: gen, Page: req.PageNo, Outcome: Stale}
	}
	c.inFlight = false
	c.loading = false

	if err != nil {
		view := c.viewLocked()
		c.mu.Unlock()

		log.Error().Err(err).Int("page", req.PageNo).Msg("Audit log search failed")
		if c.notifier != nil {
			c.notifier.NotifyError(err)
		}
		c.present(view)
		return PageResult{Generation: gen, Page: req.PageNo, Outcome: Failed, Err: err}
	}

	var records []model.AuditRecord
	if resp != nil {
		records = resp.Results
	}
	c.records = append(c.records, records...)
	c.cursor++
	view := c.viewLocked()
	c.mu.Unlock()

	log.Debug().
		Int("page", req.PageNo).
		Int("returned", len(records)).
		Int("accumulated", len(view.Records)).
		Msg("Audit log page loaded")
	c.present(view)
	return PageResult{Generation: gen, Page: req.PageNo, Records: records, Outcome: Loaded}
}

// viewLocked takes a new snapshot and bumps the version.
func (c *Controller) viewLocked() View {
	c.version++
	return View{
		Version:        c.version,
		Records:        copyRecords(c.records),
		IsLoading:      c.loading,
		InFlight:       c.inFlight,
		VisibleColumns: append([]string(nil), c.columns...),
		Sort:           c.sort,
		Cursor:         c.cursor,
		Filter:         c.filter.Clone(),
		TimeRange:      c.timeRange,
	}
}

// present hands view to the presenter unless a newer view already went
// out. Snapshots are taken under mu but presented after it is released, so
// fetch goroutines and callers can race here.
func (c *Controller) present(view View) {
	if c.presenter == nil {
		return
	}
	c.presentMu.Lock()
	defer c.presentMu.Unlock()
	if view.Version <= c.presented {
		log.Debug().Uint64("version", view.Version).Uint64("presented", c.presented).Msg("Skipping outdated view")
		return
	}
	c.presented = view.Version
	c.presenter.Present(view)
}

func copyRecords(records []model.AuditRecord) []model.AuditRecord {
	out := make([]model.AuditRecord, len(records))
	copy(out, records)
	return out
}

func resolved(res PageResult) <-chan PageResult {
	out := make(chan PageResult, 1)
	out <- res
	close(out)
	return out
}

func normalizeSort(s dto.SortSpec) dto.SortSpec {
	s.Field = "time"
	if s.Direction != dto.SortDesc {
		s.Direction = dto.SortAsc
	}
	return s
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
