package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"audit-log-search/internal/client"
	"audit-log-search/internal/dto"
	"audit-log-search/internal/notify"
	"audit-log-search/internal/search"
	"audit-log-search/internal/util"

	"github.com/rs/zerolog/log"
)

var ErrSearchDisabled = errors.New("log search is not enabled on the server")

// parseSince accepts Go durations plus a "d" suffix for days.
func parseSince(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func (c *SearchCommand) filter() dto.SearchFilter {
	return dto.SearchFilter{
		dto.FieldBucket:         c.Bucket,
		dto.FieldObject:         c.Object,
		dto.FieldAPIName:        c.APIName,
		dto.FieldAccessKey:      c.AccessKey,
		dto.FieldRequestID:      c.RequestID,
		dto.FieldUserAgent:      c.UserAgent,
		dto.FieldResponseStatus: c.ResponseStatus,
	}.Clone()
}

func (c *SearchCommand) timeRange(now time.Time) (dto.TimeRange, error) {
	var tr dto.TimeRange
	if c.Since != "" && c.Start != "" {
		return tr, errors.New("--since and --start are mutually exclusive")
	}
	if c.Since != "" {
		d, err := parseSince(c.Since)
		if err != nil {
			return tr, err
		}
		tr.Start = now.Add(-d).UTC()
	}
	if c.Start != "" {
		t, err := util.ParseTimeFlexible(c.Start)
		if err != nil {
			return tr, fmt.Errorf("invalid --start: %w", err)
		}
		tr.Start = t
	}
	if c.End != "" {
		t, err := util.ParseTimeFlexible(c.End)
		if err != nil {
			return tr, fmt.Errorf("invalid --end: %w", err)
		}
		tr.End = t
	}
	return tr, nil
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	if c.Pages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}
	tr, err := c.timeRange(time.Now())
	if err != nil {
		return err
	}

	columns, err := c.visibleColumns()
	if err != nil {
		return err
	}

	svc, err := client.NewLogSearchClient(c.globals.Server, client.WithToken(c.globals.Token))
	if err != nil {
		return err
	}
	ctx := context.Background()
	enabled, err := svc.SearchEnabled(ctx)
	if err != nil {
		return fmt.Errorf("read server features: %s", notify.Message(err))
	}

	sort := dto.DefaultSort()
	if c.Order == "asc" {
		sort.Direction = dto.SortAsc
	}
	controller := search.NewController(svc,
		search.WithNotifier(notify.NewGlobalLogger()),
		search.WithFeatureGate(func() bool { return enabled }),
		search.WithSort(sort),
		search.WithColumns(columns),
	)
	controller.ApplyFilter(c.filter())
	controller.ApplyTimeRange(tr)

	res := <-controller.TriggerInitialLoad(ctx)
	for page := 1; page < c.Pages && res.Outcome == search.Loaded && len(res.Records) == search.PageSize; page++ {
		res = <-controller.LoadNextPage(ctx)
	}

	switch res.Outcome {
	case search.Disabled:
		return ErrSearchDisabled
	case search.Failed:
		return fmt.Errorf("search failed: %s", notify.Message(res.Err))
	}

	view := controller.View()
	log.Debug().Int("records", len(view.Records)).Int("pages", view.Cursor).Msg("Search finished")
	if c.globals.JSON {
		return c.printJSON(view)
	}
	return c.printTable(view)
}

func (c *SearchCommand) visibleColumns() ([]string, error) {
	if len(c.Columns) > 0 {
		for _, col := range c.Columns {
			if !search.IsColumn(col) {
				return nil, fmt.Errorf("%w: %q", search.ErrUnknownColumn, col)
			}
		}
		return c.Columns, nil
	}
	p, err := c.globals.prefsManager().Load()
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if len(p.VisibleColumns) == 0 {
		return search.DefaultColumns, nil
	}
	return p.VisibleColumns, nil
}

func (c *SearchCommand) printTable(view search.View) error {
	if len(view.Records) == 0 {
		fmt.Fprintln(c.out, "No audit records found.")
		return nil
	}
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	header := make([]string, len(view.VisibleColumns))
	for i, col := range view.VisibleColumns {
		header[i] = strings.ToUpper(col)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range view.Records {
		cells := make([]string, len(view.VisibleColumns))
		for i, col := range view.VisibleColumns {
			cells[i] = search.ColumnValue(r, col)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\n%d records, %d pages loaded\n", len(view.Records), view.Cursor)
	return nil
}

type jsonSearchOutput struct {
	Count   int                 `json:"count"`
	Pages   int                 `json:"pages"`
	Filter  dto.SearchFilter    `json:"filter"`
	Results []map[string]string `json:"results"`
}

// printJSON emits only the visible columns of every record.
func (c *SearchCommand) printJSON(view search.View) error {
	out := jsonSearchOutput{
		Count:   len(view.Records),
		Pages:   view.Cursor,
		Filter:  view.Filter,
		Results: make([]map[string]string, len(view.Records)),
	}
	for i, r := range view.Records {
		row := make(map[string]string, len(view.VisibleColumns))
		for _, col := range view.VisibleColumns {
			row[col] = search.ColumnValue(r, col)
		}
		out.Results[i] = row
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
