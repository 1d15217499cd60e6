package cli

import (
	"context"
	"fmt"
	"strings"

	"audit-log-search/internal/client"
	"audit-log-search/internal/search"
)

// Execute toggles every --toggle column on the saved set and saves it; with
// no flags it only prints the current set.
func (c *ColumnsCommand) Execute(args []string) error {
	manager := c.globals.prefsManager()
	p, err := manager.Load()
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	cols := p.VisibleColumns
	if c.Reset || len(cols) == 0 {
		cols = search.DefaultColumns
	}
	controller := search.NewController(nil, search.WithColumns(cols))
	for _, col := range append(c.Toggle, args...) {
		if _, err := controller.ToggleColumn(col); err != nil {
			return err
		}
	}
	cols = controller.View().VisibleColumns

	if c.Reset || len(c.Toggle) > 0 || len(args) > 0 {
		p.VisibleColumns = cols
		if err := manager.Save(p); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
	}

	visible := make(map[string]bool, len(cols))
	for _, col := range cols {
		visible[col] = true
	}
	for _, col := range search.AllColumns {
		mark := " "
		if visible[col] {
			mark = "x"
		}
		fmt.Fprintf(c.out, "[%s] %s\n", mark, col)
	}
	return nil
}

func (c *FeaturesCommand) Execute(args []string) error {
	svc, err := client.NewLogSearchClient(c.globals.Server, client.WithToken(c.globals.Token))
	if err != nil {
		return err
	}
	features, err := svc.Features(context.Background())
	if err != nil {
		return err
	}
	if len(features) == 0 {
		fmt.Fprintln(c.out, "No features enabled.")
		return nil
	}
	fmt.Fprintln(c.out, strings.Join(features, "\n"))
	return nil
}
