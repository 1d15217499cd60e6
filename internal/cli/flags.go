package cli

import (
	"io"

	"audit-log-search/internal/prefs"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Server  string `long:"server" short:"s" env:"LOGSEARCH_SERVER" description:"Base URL of the log search service" default:"http://localhost:8080"`
	Token   string `long:"token" env:"LOGSEARCH_TOKEN" description:"Bearer token sent with every request"`
	Prefs   string `long:"prefs" description:"Path to the preferences file"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" short:"v" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

func (g *GlobalFlags) prefsManager() prefs.Manager {
	if g.Prefs != "" {
		return prefs.NewManager(g.Prefs)
	}
	return prefs.NewManager(prefs.DefaultPath())
}

// SearchCommand pages through the audit log with a set of filter patterns.
type SearchCommand struct {
	Bucket         string   `long:"bucket" description:"Bucket pattern (* any run, . one character, \\ escapes)"`
	Object         string   `long:"object" description:"Object pattern"`
	APIName        string   `long:"api" description:"API name pattern, e.g. PutObject"`
	AccessKey      string   `long:"access-key" description:"Access key pattern"`
	RequestID      string   `long:"request-id" description:"Request ID pattern"`
	UserAgent      string   `long:"user-agent" description:"User agent pattern"`
	ResponseStatus string   `long:"status" description:"Response status pattern, e.g. OK"`
	Since          string   `long:"since" description:"Only records newer than duration (e.g. 15m, 24h, 7d)"`
	Start          string   `long:"start" description:"Inclusive start, ISO 8601 or epoch milliseconds"`
	End            string   `long:"end" description:"Inclusive end, ISO 8601 or epoch milliseconds"`
	Order          string   `long:"order" description:"Sort direction on time" choice:"asc" choice:"desc" default:"desc"`
	Pages          int      `long:"pages" description:"Number of pages of 100 records to load" default:"1"`
	Columns        []string `long:"column" description:"Visible column (repeatable, overrides saved preferences)"`

	globals *GlobalFlags
	out     io.Writer
}

// ColumnsCommand shows or toggles the saved visible columns.
type ColumnsCommand struct {
	Toggle []string `long:"toggle" description:"Column to show or hide (repeatable)"`
	Reset  bool     `long:"reset" description:"Restore the default columns"`

	globals *GlobalFlags
	out     io.Writer
}

// FeaturesCommand prints the features the server reports.
type FeaturesCommand struct {
	globals *GlobalFlags
	out     io.Writer
}
