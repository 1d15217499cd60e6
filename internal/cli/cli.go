// Package cli is the terminal client of the audit log search service.
package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commands struct {
	Search   *SearchCommand
	Columns  *ColumnsCommand
	Features *FeaturesCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "logsearch"
	parser.LongDescription = "Search, page through and display object storage audit logs."
	parser.CommandHandler = func(command goflags.Commander, args []string) error {
		setupLogging(globals.Verbose)
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	cmds := &commands{
		Search:   &SearchCommand{globals: &globals, out: out},
		Columns:  &ColumnsCommand{globals: &globals, out: out},
		Features: &FeaturesCommand{globals: &globals, out: out},
	}

	parser.AddCommand("search", "Search audit logs", "Search audit logs by field patterns and time range, loading one or more pages.", cmds.Search)
	parser.AddCommand("columns", "Show or toggle visible columns", "Show the saved visible columns, or toggle columns and save the result.", cmds.Columns)
	parser.AddCommand("features", "List server features", "List the features the log search service reports as enabled.", cmds.Features)

	return parser, &globals, cmds
}

func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

// Run is the main entry point using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil, os.Stdout)
}

// RunWithArgs parses args (or os.Args if nil) and executes the matched
// subcommand, writing its output to out.
func RunWithArgs(version string, args []string, out io.Writer) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(out, "logsearch %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}
