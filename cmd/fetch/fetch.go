package fetch

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/tcventanilla/cmd/env"
	"github.com/sig-0/tcventanilla/export"
	"github.com/sig-0/tcventanilla/provider/bccr"
)

const dateLayout = "2006-01-02"

var errInvalidDate = fmt.Errorf("dates must be in YYYY-MM-DD format")

// fetchCfg wraps the fetch configuration
type fetchCfg struct {
	start  string
	end    string
	output string
	url    string

	startField  string
	endField    string
	submitField string

	timeout time.Duration
}

// NewFetchCmd creates the fetch subcommand
func NewFetchCmd() *ffcli.Command {
	cfg := &fetchCfg{}

	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "fetch",
		ShortUsage: "fetch -start <date> -end <date> [flags]",
		LongHelp:   "Downloads the ventanilla table for a date range into a CSV file",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *fetchCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.start,
		"start",
		"",
		"the range start date, YYYY-MM-DD",
	)

	fs.StringVar(
		&c.end,
		"end",
		"",
		"the range end date, YYYY-MM-DD",
	)

	fs.StringVar(
		&c.output,
		"output",
		"tcv.csv",
		"the output CSV path",
	)

	fs.StringVar(
		&c.url,
		"url",
		bccr.DefaultURL,
		"the consultation page URL",
	)

	fs.StringVar(
		&c.startField,
		"start-field",
		"",
		"explicit name of the start date input (skips detection)",
	)

	fs.StringVar(
		&c.endField,
		"end-field",
		"",
		"explicit name of the end date input (skips detection)",
	)

	fs.StringVar(
		&c.submitField,
		"submit-field",
		"",
		"explicit name of the submit control (skips detection)",
	)

	fs.DurationVar(
		&c.timeout,
		"timeout",
		time.Second*30,
		"the per-request HTTP timeout",
	)
}

// exec executes the fetch command
func (c *fetchCfg) exec(ctx context.Context, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	start, err := parseDate(c.start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	end, err := parseDate(c.end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	client := bccr.NewClient(c.url, c.timeout)

	table, err := client.Query(ctx, &bccr.QueryRequest{
		Start: start,
		End:   end,
		Overrides: bccr.Overrides{
			StartField:  c.startField,
			EndField:    c.endField,
			SubmitField: c.submitField,
		},
	})
	if err != nil {
		return fmt.Errorf("unable to fetch the ventanilla table: %w", err)
	}

	if err := export.WriteFile(c.output, table); err != nil {
		return err
	}

	logger.Info(
		"ventanilla table saved",
		"output", c.output,
		"rows", len(table.Rows),
	)

	return nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w (missing value)", errInvalidDate)
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, raw)
	}

	return t.UTC(), nil
}
