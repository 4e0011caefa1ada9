package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cyclone1070/locatecat/internal/output"
	"github.com/Cyclone1070/locatecat/internal/score"
	"github.com/Cyclone1070/locatecat/internal/session"
)

type queryOptions struct {
	limit   int
	timeout time.Duration
	plain   bool
}

func newQueryCmd(a *app) *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query <terms...>",
		Short: "Run one search and print ranked results",
		Long: `Run a single search and print the results, best match first.

The terms are joined with spaces into one query.

Examples:
  locatecat query bashrc           # Ranked table
  locatecat query -n 5 sh          # Top five matches
  locatecat query --plain .conf    # Paths only, one per line`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum results to print (0 for all)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "give up waiting for the index after this long")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print paths only")
	return cmd
}

func (a *app) runQuery(ctx context.Context, query string, opts queryOptions) error {
	if opts.limit < 0 {
		return &output.CLIError{Summary: "--limit must be >= 0", ExitCode: output.ExitUsageError}
	}

	cat, err := a.catalog(a.logger)
	if err != nil {
		return err
	}
	if !cat.IsAvailable(ctx) {
		return errUnavailable()
	}

	var results []score.Candidate
	s := cat.NewSearch(func(_ *session.Session, confidence float64, t session.Target) {
		results = append(results, score.Candidate{Path: t.Path, Confidence: confidence})
	})
	defer s.Close()

	if err := s.Append(ctx, query); err != nil {
		return err
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	if _, err := s.Drain(ctx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		a.printer.Warning("search timed out after %s; results are partial", opts.timeout)
	}

	score.Sort(results)
	total := len(results)
	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}
	a.logger.Debug("query finished", "query", query, "results", total, "stats", s.Stats())

	if opts.plain {
		for _, r := range results {
			fmt.Fprintln(a.printer.Out(), r.Path)
		}
		return nil
	}

	if total == 0 {
		a.printer.Info("No matches for %q", query)
		return nil
	}

	table := output.NewTable(a.printer.Out(), "Score", "Path", "Type")
	for _, r := range results {
		mime := session.NewTarget(r.Path).MimeType
		table.AddRow(fmt.Sprintf("%.2f", r.Confidence), a.printer.Highlight(query, r.Path), mime)
	}
	if err := table.Render(); err != nil {
		return err
	}
	if total > len(results) {
		a.printer.Info("%s", a.printer.Dim(fmt.Sprintf("%d of %d results shown", len(results), total)))
	}
	return nil
}
