package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/travellive/tourquery/internal/domain"
	"github.com/travellive/tourquery/internal/domain/search/mode"
	"github.com/travellive/tourquery/internal/domain/tour"
)

type searchFlags struct {
	query string
	k     int
	json  bool
}

func (a *app) searchCmd() *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one tour search and print the result",
		Long: `Run one tour search against the configured database.

Examples:
  tourquery search -q "7 days of beaches in Thailand"
  tourquery search -q "hiking in the alps" -k 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSearch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), f)
		},
	}

	cmd.Flags().StringVarP(&f.query, "query", "q", "", "search query (required)")
	cmd.Flags().IntVarP(&f.k, "k", "k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&f.json, "json", false, "output structured tour records as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runSearch(ctx context.Context, stdout, stderr io.Writer, f *searchFlags) error {
	logger, err := a.newLogger("cli")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rt, err := newRuntime(a.cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.WithoutCancel(ctx)) }()

	k := a.resultLimit(f.k)
	m := mode.Markdown
	if f.json {
		m = mode.Structured
	}

	res, err := rt.tours.Search(ctx, f.query, k, m)
	if err != nil {
		printSearchError(stderr, err)
		return fmt.Errorf("search failed: %s", domain.Code(err))
	}

	if m == mode.Markdown {
		_, err = io.WriteString(stdout, res.Markdown)
		return err //nolint:wrapcheck // stdout write
	}

	tours := res.Tours
	if tours == nil {
		tours = []tour.Projected{}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct { //nolint:wrapcheck // stdout write
		Query string           `json:"query"`
		Tours []tour.Projected `json:"tours"`
	}{Query: res.Query, Tours: tours})
}

// resultLimit applies the configured default to an unset -k and clamps to 1..max_k.
func (a *app) resultLimit(k int) int {
	if k < 1 {
		k = a.cfg.Search.DefaultK
	}
	return min(max(k, 1), a.cfg.Search.MaxK)
}

func printSearchError(w io.Writer, err error) {
	var se *domain.SearchError
	if !errors.As(err, &se) {
		_, _ = fmt.Fprintln(w, "Error: internal error")
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %s\n", se.Message())
	if hint := se.Hint(); hint != "" {
		_, _ = fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
