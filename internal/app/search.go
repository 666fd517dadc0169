package app

import (
	"strings"

	"github.com/sha1n/washer/internal/highlight"
	"github.com/sha1n/washer/internal/output"
	"github.com/sha1n/washer/internal/searcher"
	"github.com/spf13/cobra"
)

func newSearchCommand(params RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the index",
		Long: "Search the index. Words are joined into a single query, which supports\n" +
			"AND, OR and NOT, +required and -excluded terms, \"phrases\", wildcards\n" +
			"and field:value clauses.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runSearch(cmd, params, strings.Join(args, " "))
		},
	}

	RegisterSearchFlags(cmd.Flags())
	return cmd
}

func runSearch(cmd *cobra.Command, params RunParams, query string) error {
	s, err := newSession(cmd, params)
	if err != nil {
		return err
	}

	countOnly, err := cmd.Flags().GetBool("count")
	if err != nil {
		return err
	}

	srch, err := s.openSearcher()
	if err != nil {
		return err
	}
	defer closeSearcher(srch)

	if !countOnly {
		s.out.Linef("searching for %s...", s.out.Query(query))
	}

	outcome, err := srch.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	s.out.Line(outcome.Count.String())
	if countOnly {
		return nil
	}
	printMatches(s.out, outcome.Matches)
	return nil
}

// printMatches prints each match's path followed by its excerpt, or by the
// matched terms when no excerpt could be built.
func printMatches(out *output.Writer, matches []searcher.Match) {
	for _, m := range matches {
		out.Line("  " + out.Path(m.Path))
		switch {
		case len(m.Excerpt) > 0:
			out.Line(highlight.Render(m.Excerpt))
		case len(m.Terms) > 0:
			out.Line("    " + out.Faint("matched terms: "+strings.Join(m.Terms, ", ")))
		}
	}
}
