package app

import (
	"errors"

	"github.com/sha1n/washer/internal/indexer"
	"github.com/sha1n/washer/internal/searcher"
	"github.com/spf13/cobra"
)

func newMoreLikeCommand(params RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "morelike <files...>",
		Short: "Find indexed documents similar to the given files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runMoreLike(cmd, params, args)
		},
	}

	RegisterMoreLikeFlags(cmd.Flags())
	return cmd
}

func runMoreLike(cmd *cobra.Command, params RunParams, paths []string) error {
	s, err := newSession(cmd, params)
	if err != nil {
		return err
	}

	srch, err := s.openSearcher()
	if err != nil {
		return err
	}
	defer closeSearcher(srch)

	for _, path := range paths {
		s.out.Linef("documents like %s:", s.out.Query(path))

		outcome, err := srch.MoreLike(cmd.Context(), path)
		var fileErr *searcher.FileError
		switch {
		case errors.As(err, &fileErr):
			switch {
			case errors.Is(err, indexer.ErrNotFound):
				s.out.Warning("  not found.")
			case errors.Is(err, indexer.ErrIsDirectory):
				s.out.Warning("  is a directory.")
			default:
				s.out.Warningf("  %v", fileErr.Err)
			}
			continue
		case err != nil:
			return err
		}

		s.out.Line(outcome.Count.String())
		printMatches(s.out, outcome.Matches)
	}
	return nil
}
