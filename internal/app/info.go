package app

import (
	"github.com/spf13/cobra"
)

func newInfoCommand(params RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [terms...]",
		Short: "Show index statistics",
		Long: "Show where the index is, how many documents it holds and its most\n" +
			"frequent terms. For each given term, show in how many documents it\n" +
			"occurs and how often.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runInfo(cmd, params, args)
		},
	}

	RegisterInfoFlags(cmd.Flags())
	return cmd
}

func runInfo(cmd *cobra.Command, params RunParams, terms []string) error {
	s, err := newSession(cmd, params)
	if err != nil {
		return err
	}

	srch, err := s.openSearcher()
	if err != nil {
		return err
	}
	defer closeSearcher(srch)

	info, err := srch.Info(cmd.Context())
	if err != nil {
		return err
	}

	s.out.Linef("index: %s", info.IndexDir)
	if info.BaseDir != "" {
		s.out.Linef("base directory: %s", info.BaseDir)
	} else {
		s.out.Line("base directory: none recorded")
	}
	s.out.Linef("documents: %d", info.Documents)

	if len(info.TopTerms) > 0 {
		s.out.Line("top terms:")
		for _, t := range info.TopTerms {
			s.out.Linef("    %s (%d)", t.Term, t.DocFreq)
		}
	}

	for _, term := range terms {
		stats, err := srch.TermStats(cmd.Context(), term)
		if err != nil {
			return err
		}

		s.out.Linef("term %s:", s.out.Query(term))
		if len(stats) == 0 {
			s.out.Line("    not indexed")
			continue
		}
		for _, st := range stats {
			s.out.Linef("    %s: %d documents, %d occurrences", st.Term, st.DocFreq, st.TermFreq)
		}
	}
	return nil
}
