package app

import (
	"errors"

	"github.com/sha1n/washer/internal/indexer"
	"github.com/spf13/cobra"
)

func newIndexCommand(params RunParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [files...]",
		Short: "Build a new index from the given files",
		Long: "Build a new index from the given files, replacing the previous one.\n" +
			"Files that cannot be read are reported and skipped. When no file\n" +
			"could be indexed, the previous index is kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runIndex(cmd, params, args)
		},
	}

	RegisterIndexFlags(cmd.Flags())
	return cmd
}

func runIndex(cmd *cobra.Command, params RunParams, paths []string) error {
	s, err := newSession(cmd, params)
	if err != nil {
		return err
	}

	decoder, err := s.decoder()
	if err != nil {
		return err
	}

	driver := indexer.New(indexer.Config{
		IndexDir:    s.settings.IndexDir,
		Decoder:     decoder,
		Builder:     s.builder(),
		LockTimeout: s.settings.Index.LockTimeout,
		OnFile: func(path string, err error) {
			s.out.Linef("indexing %s", path)
			switch {
			case err == nil:
			case errors.Is(err, indexer.ErrNotFound):
				s.out.Warning("  not found.")
			case errors.Is(err, indexer.ErrIsDirectory):
				s.out.Warning("  is a directory.")
			default:
				s.out.Warningf("  %v", err)
			}
		},
	})

	report, err := driver.IndexFiles(paths, s.settings.Index.Languages)
	if err != nil {
		return err
	}

	if !report.Committed {
		s.out.Line("no files were indexed.")
		return nil
	}
	s.out.Linef("%d files indexed. index created at %s", report.Count(), report.IndexDir)
	return nil
}
