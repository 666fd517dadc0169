package app

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree
func NewRootCommand(programName, version string, params RunParams) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Full-text indexing and search for local files",
		Long: "Index the contents of local files and search them, with ranked matches\n" +
			"and highlighted excerpts printed to the terminal.",
		Version: version,
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	RegisterGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newIndexCommand(params),
		newSearchCommand(params),
		newInfoCommand(params),
		newMoreLikeCommand(params),
	)

	return rootCmd
}
