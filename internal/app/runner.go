package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sha1n/washer/internal/analysis"
	"github.com/sha1n/washer/internal/config"
	"github.com/sha1n/washer/internal/highlight"
	"github.com/sha1n/washer/internal/output"
	"github.com/sha1n/washer/internal/searcher"
	"github.com/sha1n/washer/internal/textdecode"
	"github.com/sha1n/washer/internal/textindex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the commands
type RunParams struct {
	LoadSettings  func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings func(*config.Settings) error
	// LogOutput receives log records. Defaults to stderr.
	LogOutput io.Writer
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		LogOutput:     os.Stderr,
	}
}

// session holds what a command needs once its flags are parsed
type session struct {
	settings *config.Settings
	out      *output.Writer
}

// newSession loads and validates settings, configures logging and sets up
// styled output on the command's stdout.
func newSession(cmd *cobra.Command, params RunParams) (*session, error) {
	settings, err := params.LoadSettings(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logOutput := params.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}
	slog.SetDefault(config.NewLogger(logOutput, settings.LogLevel))
	config.Log(settings)

	mode, err := output.ParseColorMode(settings.Color)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	stdout := cmd.OutOrStdout()

	return &session{
		settings: settings,
		out:      output.New(stdout, output.ColorProfile(mode, stdout)),
	}, nil
}

func (s *session) decoder() (*textdecode.Detector, error) {
	d, err := textdecode.New(s.settings.Index.Encodings...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return d, nil
}

func (s *session) builder() *analysis.Builder {
	return analysis.NewBuilder(analysis.Options{
		MaxStopwords:   s.settings.Index.MaxStopwords,
		MaxTokenLength: s.settings.Index.MaxTokenLength,
	})
}

func (s *session) highlighter() *highlight.Highlighter {
	return highlight.New(highlight.Options{
		Fragments:    s.settings.Highlight.Fragments,
		FragmentSize: s.settings.Highlight.FragmentSize,
		LineBreak:    s.settings.Highlight.LineBreak,
	}, highlight.TerminalPalette(s.out.Terminal()))
}

// openSearcher starts a read session on the configured index
func (s *session) openSearcher() (*searcher.Searcher, error) {
	op, err := textindex.ParseOperator(s.settings.Search.DefaultOperator)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	decoder, err := s.decoder()
	if err != nil {
		return nil, err
	}

	return searcher.Open(searcher.Config{
		IndexDir:        s.settings.IndexDir,
		Limit:           s.settings.Search.Limit,
		DefaultOperator: op,
		MoreLikeTerms:   s.settings.Search.MoreLikeTerms,
		TopTerms:        s.settings.Search.TopTerms,
		Decoder:         decoder,
		Highlighter:     s.highlighter(),
	})
}

// closeSearcher closes a read session, logging failures
func closeSearcher(s *searcher.Searcher) {
	if err := s.Close(); err != nil {
		slog.Warn("Failed to close index", "error", err)
	}
}
