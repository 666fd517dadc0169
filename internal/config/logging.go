package config

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a level name to a slog level. Unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a text logger writing to w at the named level
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Log logs the resolved settings in a granular way
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.DebugContext(ctx, "Config: index_dir", "value", s.IndexDir)
	logger.DebugContext(ctx, "Config: log_level", "value", s.LogLevel)
	logger.DebugContext(ctx, "Config: color", "value", s.Color)

	logger.DebugContext(ctx, "Config: index.languages", "value", s.Index.Languages)
	logger.DebugContext(ctx, "Config: index.encodings", "value", s.Index.Encodings)
	logger.DebugContext(ctx, "Config: index.max_stopwords", "value", s.Index.MaxStopwords)
	logger.DebugContext(ctx, "Config: index.max_token_length", "value", s.Index.MaxTokenLength)
	logger.DebugContext(ctx, "Config: index.lock_timeout", "value", s.Index.LockTimeout)

	logger.DebugContext(ctx, "Config: search.limit", "value", s.Search.Limit)
	logger.DebugContext(ctx, "Config: search.default_operator", "value", s.Search.DefaultOperator)
	logger.DebugContext(ctx, "Config: search.more_like_terms", "value", s.Search.MoreLikeTerms)
	logger.DebugContext(ctx, "Config: search.top_terms", "value", s.Search.TopTerms)

	logger.DebugContext(ctx, "Config: highlight.fragments", "value", s.Highlight.Fragments)
	logger.DebugContext(ctx, "Config: highlight.fragment_size", "value", s.Highlight.FragmentSize)
	logger.DebugContext(ctx, "Config: highlight.line_break", "value", s.Highlight.LineBreak)
}

// SettingsLogValue returns a slog.Value for Settings
func SettingsLogValue(s Settings) slog.Value {
	return slog.GroupValue(
		slog.String("index_dir", s.IndexDir),
		slog.String("log_level", s.LogLevel),
		slog.String("color", s.Color),
		slog.Group("index",
			slog.Any("languages", s.Index.Languages),
			slog.Any("encodings", s.Index.Encodings),
			slog.Int("max_stopwords", s.Index.MaxStopwords),
			slog.Int("max_token_length", s.Index.MaxTokenLength),
			slog.Duration("lock_timeout", s.Index.LockTimeout),
		),
		slog.Group("search",
			slog.Int("limit", s.Search.Limit),
			slog.String("default_operator", s.Search.DefaultOperator),
			slog.Int("more_like_terms", s.Search.MoreLikeTerms),
			slog.Int("top_terms", s.Search.TopTerms),
		),
		slog.Group("highlight",
			slog.Int("fragments", s.Highlight.Fragments),
			slog.Int("fragment_size", s.Highlight.FragmentSize),
			slog.String("line_break", s.Highlight.LineBreak),
		),
	)
}
