package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sha1n/washer/internal/textdecode"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Color mode constants
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const envPrefix = "WASHER"

// IndexSettings configuration for building indexes
type IndexSettings struct {
	Languages      []string      `mapstructure:"languages"`
	Encodings      []string      `mapstructure:"encodings"`
	MaxStopwords   int           `mapstructure:"max_stopwords"`
	MaxTokenLength int           `mapstructure:"max_token_length"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout"`
}

// SearchSettings configuration for queries
type SearchSettings struct {
	Limit           int    `mapstructure:"limit"`
	DefaultOperator string `mapstructure:"default_operator"`
	MoreLikeTerms   int    `mapstructure:"more_like_terms"`
	TopTerms        int    `mapstructure:"top_terms"`
}

// HighlightSettings configuration for result excerpts
type HighlightSettings struct {
	Fragments    int    `mapstructure:"fragments"`
	FragmentSize int    `mapstructure:"fragment_size"`
	LineBreak    string `mapstructure:"line_break"`
}

// Settings application settings
type Settings struct {
	IndexDir  string            `mapstructure:"index_dir"`
	LogLevel  string            `mapstructure:"log_level"`
	Color     string            `mapstructure:"color"`
	Index     IndexSettings     `mapstructure:"index"`
	Search    SearchSettings    `mapstructure:"search"`
	Highlight HighlightSettings `mapstructure:"highlight"`
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used. Flags missing from
// the set are skipped, so each command can pass its own flags.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("index_dir", DefaultIndexDir())
	v.SetDefault("log_level", "warn")
	v.SetDefault("color", ColorAuto)

	// Index defaults
	v.SetDefault("index.languages", DefaultLanguages())
	v.SetDefault("index.encodings", textdecode.DefaultEncodings)
	v.SetDefault("index.max_stopwords", 500)
	v.SetDefault("index.max_token_length", 40)
	v.SetDefault("index.lock_timeout", 10*time.Second)

	// Search defaults
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.default_operator", "and")
	v.SetDefault("search.more_like_terms", 10)
	v.SetDefault("search.top_terms", 10)

	// Highlight defaults
	v.SetDefault("highlight.fragments", 5)
	v.SetDefault("highlight.fragment_size", 200)
	v.SetDefault("highlight.line_break", "¶ ")

	// Environment variables
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("index.languages", "WASHER_INDEX_LANGUAGES")
	_ = v.BindEnv("index.encodings", "WASHER_INDEX_ENCODINGS")
	_ = v.BindEnv("index.max_stopwords", "WASHER_INDEX_MAX_STOPWORDS")
	_ = v.BindEnv("index.max_token_length", "WASHER_INDEX_MAX_TOKEN_LENGTH")
	_ = v.BindEnv("index.lock_timeout", "WASHER_INDEX_LOCK_TIMEOUT")
	_ = v.BindEnv("search.limit", "WASHER_SEARCH_LIMIT")
	_ = v.BindEnv("search.default_operator", "WASHER_SEARCH_DEFAULT_OPERATOR")
	_ = v.BindEnv("search.more_like_terms", "WASHER_SEARCH_MORE_LIKE_TERMS")
	_ = v.BindEnv("search.top_terms", "WASHER_SEARCH_TOP_TERMS")
	_ = v.BindEnv("highlight.fragments", "WASHER_HIGHLIGHT_FRAGMENTS")
	_ = v.BindEnv("highlight.fragment_size", "WASHER_HIGHLIGHT_FRAGMENT_SIZE")
	_ = v.BindEnv("highlight.line_break", "WASHER_HIGHLIGHT_LINE_BREAK")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		bindFlag(v, flags, "index_dir", "index-dir")
		bindFlag(v, flags, "log_level", "log-level")
		bindFlag(v, flags, "color", "color")
		bindFlag(v, flags, "index.languages", "lang")
		bindFlag(v, flags, "search.limit", "limit")
		bindFlag(v, flags, "search.default_operator", "operator")
		bindFlag(v, flags, "search.more_like_terms", "terms")
		bindFlag(v, flags, "search.top_terms", "top")
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Comma-separated lists from env vars
	settings.Index.Languages = splitList(settings.Index.Languages, os.Getenv("WASHER_INDEX_LANGUAGES"))
	settings.Index.Encodings = splitList(settings.Index.Encodings, os.Getenv("WASHER_INDEX_ENCODINGS"))

	for i := range settings.Index.Languages {
		settings.Index.Languages[i] = strings.ToLower(settings.Index.Languages[i])
	}

	// Expand home directory in index_dir
	settings.IndexDir = expandHomeDir(settings.IndexDir)

	return &settings, nil
}

// bindFlag binds key to the named flag when the set defines it.
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil {
		_ = v.BindPFlag(key, f)
	}
}

// splitList splits a comma-separated env value that was decoded as a single
// element, then trims entries and drops empty ones.
func splitList(values []string, env string) []string {
	if env != "" {
		if len(values) == 0 || (len(values) == 1 && strings.Contains(values[0], ",")) {
			values = strings.Split(env, ",")
		}
	}

	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}
	return filterEmptyStrings(values)
}

// DefaultIndexDir returns the default index directory, under the system
// temporary directory
func DefaultIndexDir() string {
	return filepath.Join(os.TempDir(), "washer_index")
}

// DefaultLanguages returns en and pt plus the language of the current
// locale, taken from the LANG environment variable.
func DefaultLanguages() []string {
	langs := map[string]bool{"en": true, "pt": true}
	if lang := localeLanguage(os.Getenv("LANG")); lang != "" {
		langs[lang] = true
	}

	result := make([]string, 0, len(langs))
	for lang := range langs {
		result = append(result, lang)
	}
	sort.Strings(result)
	return result
}

// localeLanguage returns the two-letter language prefix of a locale such as
// "de_DE.UTF-8", or "" when there is none.
func localeLanguage(locale string) string {
	if len(locale) < 2 {
		return ""
	}
	prefix := strings.ToLower(locale[:2])
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	if len(locale) > 2 && isLetter(locale[2]) {
		return ""
	}
	return prefix
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for invalid values.
func ValidateSettings(s *Settings) error {
	if s.IndexDir == "" {
		return errors.New("index-dir cannot be empty")
	}

	switch strings.ToLower(s.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
		// valid
	default:
		return errors.New("log-level must be one of debug, info, warn, error, got: " + s.LogLevel)
	}

	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("color must be 'auto', 'always' or 'never', got: " + s.Color)
	}

	if err := validateIndexSettings(&s.Index); err != nil {
		return err
	}
	if err := validateSearchSettings(&s.Search); err != nil {
		return err
	}
	return validateHighlightSettings(&s.Highlight)
}

// validateIndexSettings validates the index configuration
func validateIndexSettings(i *IndexSettings) error {
	for _, lang := range i.Languages {
		if strings.TrimSpace(lang) == "" {
			return errors.New("lang entries cannot be empty")
		}
	}

	if len(i.Encodings) == 0 {
		return errors.New("index encodings cannot be empty")
	}

	if i.MaxStopwords <= 0 {
		return errors.New("index max-stopwords must be positive")
	}

	if i.MaxTokenLength <= 0 {
		return errors.New("index max-token-length must be positive")
	}

	if i.LockTimeout <= 0 {
		return errors.New("index lock-timeout must be positive")
	}

	return nil
}

// validateSearchSettings validates the search configuration
func validateSearchSettings(s *SearchSettings) error {
	if s.Limit <= 0 {
		return errors.New("limit must be positive")
	}

	switch strings.ToLower(s.DefaultOperator) {
	case "and", "or":
		// valid
	default:
		return errors.New("operator must be 'and' or 'or', got: " + s.DefaultOperator)
	}

	if s.MoreLikeTerms <= 0 {
		return errors.New("terms must be positive")
	}

	if s.TopTerms <= 0 {
		return errors.New("top must be positive")
	}

	return nil
}

// validateHighlightSettings validates the highlight configuration
func validateHighlightSettings(h *HighlightSettings) error {
	if h.Fragments <= 0 {
		return errors.New("highlight fragments must be positive")
	}

	if h.FragmentSize <= 0 {
		return errors.New("highlight fragment-size must be positive")
	}

	return nil
}
