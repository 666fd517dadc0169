package app

import (
	"github.com/sha1n/washer/internal/config"
	"github.com/spf13/pflag"
)

// RegisterGlobalFlags registers the flags shared by all commands
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP("index-dir", "d", config.DefaultIndexDir(), "Directory in which the index files are kept")
	flags.String("log-level", "warn", "Log level: debug, info, warn, or error")
	flags.String("color", config.ColorAuto, "Color output: auto, always, or never")
}

// RegisterIndexFlags registers the flags of the index command
func RegisterIndexFlags(flags *pflag.FlagSet) {
	flags.StringSliceP("lang", "l", config.DefaultLanguages(), "Language to use when indexing (repeatable or comma-separated)")
}

// RegisterSearchFlags registers the flags of the search command
func RegisterSearchFlags(flags *pflag.FlagSet) {
	flags.Bool("count", false, "Only print the number of results")
	flags.IntP("limit", "n", 10, "Maximum number of results")
	flags.String("operator", "and", "Operator between terms without one: and or or")
}

// RegisterMoreLikeFlags registers the flags of the morelike command
func RegisterMoreLikeFlags(flags *pflag.FlagSet) {
	flags.IntP("limit", "n", 10, "Maximum number of results per file")
	flags.Int("terms", 10, "Number of key terms taken from each file")
}

// RegisterInfoFlags registers the flags of the info command
func RegisterInfoFlags(flags *pflag.FlagSet) {
	flags.Int("top", 10, "Number of most frequent terms to list")
}
