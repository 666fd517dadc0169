package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sha1n/washer/internal/app"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "washer"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := app.NewRootCommand(programName, fmt.Sprintf("%s (%s)", version, build), app.DefaultRunParams())
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(context.Background())
}
