// Package main implements the safec CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"safec/internal/version"
)

// errFailed signals that diagnostics with errors were already printed.
var errFailed = errors.New("compilation failed")

var (
	traceCleanup   = func() {}
	profileCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:           "safec",
	Short:         "SafeC compiler: C with type parameters to plain C",
	Long:          `safec monomorphizes generic structs and functions and emits C99 for any C compiler`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loadManifest(cmd, args)
		if err != nil {
			return err
		}
		cliManifest = manifest
		cleanup, err := setupTracing(cmd, manifest)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		stopProfiles, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profileCleanup = stopProfiles
		return nil
	},
}

// main initializes the CLI and executes the root command.
// Any error exits with status 1.
func main() {
	configureRoot()

	err := rootCmd.Execute()
	profileCleanup()
	traceCleanup()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// configureRoot registers subcommands and global flags.
func configureRoot() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(instsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "path to safec.toml (default: search upwards from the input)")
	rootCmd.PersistentFlags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	registerTraceFlags(rootCmd)
	registerProfileFlags(rootCmd)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
