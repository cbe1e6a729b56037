package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safec/internal/diagfmt"
	"safec/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.sc",
	Short: "Parse a SafeC source file and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Parse(cmd.Context(), args[0], global.maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	printDiagnostics(os.Stderr, result.Bag, result.FileSet, global)

	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatASTJSON(out, result.Program)
	} else {
		err = diagfmt.FormatASTPretty(out, result.Program, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errFailed
	}
	return nil
}
