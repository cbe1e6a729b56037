package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safec/internal/diagfmt"
	"safec/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.sc",
	Short: "Tokenize a SafeC source file",
	Long:  `Tokenize breaks down a SafeC source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

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

	result, err := driver.Tokenize(cmd.Context(), filePath, global.maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	printDiagnostics(os.Stderr, result.Bag, result.FileSet, global)

	out := cmd.OutOrStdout()
	if format == "json" {
		err = diagfmt.FormatTokensJSON(out, result.Tokens, result.FileSet)
	} else {
		err = diagfmt.FormatTokensPretty(out, result.Tokens, result.FileSet)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errFailed
	}
	return nil
}
