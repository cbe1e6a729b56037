package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safec/internal/driver"
	"safec/internal/mono"
)

var instsCmd = &cobra.Command{
	Use:   "insts [flags] file.sc",
	Short: "List the generic instantiations of a SafeC source file",
	Long: `Insts runs monomorphization without writing C and prints every
specialized struct and function with its mangled name and use sites.`,
	Args: cobra.ExactArgs(1),
	RunE: runInsts,
}

func init() {
	instsCmd.Flags().String("format", "text", "output format (text|json)")
	instsCmd.Flags().Int("max-depth", 0, "max nested instantiation depth (0=default)")
}

func runInsts(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return fmt.Errorf("failed to get max-depth flag: %w", err)
	}
	if !cmd.Flags().Changed("max-depth") && cliManifest != nil {
		maxDepth = cliManifest.Config.Build.MaxDepth
	}
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}

	res, err := driver.Compile(cmd.Context(), args[0], driver.CompileOptions{
		MaxDiagnostics: global.maxDiagnostics,
		MaxDepth:       maxDepth,
		Timings:        global.timings,
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}
	printDiagnostics(os.Stderr, res.Bag, res.FileSet, global)

	if res.Insts != nil {
		opts := mono.DumpOptions{PathMode: global.pathMode.String()}
		out := cmd.OutOrStdout()
		if format == "json" {
			err = mono.DumpJSON(out, res.Insts, res.FileSet, opts)
		} else {
			err = mono.Dump(out, res.Insts, res.FileSet, opts)
		}
		if err != nil {
			return err
		}
	}
	if res.Failed() {
		return errFailed
	}
	return nil
}
