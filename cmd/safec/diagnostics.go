package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"safec/internal/diag"
	"safec/internal/diagfmt"
	"safec/internal/source"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	pathMode       diagfmt.PathMode
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	flags := cmd.Root().PersistentFlags()
	var opts globalOptions

	colorValue, err := flags.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	colorMode, err := readSwitch("color", colorValue)
	if err != nil {
		return opts, err
	}
	opts.color = colorMode.enabledFor(os.Stderr)

	if opts.quiet, err = flags.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = flags.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	pathValue, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if opts.pathMode, err = diagfmt.ParsePathMode(pathValue); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o globalOptions) prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     o.color,
		Context:   2,
		PathMode:  o.pathMode,
		ShowNotes: true,
	}
}

func (o globalOptions) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         o.pathMode,
		IncludeNotes:     true,
		IncludeFixes:     true,
	}
}

// printDiagnostics writes bag in pretty form. Warnings and infos are
// hidden by --quiet; errors never are.
func printDiagnostics(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts globalOptions) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	if opts.quiet && !bag.HasErrors() {
		return
	}
	diagfmt.Pretty(w, bag, fs, opts.prettyOpts())
}

// fileDiagnostics pairs a bag with the FileSet its spans point into.
type fileDiagnostics struct {
	name string
	bag  *diag.Bag
	fs   *source.FileSet
}

// printDiagnosticsJSON writes {"<file>": {diagnostics...}, ...} as one document.
func printDiagnosticsJSON(w io.Writer, files []fileDiagnostics, opts globalOptions) error {
	out := make(map[string]diagfmt.DiagnosticsOutput, len(files))
	for _, f := range files {
		if f.bag == nil {
			continue
		}
		out[f.name] = diagfmt.BuildDiagnosticsOutput(f.bag, f.fs, opts.jsonOpts())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
