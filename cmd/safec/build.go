package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"safec/internal/buildpipeline"
	"safec/internal/driver"
	"safec/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.sc|dir]...",
	Short: "Compile SafeC sources to C",
	Long: `Build monomorphizes every given source (directories are searched for *.sc)
and writes one .c file per source. Without arguments the sources listed in
safec.toml are built.`,
	RunE: runBuild,
}

func init() {
	registerBuildFlags(buildCmd)
}

func registerBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output file (single source) or directory")
	cmd.Flags().Bool("header", false, "also write a companion .h with prototypes")
	cmd.Flags().Int("jobs", 0, "max parallel compilations (0=auto)")
	cmd.Flags().Bool("cache", false, "reuse outputs of unchanged sources from the disk cache")
	cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	cmd.Flags().Bool("emit-insts", false, "write an instantiation listing next to each output")
	cmd.Flags().Int("max-depth", 0, "max nested instantiation depth (0=default)")
	cmd.Flags().String("header-comment", "", "first line of every generated file")
	cmd.Flags().Bool("no-header-comment", false, "omit the generated-file comment")
	cmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|json)")
}

// buildSettings merges flags over safec.toml.
type buildSettings struct {
	output    string
	outputDir string
	header    bool
	jobs      int
	cache     bool
	emitInsts bool
	ui        switchMode
	format    string
	compile   driver.CompileOptions
}

func readBuildSettings(cmd *cobra.Command, manifest *project.Manifest, global globalOptions) (buildSettings, error) {
	flags := cmd.Flags()
	var s buildSettings
	var err error

	if s.output, err = flags.GetString("output"); err != nil {
		return s, err
	}
	if s.header, err = flags.GetBool("header"); err != nil {
		return s, err
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return s, err
	}
	if s.cache, err = flags.GetBool("cache"); err != nil {
		return s, err
	}
	if s.emitInsts, err = flags.GetBool("emit-insts"); err != nil {
		return s, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return s, err
	}
	if s.ui, err = readSwitch("ui", uiValue); err != nil {
		return s, err
	}
	if s.format, err = flags.GetString("diag-format"); err != nil {
		return s, err
	}
	s.format = strings.ToLower(s.format)
	if s.format != "pretty" && s.format != "json" {
		return s, fmt.Errorf("unknown diag-format: %s", s.format)
	}

	s.compile.MaxDiagnostics = global.maxDiagnostics
	s.compile.Timings = global.timings
	if s.compile.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
		return s, err
	}
	if s.compile.HeaderComment, err = flags.GetString("header-comment"); err != nil {
		return s, err
	}
	if s.compile.NoHeaderComment, err = flags.GetBool("no-header-comment"); err != nil {
		return s, err
	}
	if s.jobs < 0 || s.compile.MaxDepth < 0 {
		return s, errors.New("--jobs and --max-depth must not be negative")
	}

	if manifest != nil {
		b := manifest.Config.Build
		if !flags.Changed("header") {
			s.header = b.Header
		}
		if !flags.Changed("jobs") {
			s.jobs = b.Jobs
		}
		if !flags.Changed("cache") {
			s.cache = b.Cache
		}
		if !flags.Changed("max-depth") {
			s.compile.MaxDepth = b.MaxDepth
		}
		if !flags.Changed("header-comment") && !flags.Changed("no-header-comment") && b.HasHeaderComment {
			s.compile.HeaderComment = b.HeaderComment
			s.compile.NoHeaderComment = b.HeaderComment == ""
		}
		if !flags.Changed("output") {
			s.outputDir = manifest.OutputDir()
		}
	}
	return s, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	global, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	manifest := cliManifest
	settings, err := readBuildSettings(cmd, manifest, global)
	if err != nil {
		return err
	}

	paths := args
	baseDir := ""
	if manifest != nil {
		baseDir = manifest.Root
		if len(paths) == 0 {
			paths = manifest.SourcePaths()
		}
	}
	if len(paths) == 0 {
		return errors.New("no sources given and no safec.toml found\nplease name the files to build, e.g.:\n  safec build main.sc")
	}
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			baseDir = "."
		}
	}
	files, err := project.ListSources(paths)
	if err != nil {
		return err
	}

	req := buildpipeline.BuildRequest{
		Files:     files,
		BaseDir:   baseDir,
		OutputDir: settings.outputDir,
		Header:    settings.header,
		EmitInsts: settings.emitInsts,
		PathMode:  global.pathMode.String(),
		Jobs:      settings.jobs,
		Compile:   settings.compile,
	}
	if settings.output != "" {
		if len(files) > 1 || isDir(settings.output) || strings.HasSuffix(settings.output, string(filepath.Separator)) {
			req.OutputDir = settings.output
		} else {
			req.OutputPath = settings.output
		}
	}
	if settings.cache {
		cache, cacheErr := driver.OpenDiskCache("safec")
		if cacheErr != nil {
			return fmt.Errorf("failed to open cache: %w", cacheErr)
		}
		req.Compile.Cache = cache
	}

	var res buildpipeline.BuildResult
	if settings.ui.enabledFor(os.Stderr) && !global.quiet {
		display := buildpipeline.DisplayNames(files, baseDir)
		res, err = runBuildWithUI(cmd.Context(), "safec build", display, &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if err != nil {
		return err
	}

	if err := reportBuild(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, settings, global); err != nil {
		return err
	}
	if res.Failed() {
		return errFailed
	}
	return nil
}

func reportBuild(stdout, stderr io.Writer, res buildpipeline.BuildResult, settings buildSettings, global globalOptions) error {
	if settings.format == "json" {
		files := make([]fileDiagnostics, 0, len(res.Files))
		for _, f := range res.Files {
			if f.Result == nil {
				continue
			}
			files = append(files, fileDiagnostics{name: f.Display, bag: f.Result.Bag, fs: f.Result.FileSet})
		}
		if err := printDiagnosticsJSON(stdout, files, global); err != nil {
			return err
		}
	} else {
		for _, f := range res.Files {
			if f.Result != nil {
				printDiagnostics(stderr, f.Result.Bag, f.Result.FileSet, global)
			}
		}
	}

	if global.timings {
		printStageTimings(stderr, res.Timings)
	}
	if global.quiet || settings.format == "json" {
		return nil
	}

	cwd, _ := os.Getwd() //nolint:errcheck // пустой cwd оставляет пути как есть
	structs, funcs, written := 0, 0, 0
	for _, f := range res.Files {
		if f.Result == nil || f.Result.Output == nil || f.Err != nil {
			continue
		}
		written++
		structs += f.Result.Structs
		funcs += f.Result.Funcs
		suffix := ""
		if f.Result.Cached {
			suffix = " (cached)"
		}
		if _, err := fmt.Fprintf(stdout, "wrote %s%s\n", formatPathForOutput(cwd, f.OutputPath), suffix); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(stdout, "built %d of %d file(s): %d struct and %d function instantiation(s)\n", written, len(res.Files), structs, funcs)
	return err
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
