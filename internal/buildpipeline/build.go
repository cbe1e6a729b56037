// Package buildpipeline orchestrates multi-file builds: every source is
// loaded, compiled and written independently, in parallel.
package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"safec/internal/diag"
	"safec/internal/driver"
	"safec/internal/mono"
	"safec/internal/source"
	"safec/internal/trace"
)

var (
	// ErrNoFiles is returned when the request names no sources.
	ErrNoFiles = errors.New("no source files to build")
	// ErrOutputPathAmbiguous is returned when OutputPath is set for several sources.
	ErrOutputPathAmbiguous = errors.New("an output file can only be given for a single source; use an output directory")
)

// BuildRequest configures one build.
type BuildRequest struct {
	Files []string
	// BaseDir is used for display names and for mirroring sources into OutputDir.
	BaseDir string
	// OutputPath names the .c file of a single-file build.
	OutputPath string
	// OutputDir receives the outputs; empty means next to each source.
	OutputDir string
	// Header writes a companion .h next to every .c.
	Header bool
	// EmitInsts writes an instantiation listing (<name>.insts) next to every .c.
	EmitInsts bool
	// PathMode is used for paths inside the instantiation listing.
	PathMode string
	// Jobs bounds parallelism; zero means GOMAXPROCS.
	Jobs     int
	Compile  driver.CompileOptions
	Progress ProgressSink
}

// FileResult is the outcome for a single source.
type FileResult struct {
	Source     string
	Display    string
	OutputPath string
	HeaderPath string
	InstsPath  string
	// Result is nil only when the build was canceled before the file started.
	Result *driver.CompileResult
	// Err is the I/O failure that stopped this file, if any. It is also
	// reported as a diagnostic in Result.Bag.
	Err     error
	Elapsed time.Duration
	stages  Timings
}

// Failed reports whether the file produced errors or could not be written.
func (r FileResult) Failed() bool {
	return r.Err != nil || r.Result.Failed()
}

// BuildResult captures per-file outcomes (in request order) and timings.
type BuildResult struct {
	Files   []FileResult
	Timings Timings
}

// Failed reports whether any file failed.
func (r BuildResult) Failed() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// Build compiles every file of req. Source problems and I/O failures are
// reported per file; the returned error is reserved for invalid requests
// and cancellation.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Files) == 0 {
		return result, ErrNoFiles
	}
	if req.OutputPath != "" && len(req.Files) > 1 {
		return result, ErrOutputPathAmbiguous
	}

	span, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "build")
	span.WithExtra("files", fmt.Sprint(len(req.Files)))
	defer span.End("")

	names := DisplayNames(req.Files, req.BaseDir)
	result.Files = make([]FileResult, len(req.Files))
	for i, file := range req.Files {
		result.Files[i] = FileResult{Source: file, Display: names[i]}
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = min(jobs, len(req.Files))

	emitQueued(req.Progress, names)
	emitStage(req.Progress, StageBuild, StatusWorking, nil, 0)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return buildOne(gctx, req, &result.Files[i])
		})
	}
	err := g.Wait()

	elapsed := time.Since(start)
	for _, f := range result.Files {
		for _, stage := range Stages {
			if f.stages.Has(stage) {
				result.Timings.Add(stage, f.stages.Duration(stage))
			}
		}
	}
	result.Timings.Set(StageBuild, elapsed)

	if err != nil {
		emitStage(req.Progress, StageBuild, StatusError, err, elapsed)
		return result, err
	}
	status := StatusDone
	if result.Failed() {
		status = StatusError
	}
	emitStage(req.Progress, StageBuild, status, nil, elapsed)
	return result, nil
}

// buildOne fills fr. Only cancellation is returned as an error.
func buildOne(ctx context.Context, req *BuildRequest, fr *FileResult) error {
	start := time.Now()
	defer func() { fr.Elapsed = time.Since(start) }()

	emitFile(req.Progress, fr.Display, StageLoad, StatusWorking, nil)
	fs := source.NewFileSet()
	if req.BaseDir != "" {
		fs.SetBaseDir(req.BaseDir)
	}
	fileID, err := fs.Load(fr.Source)
	fr.stages.Set(StageLoad, time.Since(start))
	if err != nil {
		fileID = fs.AddVirtual(fr.Source, nil)
		fr.Result = &driver.CompileResult{
			Path:    fr.Source,
			FileSet: fs,
			File:    fs.Get(fileID),
			Bag:     diag.NewBag(req.Compile.MaxDiagnostics),
		}
		fr.Result.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: fileID}, fmt.Sprintf("cannot read %s: %v", fr.Source, err)))
		fr.Err = err
		emitFile(req.Progress, fr.Display, StageLoad, StatusError, err)
		return nil
	}

	out, err := outputPathFor(req, fr.Source)
	if err != nil {
		fr.Result = &driver.CompileResult{Path: fr.Source, FileSet: fs, File: fs.Get(fileID), Bag: diag.NewBag(req.Compile.MaxDiagnostics)}
		fr.Result.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{File: fileID}, err.Error()))
		fr.Err = err
		emitFile(req.Progress, fr.Display, StageWrite, StatusError, err)
		return nil
	}
	fr.OutputPath = out

	opts := req.Compile
	if req.Header {
		fr.HeaderPath = companionPath(out, ".h")
		opts.Header = true
		opts.HeaderGuard = mono.GuardName(fr.HeaderPath)
	}
	if req.EmitInsts {
		fr.InstsPath = companionPath(out, ".insts")
		// кэш не хранит реестры
		opts.Cache = nil
	}

	emitFile(req.Progress, fr.Display, StageCompile, StatusWorking, nil)
	compileStart := time.Now()
	res, err := driver.CompileFile(ctx, fs, fileID, opts)
	fr.stages.Set(StageCompile, time.Since(compileStart))
	if res == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			emitFile(req.Progress, fr.Display, StageCompile, StatusError, ctxErr)
			return ctxErr
		}
		fr.Result = &driver.CompileResult{Path: fr.Source, FileSet: fs, File: fs.Get(fileID), Bag: diag.NewBag(req.Compile.MaxDiagnostics)}
		fr.Err = err
		emitFile(req.Progress, fr.Display, StageCompile, StatusError, err)
		return nil
	}
	fr.Result = res
	if err != nil {
		// результат готов, не удалось только сохранить его в кэш
		res.Bag.Add(diag.New(diag.SevWarning, diag.IOWriteFileError, source.Span{File: fileID}, err.Error()))
	}
	if res.Output == nil {
		emitFile(req.Progress, fr.Display, StageCompile, StatusError, diagnosticsError(res.Bag))
		return nil
	}
	if req.Progress != nil {
		req.Progress.OnEvent(Event{File: fr.Display, Stage: StageCompile, Status: StatusDone, Cached: res.Cached, Elapsed: fr.stages.Duration(StageCompile)})
	}

	emitFile(req.Progress, fr.Display, StageWrite, StatusWorking, nil)
	writeStart := time.Now()
	err = writeOutputs(fr, res, req.PathMode)
	fr.stages.Set(StageWrite, time.Since(writeStart))
	if err != nil {
		res.Bag.Add(diag.NewError(diag.IOWriteFileError, source.Span{File: fileID}, err.Error()))
		fr.Err = err
		emitFile(req.Progress, fr.Display, StageWrite, StatusError, err)
		return nil
	}

	status := StatusDone
	var failure error
	if res.Failed() {
		status = StatusError
		failure = diagnosticsError(res.Bag)
	}
	if req.Progress != nil {
		req.Progress.OnEvent(Event{File: fr.Display, Stage: StageWrite, Status: status, Err: failure, Elapsed: time.Since(start)})
	}
	return nil
}

// diagnosticsError summarizes the errors in bag for progress output; the
// diagnostics themselves are reported from the result.
func diagnosticsError(bag *diag.Bag) error {
	if bag == nil {
		return nil
	}
	var first *diag.Diagnostic
	count := 0
	items := bag.Items()
	for i := range items {
		if items[i].Severity != diag.SevError {
			continue
		}
		if first == nil {
			first = &items[i]
		}
		count++
	}
	switch count {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s: %s", first.Code.ID(), first.Message)
	default:
		return fmt.Errorf("%s: %s (and %d more)", first.Code.ID(), first.Message, count-1)
	}
}

func writeOutputs(fr *FileResult, res *driver.CompileResult, pathMode string) error {
	if err := writeFile(fr.OutputPath, res.Output); err != nil {
		return err
	}
	if fr.HeaderPath != "" {
		if err := writeFile(fr.HeaderPath, res.Header); err != nil {
			return err
		}
	}
	if fr.InstsPath != "" && res.Insts != nil {
		var buf bytes.Buffer
		if err := mono.Dump(&buf, res.Insts, res.FileSet, mono.DumpOptions{PathMode: pathMode}); err != nil {
			return fmt.Errorf("dump instantiations: %w", err)
		}
		if err := writeFile(fr.InstsPath, buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	return nil
}
