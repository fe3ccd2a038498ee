// Package buildpipeline runs preprocessing units and persists their output.
package buildpipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"shaderpp/internal/cache"
	"shaderpp/internal/diag"
	"shaderpp/internal/preproc"
	"shaderpp/internal/project"
	"shaderpp/internal/source"
	"shaderpp/internal/trace"
)

// BuildRequest configures one pipeline run.
type BuildRequest struct {
	Units    []project.Unit
	Jobs     int         // <= 0 means runtime.NumCPU()
	Cache    *cache.Disk // nil disables the cache
	Progress ProgressSink
	Reporter diag.Reporter // informational diagnostics from the resolver
	// Display maps a unit input to the name used in progress events.
	// Defaults to the input path.
	Display func(input string) string
}

// UnitResult is the in-memory output of one unit.
type UnitResult struct {
	Unit    project.Unit
	Lines   []string
	Files   *source.FileSet
	Once    *preproc.OnceSet
	Written bool // false when the cache reported the output as current
}

// BuildResult captures outputs and stage timings.
type BuildResult struct {
	Units   []UnitResult
	Timings *Timings
}

// Build resolves and assembles every unit in parallel and writes outputs
// only after all of them succeeded.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	result := BuildResult{Timings: &Timings{}}
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Units) == 0 {
		return result, fmt.Errorf("nothing to build")
	}

	p := &pipeline{req: req, sink: newLockedSink(req.Progress), rep: diag.NopReporter{}, timings: result.Timings}
	if req.Reporter != nil {
		p.rep = &lockedReporter{rep: req.Reporter}
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "build", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span.ID())

	if err := Validate(req.Units); err != nil {
		trace.Fail(tracer, trace.ScopeDriver, "validate", err, span.ID())
		return result, err
	}

	for i := range req.Units {
		p.emit(req.Units[i].Input, StageResolve, StatusQueued, nil, 0)
	}

	units, err := p.compileAll(ctx)
	if err != nil {
		trace.Fail(tracer, trace.ScopeDriver, "compile", err, span.ID())
		p.sink.OnEvent(Event{Stage: StageResolve, Status: StatusError, Err: err})
		return result, err
	}
	result.Units = units

	for i := range result.Units {
		if err := p.write(ctx, &result.Units[i]); err != nil {
			trace.Fail(tracer, trace.ScopeDriver, "write", err, span.ID())
			return result, err
		}
	}
	span.WithExtra("units", strconv.Itoa(len(units)))
	return result, nil
}

// Validate checks what can be checked before reading any file content:
// every unit has a version, an existing input and an output path that no
// other unit writes.
func Validate(units []project.Unit) error {
	outputs := make(map[string]string, len(units))
	for i := range units {
		u := &units[i]
		if u.Output == "" {
			return fmt.Errorf("%s: %w: missing output path", u.Input, project.ErrInvalidOption)
		}
		key := source.NormalizePath(u.Output)
		if prev, ok := outputs[key]; ok {
			return fmt.Errorf("%s: %w: output %s is also written by %s", u.Input, project.ErrInvalidOption, u.Output, prev)
		}
		outputs[key] = u.Input
		if strings.TrimSpace(u.Version) == "" {
			return &preproc.Error{Code: diag.PPMissingVersion, Kind: preproc.ErrMissingVersion, Path: u.Input}
		}
		if _, err := os.Stat(u.Input); err != nil {
			return &preproc.Error{Code: diag.IOUnreadableFile, Kind: preproc.ErrUnreadableFile, Path: u.Input, Err: err}
		}
	}
	return nil
}

// Compile resolves and assembles a single unit without writing anything.
// timings may be nil.
func Compile(ctx context.Context, unit *project.Unit, rep diag.Reporter, timings *Timings) (UnitResult, error) {
	files := source.NewFileSet()
	once := preproc.NewOnceSet()
	r := preproc.NewResolver(unit.IncludeDirs, once, preproc.WithFileSet(files), preproc.WithReporter(rep))

	start := time.Now()
	body, err := r.Resolve(ctx, unit.Input)
	timings.Add(StageResolve, time.Since(start))
	if err != nil {
		return UnitResult{}, err
	}

	start = time.Now()
	lines, err := preproc.Assemble(unit.Version, unit.Defines, body)
	timings.Add(StageAssemble, time.Since(start))
	if err != nil {
		var perr *preproc.Error
		if errors.As(err, &perr) {
			perr.Path = unit.Input
		}
		return UnitResult{}, err
	}
	return UnitResult{Unit: *unit, Lines: lines, Files: files, Once: once}, nil
}

type pipeline struct {
	req     *BuildRequest
	sink    ProgressSink
	rep     diag.Reporter
	timings *Timings
}

func (p *pipeline) compileAll(ctx context.Context) ([]UnitResult, error) {
	units := p.req.Units
	out := make([]UnitResult, len(units))

	jobs := p.req.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i := range units {
		g.Go(func() error {
			unit := &units[i]
			tracer := trace.FromContext(gctx)
			span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+unit.Input, trace.CurrentSpan(gctx))
			uctx := trace.WithSpan(gctx, span.ID())

			p.emit(unit.Input, StageResolve, StatusWorking, nil, 0)
			start := time.Now()
			res, err := Compile(uctx, unit, p.rep, p.timings)
			elapsed := time.Since(start)
			if err != nil {
				span.End("error")
				p.emit(unit.Input, StageResolve, StatusError, err, elapsed)
				return err
			}
			span.WithExtra("lines", strconv.Itoa(len(res.Lines))).End("")
			p.emit(unit.Input, StageAssemble, StatusWorking, nil, elapsed)
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *pipeline) write(ctx context.Context, res *UnitResult) error {
	start := time.Now()
	defer func() { p.timings.Add(StageWrite, time.Since(start)) }()

	unit := &res.Unit
	content := preproc.Join(res.Lines)
	digest := project.Digest(sha256.Sum256(content))
	key := unit.Key()

	if p.req.Cache != nil {
		current, err := p.req.Cache.Current(key, unit.Output, digest)
		if err != nil {
			trace.Fail(trace.FromContext(ctx), trace.ScopeUnit, "cache", err, trace.CurrentSpan(ctx))
		}
		if current {
			p.emit(unit.Input, StageWrite, StatusCached, nil, time.Since(start))
			return nil
		}
	}

	p.emit(unit.Input, StageWrite, StatusWorking, nil, 0)
	if err := WriteFile(unit.Output, content); err != nil {
		p.emit(unit.Input, StageWrite, StatusError, err, time.Since(start))
		return err
	}
	res.Written = true

	if p.req.Cache != nil {
		if err := p.req.Cache.Put(key, cache.NewRecord(unit.Output, digest, res.Files)); err != nil {
			// a stale cache only costs a rewrite next time
			trace.Fail(trace.FromContext(ctx), trace.ScopeUnit, "cache", err, trace.CurrentSpan(ctx))
		}
	}
	p.emit(unit.Input, StageWrite, StatusDone, nil, time.Since(start))
	return nil
}

func (p *pipeline) emit(input string, stage Stage, status Status, err error, elapsed time.Duration) {
	name := input
	if p.req.Display != nil {
		name = p.req.Display(input)
	}
	p.sink.OnEvent(Event{File: name, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// WriteFile creates the parent directory and replaces path atomically.
func WriteFile(path string, content []byte) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return writeError(path, err)
	}
	f, err := os.CreateTemp(dir, ".shaderpp-*")
	if err != nil {
		return writeError(path, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(content); err != nil {
		return writeError(path, err)
	}
	if err = f.Chmod(0o644); err != nil {
		return writeError(path, err)
	}
	if err = f.Close(); err != nil {
		return writeError(path, err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return writeError(path, err)
	}
	return nil
}

// WriteError is a failure to persist an output.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return e.Path + ": failed to write output: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// Diagnostic converts the error for rendering.
func (e *WriteError) Diagnostic() diag.Diagnostic {
	return diag.New(diag.SevError, diag.IOWriteFailed, e.Path, e.Err.Error())
}

func writeError(path string, err error) error {
	return &WriteError{Path: path, Err: err}
}

type lockedSink struct {
	mu   sync.Mutex
	sink ProgressSink
}

func newLockedSink(s ProgressSink) ProgressSink {
	return &lockedSink{sink: s}
}

func (s *lockedSink) OnEvent(evt Event) {
	if s.sink == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.OnEvent(evt)
}

type lockedReporter struct {
	mu  sync.Mutex
	rep diag.Reporter
}

func (r *lockedReporter) Report(d diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rep.Report(d)
}
