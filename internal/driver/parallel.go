// Package driver runs the unit pipeline (load, monomorphize, emit) over
// many unit files in parallel. Each unit gets its own interner, instantiation
// cache and diagnostic bag; only the FileSet is shared and it is read-only
// once the files are loaded.
package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"pyjs/internal/diag"
	"pyjs/internal/ir"
	"pyjs/internal/jsgen"
	"pyjs/internal/mono"
	"pyjs/internal/observ"
	"pyjs/internal/project"
	"pyjs/internal/source"
	"pyjs/internal/trace"
	"pyjs/internal/types"
)

// Emit selects what a unit build produces.
type Emit uint8

const (
	// EmitNone stops after monomorphization.
	EmitNone Emit = iota
	// EmitPy renders the monomorphized module in Python syntax.
	EmitPy
	// EmitJS lowers the module to JavaScript.
	EmitJS
)

// ParseEmit maps a manifest or flag value to an Emit.
func ParseEmit(s string) (Emit, error) {
	switch s {
	case project.EmitPy:
		return EmitPy, nil
	case project.EmitJS:
		return EmitJS, nil
	case "", "none":
		return EmitNone, nil
	}
	return EmitNone, fmt.Errorf("unknown emit kind %q (want py or js)", s)
}

type Options struct {
	Jobs           int
	MaxDiagnostics int
	Emit           Emit
	Mono           mono.Options
	// RunMain appends a call to main to JavaScript output.
	RunMain bool
	Timings bool
	// Cache may be nil.
	Cache    *DiskCache
	Observer PhaseObserver
	// OnUnit is called from worker goroutines as each unit finishes.
	OnUnit func(*UnitResult)
}

// UnitResult is the outcome of one unit.
type UnitResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Module and Mono are nil when the unit failed early or came from the
	// disk cache.
	Module      *ir.Module
	Mono        *mono.MonoModule
	Output      string
	Specialized []string
	Cached      bool
	Timing      observ.Report
}

// Failed reports whether the unit produced error diagnostics.
func (r *UnitResult) Failed() bool {
	return r.Bag.HasErrors()
}

// Compile builds every unit in paths. Per-unit problems land in the unit's
// bag; the returned error is reserved for cancellation.
func Compile(ctx context.Context, paths []string, opts Options) (*source.FileSet, []UnitResult, error) {
	ctx, span := trace.BeginCtx(ctx, trace.ScopeDriver, "compile")
	span.WithExtra("units", strconv.Itoa(len(paths)))
	defer span.End("")

	fileSet := source.NewFileSet()
	results := make([]UnitResult, len(paths))
	for i, path := range paths {
		results[i] = UnitResult{Path: path, Bag: diag.NewBag(opts.MaxDiagnostics)}
		id, err := fileSet.Load(path)
		if err != nil {
			results[i].Bag.Add(diag.NewError(diag.IOLoadFileError, source.NoSpan, fmt.Sprintf("load %s: %v", path, err)))
			continue
		}
		results[i].FileID = id
	}
	if opts.Mono.MaxDepth <= 0 {
		opts.Mono.MaxDepth = 64
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))
	for i := range results {
		if results[i].Failed() {
			if opts.OnUnit != nil {
				opts.OnUnit(&results[i])
			}
			continue
		}
		g.Go(func() error {
			// indices are unique per goroutine, no mutex needed
			if err := gctx.Err(); err != nil {
				return err
			}
			compileUnit(gctx, fileSet, &results[i], opts)
			if opts.OnUnit != nil {
				opts.OnUnit(&results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

type unitRun struct {
	res   *UnitResult
	opts  Options
	timer *observ.Timer
}

func (u *unitRun) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := trace.BeginCtx(ctx, trace.ScopePass, name)
	span.WithExtra("unit", u.res.Path)
	if u.opts.Observer != nil {
		u.opts.Observer(PhaseEvent{Unit: u.res.Path, Name: name, Status: PhaseStart})
	}
	idx := u.timer.Begin(name)
	err := fn(ctx)
	note := ""
	if err != nil {
		note = "failed"
	}
	u.timer.End(idx, note)
	elapsed := span.End(note)
	if u.opts.Observer != nil {
		u.opts.Observer(PhaseEvent{Unit: u.res.Path, Name: name, Status: PhaseEnd, Elapsed: elapsed})
	}
	return err
}

var errReported = errors.New("reported")

func compileUnit(ctx context.Context, fileSet *source.FileSet, res *UnitResult, opts Options) {
	u := &unitRun{res: res, opts: opts, timer: observ.NewTimer()}
	rep := diag.BagReporter{Bag: res.Bag}
	defer func() {
		res.Timing = u.timer.Report()
		if opts.Timings {
			appendTimingDiagnostic(res.Bag, timingPayload{Path: res.Path, TotalMS: res.Timing.TotalMS, Phases: res.Timing.Phases})
		}
	}()

	file := fileSet.Get(res.FileID)
	key := unitKey(project.Digest(file.Hash), opts)
	if opts.Emit != EmitNone && opts.Cache != nil {
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			diag.ReportWarning(rep, diag.IOCacheError, source.NoSpan, fmt.Sprintf("read cache: %v", err)).Emit()
		}
		if hit && payload.Path == res.Path {
			res.Output, res.Specialized, res.Cached = payload.Output, payload.Specialized, true
			return
		}
	}

	err := u.phase(ctx, "load", func(context.Context) error {
		m, err := ir.LoadUnit(fileSet, res.FileID, types.NewInterner(), rep)
		res.Module = m
		return err
	})
	if err != nil {
		return
	}

	err = u.phase(ctx, "mono", func(ctx context.Context) error {
		mm, err := mono.MonomorphizeModule(ctx, res.Module, opts.Mono)
		if err != nil {
			if !mono.Report(rep, err) {
				diag.ReportError(rep, diag.MonoInfo, source.NoSpan, err.Error()).Emit()
			}
			return errReported
		}
		res.Mono = mm
		for _, s := range mm.Specialized {
			res.Specialized = append(res.Specialized, s.Name)
		}
		return nil
	})
	if err != nil || opts.Emit == EmitNone {
		return
	}

	err = u.phase(ctx, "emit", func(context.Context) error {
		switch opts.Emit {
		case EmitPy:
			res.Output = ir.FormatModule(res.Mono.Module)
		case EmitJS:
			out, err := jsgen.EmitModule(res.Mono.Module, jsgen.Options{RunMain: opts.RunMain})
			if err != nil {
				diag.ReportError(rep, diag.EmitUnsupported, source.NoSpan, err.Error()).Emit()
				return errReported
			}
			res.Output = out
		}
		return nil
	})
	if err != nil || opts.Cache == nil {
		return
	}
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        res.Path,
		Module:      res.Module.Name,
		Emit:        uint8(opts.Emit),
		ContentHash: project.Digest(file.Hash),
		Output:      res.Output,
		Specialized: res.Specialized,
	}
	if err := opts.Cache.Put(key, payload); err != nil {
		diag.ReportWarning(rep, diag.IOCacheError, source.NoSpan, fmt.Sprintf("write cache: %v", err)).Emit()
	}
}
