// Package buildpipeline turns a set of unit files into emitted output on
// disk, reporting per-file progress to a sink.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pyjs/internal/driver"
	"pyjs/internal/source"
)

// ErrUnitsFailed is returned when at least one unit produced errors.
var ErrUnitsFailed = errors.New("some units failed")

// BuildRequest configures one build.
type BuildRequest struct {
	Files    []string
	Driver   driver.Options
	// OutPath maps a unit path to its output file. Empty means the output
	// is kept in memory only.
	OutPath  func(unit string) string
	Progress ProgressSink
}

// BuildResult collects per-unit results.
type BuildResult struct {
	FileSet *source.FileSet
	Units   []driver.UnitResult
	Written []string
}

// Build compiles every file and writes the outputs.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	opts := req.Driver
	sink := req.Progress
	emitStage(sink, req.Files, StageLoad, StatusQueued, nil)
	if sink != nil {
		opts.Observer = chainObserver(opts.Observer, func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseStart {
				sink.OnEvent(Event{File: ev.Unit, Stage: Stage(ev.Name), Status: StatusWorking})
			}
		})
	}
	prevOnUnit := opts.OnUnit
	opts.OnUnit = func(res *driver.UnitResult) {
		if prevOnUnit != nil {
			prevOnUnit(res)
		}
		if sink == nil {
			return
		}
		switch {
		case res.Failed():
			sink.OnEvent(Event{File: res.Path, Stage: StageEmit, Status: StatusError, Err: ErrUnitsFailed})
		case res.Cached:
			sink.OnEvent(Event{File: res.Path, Stage: StageEmit, Status: StatusCached})
		}
	}

	fileSet, units, err := driver.Compile(ctx, req.Files, opts)
	result.FileSet, result.Units = fileSet, units
	if err != nil {
		return result, err
	}

	failed := false
	for i := range units {
		u := &units[i]
		if u.Failed() {
			failed = true
			continue
		}
		if req.OutPath == nil || opts.Emit == driver.EmitNone {
			finishUnit(sink, u, StatusDone, nil)
			continue
		}
		out := req.OutPath(u.Path)
		if err := writeOutput(out, u.Output); err != nil {
			finishUnit(sink, u, StatusError, err)
			return result, err
		}
		result.Written = append(result.Written, out)
		finishUnit(sink, u, StatusDone, nil)
	}
	if failed {
		return result, ErrUnitsFailed
	}
	return result, nil
}

func writeOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func chainObserver(first, second driver.PhaseObserver) driver.PhaseObserver {
	if first == nil {
		return second
	}
	return func(ev driver.PhaseEvent) {
		first(ev)
		second(ev)
	}
}

// finishUnit reports the final write status of u with its compile time.
func finishUnit(sink ProgressSink, u *driver.UnitResult, status Status, err error) {
	if sink == nil {
		return
	}
	elapsed := time.Duration(u.Timing.TotalMS * float64(time.Millisecond))
	sink.OnEvent(Event{File: u.Path, Stage: StageWrite, Status: status, Err: err, Elapsed: elapsed})
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	for _, f := range files {
		sink.OnEvent(Event{File: f, Stage: stage, Status: status, Err: err})
	}
}
