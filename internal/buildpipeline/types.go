package buildpipeline

import (
	"time"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	// StageLoad decodes the typed unit file.
	StageLoad Stage = "load"
	// StageMono specializes generic classes.
	StageMono Stage = "mono"
	// StageEmit renders Python or JavaScript.
	StageEmit Stage = "emit"
	// StageWrite stores the output on disk.
	StageWrite Stage = "write"
)

// Status represents the state of a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusCached indicates the output came from the build cache.
	StatusCached Status = "cached"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}
