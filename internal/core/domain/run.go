package domain

import "time"

// Pipeline stage names, as recorded in the run manifest.
const (
	StageDownload = "download"
	StageConvert  = "convert"
	StageWiki     = "wiki"
	StageIndex    = "index"
)

// Run is one recorded pipeline invocation.
type Run struct {
	// ID is a UUID assigned at start.
	ID string

	// Mode is the CLI command that started the run (run, download, ...).
	Mode string

	// StartedAt is when the run began.
	StartedAt time.Time
}

// RunItem is one per-item outcome within a run.
type RunItem struct {
	// Stage is one of the Stage* constants.
	Stage string

	// Name identifies the item.
	Name string

	// OK is true when the item completed.
	OK bool

	// Error holds the failure reason when OK is false.
	Error string
}

// RunSummary closes out a recorded run with final counts.
type RunSummary struct {
	Downloaded int
	Converted  int
	WikiDocs   int
	Indexed    int
	FinishedAt time.Time
}
