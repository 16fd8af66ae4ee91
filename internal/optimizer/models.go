package optimizer

import (
	"time"

	"club-la-victoria/internal/common/errors"
)

// DerivedExt is the extension of every derived image.
const DerivedExt = ".webp"

// Task is one source image to convert. It is consumed exactly once per run.
type Task struct {
	SourcePath  string `json:"sourcePath"`
	DerivedPath string `json:"derivedPath"`
	TargetWidth int    `json:"targetWidth"`
	Quality     int    `json:"quality"`
	Rule        string `json:"rule,omitempty"`
}

type Kind string

const (
	KindOptimized Kind = "optimized"
	KindSkipped   Kind = "skipped"
	KindFailed    Kind = "failed"
)

type SkipReason string

const (
	ReasonAlreadyFresh  SkipReason = "already_fresh"
	ReasonSourceMissing SkipReason = "source_missing"
)

// Result is the terminal outcome of a Task.
type Result struct {
	Task *Task `json:"task"`
	Kind Kind  `json:"kind"`

	// Optimized
	OriginalBytes int64 `json:"originalBytes,omitempty"`
	NewBytes      int64 `json:"newBytes,omitempty"`
	Width         int   `json:"width,omitempty"`

	// Skipped
	Reason SkipReason `json:"reason,omitempty"`

	// Failed
	Message string                `json:"message,omitempty"`
	Err     *errors.StandardError `json:"error,omitempty"`
}

func optimized(task *Task, original, newSize int64, width int) Result {
	return Result{Task: task, Kind: KindOptimized, OriginalBytes: original, NewBytes: newSize, Width: width}
}

func skipped(task *Task, reason SkipReason) Result {
	return Result{Task: task, Kind: KindSkipped, Reason: reason}
}

func failed(task *Task, message string) Result {
	return Result{
		Task:    task,
		Kind:    KindFailed,
		Message: message,
		Err:     errors.NewImageTaskFailedError(task.SourcePath, errors.New(message)),
	}
}

// Summary aggregates a run. Results keep discovery (or manifest) order.
type Summary struct {
	RunID     string        `json:"runId"`
	Results   []Result      `json:"results"`
	Optimized int           `json:"optimized"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Kind {
	case KindOptimized:
		s.Optimized++
	case KindSkipped:
		s.Skipped++
	case KindFailed:
		s.Failed++
	}
}

// Total is the number of terminal outcomes.
func (s *Summary) Total() int {
	return s.Optimized + s.Skipped + s.Failed
}

// BytesSaved sums the reduction over optimized results; growth counts as zero.
func (s *Summary) BytesSaved() int64 {
	var saved int64
	for _, r := range s.Results {
		if r.Kind == KindOptimized && r.NewBytes < r.OriginalBytes {
			saved += r.OriginalBytes - r.NewBytes
		}
	}
	return saved
}
