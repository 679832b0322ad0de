// Package engine validates and replays parsed test vectors against a
// handshake session implementation.
package engine

import "time"

// Outcome is the result of one vector.
type Outcome int

const (
	// OutcomePass means the vector replayed byte-for-byte.
	OutcomePass Outcome = iota
	// OutcomeFail means the vector failed to validate or replay.
	OutcomeFail
	// OutcomeSkip means the engine has no implementation for the vector's
	// protocol instantiation. Skips do not fail a file.
	OutcomeSkip
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	case OutcomeSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// VectorResult is the outcome of one vector.
type VectorResult struct {
	// Name is the vector's full protocol name; empty when parsing failed
	// before the name field.
	Name string

	// Line is the source line of the vector's name, for diagnostics.
	Line int

	// Outcome classifies the result.
	Outcome Outcome

	// Err is the failure or skip cause, nil on pass.
	Err error
}

// FileResult aggregates one input file.
type FileResult struct {
	// File is the input path.
	File string

	// Results holds the per-vector outcomes in input order.
	Results []VectorResult

	// PassCount, FailCount and SkipCount tally Results.
	PassCount int
	FailCount int
	SkipCount int

	// Err is a file-level failure: the file could not be opened or its
	// document structure was malformed.
	Err error
}

// Failed reports whether the file fails the run: any vector failure or
// file-level error does, skips never do.
func (f *FileResult) Failed() bool {
	return f.Err != nil || f.FailCount > 0
}

// Add records a vector result and updates the tallies.
func (f *FileResult) Add(vr VectorResult) {
	f.Results = append(f.Results, vr)
	switch vr.Outcome {
	case OutcomePass:
		f.PassCount++
	case OutcomeFail:
		f.FailCount++
	case OutcomeSkip:
		f.SkipCount++
	}
}

// RunResult aggregates a whole harness invocation.
type RunResult struct {
	// RunID uniquely identifies the invocation.
	RunID string

	// Files holds per-file aggregates in command line order.
	Files []*FileResult

	StartTime time.Time
	EndTime   time.Time
}

// Failed reports whether any file failed.
func (r *RunResult) Failed() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}
