// Package reporter formats replay results for human and machine readers.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/engine"
)

// Reporter receives results as the run progresses.
type Reporter interface {
	// FileStart announces that a vector file is being processed.
	FileStart(file string)

	// VectorResult reports one vector's outcome.
	VectorResult(result *engine.VectorResult)

	// FileResult reports a file's aggregate outcome.
	FileResult(result *engine.FileResult)

	// RunResult reports the whole run once all files are done.
	RunResult(result *engine.RunResult)
}

const banner = "--------------------------------------------------------------"

// TextReporter writes the classic line-per-vector text format.
type TextReporter struct {
	writer  io.Writer
	verbose bool

	file string
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{
		writer:  w,
		verbose: verbose,
	}
}

// FileStart prints the file banner.
func (r *TextReporter) FileStart(file string) {
	r.file = file
	fmt.Fprintf(r.writer, "%s\n", banner)
	fmt.Fprintf(r.writer, "Processing vectors from %s\n", file)
}

// VectorResult prints one "name ... outcome" line, with the failure
// diagnostic and source location on failure.
func (r *TextReporter) VectorResult(result *engine.VectorResult) {
	switch result.Outcome {
	case engine.OutcomePass:
		fmt.Fprintf(r.writer, "%s ... ok\n", result.Name)
	case engine.OutcomeSkip:
		fmt.Fprintf(r.writer, "%s ... skipped\n", result.Name)
		if r.verbose && result.Err != nil {
			fmt.Fprintf(r.writer, "    %v\n", result.Err)
		}
	default:
		fmt.Fprintf(r.writer, "%s ... FAILED\n", result.Name)
		if result.Err != nil {
			fmt.Fprintf(r.writer, "    %v\n", result.Err)
		}
		fmt.Fprintf(r.writer, "-> test data at %s:%d\n", r.file, result.Line)
	}
}

// FileResult prints the closing banner and any file-level error.
func (r *TextReporter) FileResult(result *engine.FileResult) {
	if result.Err != nil {
		fmt.Fprintf(r.writer, "%s: %v\n", result.File, result.Err)
	}
	fmt.Fprintf(r.writer, "%s\n", banner)
}

// RunResult prints the aggregate summary.
func (r *TextReporter) RunResult(result *engine.RunResult) {
	var passed, failed, skipped int
	for _, fr := range result.Files {
		passed += fr.PassCount
		failed += fr.FailCount
		skipped += fr.SkipCount
	}
	fmt.Fprintf(r.writer, "\n--- Summary ---\n")
	fmt.Fprintf(r.writer, "Files:   %d\n", len(result.Files))
	fmt.Fprintf(r.writer, "Passed:  %d\n", passed)
	fmt.Fprintf(r.writer, "Failed:  %d\n", failed)
	fmt.Fprintf(r.writer, "Skipped: %d\n", skipped)
	fmt.Fprintf(r.writer, "Duration: %s\n",
		result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	if result.Failed() {
		fmt.Fprintf(r.writer, "Result: FAILED\n")
	} else {
		fmt.Fprintf(r.writer, "Result: ok\n")
	}
}

// JSONReporter collects the run and writes it as one JSON document when
// RunResult is called.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: w,
		pretty: pretty,
	}
}

// JSONRunResult is the JSON representation of a whole run.
type JSONRunResult struct {
	RunID    string           `json:"run_id"`
	Duration string           `json:"duration"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
	Result   string           `json:"result"`
	Files    []JSONFileResult `json:"files"`
}

// JSONFileResult is the JSON representation of one file's results.
type JSONFileResult struct {
	File    string             `json:"file"`
	Error   string             `json:"error,omitempty"`
	Passed  int                `json:"passed"`
	Failed  int                `json:"failed"`
	Skipped int                `json:"skipped"`
	Vectors []JSONVectorResult `json:"vectors"`
}

// JSONVectorResult is the JSON representation of one vector's outcome.
type JSONVectorResult struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// FileStart is a no-op; the JSON document is written at the end.
func (r *JSONReporter) FileStart(string) {}

// VectorResult is a no-op; the JSON document is written at the end.
func (r *JSONReporter) VectorResult(*engine.VectorResult) {}

// FileResult is a no-op; the JSON document is written at the end.
func (r *JSONReporter) FileResult(*engine.FileResult) {}

// RunResult writes the whole run as one JSON document.
func (r *JSONReporter) RunResult(result *engine.RunResult) {
	jr := JSONRunResult{
		RunID:    result.RunID,
		Duration: result.EndTime.Sub(result.StartTime).Round(time.Millisecond).String(),
		Files:    make([]JSONFileResult, 0, len(result.Files)),
	}
	for _, fr := range result.Files {
		jf := JSONFileResult{
			File:    fr.File,
			Passed:  fr.PassCount,
			Failed:  fr.FailCount,
			Skipped: fr.SkipCount,
			Vectors: make([]JSONVectorResult, 0, len(fr.Results)),
		}
		if fr.Err != nil {
			jf.Error = fr.Err.Error()
		}
		for _, vr := range fr.Results {
			jv := JSONVectorResult{
				Name:    vr.Name,
				Line:    vr.Line,
				Outcome: vr.Outcome.String(),
			}
			if vr.Err != nil {
				jv.Error = vr.Err.Error()
			}
			jf.Vectors = append(jf.Vectors, jv)
		}
		jr.Passed += fr.PassCount
		jr.Failed += fr.FailCount
		jr.Skipped += fr.SkipCount
		jr.Files = append(jr.Files, jf)
	}
	if result.Failed() {
		jr.Result = "failed"
	} else {
		jr.Result = "ok"
	}

	enc := json.NewEncoder(r.writer)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(jr); err != nil {
		fmt.Fprintf(r.writer, "error encoding results: %v\n", err)
	}
}

// Compile-time interface checks.
var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
)
