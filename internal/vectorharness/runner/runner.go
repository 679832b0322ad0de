// Package runner wires the loader, engine and reporters into a complete
// harness invocation over a list of vector files.
package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/engine"
	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/loader"
	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/reporter"
	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/token"
	"github.com/noise-conformance/noise-vectors-go/pkg/log"
	"github.com/noise-conformance/noise-vectors-go/pkg/noise"
)

// ErrUsage is returned by New for invalid configurations, e.g. no input
// files. Callers should print usage help for it.
var ErrUsage = errors.New("runner: invalid configuration")

// Runner executes vector files and reports results.
type Runner struct {
	config     *Config
	reporter   reporter.Reporter
	logger     log.Logger
	newSession engine.SessionFactory

	runID string

	// closer releases the protocol log when the runner owns it.
	closer io.Closer
}

// New creates a runner for the given config. The caller must Close it.
func New(cfg *Config) (*Runner, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("%w: no vector files given", ErrUsage)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	var rep reporter.Reporter
	switch cfg.OutputFormat {
	case "json":
		rep = reporter.NewJSONReporter(out, true)
	default:
		rep = reporter.NewTextReporter(out, cfg.Verbose)
	}

	r := &Runner{
		config:     cfg,
		reporter:   rep,
		logger:     log.NoopLogger{},
		newSession: noise.NewSession,
		runID:      uuid.NewString(),
	}
	switch {
	case cfg.ProtocolLogger != nil:
		r.logger = cfg.ProtocolLogger
	case cfg.ProtocolLog != "":
		fl, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, fmt.Errorf("opening protocol log: %w", err)
		}
		r.logger = fl
		r.closer = fl
	}
	return r, nil
}

// Close releases resources owned by the runner.
func (r *Runner) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Run processes every configured file and returns the aggregate result.
// Vector failures are reported through the result, not the error.
func (r *Runner) Run() *engine.RunResult {
	result := &engine.RunResult{
		RunID:     r.runID,
		StartTime: time.Now(),
	}
	for _, file := range r.config.Files {
		result.Files = append(result.Files, r.runFile(file))
	}
	result.EndTime = time.Now()
	r.reporter.RunResult(result)
	return result
}

func (r *Runner) runFile(file string) *engine.FileResult {
	fr := &engine.FileResult{File: file}
	r.reporter.FileStart(file)
	r.event(file, nil, log.KindFileStart, nil)

	f, err := os.Open(file)
	if err != nil {
		fr.Err = err
		r.finishFile(fr)
		return fr
	}
	defer f.Close()

	diag := r.config.Output
	if diag == nil {
		diag = os.Stderr
	}
	ts := token.NewStream(file, f, diag)
	parser := loader.NewParser(ts, r.config.limits())
	if err := parser.Begin(); err != nil {
		fr.Err = fmt.Errorf("malformed vector document")
		r.finishFile(fr)
		return fr
	}

	for {
		before := ts.Errors()
		vec, err := parser.Next()
		if err == io.EOF {
			// Structural trouble at the end of the document fails the
			// file even when every vector before it passed.
			if ts.Errors() > before {
				fr.Err = fmt.Errorf("malformed vector document")
			}
			break
		}
		if err != nil {
			vr := engine.VectorResult{Outcome: engine.OutcomeFail, Err: err}
			if vec != nil {
				vr.Name = vec.Name
				vr.Line = vec.Line
			}
			fr.Add(vr)
			r.reporter.VectorResult(&vr)
			continue
		}
		r.runVector(fr, vec)
	}

	r.finishFile(fr)
	return fr
}

func (r *Runner) finishFile(fr *engine.FileResult) {
	r.reporter.FileResult(fr)
	outcome := "pass"
	var diagnostic string
	if fr.Failed() {
		outcome = "fail"
	}
	if fr.Err != nil {
		diagnostic = fr.Err.Error()
	}
	r.event(fr.File, nil, log.KindFileResult, &log.ResultEvent{
		Outcome:    outcome,
		Diagnostic: diagnostic,
		Passed:     fr.PassCount,
		Failed:     fr.FailCount,
		Skipped:    fr.SkipCount,
	})
}

func (r *Runner) runVector(fr *engine.FileResult, vec *loader.Vector) {
	r.event(fr.File, vec, log.KindVectorStart, nil)

	err := engine.ValidateName(vec)
	if err == nil {
		rep := &engine.Replayer{
			NewSession: r.newSession,
			Logger:     r.logger,
			RunID:      r.runID,
			File:       fr.File,
		}
		err = rep.Replay(vec)
	}

	vr := engine.VectorResult{Name: vec.Name, Line: vec.Line, Err: err}
	switch {
	case err == nil:
		vr.Outcome = engine.OutcomePass
	case errors.Is(err, noise.ErrUnsupported):
		vr.Outcome = engine.OutcomeSkip
	default:
		vr.Outcome = engine.OutcomeFail
	}
	fr.Add(vr)
	r.reporter.VectorResult(&vr)

	var diagnostic string
	if err != nil {
		diagnostic = err.Error()
	}
	r.event(fr.File, vec, log.KindVectorResult, &log.ResultEvent{
		Outcome:    vr.Outcome.String(),
		Diagnostic: diagnostic,
	})
}

func (r *Runner) event(file string, vec *loader.Vector, kind log.Kind, res *log.ResultEvent) {
	ev := log.Event{
		Timestamp: time.Now(),
		RunID:     r.runID,
		File:      file,
		Kind:      kind,
		Result:    res,
	}
	if vec != nil {
		ev.Line = vec.Line
		ev.Protocol = vec.Name
	}
	r.logger.Log(ev)
}
