// Package commands implements the noise-vectors-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Kind     *log.Kind
	Protocol string
	RunID    string
}

// Match reports whether the event passes the filter.
func (f *ViewFilter) Match(event log.Event) bool {
	if f.Kind != nil && event.Kind != *f.Kind {
		return false
	}
	if f.Protocol != "" && event.Protocol != f.Protocol {
		return false
	}
	if f.RunID != "" && event.RunID != f.RunID {
		return false
	}
	return true
}

// ParseKindFlag parses a kind name as given on the command line.
func ParseKindFlag(s string) (log.Kind, error) {
	for _, k := range []log.Kind{
		log.KindFileStart, log.KindVectorStart, log.KindMessage,
		log.KindVectorResult, log.KindFileResult,
	} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// RunView prints events from the trace file in human-readable form.
func RunView(path string, filter *ViewFilter, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if filter != nil && !filter.Match(event) {
			continue
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	location := event.File
	if event.Line > 0 {
		location = fmt.Sprintf("%s:%d", event.File, event.Line)
	}

	header := []string{ts, "[run:" + shortenRunID(event.RunID) + "]", event.Kind.String()}
	if location != "" {
		header = append(header, location)
	}
	if event.Protocol != "" {
		header = append(header, event.Protocol)
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	switch {
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.Result != nil:
		formatResultDetails(w, event.Result)
	}

	fmt.Fprintln(w)
}

// shortenRunID returns the first 8 characters of the run ID.
func shortenRunID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  Step: %d  Sender: %s\n", msg.Step, msg.Sender)
	fmt.Fprintf(w, "  Payload: %s\n", hexOrEmpty(msg.Payload))
	fmt.Fprintf(w, "  Ciphertext: %s\n", hexOrEmpty(msg.Ciphertext))
}

func formatResultDetails(w io.Writer, res *log.ResultEvent) {
	fmt.Fprintf(w, "  Outcome: %s\n", res.Outcome)
	if res.Diagnostic != "" {
		fmt.Fprintf(w, "  Diagnostic: %s\n", res.Diagnostic)
	}
	if res.Passed+res.Failed+res.Skipped > 0 {
		fmt.Fprintf(w, "  Passed: %d  Failed: %d  Skipped: %d\n",
			res.Passed, res.Failed, res.Skipped)
	}
}

func hexOrEmpty(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	return hex.EncodeToString(b)
}
