package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

// RunExport exports the trace file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent is the JSONL representation of an event. Binary fields are
// hex-encoded for readability.
type jsonEvent struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Kind      string `json:"kind"`

	Step       *int   `json:"step,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Payload    string `json:"payload,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`

	Outcome    string `json:"outcome,omitempty"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Passed     int    `json:"passed,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	Skipped    int    `json:"skipped,omitempty"`
}

func toJSONEvent(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		RunID:     event.RunID,
		File:      event.File,
		Line:      event.Line,
		Protocol:  event.Protocol,
		Kind:      event.Kind.String(),
	}
	if msg := event.Message; msg != nil {
		step := msg.Step
		je.Step = &step
		je.Sender = msg.Sender
		je.Payload = hex.EncodeToString(msg.Payload)
		je.Ciphertext = hex.EncodeToString(msg.Ciphertext)
	}
	if res := event.Result; res != nil {
		je.Outcome = res.Outcome
		je.Diagnostic = res.Diagnostic
		je.Passed = res.Passed
		je.Failed = res.Failed
		je.Skipped = res.Skipped
	}
	return je
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"timestamp", "run_id", "file", "line", "protocol",
		"kind", "step", "sender", "outcome", "diagnostic"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var step, sender, outcome, diagnostic string
		if event.Message != nil {
			step = strconv.Itoa(event.Message.Step)
			sender = event.Message.Sender
		}
		if event.Result != nil {
			outcome = event.Result.Outcome
			diagnostic = event.Result.Diagnostic
		}
		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.RunID,
			event.File,
			strconv.Itoa(event.Line),
			event.Protocol,
			event.Kind.String(),
			step,
			sender,
			outcome,
			diagnostic,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
