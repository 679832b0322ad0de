package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

// RunFilter copies events passing the filter into a new trace file.
func RunFilter(path string, filter *ViewFilter, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	encoder := log.NewEncoder(f)
	kept := 0
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
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		kept++
	}

	fmt.Printf("Wrote %d events to %s\n", kept, output)
	return nil
}
