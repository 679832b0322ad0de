// Command noise-vectors-log is a tool for viewing and analyzing replay
// trace files.
//
// Trace files are created by running noise-vectors with the -protocol-log
// flag.
//
// Usage:
//
//	noise-vectors-log <command> [flags] <file.cbor>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSONL or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View all events
//	noise-vectors-log view events.cbor
//
//	# View only failed vector results
//	noise-vectors-log view -kind vector-result events.cbor
//
//	# Export to JSONL
//	noise-vectors-log export -format jsonl events.cbor
//
//	# Keep one protocol's events in a new file
//	noise-vectors-log filter -protocol Noise_XX_25519_AESGCM_SHA256 -o xx.cbor events.cbor
//
//	# Show statistics
//	noise-vectors-log stats events.cbor
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/noise-conformance/noise-vectors-go/cmd/noise-vectors-log/commands"
)

const usage = `noise-vectors-log - Replay trace analyzer

Usage:
  noise-vectors-log <command> [flags] <file.cbor>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSONL or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "noise-vectors-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs and returns a
// builder producing the resulting filter.
func filterFlags(fs *flag.FlagSet) func() *commands.ViewFilter {
	kind := fs.String("kind", "", "Filter by event kind (file-start, vector-start, message, vector-result, file-result)")
	protocol := fs.String("protocol", "", "Filter by full protocol name")
	runID := fs.String("run-id", "", "Filter by run ID")

	return func() *commands.ViewFilter {
		var filter commands.ViewFilter
		if *kind != "" {
			k, err := commands.ParseKindFlag(*kind)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			filter.Kind = &k
		}
		filter.Protocol = *protocol
		filter.RunID = *runID
		return &filter
	}
}

func tracePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if err := commands.RunView(tracePath(fs), buildFilter(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "jsonl", "Output format: jsonl, csv")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if err := commands.RunExport(tracePath(fs), *format, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	buildFilter := filterFlags(fs)
	output := fs.String("o", "", "Output trace file (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file required (-o)")
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunFilter(tracePath(fs), buildFilter(), *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if err := commands.RunStats(tracePath(fs), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
