package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	Protocols    map[string]*ProtocolStats
	Messages     int
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// ProtocolStats holds per-protocol outcome tallies.
type ProtocolStats struct {
	Vectors  int
	Outcomes map[string]int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		Protocols:    make(map[string]*ProtocolStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByKind[event.Kind]++
		if event.Kind == log.KindMessage {
			stats.Messages++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.Kind == log.KindVectorResult && event.Protocol != "" {
			ps := stats.Protocols[event.Protocol]
			if ps == nil {
				ps = &ProtocolStats{Outcomes: make(map[string]int)}
				stats.Protocols[event.Protocol] = ps
			}
			ps.Vectors++
			if event.Result != nil {
				ps.Outcomes[event.Result.Outcome]++
			}
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if !stats.TimeRange.Start.IsZero() {
		fmt.Fprintf(w, "Time range: %s - %s (%s)\n",
			stats.TimeRange.Start.UTC().Format(time.RFC3339),
			stats.TimeRange.End.UTC().Format(time.RFC3339),
			stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	}

	fmt.Fprintf(w, "\nEvents by kind:\n")
	for _, k := range []log.Kind{
		log.KindFileStart, log.KindVectorStart, log.KindMessage,
		log.KindVectorResult, log.KindFileResult,
	} {
		if n := stats.EventsByKind[k]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", k.String(), n)
		}
	}

	if len(stats.Protocols) == 0 {
		return
	}
	names := make([]string, 0, len(stats.Protocols))
	for name := range stats.Protocols {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "\nProtocols:\n")
	for _, name := range names {
		ps := stats.Protocols[name]
		fmt.Fprintf(w, "  %s: %d vectors (pass %d, fail %d, skip %d)\n",
			name, ps.Vectors,
			ps.Outcomes["pass"], ps.Outcomes["fail"], ps.Outcomes["skip"])
	}
}
