// Command noise-vectors replays protocol test vector files against the
// built-in handshake engine and reports which vectors pass.
//
// Usage:
//
//	noise-vectors [flags] vectors1.txt vectors2.txt ...
//
// Flags:
//
//	-config string          Path to a YAML config file
//	-json                   Output results as JSON
//	-verbose                Enable skip diagnostics in text output
//	-debug                  Echo replay events to stderr via slog
//	-protocol-log string    File path for replay event logging (CBOR format)
//	-max-messages int       Maximum scripted messages per vector (default 32)
//	-max-message-size int   Maximum decoded message size in bytes (default 256)
//
// Examples:
//
//	# Replay one vector file
//	noise-vectors noise-c-basic.txt
//
//	# Replay several files with a CBOR event log
//	noise-vectors -protocol-log events.cbor cacophony.txt flynn.txt
//
// The exit status is 0 when every vector passed or was skipped, 1 when
// any vector or file failed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/loader"
	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/runner"
	"github.com/noise-conformance/noise-vectors-go/pkg/log"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML config file")
	jsonOut     = flag.Bool("json", false, "Output results as JSON")
	verbose     = flag.Bool("verbose", false, "Enable skip diagnostics in text output")
	debug       = flag.Bool("debug", false, "Echo replay events to stderr via slog")
	protocolLog = flag.String("protocol-log", "", "File path for replay event logging (CBOR format)")
	maxMessages = flag.Int("max-messages", loader.DefaultMaxMessages, "Maximum scripted messages per vector")
	maxMsgSize  = flag.Int("max-message-size", loader.DefaultMaxMessageSize, "Maximum decoded message size in bytes")
)

func main() {
	flag.Parse()
	// Deferred cleanup (runner and log file closers) must run before the
	// process exits, so the exit code is decided inside run.
	os.Exit(run())
}

func run() int {
	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *debug {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		echo := log.NewSlogAdapter(slog.New(handler))
		if cfg.ProtocolLog != "" {
			fl, err := log.NewFileLogger(cfg.ProtocolLog)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: opening protocol log: %v\n", err)
				return 1
			}
			defer fl.Close()
			cfg.ProtocolLogger = log.NewMultiLogger(fl, echo)
		} else {
			cfg.ProtocolLogger = echo
		}
	}

	r, err := runner.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, runner.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Usage: %s [flags] vectors1.txt vectors2.txt ...\n", os.Args[0])
			flag.Usage()
		}
		return 1
	}
	defer r.Close()

	if r.Run().Failed() {
		return 1
	}
	return 0
}

// buildConfig layers flags over an optional config file. Flags that were
// set explicitly win; files named on the command line replace configured
// ones.
func buildConfig() (*runner.Config, error) {
	cfg := runner.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = runner.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}
	if flag.NArg() > 0 {
		cfg.Files = flag.Args()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "json":
			cfg.OutputFormat = "text"
			if *jsonOut {
				cfg.OutputFormat = "json"
			}
		case "verbose":
			cfg.Verbose = *verbose
		case "protocol-log":
			cfg.ProtocolLog = *protocolLog
		case "max-messages":
			cfg.MaxMessages = *maxMessages
		case "max-message-size":
			cfg.MaxMessageSize = *maxMsgSize
		}
	})
	cfg.Output = os.Stdout
	return cfg, nil
}
