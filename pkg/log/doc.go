// Package log provides structured replay-event logging for the vector
// harness.
//
// This package defines the Logger interface and Event types for capturing
// what the harness did with each test vector: which files were processed,
// which vectors ran, and the exact payload/ciphertext bytes of every
// replayed handshake message. It is separate from the human-readable
// reporter output - event capture produces a complete machine-readable
// trace for post-hoc analysis.
//
// # Basic Usage
//
//	// Discard events (the default)
//	cfg.Logger = log.NoopLogger{}
//
//	// Write a binary trace file
//	cfg.Logger, _ = log.NewFileLogger("run.vlog")
//
//	// Also mirror to the console via slog
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Trace files are a raw concatenation of CBOR-encoded events with integer
// map keys. ReadEvents decodes a complete trace back into memory.
package log
