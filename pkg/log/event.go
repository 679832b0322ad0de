package log

import "time"

// Event is one replay event. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// RunID identifies the harness invocation (UUID).
	RunID string `cbor:"2,keyasint,omitempty"`

	// File is the vector file being processed.
	File string `cbor:"3,keyasint,omitempty"`

	// Line is the source line of the current vector's name.
	Line int `cbor:"4,keyasint,omitempty"`

	// Protocol is the current vector's full protocol name.
	Protocol string `cbor:"5,keyasint,omitempty"`

	// Kind classifies the event.
	Kind Kind `cbor:"6,keyasint"`

	// Type-specific payload (at most one is set).
	Message *MessageEvent `cbor:"7,keyasint,omitempty"`
	Result  *ResultEvent  `cbor:"8,keyasint,omitempty"`
}

// Kind classifies a replay event.
type Kind uint8

const (
	// KindFileStart marks the start of a vector file.
	KindFileStart Kind = iota
	// KindVectorStart marks the start of one vector's replay.
	KindVectorStart
	// KindMessage records one replayed handshake message.
	KindMessage
	// KindVectorResult records a vector's outcome.
	KindVectorResult
	// KindFileResult records a file's aggregate outcome.
	KindFileResult
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFileStart:
		return "file-start"
	case KindVectorStart:
		return "vector-start"
	case KindMessage:
		return "message"
	case KindVectorResult:
		return "vector-result"
	case KindFileResult:
		return "file-result"
	default:
		return "unknown"
	}
}

// MessageEvent captures one replayed handshake message.
type MessageEvent struct {
	// Step is the 0-based message index within the vector.
	Step int `cbor:"1,keyasint"`

	// Sender is "initiator" or "responder".
	Sender string `cbor:"2,keyasint"`

	// Payload is the plaintext handshake payload.
	Payload []byte `cbor:"3,keyasint,omitempty"`

	// Ciphertext is the wire message the sender produced.
	Ciphertext []byte `cbor:"4,keyasint,omitempty"`
}

// ResultEvent captures the outcome of a vector or a file.
type ResultEvent struct {
	// Outcome is "pass", "fail" or "skip" for vectors; "pass" or "fail"
	// for files.
	Outcome string `cbor:"1,keyasint"`

	// Diagnostic is the failure or skip explanation, if any.
	Diagnostic string `cbor:"2,keyasint,omitempty"`

	// Per-file counters, set on KindFileResult events only.
	Passed  int `cbor:"3,keyasint,omitempty"`
	Failed  int `cbor:"4,keyasint,omitempty"`
	Skipped int `cbor:"5,keyasint,omitempty"`
}
