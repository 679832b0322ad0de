// Package loader parses test vector files into their in-memory model.
//
// A vector file is a JSON document of the form
//
//	{ "vectors": [ { ...vector fields... }, ... ] }
//
// consumed through the token package one vector at a time, so that each
// vector can be executed and released before the next is parsed.
package loader

// Default parsing limits, matching the historical vector corpus.
const (
	// DefaultMaxMessages is the maximum number of scripted messages per
	// vector.
	DefaultMaxMessages = 32
	// DefaultMaxMessageSize is the maximum decoded size in bytes of one
	// payload or ciphertext.
	DefaultMaxMessageSize = 256
)

// Limits bounds what the parser accepts. Exceeding a limit is a parse
// error, never a silent truncation.
type Limits struct {
	MaxMessages    int
	MaxMessageSize int
}

// DefaultLimits returns the default parsing limits.
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:    DefaultMaxMessages,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// Message is one step of a vector's scripted transcript: the plaintext
// handshake payload and the exact wire bytes it must produce.
type Message struct {
	Payload    []byte
	Ciphertext []byte
}

// Vector is one scripted protocol session. Optional byte fields are nil
// when absent from the input; an empty hex string decodes to a non-nil
// empty slice, which is semantically distinct from absence.
type Vector struct {
	// Line is the source line of the "name" field, for diagnostics.
	Line int

	// Name is the full protocol name, e.g. "Noise_XX_25519_AESGCM_SHA256".
	Name string

	// Declared algorithm components, cross-checked against Name.
	Pattern string
	DH      string
	Cipher  string
	Hash    string

	// InitStatic and RespStatic are static private keys.
	InitStatic []byte
	RespStatic []byte

	// InitPublicStatic is the initiator's public key known in advance to
	// the responder; RespPublicStatic the responder's known to the
	// initiator.
	InitPublicStatic []byte
	RespPublicStatic []byte

	// Fixed ephemeral private keys for deterministic replay.
	InitEphemeral []byte
	RespEphemeral []byte

	InitPrologue []byte
	RespPrologue []byte

	InitPSK []byte
	RespPSK []byte

	// Messages is the scripted transcript, in replay order.
	Messages []Message
}
