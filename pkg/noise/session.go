package noise

import "errors"

// Role identifies which side of the handshake a session plays.
type Role int

// Handshake roles. The initiator sends the first message.
const (
	RoleInitiator Role = iota
	RoleResponder
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return "unknown"
	}
}

// Action is what a started session requires next.
type Action int

// Session actions.
const (
	// ActionNone means the session has not been started yet.
	ActionNone Action = iota
	// ActionWrite means the session must produce the next handshake message.
	ActionWrite
	// ActionRead means the session must consume the next handshake message.
	ActionRead
	// ActionSplit means the handshake is complete and transport cipher
	// states can be obtained with Split.
	ActionSplit
	// ActionFailed means a previous operation failed and the session is dead.
	ActionFailed
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionWrite:
		return "write-message"
	case ActionRead:
		return "read-message"
	case ActionSplit:
		return "split"
	case ActionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session errors.
var (
	// ErrUnsupported is returned when the engine has no implementation for
	// the requested protocol instantiation. Callers treat it as a skip, not
	// a failure.
	ErrUnsupported = errors.New("noise: protocol not supported by engine")

	// ErrSessionState is returned when an operation does not match the
	// session's current state, e.g. a setter after Start or a write when
	// the session expects a read.
	ErrSessionState = errors.New("noise: operation invalid in current session state")

	// ErrKeySize is returned when injected key material has the wrong length.
	ErrKeySize = errors.New("noise: invalid key size")
)

// Cipher is one directional transport cipher context produced by Split.
type Cipher interface {
	// Encrypt encrypts plaintext with optional associated data.
	Encrypt(ad, plaintext []byte) ([]byte, error)
	// Decrypt decrypts ciphertext with optional associated data.
	Decrypt(ad, ciphertext []byte) ([]byte, error)
}

// CipherPair holds the two directional transport cipher contexts available
// once a handshake completes. Send encrypts traffic to the peer, Recv
// decrypts traffic from it.
type CipherPair struct {
	Send Cipher
	Recv Cipher
}

// Session is one side of a handshake. Setters are only valid before Start;
// all operations report failure through their error return and any failure
// during the handshake moves the session to ActionFailed.
type Session interface {
	// SetStaticKeypair installs the local static keypair from its private key.
	SetStaticKeypair(priv []byte) error
	// SetRemoteStatic installs the peer's static public key known ahead of
	// the handshake.
	SetRemoteStatic(pub []byte) error
	// SetPrologue installs prologue bytes mixed into the handshake transcript.
	SetPrologue(prologue []byte) error
	// SetPresharedKey installs a pre-shared symmetric key.
	SetPresharedKey(psk []byte) error
	// Start transitions the session into the handshake.
	Start() error
	// Action reports what the session requires next.
	Action() Action
	// WriteMessage produces the next handshake message carrying payload.
	WriteMessage(payload, ad []byte) ([]byte, error)
	// ReadMessage consumes a handshake message and returns its payload.
	ReadMessage(message, ad []byte) ([]byte, error)
	// Split returns the transport cipher contexts once Action is ActionSplit.
	Split() (*CipherPair, error)
	// Close releases the session. It is safe to call more than once.
	Close() error
}

// FixedEphemeral is a test-only extension point implemented by sessions
// that can replace their random ephemeral key with a fixed one, so that
// recorded handshakes replay byte-for-byte. Production code must never
// type-assert for it.
type FixedEphemeral interface {
	// SetFixedEphemeral installs a deterministic ephemeral private key.
	SetFixedEphemeral(priv []byte) error
}
