package noise

import (
	"bytes"
	"crypto/rand"
	"fmt"

	flynn "github.com/flynn/noise"
	"golang.org/x/crypto/curve25519"
)

// flynnPatterns maps registry pattern IDs to flynn/noise handshake patterns.
var flynnPatterns = map[ID]flynn.HandshakePattern{
	PatternN:          flynn.HandshakeN,
	PatternK:          flynn.HandshakeK,
	PatternX:          flynn.HandshakeX,
	PatternNN:         flynn.HandshakeNN,
	PatternNK:         flynn.HandshakeNK,
	PatternNX:         flynn.HandshakeNX,
	PatternXN:         flynn.HandshakeXN,
	PatternXK:         flynn.HandshakeXK,
	PatternXX:         flynn.HandshakeXX,
	PatternKN:         flynn.HandshakeKN,
	PatternKK:         flynn.HandshakeKK,
	PatternKX:         flynn.HandshakeKX,
	PatternIN:         flynn.HandshakeIN,
	PatternIK:         flynn.HandshakeIK,
	PatternIX:         flynn.HandshakeIX,
	PatternXXfallback: flynn.HandshakeXXfallback,
}

var flynnCiphers = map[ID]flynn.CipherFunc{
	CipherAESGCM:     flynn.CipherAESGCM,
	CipherChaChaPoly: flynn.CipherChaChaPoly,
}

var flynnHashes = map[ID]flynn.HashFunc{
	HashSHA256:  flynn.HashSHA256,
	HashSHA512:  flynn.HashSHA512,
	HashBLAKE2s: flynn.HashBLAKE2s,
	HashBLAKE2b: flynn.HashBLAKE2b,
}

// session is the flynn/noise-backed Session. Setters accumulate
// configuration; Start materializes the handshake state.
type session struct {
	proto   ProtocolID
	role    Role
	pattern flynn.HandshakePattern
	suite   flynn.CipherSuite

	static    flynn.DHKey
	hasStatic bool
	ephemeral flynn.DHKey
	hasEph    bool
	remotePub []byte
	prologue  []byte

	hs     *flynn.HandshakeState
	pair   *CipherPair
	action Action
	closed bool
}

// NewSession creates a handshake session for the given full protocol name
// and role. It returns an error wrapping ErrUnsupported when the name is
// valid but names an instantiation this engine cannot express.
func NewSession(name string, role Role) (Session, error) {
	pid, err := ParseProtocolName(name)
	if err != nil {
		return nil, err
	}
	return newSession(pid, role)
}

func newSession(pid ProtocolID, role Role) (*session, error) {
	if pid.Prefix != PrefixStandard {
		return nil, fmt.Errorf("%w: prefix %s", ErrUnsupported, NameOf(CategoryPrefix, pid.Prefix))
	}
	if pid.Reserved != 0 {
		return nil, fmt.Errorf("%w: hybrid dh %s", ErrUnsupported, NameOf(CategoryDH, pid.Reserved))
	}
	if pid.DH != DH25519 {
		return nil, fmt.Errorf("%w: dh %s", ErrUnsupported, NameOf(CategoryDH, pid.DH))
	}
	pattern, ok := flynnPatterns[pid.Pattern]
	if !ok {
		return nil, fmt.Errorf("%w: pattern %s", ErrUnsupported, NameOf(CategoryPattern, pid.Pattern))
	}
	cipher, ok := flynnCiphers[pid.Cipher]
	if !ok {
		return nil, fmt.Errorf("%w: cipher %s", ErrUnsupported, NameOf(CategoryCipher, pid.Cipher))
	}
	hash, ok := flynnHashes[pid.Hash]
	if !ok {
		return nil, fmt.Errorf("%w: hash %s", ErrUnsupported, NameOf(CategoryHash, pid.Hash))
	}
	return &session{
		proto:   pid,
		role:    role,
		pattern: pattern,
		suite:   flynn.NewCipherSuite(flynn.DH25519, cipher, hash),
		action:  ActionNone,
	}, nil
}

// dh25519KeySize is the X25519 private and public key length in bytes.
const dh25519KeySize = 32

func keypairFromPrivate(priv []byte) (flynn.DHKey, error) {
	if len(priv) != dh25519KeySize {
		return flynn.DHKey{}, fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(priv), dh25519KeySize)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return flynn.DHKey{}, fmt.Errorf("noise: deriving public key: %w", err)
	}
	key := flynn.DHKey{
		Private: append([]byte(nil), priv...),
		Public:  pub,
	}
	return key, nil
}

func (s *session) SetStaticKeypair(priv []byte) error {
	if s.action != ActionNone {
		return fmt.Errorf("%w: static key after start", ErrSessionState)
	}
	key, err := keypairFromPrivate(priv)
	if err != nil {
		return err
	}
	s.static = key
	s.hasStatic = true
	return nil
}

func (s *session) SetRemoteStatic(pub []byte) error {
	if s.action != ActionNone {
		return fmt.Errorf("%w: remote static key after start", ErrSessionState)
	}
	if len(pub) != dh25519KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(pub), dh25519KeySize)
	}
	s.remotePub = append([]byte(nil), pub...)
	return nil
}

// SetFixedEphemeral implements the test-only FixedEphemeral extension.
func (s *session) SetFixedEphemeral(priv []byte) error {
	if s.action != ActionNone {
		return fmt.Errorf("%w: ephemeral key after start", ErrSessionState)
	}
	key, err := keypairFromPrivate(priv)
	if err != nil {
		return err
	}
	s.ephemeral = key
	s.hasEph = true
	return nil
}

func (s *session) SetPrologue(prologue []byte) error {
	if s.action != ActionNone {
		return fmt.Errorf("%w: prologue after start", ErrSessionState)
	}
	s.prologue = append([]byte(nil), prologue...)
	return nil
}

func (s *session) SetPresharedKey(psk []byte) error {
	// The NoisePSK dialect mixes the key into the chaining state in a way
	// flynn/noise cannot reproduce, and standard-prefix protocols have no
	// PSK slot at all.
	return fmt.Errorf("%w: pre-shared keys", ErrUnsupported)
}

func (s *session) Start() error {
	if s.closed || s.action != ActionNone {
		return fmt.Errorf("%w: start", ErrSessionState)
	}
	cfg := flynn.Config{
		CipherSuite: s.suite,
		Random:      rand.Reader,
		Pattern:     s.pattern,
		Initiator:   s.role == RoleInitiator,
		Prologue:    s.prologue,
		PeerStatic:  s.remotePub,
	}
	if s.hasStatic {
		cfg.StaticKeypair = s.static
	}
	if s.hasEph {
		// The flynn handshake generates its ephemeral for the `e` token from
		// Config.Random, never from Config.EphemeralKeypair (that field is
		// only mixed as a pre-message key). Feeding the fixed private key
		// through Random makes GenerateKeypair reproduce exactly this key.
		cfg.Random = bytes.NewReader(s.ephemeral.Private)
	}
	hs, err := flynn.NewHandshakeState(cfg)
	if err != nil {
		s.action = ActionFailed
		return fmt.Errorf("noise: starting handshake: %w", err)
	}
	s.hs = hs
	if s.role == RoleInitiator {
		s.action = ActionWrite
	} else {
		s.action = ActionRead
	}
	return nil
}

func (s *session) Action() Action {
	if s.closed {
		return ActionFailed
	}
	return s.action
}

func (s *session) WriteMessage(payload, ad []byte) ([]byte, error) {
	if s.closed || s.action != ActionWrite {
		return nil, fmt.Errorf("%w: write while %s", ErrSessionState, s.action)
	}
	if len(ad) != 0 {
		return nil, fmt.Errorf("%w: handshake messages carry no associated data", ErrSessionState)
	}
	msg, cs0, cs1, err := s.hs.WriteMessage(nil, payload)
	if err != nil {
		s.action = ActionFailed
		return nil, fmt.Errorf("noise: writing handshake message: %w", err)
	}
	s.finishStep(cs0, cs1, ActionRead)
	return msg, nil
}

func (s *session) ReadMessage(message, ad []byte) ([]byte, error) {
	if s.closed || s.action != ActionRead {
		return nil, fmt.Errorf("%w: read while %s", ErrSessionState, s.action)
	}
	if len(ad) != 0 {
		return nil, fmt.Errorf("%w: handshake messages carry no associated data", ErrSessionState)
	}
	payload, cs0, cs1, err := s.hs.ReadMessage(nil, message)
	if err != nil {
		s.action = ActionFailed
		return nil, fmt.Errorf("noise: reading handshake message: %w", err)
	}
	s.finishStep(cs0, cs1, ActionWrite)
	return payload, nil
}

// finishStep records the post-step action: split once the final handshake
// message has been processed, otherwise the opposite of what just happened.
func (s *session) finishStep(cs0, cs1 *flynn.CipherState, next Action) {
	if cs0 == nil {
		s.action = next
		return
	}
	// cs0 encrypts initiator-to-responder traffic.
	if s.role == RoleInitiator {
		s.pair = &CipherPair{Send: transportCipher{cs0}, Recv: transportCipher{cs1}}
	} else {
		s.pair = &CipherPair{Send: transportCipher{cs1}, Recv: transportCipher{cs0}}
	}
	s.action = ActionSplit
}

func (s *session) Split() (*CipherPair, error) {
	if s.closed || s.action != ActionSplit {
		return nil, fmt.Errorf("%w: split while %s", ErrSessionState, s.action)
	}
	return s.pair, nil
}

func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.hs = nil
	s.pair = nil
	s.static = flynn.DHKey{}
	s.ephemeral = flynn.DHKey{}
	s.remotePub = nil
	return nil
}

// transportCipher adapts a flynn CipherState to the Cipher interface.
type transportCipher struct {
	cs *flynn.CipherState
}

func (c transportCipher) Encrypt(ad, plaintext []byte) ([]byte, error) {
	return c.cs.Encrypt(nil, ad, plaintext)
}

func (c transportCipher) Decrypt(ad, ciphertext []byte) ([]byte, error) {
	return c.cs.Decrypt(nil, ad, ciphertext)
}

// Compile-time interface satisfaction checks.
var (
	_ Session        = (*session)(nil)
	_ FixedEphemeral = (*session)(nil)
)
