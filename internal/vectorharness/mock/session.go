// Package mock provides a scripted handshake session implementation for
// testing the replay machinery without real cryptography.
package mock

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/engine"
	"github.com/noise-conformance/noise-vectors-go/pkg/noise"
)

// Exchange is one scripted handshake message: the wire bytes the sending
// session emits and the payload the receiving session recovers.
type Exchange struct {
	// Ciphertext is what WriteMessage returns and ReadMessage expects.
	Ciphertext []byte

	// Payload is what ReadMessage returns.
	Payload []byte
}

// Session is a scripted noise.Session. It hands out pre-recorded message
// bytes instead of running a handshake, records every setter call and can
// inject errors per operation.
type Session struct {
	// Role is the side this session plays.
	Role noise.Role

	// Exchanges is the scripted transcript shared by both sides.
	Exchanges []Exchange

	// Errs injects an error for the named operation, e.g. "Start" or
	// "SetPresharedKey".
	Errs map[string]error

	// Recorded setter arguments.
	Static         []byte
	RemoteStatic   []byte
	Prologue       []byte
	PresharedKey   []byte
	FixedEphemeral []byte

	// CloseCount counts Close calls.
	CloseCount int

	started bool
	failed  bool
	step    int

	mu sync.Mutex
}

// NewSession creates a scripted session for one role.
func NewSession(role noise.Role, exchanges []Exchange) *Session {
	return &Session{Role: role, Exchanges: exchanges}
}

func (s *Session) inject(op string) error {
	if err, ok := s.Errs[op]; ok {
		return err
	}
	return nil
}

func (s *Session) setter(op string, dst *[]byte, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inject(op); err != nil {
		return err
	}
	if s.started {
		return noise.ErrSessionState
	}
	*dst = bytes.Clone(b)
	return nil
}

// SetStaticKeypair records the static private key.
func (s *Session) SetStaticKeypair(priv []byte) error {
	return s.setter("SetStaticKeypair", &s.Static, priv)
}

// SetRemoteStatic records the peer's public key.
func (s *Session) SetRemoteStatic(pub []byte) error {
	return s.setter("SetRemoteStatic", &s.RemoteStatic, pub)
}

// SetPrologue records the prologue.
func (s *Session) SetPrologue(prologue []byte) error {
	return s.setter("SetPrologue", &s.Prologue, prologue)
}

// SetPresharedKey records the pre-shared key.
func (s *Session) SetPresharedKey(psk []byte) error {
	return s.setter("SetPresharedKey", &s.PresharedKey, psk)
}

// SetFixedEphemeral records the fixed ephemeral private key.
func (s *Session) SetFixedEphemeral(priv []byte) error {
	return s.setter("SetFixedEphemeral", &s.FixedEphemeral, priv)
}

// Start moves the session into the scripted handshake.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inject("Start"); err != nil {
		return err
	}
	if s.started {
		return noise.ErrSessionState
	}
	s.started = true
	return nil
}

// Action derives the required action from the current step: even steps
// are written by the initiator, odd steps by the responder, and the
// session splits once the script runs out.
func (s *Session) Action() noise.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.failed:
		return noise.ActionFailed
	case !s.started:
		return noise.ActionNone
	case s.step >= len(s.Exchanges):
		return noise.ActionSplit
	}
	sender := noise.RoleInitiator
	if s.step%2 == 1 {
		sender = noise.RoleResponder
	}
	if sender == s.Role {
		return noise.ActionWrite
	}
	return noise.ActionRead
}

// WriteMessage returns the scripted ciphertext for the current step.
func (s *Session) WriteMessage(payload, ad []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inject("WriteMessage"); err != nil {
		s.failed = true
		return nil, err
	}
	if s.step >= len(s.Exchanges) {
		s.failed = true
		return nil, noise.ErrSessionState
	}
	out := bytes.Clone(s.Exchanges[s.step].Ciphertext)
	s.step++
	return out, nil
}

// ReadMessage checks the message against the script and returns the
// scripted payload.
func (s *Session) ReadMessage(message, ad []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inject("ReadMessage"); err != nil {
		s.failed = true
		return nil, err
	}
	if s.step >= len(s.Exchanges) {
		s.failed = true
		return nil, noise.ErrSessionState
	}
	ex := s.Exchanges[s.step]
	if !bytes.Equal(message, ex.Ciphertext) {
		s.failed = true
		return nil, fmt.Errorf("message %d does not match script", s.step)
	}
	s.step++
	return bytes.Clone(ex.Payload), nil
}

// Split succeeds once the script is exhausted. The returned pair carries
// no usable ciphers.
func (s *Session) Split() (*noise.CipherPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.inject("Split"); err != nil {
		return nil, err
	}
	if s.failed || !s.started || s.step < len(s.Exchanges) {
		return nil, noise.ErrSessionState
	}
	return &noise.CipherPair{}, nil
}

// Close counts the call and always succeeds.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCount++
	return nil
}

// Factory returns a SessionFactory handing out the two given sessions by
// role, so tests can inspect them after a replay.
func Factory(init, resp *Session) engine.SessionFactory {
	return func(name string, role noise.Role) (noise.Session, error) {
		if role == noise.RoleInitiator {
			return init, nil
		}
		return resp, nil
	}
}

// Compile-time interface checks.
var (
	_ noise.Session        = (*Session)(nil)
	_ noise.FixedEphemeral = (*Session)(nil)
)
