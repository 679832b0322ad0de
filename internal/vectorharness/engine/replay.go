package engine

import (
	"bytes"
	"fmt"
	"time"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/loader"
	"github.com/noise-conformance/noise-vectors-go/pkg/log"
	"github.com/noise-conformance/noise-vectors-go/pkg/noise"
)

// SessionFactory creates one side of a handshake for a full protocol name.
type SessionFactory func(name string, role noise.Role) (noise.Session, error)

// Replayer drives scripted handshakes through a handshake engine and
// checks every produced message against the script.
type Replayer struct {
	// NewSession creates the engine sessions. Required.
	NewSession SessionFactory

	// Logger receives per-message replay events. Nil disables them.
	Logger log.Logger

	// RunID and File annotate emitted events.
	RunID string
	File  string
}

// Replay executes one vector. It returns nil when every scripted message
// matched, an error wrapping noise.ErrUnsupported when the engine cannot
// instantiate the protocol, and a descriptive error on any mismatch or
// engine failure.
func (r *Replayer) Replay(vec *loader.Vector) error {
	init, err := r.NewSession(vec.Name, noise.RoleInitiator)
	if err != nil {
		return &OpError{Op: "create initiator", Err: err}
	}
	defer init.Close()

	resp, err := r.NewSession(vec.Name, noise.RoleResponder)
	if err != nil {
		return &OpError{Op: "create responder", Err: err}
	}
	defer resp.Close()

	if err := r.configure(init, resp, vec); err != nil {
		return err
	}
	if err := init.Start(); err != nil {
		return &OpError{Op: "start initiator", Err: err}
	}
	if err := resp.Start(); err != nil {
		return &OpError{Op: "start responder", Err: err}
	}
	return r.exchange(init, resp, vec)
}

// configure applies the vector's key material to both sessions. The
// remote-static fields are crossed over: the initiator learns the
// responder's public key and vice versa.
func (r *Replayer) configure(init, resp noise.Session, vec *loader.Vector) error {
	steps := []struct {
		op    string
		bytes []byte
		apply func([]byte) error
	}{
		{"initiator static key", vec.InitStatic, init.SetStaticKeypair},
		{"responder static key", vec.RespStatic, resp.SetStaticKeypair},
		{"initiator remote static key", vec.RespPublicStatic, init.SetRemoteStatic},
		{"responder remote static key", vec.InitPublicStatic, resp.SetRemoteStatic},
		{"initiator prologue", vec.InitPrologue, init.SetPrologue},
		{"responder prologue", vec.RespPrologue, resp.SetPrologue},
		{"initiator pre-shared key", vec.InitPSK, init.SetPresharedKey},
		{"responder pre-shared key", vec.RespPSK, resp.SetPresharedKey},
	}
	for _, s := range steps {
		if s.bytes == nil {
			continue
		}
		if err := s.apply(s.bytes); err != nil {
			return &OpError{Op: s.op, Err: err}
		}
	}

	if vec.InitEphemeral != nil {
		if err := fixEphemeral(init, vec.InitEphemeral); err != nil {
			return &OpError{Op: "initiator ephemeral key", Err: err}
		}
	}
	// One-way patterns have no responder ephemeral; vectors carry the
	// field anyway and it must be ignored.
	oneWay := noise.OneWay(noise.IDOf(noise.CategoryPattern, vec.Pattern))
	if vec.RespEphemeral != nil && !oneWay {
		if err := fixEphemeral(resp, vec.RespEphemeral); err != nil {
			return &OpError{Op: "responder ephemeral key", Err: err}
		}
	}
	return nil
}

func fixEphemeral(s noise.Session, priv []byte) error {
	fe, ok := s.(noise.FixedEphemeral)
	if !ok {
		return fmt.Errorf("%w: fixed ephemeral keys", noise.ErrUnsupported)
	}
	return fe.SetFixedEphemeral(priv)
}

// exchange replays the scripted transcript. The initiator sends message 0
// and the roles alternate from there. The loop ends early once both sides
// have completed the handshake, so trailing script entries after the
// split are not replayed.
func (r *Replayer) exchange(init, resp noise.Session, vec *loader.Vector) error {
	for i, msg := range vec.Messages {
		if init.Action() == noise.ActionSplit && resp.Action() == noise.ActionSplit {
			break
		}

		send, recv := init, resp
		sender := noise.RoleInitiator
		if i%2 == 1 {
			send, recv = resp, init
			sender = noise.RoleResponder
		}

		if a := send.Action(); a != noise.ActionWrite {
			return fmt.Errorf("message %d: %s action is %s, want %s",
				i, sender, a, noise.ActionWrite)
		}
		if a := recv.Action(); a != noise.ActionRead {
			return fmt.Errorf("message %d: receiver action is %s, want %s",
				i, a, noise.ActionRead)
		}
		wire, err := send.WriteMessage(msg.Payload, nil)
		if err != nil {
			return &OpError{Op: fmt.Sprintf("write message %d", i), Err: err}
		}
		if !bytes.Equal(wire, msg.Ciphertext) {
			return &MismatchError{What: "ciphertext", Step: i, Actual: wire, Expected: msg.Ciphertext}
		}
		r.logMessage(vec, i, sender, msg.Payload, wire)

		payload, err := recv.ReadMessage(wire, nil)
		if err != nil {
			return &OpError{Op: fmt.Sprintf("read message %d", i), Err: err}
		}
		if !bytes.Equal(payload, msg.Payload) {
			return &MismatchError{What: "plaintext", Step: i, Actual: payload, Expected: msg.Payload}
		}
	}
	return nil
}

func (r *Replayer) logMessage(vec *loader.Vector, step int, sender noise.Role, payload, wire []byte) {
	if r.Logger == nil {
		return
	}
	r.Logger.Log(log.Event{
		Timestamp: time.Now(),
		RunID:     r.RunID,
		File:      r.File,
		Line:      vec.Line,
		Protocol:  vec.Name,
		Kind:      log.KindMessage,
		Message: &log.MessageEvent{
			Step:       step,
			Sender:     sender.String(),
			Payload:    payload,
			Ciphertext: wire,
		},
	})
}
