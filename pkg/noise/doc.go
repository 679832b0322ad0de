// Package noise provides the handshake-engine surface that the vector
// harness drives: protocol-name decomposition, the algorithm identifier
// registry, and a Session implementation backed by flynn/noise.
//
// A Session is created by full protocol name and role, configured through
// setters while it is idle, and started with Start. From then on Action
// reports what the session needs next (write, read, or split), mirroring
// the handshake state machine:
//
//	s, _ := noise.NewSession("Noise_NN_25519_AESGCM_SHA256", noise.RoleInitiator)
//	_ = s.Start()
//	msg, _ := s.WriteMessage(payload, nil)
//
// Deterministic ephemeral keys, needed for byte-exact vector replay, are
// only reachable through the test-only FixedEphemeral extension interface
// and are never part of the production Session API.
package noise
