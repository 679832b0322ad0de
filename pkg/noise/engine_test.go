package noise

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, dh25519KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func startedPair(t *testing.T, name string) (Session, Session) {
	t.Helper()
	init, err := NewSession(name, RoleInitiator)
	require.NoError(t, err)
	resp, err := NewSession(name, RoleResponder)
	require.NoError(t, err)
	t.Cleanup(func() {
		init.Close()
		resp.Close()
	})
	require.NoError(t, init.Start())
	require.NoError(t, resp.Start())
	return init, resp
}

func TestSessionNNHandshake(t *testing.T) {
	init, resp := startedPair(t, "Noise_NN_25519_AESGCM_SHA256")

	assert.Equal(t, ActionWrite, init.Action())
	assert.Equal(t, ActionRead, resp.Action())

	// -> e
	msg1, err := init.WriteMessage([]byte("hello"), nil)
	require.NoError(t, err)
	payload, err := resp.ReadMessage(msg1, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), payload)

	// <- e, ee
	msg2, err := resp.WriteMessage(nil, nil)
	require.NoError(t, err)
	payload, err = init.ReadMessage(msg2, nil)
	require.NoError(t, err)
	assert.Empty(t, payload)

	require.Equal(t, ActionSplit, init.Action())
	require.Equal(t, ActionSplit, resp.Action())

	ip, err := init.Split()
	require.NoError(t, err)
	rp, err := resp.Split()
	require.NoError(t, err)

	// Transport round trip in both directions.
	ct, err := ip.Send.Encrypt([]byte("ad"), []byte("transport data"))
	require.NoError(t, err)
	pt, err := rp.Recv.Decrypt([]byte("ad"), ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("transport data"), pt)

	ct, err = rp.Send.Encrypt(nil, []byte("reply"))
	require.NoError(t, err)
	pt, err = ip.Recv.Decrypt(nil, ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("reply"), pt)
}

func TestSessionXXWithStaticKeys(t *testing.T) {
	const name = "Noise_XX_25519_ChaChaPoly_BLAKE2s"
	init, err := NewSession(name, RoleInitiator)
	require.NoError(t, err)
	defer init.Close()
	resp, err := NewSession(name, RoleResponder)
	require.NoError(t, err)
	defer resp.Close()

	require.NoError(t, init.SetStaticKeypair(randomKey(t)))
	require.NoError(t, resp.SetStaticKeypair(randomKey(t)))
	require.NoError(t, init.SetPrologue([]byte("context")))
	require.NoError(t, resp.SetPrologue([]byte("context")))
	require.NoError(t, init.Start())
	require.NoError(t, resp.Start())

	// XX is a three message handshake.
	for i := 0; i < 3; i++ {
		send, recv := init, resp
		if i%2 == 1 {
			send, recv = resp, init
		}
		msg, err := send.WriteMessage(nil, nil)
		require.NoError(t, err, "message %d", i)
		_, err = recv.ReadMessage(msg, nil)
		require.NoError(t, err, "message %d", i)
	}
	assert.Equal(t, ActionSplit, init.Action())
	assert.Equal(t, ActionSplit, resp.Action())
}

func TestSessionPrologueMismatchFails(t *testing.T) {
	const name = "Noise_NN_25519_AESGCM_SHA256"
	init, err := NewSession(name, RoleInitiator)
	require.NoError(t, err)
	defer init.Close()
	resp, err := NewSession(name, RoleResponder)
	require.NoError(t, err)
	defer resp.Close()

	require.NoError(t, init.SetPrologue([]byte("one")))
	require.NoError(t, resp.SetPrologue([]byte("two")))
	require.NoError(t, init.Start())
	require.NoError(t, resp.Start())

	msg1, err := init.WriteMessage(nil, nil)
	require.NoError(t, err)
	_, err = resp.ReadMessage(msg1, nil)
	require.NoError(t, err)

	// The mismatch surfaces on the first encrypted message.
	msg2, err := resp.WriteMessage(nil, nil)
	require.NoError(t, err)
	_, err = init.ReadMessage(msg2, nil)
	require.Error(t, err)
	assert.Equal(t, ActionFailed, init.Action())
}

func TestSessionOneWayPattern(t *testing.T) {
	const name = "Noise_N_25519_AESGCM_SHA256"
	respStatic := randomKey(t)
	respKey, err := keypairFromPrivate(respStatic)
	require.NoError(t, err)

	init, err := NewSession(name, RoleInitiator)
	require.NoError(t, err)
	defer init.Close()
	resp, err := NewSession(name, RoleResponder)
	require.NoError(t, err)
	defer resp.Close()

	require.NoError(t, init.SetRemoteStatic(respKey.Public))
	require.NoError(t, resp.SetStaticKeypair(respStatic))
	require.NoError(t, init.Start())
	require.NoError(t, resp.Start())

	msg, err := init.WriteMessage([]byte("one way"), nil)
	require.NoError(t, err)
	payload, err := resp.ReadMessage(msg, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("one way"), payload)

	assert.Equal(t, ActionSplit, init.Action())
	assert.Equal(t, ActionSplit, resp.Action())
}

// runNN performs a full NN handshake with the given fixed ephemerals and
// returns both wire messages.
func runNN(t *testing.T, initEph, respEph []byte) ([]byte, []byte) {
	t.Helper()
	const name = "Noise_NN_25519_ChaChaPoly_SHA256"
	init, err := NewSession(name, RoleInitiator)
	require.NoError(t, err)
	defer init.Close()
	resp, err := NewSession(name, RoleResponder)
	require.NoError(t, err)
	defer resp.Close()

	require.NoError(t, init.(FixedEphemeral).SetFixedEphemeral(initEph))
	require.NoError(t, resp.(FixedEphemeral).SetFixedEphemeral(respEph))
	require.NoError(t, init.Start())
	require.NoError(t, resp.Start())

	msg1, err := init.WriteMessage([]byte("payload one"), nil)
	require.NoError(t, err)
	_, err = resp.ReadMessage(msg1, nil)
	require.NoError(t, err)
	msg2, err := resp.WriteMessage([]byte("payload two"), nil)
	require.NoError(t, err)
	_, err = init.ReadMessage(msg2, nil)
	require.NoError(t, err)
	return msg1, msg2
}

func TestSessionFixedEphemeralReplayIsDeterministic(t *testing.T) {
	initEph := randomKey(t)
	respEph := randomKey(t)

	first1, first2 := runNN(t, initEph, respEph)
	second1, second2 := runNN(t, initEph, respEph)

	if !bytes.Equal(first1, second1) {
		t.Errorf("first message differs between runs:\n%x\n%x", first1, second1)
	}
	if !bytes.Equal(first2, second2) {
		t.Errorf("second message differs between runs:\n%x\n%x", first2, second2)
	}
}

func TestSessionFixedEphemeralAppearsOnWire(t *testing.T) {
	initEph := randomKey(t)
	respEph := randomKey(t)

	// In NN the first handshake message opens with the initiator's
	// ephemeral public key in the clear.
	msg1, _ := runNN(t, initEph, respEph)

	pub, err := curve25519.X25519(initEph, curve25519.Basepoint)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(msg1), dh25519KeySize)
	assert.Equal(t, pub, msg1[:dh25519KeySize])
}

func TestNewSessionUnsupported(t *testing.T) {
	unsupported := []string{
		"Noise_NN_448_AESGCM_SHA256",
		"Noise_NN_25519+NewHope_AESGCM_SHA256",
		"NoisePSK_NN_25519_AESGCM_SHA256",
	}
	for _, name := range unsupported {
		_, err := NewSession(name, RoleInitiator)
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("NewSession(%q) = %v, want ErrUnsupported", name, err)
		}
	}
}

func TestSessionStateContract(t *testing.T) {
	init, err := NewSession("Noise_NN_25519_AESGCM_SHA256", RoleInitiator)
	require.NoError(t, err)
	defer init.Close()

	// No handshake operations before Start.
	_, err = init.WriteMessage(nil, nil)
	assert.ErrorIs(t, err, ErrSessionState)
	_, err = init.Split()
	assert.ErrorIs(t, err, ErrSessionState)

	require.NoError(t, init.Start())

	// No setters after Start.
	assert.ErrorIs(t, init.SetPrologue([]byte("late")), ErrSessionState)
	assert.ErrorIs(t, init.SetStaticKeypair(make([]byte, 32)), ErrSessionState)

	// The initiator must write first, not read.
	_, err = init.ReadMessage([]byte("junk"), nil)
	assert.ErrorIs(t, err, ErrSessionState)

	// Handshake messages carry no associated data.
	_, err = init.WriteMessage(nil, []byte("ad"))
	assert.ErrorIs(t, err, ErrSessionState)
}

func TestSessionRejectsBadKeySizes(t *testing.T) {
	init, err := NewSession("Noise_XX_25519_AESGCM_SHA256", RoleInitiator)
	require.NoError(t, err)
	defer init.Close()

	assert.ErrorIs(t, init.SetStaticKeypair(make([]byte, 16)), ErrKeySize)
	assert.ErrorIs(t, init.SetRemoteStatic(make([]byte, 31)), ErrKeySize)
	assert.ErrorIs(t, init.(FixedEphemeral).SetFixedEphemeral(nil), ErrKeySize)
}

func TestSessionPresharedKeyUnsupported(t *testing.T) {
	init, err := NewSession("Noise_NN_25519_AESGCM_SHA256", RoleInitiator)
	require.NoError(t, err)
	defer init.Close()
	assert.ErrorIs(t, init.SetPresharedKey(make([]byte, 32)), ErrUnsupported)
}
