package loader

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/token"
)

// newTestParser builds a parser over input with diagnostics captured in
// the returned builder.
func newTestParser(input string, limits Limits) (*Parser, *token.Stream, *strings.Builder) {
	diag := &strings.Builder{}
	ts := token.NewStream("test.txt", strings.NewReader(input), diag)
	return NewParser(ts, limits), ts, diag
}

func document(vectors ...string) string {
	return `{"vectors": [` + strings.Join(vectors, ",") + `]}`
}

const fullVector = `{
  "name": "Noise_XX_25519_AESGCM_SHA256",
  "pattern": "XX",
  "dh": "25519",
  "cipher": "AESGCM",
  "hash": "SHA256",
  "init_static": "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
  "resp_static": "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100",
  "init_remote_static": "0101010101010101010101010101010101010101010101010101010101010101",
  "resp_remote_static": "0202020202020202020202020202020202020202020202020202020202020202",
  "init_ephemeral": "0303030303030303030303030303030303030303030303030303030303030303",
  "init_prologue": "6e6f746172697a6564",
  "init_psk": "",
  "messages": [
    {"payload": "", "ciphertext": "aabb"},
    {"payload": "4865", "ciphertext": "ccddeeff"}
  ]
}`

func TestParserFullVector(t *testing.T) {
	p, ts, diag := newTestParser(document(fullVector), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v\n%s", err, diag.String())
	}
	vec, err := p.Next()
	if err != nil {
		t.Fatalf("Next failed: %v\n%s", err, diag.String())
	}
	if _, err := p.Next(); err != io.EOF {
		t.Fatalf("expected EOF after single vector, got %v", err)
	}
	if ts.Errors() != 0 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.String())
	}

	if vec.Name != "Noise_XX_25519_AESGCM_SHA256" {
		t.Errorf("name = %q", vec.Name)
	}
	if vec.Line != 2 {
		t.Errorf("line = %d, want 2", vec.Line)
	}
	if vec.Pattern != "XX" || vec.DH != "25519" || vec.Cipher != "AESGCM" || vec.Hash != "SHA256" {
		t.Errorf("algorithm fields wrong: %+v", vec)
	}
	if len(vec.InitStatic) != 32 || vec.InitStatic[0] != 0x00 || vec.InitStatic[4] != 0x44 {
		t.Errorf("init_static decoded wrong: %x", vec.InitStatic)
	}

	// The remote-static fields cross over to the opposite party's slot.
	if len(vec.RespPublicStatic) != 32 || vec.RespPublicStatic[0] != 0x01 {
		t.Errorf("init_remote_static should land in RespPublicStatic: %x", vec.RespPublicStatic)
	}
	if len(vec.InitPublicStatic) != 32 || vec.InitPublicStatic[0] != 0x02 {
		t.Errorf("resp_remote_static should land in InitPublicStatic: %x", vec.InitPublicStatic)
	}

	// Absence is nil; an empty hex string is a present, empty value.
	if vec.RespEphemeral != nil {
		t.Errorf("resp_ephemeral should be absent, got %x", vec.RespEphemeral)
	}
	if vec.InitPSK == nil || len(vec.InitPSK) != 0 {
		t.Errorf("init_psk should be present and empty, got %v", vec.InitPSK)
	}
	if vec.RespPSK != nil {
		t.Errorf("resp_psk should be absent")
	}

	if len(vec.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(vec.Messages))
	}
	if vec.Messages[0].Payload == nil || len(vec.Messages[0].Payload) != 0 {
		t.Errorf("message 0 payload should be present and empty")
	}
	if !bytes.Equal(vec.Messages[0].Ciphertext, []byte{0xaa, 0xbb}) {
		t.Errorf("message 0 ciphertext = %x", vec.Messages[0].Ciphertext)
	}
	if !bytes.Equal(vec.Messages[1].Payload, []byte{0x48, 0x65}) {
		t.Errorf("message 1 payload = %x", vec.Messages[1].Payload)
	}
}

func TestParserUnknownFieldFailsVectorNotRun(t *testing.T) {
	bad := `{"name": "Noise_NN_25519_AESGCM_SHA256", "bogus": "00"}`
	good := `{"name": "Noise_KK_25519_AESGCM_SHA256", "pattern": "KK"}`
	p, _, diag := newTestParser(document(bad, good), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	_, err := p.Next()
	if !errors.Is(err, ErrParse) {
		t.Fatalf("first vector: err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "unknown field 'bogus'") {
		t.Errorf("missing unknown-field diagnostic:\n%s", diag.String())
	}

	// The parser recovers and the following vector still parses.
	vec, err := p.Next()
	if err != nil {
		t.Fatalf("second vector: %v\n%s", err, diag.String())
	}
	if vec.Name != "Noise_KK_25519_AESGCM_SHA256" || vec.Pattern != "KK" {
		t.Errorf("second vector parsed wrong: %+v", vec)
	}
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestParserMissingCiphertext(t *testing.T) {
	vecs := `{"name": "Noise_NN_25519_AESGCM_SHA256", "messages": [{"payload": "00"}]}`
	p, _, diag := newTestParser(document(vecs), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	_, err := p.Next()
	if !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "missing ciphertext for message") {
		t.Errorf("missing diagnostic:\n%s", diag.String())
	}
}

func TestParserMissingPayload(t *testing.T) {
	vecs := `{"messages": [{"ciphertext": "00"}]}`
	p, _, diag := newTestParser(document(vecs), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "missing payload for message") {
		t.Errorf("missing diagnostic:\n%s", diag.String())
	}
}

func TestParserUnknownMessageField(t *testing.T) {
	vecs := `{"messages": [{"payload": "00", "ciphertext": "00", "extra": "00"}]}`
	p, _, diag := newTestParser(document(vecs), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "unknown message field 'extra'") {
		t.Errorf("missing diagnostic:\n%s", diag.String())
	}
}

func TestParserTooManyMessages(t *testing.T) {
	entry := `{"payload": "00", "ciphertext": "00"}`
	vecs := `{"messages": [` + strings.Repeat(entry+",", 3) + entry + `]}`
	p, _, diag := newTestParser(document(vecs), Limits{MaxMessages: 3})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "too many messages") {
		t.Errorf("missing diagnostic:\n%s", diag.String())
	}
}

func TestParserMessageTooLarge(t *testing.T) {
	vecs := `{"messages": [{"payload": "` + strings.Repeat("00", 5) + `", "ciphertext": "00"}]}`
	p, _, diag := newTestParser(document(vecs), Limits{MaxMessageSize: 4})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Next(); !errors.Is(err, ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(diag.String(), "exceeds 4 bytes") {
		t.Errorf("missing diagnostic:\n%s", diag.String())
	}
}

func TestParserBadHex(t *testing.T) {
	for _, field := range []string{`"init_static": "abc"`, `"init_psk": "0x11"`} {
		p, _, diag := newTestParser(document(`{`+field+`}`), Limits{})
		if err := p.Begin(); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		if _, err := p.Next(); !errors.Is(err, ErrParse) {
			t.Fatalf("%s: err = %v, want ErrParse", field, err)
		}
		if !strings.Contains(diag.String(), "invalid hexadecimal data") {
			t.Errorf("%s: missing diagnostic:\n%s", field, diag.String())
		}
	}
}

func TestParserDuplicateFieldOverwrites(t *testing.T) {
	vecs := `{"pattern": "NN", "pattern": "XX"}`
	p, _, _ := newTestParser(document(vecs), Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	vec, err := p.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if vec.Pattern != "XX" {
		t.Errorf("pattern = %q, want overwrite to XX", vec.Pattern)
	}
}

func TestParserMalformedDocument(t *testing.T) {
	for _, input := range []string{``, `[]`, `{"nope": []}`, `{"vectors": {}}`} {
		p, _, _ := newTestParser(input, Limits{})
		if err := p.Begin(); !errors.Is(err, ErrParse) {
			t.Errorf("Begin(%q) = %v, want ErrParse", input, err)
		}
	}
}

func TestParserEmptyVectorList(t *testing.T) {
	p, ts, diag := newTestParser(`{"vectors": []}`, Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := p.Next(); err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
	if ts.Errors() != 0 {
		t.Errorf("unexpected diagnostics:\n%s", diag.String())
	}
}

func TestParserTestdataFile(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "vectors.txt"))
	if err != nil {
		t.Fatalf("opening testdata: %v", err)
	}
	defer f.Close()

	diag := &strings.Builder{}
	ts := token.NewStream("vectors.txt", f, diag)
	p := NewParser(ts, Limits{})
	if err := p.Begin(); err != nil {
		t.Fatalf("Begin failed: %v\n%s", err, diag.String())
	}

	var count int
	for {
		vec, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("vector %d: %v\n%s", count, err, diag.String())
		}
		if vec.Name == "" {
			t.Errorf("vector %d has no name", count)
		}
		count++
	}
	if count != 3 {
		t.Errorf("parsed %d vectors, want 3", count)
	}
	if ts.Errors() != 0 {
		t.Errorf("unexpected diagnostics:\n%s", diag.String())
	}
}
