package loader

import (
	"errors"
	"io"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/token"
)

// ErrParse marks a vector that failed to parse. The parser has already
// reported the specific diagnostics through the token stream and
// resynchronized past the broken vector, so the caller records a failure
// and keeps going.
var ErrParse = errors.New("loader: vector parse error")

// fieldHandler consumes one "name": value field into the vector.
type fieldHandler func(p *Parser, v *Vector)

// fieldHandlers maps input field names to their typed setters. Anything
// not in this map is an unknown field and fails the vector.
//
// init_remote_static and resp_remote_static deliberately cross over: the
// initiator's pre-knowledge of the responder's public key belongs in
// RespPublicStatic, and vice versa.
var fieldHandlers = map[string]fieldHandler{
	"name": func(p *Parser, v *Vector) {
		v.Line = p.ts.Line()
		p.stringField(&v.Name)
	},
	"pattern": func(p *Parser, v *Vector) { p.stringField(&v.Pattern) },
	"dh":      func(p *Parser, v *Vector) { p.stringField(&v.DH) },
	"cipher":  func(p *Parser, v *Vector) { p.stringField(&v.Cipher) },
	"hash":    func(p *Parser, v *Vector) { p.stringField(&v.Hash) },

	"init_static":        func(p *Parser, v *Vector) { p.binaryField(&v.InitStatic, 0) },
	"resp_static":        func(p *Parser, v *Vector) { p.binaryField(&v.RespStatic, 0) },
	"init_remote_static": func(p *Parser, v *Vector) { p.binaryField(&v.RespPublicStatic, 0) },
	"resp_remote_static": func(p *Parser, v *Vector) { p.binaryField(&v.InitPublicStatic, 0) },
	"init_ephemeral":     func(p *Parser, v *Vector) { p.binaryField(&v.InitEphemeral, 0) },
	"resp_ephemeral":     func(p *Parser, v *Vector) { p.binaryField(&v.RespEphemeral, 0) },
	"init_prologue":      func(p *Parser, v *Vector) { p.binaryField(&v.InitPrologue, 0) },
	"resp_prologue":      func(p *Parser, v *Vector) { p.binaryField(&v.RespPrologue, 0) },
	"init_psk":           func(p *Parser, v *Vector) { p.binaryField(&v.InitPSK, 0) },
	"resp_psk":           func(p *Parser, v *Vector) { p.binaryField(&v.RespPSK, 0) },

	"messages": (*Parser).messagesField,
}

// Parser consumes a token stream and produces vectors one at a time.
type Parser struct {
	ts     *token.Stream
	limits Limits
	base   int // error count at the start of the current unit
	depth  int // brace/bracket nesting, for resynchronization
}

// NewParser creates a parser over ts. Zero limits fall back to defaults.
func NewParser(ts *token.Stream, limits Limits) *Parser {
	if limits.MaxMessages <= 0 {
		limits.MaxMessages = DefaultMaxMessages
	}
	if limits.MaxMessageSize <= 0 {
		limits.MaxMessageSize = DefaultMaxMessageSize
	}
	return &Parser{ts: ts, limits: limits}
}

// ok reports whether no error has been recorded since the current unit
// began. Most parsing steps are no-ops once ok is false, which keeps
// diagnostics from cascading.
func (p *Parser) ok() bool { return p.ts.Errors() == p.base }

// next advances the stream, maintaining the nesting depth.
func (p *Parser) next() {
	switch p.ts.Kind() {
	case token.KindLBrace, token.KindLSquare:
		p.depth++
	case token.KindRBrace, token.KindRSquare:
		p.depth--
	}
	p.ts.Next()
}

func (p *Parser) expect(k token.Kind) {
	if !p.ok() {
		return
	}
	if p.ts.Kind() == k {
		p.next()
	} else {
		p.ts.Errorf("expecting %v", k)
	}
}

// Begin consumes the document preamble: { "vectors" : [
// A malformed preamble is a file-level failure, not a vector-level one.
func (p *Parser) Begin() error {
	p.base = p.ts.Errors()
	p.expect(token.KindLBrace)
	if p.ok() {
		if p.ts.IsName("vectors") {
			p.next()
		} else {
			p.ts.Errorf(`expecting "vectors"`)
		}
	}
	p.expect(token.KindColon)
	p.expect(token.KindLSquare)
	if !p.ok() {
		return ErrParse
	}
	return nil
}

// Next parses the next vector. It returns io.EOF once the document is
// exhausted. A recoverable vector-level failure returns the partial vector
// together with ErrParse.
func (p *Parser) Next() (*Vector, error) {
	p.base = p.ts.Errors()
	switch p.ts.Kind() {
	case token.KindRSquare:
		p.next()
		p.expect(token.KindRBrace)
		if p.ok() && p.ts.Kind() != token.KindEnd {
			p.ts.Errorf("trailing data after vectors")
		}
		return nil, io.EOF
	case token.KindEnd:
		p.ts.Errorf("unexpected end of input")
		return nil, io.EOF
	case token.KindLBrace:
		// fall through to the vector body
	default:
		p.ts.Errorf("expecting '{' to open a vector")
		for p.ts.Kind() != token.KindLBrace && p.ts.Kind() != token.KindRSquare &&
			p.ts.Kind() != token.KindEnd {
			p.next()
		}
		return nil, ErrParse
	}

	open := p.depth
	p.next() // '{'
	vec := &Vector{}
	for p.ok() && p.ts.Kind() == token.KindString {
		p.parseField(vec)
	}
	if p.ok() {
		p.expect(token.KindRBrace)
	}
	if p.ok() && p.ts.Kind() == token.KindComma {
		p.next()
	}
	if !p.ok() {
		p.resync(open)
		return vec, ErrParse
	}
	return vec, nil
}

// resync skips tokens until the object opened at nesting depth open has
// been closed, then past a trailing comma, leaving the stream positioned
// at the next vector.
func (p *Parser) resync(open int) {
	for p.depth > open && p.ts.Kind() != token.KindEnd {
		p.next()
	}
	if p.ts.Kind() == token.KindComma {
		p.next()
	}
}

func (p *Parser) parseField(vec *Vector) {
	name := p.ts.StringValue()
	handler, known := fieldHandlers[name]
	if !known {
		p.ts.Errorf("unknown field '%s'", name)
		return
	}
	handler(p, vec)
}

// stringField consumes `"field" : "value"` with an optional trailing
// comma. The current token is the field name.
func (p *Parser) stringField(dst *string) {
	p.next()
	p.expect(token.KindColon)
	if !p.ok() {
		return
	}
	if p.ts.Kind() != token.KindString {
		p.ts.Errorf("expecting string value")
		return
	}
	*dst = p.ts.StringValue()
	p.next()
	if p.ts.Kind() == token.KindComma {
		p.next()
	}
}

// binaryField consumes a hex-encoded value into dst. max bounds the
// decoded size; zero means unbounded.
func (p *Parser) binaryField(dst *[]byte, max int) {
	p.next()
	p.expect(token.KindColon)
	if !p.ok() {
		return
	}
	if p.ts.Kind() != token.KindString {
		p.ts.Errorf("expecting hexadecimal string value")
		return
	}
	buf, err := DecodeHex(p.ts.StringValue())
	if err != nil {
		p.ts.Errorf("invalid hexadecimal data")
		return
	}
	if max > 0 && len(buf) > max {
		p.ts.Errorf("value exceeds %d bytes", max)
		return
	}
	*dst = buf
	p.next()
	if p.ts.Kind() == token.KindComma {
		p.next()
	}
}

// messagesField consumes the bracketed transcript array. Each entry must
// contain exactly a payload and a ciphertext.
func (p *Parser) messagesField(vec *Vector) {
	p.next()
	p.expect(token.KindColon)
	p.expect(token.KindLSquare)
	for p.ok() && p.ts.Kind() == token.KindLBrace {
		if len(vec.Messages) >= p.limits.MaxMessages {
			p.ts.Errorf("too many messages for test vector")
			return
		}
		p.next() // '{'
		var msg Message
		for p.ok() && p.ts.Kind() == token.KindString {
			switch name := p.ts.StringValue(); name {
			case "payload":
				p.binaryField(&msg.Payload, p.limits.MaxMessageSize)
			case "ciphertext":
				p.binaryField(&msg.Ciphertext, p.limits.MaxMessageSize)
			default:
				p.ts.Errorf("unknown message field '%s'", name)
			}
		}
		if p.ok() && msg.Payload == nil {
			p.ts.Errorf("missing payload for message")
		}
		if p.ok() && msg.Ciphertext == nil {
			p.ts.Errorf("missing ciphertext for message")
		}
		vec.Messages = append(vec.Messages, msg)
		p.expect(token.KindRBrace)
		if p.ok() && p.ts.Kind() == token.KindComma {
			p.next()
		}
	}
	p.expect(token.KindRSquare)
	if p.ok() && p.ts.Kind() == token.KindComma {
		p.next()
	}
}
