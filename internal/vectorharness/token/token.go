// Package token provides the JSON token stream the vector parser consumes.
//
// The stream exposes one token at a time together with the current line
// number and an error counter. Diagnostics are reported through Errorf,
// which prints a "file:line: message" line and bumps the counter; parsing
// layers above compare counter snapshots to decide what to abort.
package token

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Kind identifies a token.
type Kind int

// Token kinds.
const (
	// KindString is a double-quoted string; its decoded value is available
	// from StringValue.
	KindString Kind = iota
	KindColon
	KindComma
	KindLBrace
	KindRBrace
	KindLSquare
	KindRSquare
	// KindEnd means the input is exhausted.
	KindEnd
)

// String returns a printable token name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindColon:
		return "':'"
	case KindComma:
		return "','"
	case KindLBrace:
		return "'{'"
	case KindRBrace:
		return "'}'"
	case KindLSquare:
		return "'['"
	case KindRSquare:
		return "']'"
	case KindEnd:
		return "end of input"
	default:
		return "unknown"
	}
}

// Stream tokenizes vector-file JSON. The first token is available
// immediately after NewStream; Next advances.
type Stream struct {
	name string
	r    *bufio.Reader
	diag io.Writer

	line    int // line of the current token, 1-based
	scanPos int // line the scanner is on
	kind    Kind
	str     string
	errs    int
}

// NewStream creates a stream reading from r. name labels diagnostics,
// which are written to diag.
func NewStream(name string, r io.Reader, diag io.Writer) *Stream {
	s := &Stream{
		name:    name,
		r:       bufio.NewReader(r),
		diag:    diag,
		scanPos: 1,
	}
	s.Next()
	return s
}

// Name returns the stream's file name.
func (s *Stream) Name() string { return s.name }

// Kind returns the current token.
func (s *Stream) Kind() Kind { return s.kind }

// StringValue returns the decoded value of the current string token, or ""
// when the current token is not a string.
func (s *Stream) StringValue() string {
	if s.kind != KindString {
		return ""
	}
	return s.str
}

// IsName reports whether the current token is the string name.
func (s *Stream) IsName(name string) bool {
	return s.kind == KindString && s.str == name
}

// Line returns the 1-based line number of the current token.
func (s *Stream) Line() int { return s.line }

// Errors returns the number of diagnostics reported so far.
func (s *Stream) Errors() int { return s.errs }

// Errorf reports a diagnostic at the current token's line and increments
// the error counter.
func (s *Stream) Errorf(format string, args ...any) {
	s.errs++
	fmt.Fprintf(s.diag, "%s:%d: %s\n", s.name, s.line, fmt.Sprintf(format, args...))
}

// Next advances to the next token. Lexical problems are reported through
// Errorf and the offending input is skipped.
func (s *Stream) Next() {
	for {
		c, err := s.readByte()
		if err != nil {
			s.setToken(KindEnd, "")
			return
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case ':':
			s.setToken(KindColon, "")
			return
		case ',':
			s.setToken(KindComma, "")
			return
		case '{':
			s.setToken(KindLBrace, "")
			return
		case '}':
			s.setToken(KindRBrace, "")
			return
		case '[':
			s.setToken(KindLSquare, "")
			return
		case ']':
			s.setToken(KindRSquare, "")
			return
		case '"':
			s.lexString()
			return
		default:
			s.line = s.scanPos
			s.Errorf("unexpected character %q", c)
		}
	}
}

func (s *Stream) setToken(k Kind, str string) {
	s.line = s.scanPos
	s.kind = k
	s.str = str
}

func (s *Stream) readByte() (byte, error) {
	c, err := s.r.ReadByte()
	if err == nil && c == '\n' {
		s.scanPos++
	}
	return c, err
}

// lexString scans the remainder of a double-quoted string. The opening
// quote has already been consumed.
func (s *Stream) lexString() {
	start := s.scanPos
	var b strings.Builder
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			s.line = start
			s.errs++
			fmt.Fprintf(s.diag, "%s:%d: unterminated string\n", s.name, s.line)
			s.kind = KindEnd
			s.str = ""
			return
		}
		switch c {
		case '"':
			s.line = start
			s.kind = KindString
			s.str = b.String()
			return
		case '\\':
			s.lexEscape(&b, start)
		case '\n':
			s.scanPos++
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
}

func (s *Stream) lexEscape(b *strings.Builder, start int) {
	c, err := s.r.ReadByte()
	if err != nil {
		return
	}
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		var code rune
		for i := 0; i < 4; i++ {
			h, err := s.r.ReadByte()
			if err != nil {
				return
			}
			d, ok := hexDigit(h)
			if !ok {
				s.line = start
				s.errs++
				fmt.Fprintf(s.diag, "%s:%d: invalid string escape '\\u': bad hex digit %q\n", s.name, s.line, h)
				return
			}
			code = code<<4 | rune(d)
		}
		b.WriteRune(code)
	default:
		s.line = start
		s.errs++
		fmt.Fprintf(s.diag, "%s:%d: invalid string escape '\\%c'\n", s.name, s.line, c)
	}
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
