package engine

import (
	"fmt"
	"strings"
)

// NameError reports a disagreement between the decomposed protocol name
// and the vector's separately declared algorithm fields.
type NameError struct {
	// Component is the algorithm category that disagreed.
	Component string
	// FromName is what the full protocol name decomposes to.
	FromName string
	// Declared is the vector's standalone field value.
	Declared string
}

// Error formats the disagreement with both values.
func (e *NameError) Error() string {
	return fmt.Sprintf("protocol name %s is %q but vector declares %q",
		e.Component, e.FromName, e.Declared)
}

// OpError reports a non-success result from a handshake engine operation.
type OpError struct {
	Op  string
	Err error
}

// Error names the failing operation.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// MismatchError reports produced bytes that differ from the script. Both
// sides are rendered in hexadecimal for diagnosis.
type MismatchError struct {
	// What is "ciphertext" or "plaintext".
	What string
	// Step is the 0-based message index.
	Step int
	// Actual is what the engine produced, Expected what the script demands.
	Actual   []byte
	Expected []byte
}

// Error renders both blocks in hex.
func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wrong at message %d\n", e.What, e.Step)
	fmt.Fprintf(&b, "    actual  :%s\n", hexBlock(e.Actual))
	fmt.Fprintf(&b, "    expected:%s", hexBlock(e.Expected))
	return b.String()
}

// hexBlock formats bytes 16 per row. Blocks longer than one row start on
// their own line, indented.
func hexBlock(block []byte) string {
	var b strings.Builder
	if len(block) > 16 {
		b.WriteString("\n       ")
	}
	for i, c := range block {
		fmt.Fprintf(&b, " %02x", c)
		if i%16 == 15 && len(block) > 16 && i != len(block)-1 {
			b.WriteString("\n       ")
		}
	}
	return b.String()
}
