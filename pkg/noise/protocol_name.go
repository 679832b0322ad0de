package noise

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedName is returned when a full protocol name does not follow
// the "Prefix_Pattern_DH_Cipher_Hash" grammar or names an algorithm that
// is not in the registry.
var ErrMalformedName = errors.New("noise: malformed protocol name")

// ProtocolID is the decomposed form of a full protocol name such as
// "Noise_XX_25519_AESGCM_SHA256". Reserved carries the secondary identifier
// of a hybrid DH component ("25519+NewHope") and is zero otherwise.
type ProtocolID struct {
	Prefix   ID
	Pattern  ID
	DH       ID
	Cipher   ID
	Hash     ID
	Reserved ID
}

// ParseProtocolName decomposes a full protocol name into its registered
// algorithm identifiers.
func ParseProtocolName(name string) (ProtocolID, error) {
	var pid ProtocolID
	parts := strings.Split(name, "_")
	if len(parts) != 5 {
		return pid, fmt.Errorf("%w: %q has %d components, want 5", ErrMalformedName, name, len(parts))
	}
	if pid.Prefix = IDOf(CategoryPrefix, parts[0]); pid.Prefix == 0 {
		return pid, fmt.Errorf("%w: unknown prefix %q", ErrMalformedName, parts[0])
	}
	if pid.Pattern = IDOf(CategoryPattern, parts[1]); pid.Pattern == 0 {
		return pid, fmt.Errorf("%w: unknown pattern %q", ErrMalformedName, parts[1])
	}
	dh := parts[2]
	if primary, secondary, hybrid := strings.Cut(dh, "+"); hybrid {
		dh = primary
		if pid.Reserved = IDOf(CategoryDH, secondary); pid.Reserved == 0 {
			return pid, fmt.Errorf("%w: unknown dh function %q", ErrMalformedName, secondary)
		}
	}
	if pid.DH = IDOf(CategoryDH, dh); pid.DH == 0 {
		return pid, fmt.Errorf("%w: unknown dh function %q", ErrMalformedName, dh)
	}
	if pid.Cipher = IDOf(CategoryCipher, parts[3]); pid.Cipher == 0 {
		return pid, fmt.Errorf("%w: unknown cipher %q", ErrMalformedName, parts[3])
	}
	if pid.Hash = IDOf(CategoryHash, parts[4]); pid.Hash == 0 {
		return pid, fmt.Errorf("%w: unknown hash %q", ErrMalformedName, parts[4])
	}
	return pid, nil
}

// String reassembles the full protocol name. Unregistered identifiers
// render as empty components.
func (p ProtocolID) String() string {
	dh := NameOf(CategoryDH, p.DH)
	if p.Reserved != 0 {
		dh += "+" + NameOf(CategoryDH, p.Reserved)
	}
	return strings.Join([]string{
		NameOf(CategoryPrefix, p.Prefix),
		NameOf(CategoryPattern, p.Pattern),
		dh,
		NameOf(CategoryCipher, p.Cipher),
		NameOf(CategoryHash, p.Hash),
	}, "_")
}
