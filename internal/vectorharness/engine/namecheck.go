package engine

import (
	"fmt"

	"github.com/noise-conformance/noise-vectors-go/internal/vectorharness/loader"
	"github.com/noise-conformance/noise-vectors-go/pkg/noise"
)

// ValidateName decomposes the vector's full protocol name and cross-checks
// it against the declared pattern/dh/cipher/hash fields and the presence
// of pre-shared keys.
func ValidateName(vec *loader.Vector) error {
	pid, err := noise.ParseProtocolName(vec.Name)
	if err != nil {
		return fmt.Errorf("decomposing %q: %w", vec.Name, err)
	}

	wantPrefix := noise.PrefixStandard
	if vec.InitPSK != nil || vec.RespPSK != nil {
		wantPrefix = noise.PrefixPSK
	}
	if pid.Prefix != wantPrefix {
		return &NameError{
			Component: "prefix",
			FromName:  noise.NameOf(noise.CategoryPrefix, pid.Prefix),
			Declared:  noise.NameOf(noise.CategoryPrefix, wantPrefix),
		}
	}

	checks := []struct {
		component string
		category  noise.Category
		id        noise.ID
		declared  string
	}{
		{"pattern", noise.CategoryPattern, pid.Pattern, vec.Pattern},
		{"dh", noise.CategoryDH, pid.DH, vec.DH},
		{"cipher", noise.CategoryCipher, pid.Cipher, vec.Cipher},
		{"hash", noise.CategoryHash, pid.Hash, vec.Hash},
	}
	for _, c := range checks {
		if name := noise.NameOf(c.category, c.id); name != c.declared {
			return &NameError{Component: c.component, FromName: name, Declared: c.declared}
		}
	}

	if pid.Reserved != 0 {
		return fmt.Errorf("protocol name carries reserved identifier %#x, want none", uint16(pid.Reserved))
	}
	return nil
}
