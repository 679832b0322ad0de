package loader

import "encoding/hex"

// DecodeHex decodes an even-length hexadecimal string into a fresh buffer
// owned by the caller. Odd-length input or any non-hex character yields an
// error and no buffer; nothing is ever truncated. An empty string decodes
// to a non-nil empty slice.
func DecodeHex(s string) ([]byte, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
