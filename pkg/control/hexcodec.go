package control

import (
	"encoding/hex"
	"strings"
)

// decodeHexFrame parses a space-tolerant run of hex byte pairs, per
// parse_hex_string: it stops at the first token that isn't exactly two hex
// digits rather than failing the whole line, and reports success only if it
// decoded at least one byte.
func decodeHexFrame(s string) ([]byte, bool) {
	var data []byte
	for _, tok := range strings.Fields(s) {
		if len(tok) != 2 {
			break
		}
		b, err := hex.DecodeString(tok)
		if err != nil {
			break
		}
		data = append(data, b[0])
	}
	return data, len(data) > 0
}

// encodeHexFrame renders bytes as space-separated lowercase hex pairs, per
// bytes_to_hex_string.
func encodeHexFrame(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = hex.EncodeToString([]byte{b})
	}
	return strings.Join(parts, " ")
}
