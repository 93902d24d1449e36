package repository

import (
	"bytes"
	"encoding/json"
)

var nulEscape = []byte(`\u0000`)

// marshalJSONB encodes v for a JSONB column. Postgres rejects the NUL
// character in JSONB text, so every \u0000 escape is removed.
func marshalJSONB(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return stripNUL(data), nil
}

// stripNUL removes \u0000 escapes from encoded JSON. Escaped backslashes
// are skipped as a pair, so a literal `\\u0000` string is preserved.
func stripNUL(data []byte) []byte {
	if !bytes.Contains(data, nulEscape) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if bytes.HasPrefix(data[i:], nulEscape) {
			i += len(nulEscape) - 1
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
