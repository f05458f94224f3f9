package source

import "bytes"

// nonFiniteTokens are the bare literals pandas writes for missing floats.
// Longer tokens come first so "-Infinity" is not read as "-" + "Infinity".
var nonFiniteTokens = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("-NaN"), []byte("NaN")}

func hasNonFiniteToken(data []byte) bool {
	return bytes.Contains(data, []byte("NaN")) || bytes.Contains(data, []byte("Infinity"))
}

// repairNonFinite rewrites bare NaN and Infinity literals outside of strings
// to null. String contents are copied untouched.
func repairNonFinite(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false

	for i := 0; i < len(data); {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			i++
			continue
		}
		if tok := nonFiniteAt(data, i); tok > 0 {
			out = append(out, "null"...)
			i += tok
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}

// nonFiniteAt returns the length of the non-finite literal starting at i, or
// 0. The literal must not be part of a longer identifier.
func nonFiniteAt(data []byte, i int) int {
	for _, tok := range nonFiniteTokens {
		if !bytes.HasPrefix(data[i:], tok) {
			continue
		}
		end := i + len(tok)
		if end < len(data) && isIdentByte(data[end]) {
			return 0
		}
		if i > 0 && isIdentByte(data[i-1]) {
			return 0
		}
		return len(tok)
	}
	return 0
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
