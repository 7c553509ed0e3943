package serial

import (
	"bytes"
	"fmt"
)

// pyString renders s as a single-quoted Python string literal.
func pyString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('\'')
	for _, b := range []byte(s) {
		switch {
		case b == '\'' || b == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(b)
		case b < 0x20 || b > 0x7e:
			fmt.Fprintf(&buf, "\\x%02x", b)
		default:
			buf.WriteByte(b)
		}
	}
	buf.WriteByte('\'')
	return buf.String()
}

// pyBytes renders raw bytes as a Python bytes literal. Everything is
// hex-escaped so arbitrary binary content survives the REPL.
func pyBytes(data []byte) string {
	var buf bytes.Buffer
	buf.WriteString("b'")
	for _, b := range data {
		fmt.Fprintf(&buf, "\\x%02x", b)
	}
	buf.WriteByte('\'')
	return buf.String()
}
