// Package shared holds small helpers for handling secrets read from the
// terminal, such as passwords that must not linger in memory.
package shared

// WipeByteArray overwrites the contents of b with zeros. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConsumeSecret copies b into a string and wipes b. The API wire format needs
// passwords as JSON strings, so the byte buffer is the only copy we can clear.
func ConsumeSecret(b []byte) string {
	s := string(b)
	WipeByteArray(b)
	return s
}
