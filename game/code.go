package game

import (
	"math/rand"
	"strings"
)

// CodeCharset is the room code alphabet.
const CodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength is the length of generated room codes.
const DefaultCodeLength = 6

// CodeGenerator returns a candidate room code. Candidates may collide; the
// registry retries.
type CodeGenerator func() string

// RandomCodes returns a generator of length-character codes over CodeCharset.
func RandomCodes(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return func() string {
		b := make([]byte, length)
		for i := range b {
			b[i] = CodeCharset[rand.Intn(len(CodeCharset))]
		}
		return string(b)
	}
}

// NormalizeCode trims and upper-cases a client supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
