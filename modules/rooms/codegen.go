package rooms

import (
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
)

// roomCodeAlphabet is the case-normalized alphabet room codes are drawn from.
const roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultCodeLength is the length of generated room codes.
const DefaultCodeLength = 6

// maxCodeAttempts bounds collision retries during room creation.
const maxCodeAttempts = 10

// NewCodeGenerator returns a generator producing uppercase alphanumeric
// room codes of the given length.
func NewCodeGenerator(length int) (func() string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return nanoid.CustomASCII(roomCodeAlphabet, length)
}

// NormalizeRoomCode maps a caller-supplied code to its canonical form.
// Room codes are case-insensitive on the wire and stored uppercase.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode reports whether code, after normalization, has the shape
// of a generated room code.
func IsValidRoomCode(code string) bool {
	code = NormalizeRoomCode(code)
	if len(code) != DefaultCodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(roomCodeAlphabet, c) {
			return false
		}
	}
	return true
}
