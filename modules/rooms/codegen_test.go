package rooms

import (
	"strings"
	"testing"
)

func TestNewCodeGenerator(t *testing.T) {
	newCode, err := NewCodeGenerator(DefaultCodeLength)
	if err != nil {
		t.Fatalf("NewCodeGenerator() error = %v", err)
	}

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code := newCode()
		if len(code) != DefaultCodeLength {
			t.Fatalf("generated code %q has length %d, want %d", code, len(code), DefaultCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(roomCodeAlphabet, c) {
				t.Fatalf("generated code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = struct{}{}
	}

	// 1000 draws from a 36^6 space should essentially never collide.
	if len(seen) < 990 {
		t.Errorf("got %d distinct codes out of 1000 draws", len(seen))
	}
}

func TestNewCodeGeneratorDefaultsLength(t *testing.T) {
	newCode, err := NewCodeGenerator(0)
	if err != nil {
		t.Fatalf("NewCodeGenerator(0) error = %v", err)
	}
	if got := len(newCode()); got != DefaultCodeLength {
		t.Errorf("code length = %d, want %d", got, DefaultCodeLength)
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "already canonical",
			code: "ABC123",
			want: "ABC123",
		},
		{
			name: "lowercase",
			code: "abc123",
			want: "ABC123",
		},
		{
			name: "mixed case with whitespace",
			code: "  aBc123 ",
			want: "ABC123",
		},
		{
			name: "empty",
			code: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeRoomCode(tt.code); got != tt.want {
				t.Errorf("NormalizeRoomCode(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsValidRoomCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{
			name: "canonical code",
			code: "ABC123",
			want: true,
		},
		{
			name: "lowercase normalizes",
			code: "abc123",
			want: true,
		},
		{
			name: "too short",
			code: "ABC12",
			want: false,
		},
		{
			name: "too long",
			code: "ABC1234",
			want: false,
		},
		{
			name: "punctuation",
			code: "ABC-12",
			want: false,
		},
		{
			name: "empty",
			code: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidRoomCode(tt.code); got != tt.want {
				t.Errorf("IsValidRoomCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
