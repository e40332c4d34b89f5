package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoredFileName(t *testing.T) {
	assert.Equal(t, "1700000000000-cat.png", StoredFileName(1700000000000, "cat.png"))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cat.png", "cat.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cat.png`, "cat.png"},
		{"dir/", "dir"},
		{" cat.png ", " cat.png "},
		{"", ""},
		{"..", ""},
		{"/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), "input %q", tt.in)
	}
}
