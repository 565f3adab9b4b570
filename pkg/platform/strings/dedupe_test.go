package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  2  ", "8  "},
			expected: []string{"2", "8"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"8", "2", "8"},
			expected: []string{"8", "2"},
		},
		{
			name:     "drops blanks",
			input:    []string{"", "  ", "2"},
			expected: []string{"2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
