package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	type testcase struct {
		name     string
		input    string
		expected string
	}
	testcases := []testcase{
		{
			name:     "clean string unchanged",
			input:    "Aptos Monkeys",
			expected: "Aptos Monkeys",
		},
		{
			name:     "null bytes stripped",
			input:    "Monkey\x00 #1\x00",
			expected: "Monkey #1",
		},
		{
			name:     "invalid utf8 dropped",
			input:    "Monkey\xff #1",
			expected: "Monkey #1",
		},
		{
			name:     "multibyte preserved",
			input:    "こんにちは",
			expected: "こんにちは",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitizeString(tc.input))
		})
	}
}

func TestSanitizeStringPtr(t *testing.T) {
	assert.Nil(t, sanitizeStringPtr(nil))

	dirty := "0xacc\x00"
	clean := sanitizeStringPtr(&dirty)
	if assert.NotNil(t, clean) {
		assert.Equal(t, "0xacc", *clean)
	}
	// the input is not mutated
	assert.Equal(t, "0xacc\x00", dirty)
}
