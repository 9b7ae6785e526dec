package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress_Valid(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"street city region", "Champ de Mars, 5 Avenue Anatole France, Paris"},
		{"four segments", "1600 Pennsylvania Ave NW, Washington, DC, USA"},
		{"no digits but letters", "Champ de Mars, Avenue Anatole France, Paris"},
		{"segments with extra spaces", "  10 Downing Street , London , UK "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ValidateAddress(tt.address)
			assert.True(t, outcome.Valid, "reason: %s", outcome.Reason)
			assert.Empty(t, outcome.Reason)
		})
	}
}

func TestValidateAddress_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"single segment", "not an address"},
		{"two segments", "Main Street, Springfield"},
		{"only empty segments", ",,,"},
		{"punctuation only", "?!, --, ##"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ValidateAddress(tt.address)
			assert.False(t, outcome.Valid)
			assert.NotEmpty(t, outcome.Reason, "invalid outcome must carry a reason")
		})
	}
}

func TestValidateAddress_FewerThanThreeSegmentsAlwaysInvalid(t *testing.T) {
	// Exhaustive over the segment-count boundary.
	for _, address := range []string{"a", "a, b", "1, 2", "x,", ",y,"} {
		assert.False(t, ValidateAddress(address).Valid, "address %q", address)
	}
}

func TestValidateAddress_Deterministic(t *testing.T) {
	address := "Champ de Mars, 5 Avenue Anatole France, Paris"
	first := ValidateAddress(address)
	second := ValidateAddress(address)
	assert.Equal(t, first, second)
}
