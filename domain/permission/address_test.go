package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Address
		str  string
	}{
		{"host", "example.com", Address{Host: "example.com"}, "example.com"},
		{"host port", "example.com:443", Address{Host: "example.com", Port: 443, HasPort: true}, "example.com:443"},
		{"ipv4", "10.0.0.1:22", Address{Host: "10.0.0.1", Port: 22, HasPort: true}, "10.0.0.1:22"},
		{"bracketed v6", "[::1]", Address{Host: "::1"}, "::1"},
		{"bracketed v6 port", "[::1]:8080", Address{Host: "::1", Port: 8080, HasPort: true}, "[::1]:8080"},
		{"bare v6", "fe80::1", Address{Host: "fe80::1"}, "fe80::1"},
		{"port zero", "localhost:0", Address{Host: "localhost", Port: 0, HasPort: true}, "localhost:0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestParseAddress_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"named port", "example.com:http"},
		{"port out of range", "example.com:70000"},
		{"negative port", "example.com:-1"},
		{"empty port", "example.com:"},
		{"unterminated bracket", "[::1:80"},
		{"bracket bad port", "[::1]:x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.in)
			assert.Error(t, err)
		})
	}

	_, err := ParseAddress("")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestJoinAddress(t *testing.T) {
	assert.Equal(t, "localhost:80", JoinAddress("localhost", 80))
	assert.Equal(t, "[::1]:443", JoinAddress("::1", 443))
}
