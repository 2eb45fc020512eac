package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMerchant(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Brick Paradise Hardware CC", "BRICK PARADISE HARDWARE CC"},
		{"  build   mart  ", "BUILD MART"},
		{"BUILD\tMART", "BUILD MART"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeMerchant(tt.in))
	}
}
