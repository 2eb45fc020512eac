package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeRefundType(t *testing.T) {
	tests := []struct {
		in     string
		want   RefundType
		wantOK bool
	}{
		{"full", RefundFull, true},
		{"Full Refund", RefundFull, true},
		{"store credit", RefundStoreCredit, true},
		{"credit note", RefundStoreCredit, true},
		{"EXCHANGE ONLY", RefundExchangeOnly, true},
		{"no returns", RefundNone, true},
		{"final sale", RefundNone, true},
		{"exchange_only", RefundExchangeOnly, true},
		{"", RefundNotSpecified, false},
		{"gibberish", RefundNotSpecified, false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeRefundType(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
	}
}

func TestFileExtensionHelpers(t *testing.T) {
	assert.True(t, IsImageExt(".JPG"))
	assert.True(t, IsImageExt("png"))
	assert.False(t, IsImageExt(".pdf"))
	assert.True(t, IsTextExt(".txt"))
	assert.False(t, IsTextExt(".jpg"))
	assert.Equal(t, "jpeg", NormalizeExt(".JPEG"))
}
