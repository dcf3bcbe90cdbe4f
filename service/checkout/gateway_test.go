package checkout

import (
	"testing"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectGateway(t *testing.T) {
	tests := []struct {
		name     string
		country  string
		override string
		expected string
	}{
		{"india routes to razorpay", "IN", "", models.GatewayRazorpay},
		{"india lowercase", "in", "", models.GatewayRazorpay},
		{"india with whitespace", " IN ", "", models.GatewayRazorpay},
		{"us routes to stripe", "US", "", models.GatewayStripe},
		{"germany routes to stripe", "DE", "", models.GatewayStripe},
		{"unknown country routes to stripe", "", "", models.GatewayStripe},
		{"override wins over country", "IN", models.GatewayStripe, models.GatewayStripe},
		{"override to razorpay outside india", "US", models.GatewayRazorpay, models.GatewayRazorpay},
		{"bogus override is ignored", "IN", "paypal", models.GatewayRazorpay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectGateway(tt.country, tt.override))
		})
	}
}

func TestConvertUSDToINR(t *testing.T) {
	assert.InDelta(t, 2489.17, ConvertUSDToINR(29.99), 0.01)
	assert.Zero(t, ConvertUSDToINR(0))

	// Deterministic for a given input
	assert.Equal(t, ConvertUSDToINR(49.99), ConvertUSDToINR(49.99))
}

func TestLocalizedPrice(t *testing.T) {
	amount, currency, ok := LocalizedPrice(models.MembershipBasic, models.GatewayStripe)
	assert.True(t, ok)
	assert.Equal(t, "USD", currency)
	assert.Equal(t, 29.99, amount)

	amount, currency, ok = LocalizedPrice(models.MembershipBasic, models.GatewayRazorpay)
	assert.True(t, ok)
	assert.Equal(t, "INR", currency)
	assert.InDelta(t, 29.99*83.0, amount, 0.01)

	_, _, ok = LocalizedPrice("platinum", models.GatewayStripe)
	assert.False(t, ok)
}
