package checkout

import (
	"errors"
	"strings"

	"github.com/fitforxe/fitforxe-server/cmd/models"
)

// ErrVerificationFailed reports a payment proof that did not check out
// (bad signature). A transaction must never be completed after this.
var ErrVerificationFailed = errors.New("payment verification failed")

// SessionOptions carries the per-request parameters a gateway may need
// to build a checkout session.
type SessionOptions struct {
	SuccessURL string
	CancelURL  string
}

// Session is a gateway-side checkout record for one payment attempt.
type Session struct {
	ID          string
	URL         string  // hosted page to redirect to (empty for widget gateways)
	Amount      float64 // charged amount in the session currency
	AmountMinor int64   // same amount in the currency's smallest unit
	Currency    string
	KeyID       string // public key the embedded widget needs (empty for redirect gateways)
}

// Proof is the client- or gateway-supplied evidence of a payment
// outcome, checked before any state is finalized.
type Proof struct {
	SessionID string
	PaymentID string
	Signature string
}

// Outcome is the verified result of a payment attempt.
type Outcome struct {
	Paid        bool
	Expired     bool
	CustomerRef string
}

// Gateway abstracts a payment processor so the checkout flow stays
// gateway-agnostic.
type Gateway interface {
	Name() string
	CreateSession(m *models.Member, tier models.MembershipType, opts SessionOptions) (*Session, error)
	VerifyPayment(proof Proof) (*Outcome, error)
}

// DefaultGateways returns the production gateway set, keyed by name.
func DefaultGateways() map[string]Gateway {
	return map[string]Gateway{
		models.GatewayStripe:   &StripeGateway{},
		models.GatewayRazorpay: &RazorpayGateway{},
	}
}

// DefaultCountry is assumed when geolocation fails.
const DefaultCountry = "US"

// Static USD to INR approximation used for Razorpay pricing. Not a live
// rate.
const usdToINRRate = 83.0

// SelectGateway picks the payment gateway for a customer country.
// Razorpay for India, Stripe everywhere else. An explicit override
// always wins over the detected country.
func SelectGateway(country, override string) string {
	switch override {
	case models.GatewayStripe, models.GatewayRazorpay:
		return override
	}
	if strings.EqualFold(strings.TrimSpace(country), "IN") {
		return models.GatewayRazorpay
	}
	return models.GatewayStripe
}

// ConvertUSDToINR converts a reference price into INR using the fixed
// multiplier. Pure and deterministic for a given price.
func ConvertUSDToINR(usd float64) float64 {
	return usd * usdToINRRate
}

// LocalizedPrice returns the amount and currency a gateway charges for
// a tier.
func LocalizedPrice(tier models.MembershipType, gateway string) (float64, string, bool) {
	price, ok := models.PriceFor(tier)
	if !ok {
		return 0, "", false
	}
	if gateway == models.GatewayRazorpay {
		return ConvertUSDToINR(price), "INR", true
	}
	return price, "USD", true
}
