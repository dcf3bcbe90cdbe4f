package checkout

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
)

// StripeGateway drives the hosted-redirect checkout flow: the browser
// is sent to a Stripe-hosted page and returns via the success or cancel
// URL.
type StripeGateway struct{}

func (g *StripeGateway) Name() string {
	return models.GatewayStripe
}

func (g *StripeGateway) CreateSession(m *models.Member, tier models.MembershipType, opts SessionOptions) (*Session, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	price, ok := models.PriceFor(tier)
	if !ok {
		return nil, fmt.Errorf("no price configured for membership type %q", tier)
	}
	amountCents := int64(math.Round(price * 100))

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(m.Email),
		ClientReferenceID:  stripe.String(fmt.Sprint(m.ID)),
		SuccessURL:         stripe.String(withSessionMarker(opts.SuccessURL)),
		CancelURL:          stripe.String(withSessionMarker(opts.CancelURL)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%s membership (monthly)", tier)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("member_id", fmt.Sprint(m.ID))
	params.AddMetadata("membership_type", string(tier))

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:          s.ID,
		URL:         s.URL,
		Amount:      price,
		AmountMinor: amountCents,
		Currency:    "USD",
	}, nil
}

// VerifyPayment polls the session status server-side. Client-reported
// success alone is never trusted.
func (g *StripeGateway) VerifyPayment(proof Proof) (*Outcome, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	s, err := session.Get(proof.SessionID, nil)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Paid:    s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Expired: s.Status == stripe.CheckoutSessionStatusExpired,
	}
	if s.Customer != nil {
		out.CustomerRef = s.Customer.ID
	}
	return out, nil
}

// withSessionMarker ensures the callback URL carries the session id
// placeholder Stripe substitutes on redirect.
func withSessionMarker(url string) string {
	if url == "" || strings.Contains(url, "{CHECKOUT_SESSION_ID}") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "session_id={CHECKOUT_SESSION_ID}"
}
