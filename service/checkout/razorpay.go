package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway drives the embedded-widget flow: the client opens the
// Razorpay modal with the order id and public key, then posts the
// payment id and signature back for verification.
type RazorpayGateway struct{}

func (g *RazorpayGateway) Name() string {
	return models.GatewayRazorpay
}

func (g *RazorpayGateway) CreateSession(m *models.Member, tier models.MembershipType, opts SessionOptions) (*Session, error) {
	price, ok := models.PriceFor(tier)
	if !ok {
		return nil, fmt.Errorf("no price configured for membership type %q", tier)
	}

	amountINR := ConvertUSDToINR(price)
	amountPaise := int64(math.Round(amountINR * 100))

	keyID := os.Getenv("RAZORPAY_KEY_ID")
	client := razorpay.NewClient(keyID, os.Getenv("RAZORPAY_KEY_SECRET"))

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("GYM-%d-%d", m.ID, time.Now().Unix()),
		"notes": map[string]interface{}{
			"member_id":       fmt.Sprint(m.ID),
			"membership_type": string(tier),
		},
	}

	body, err := client.Order.Create(data, nil)
	if err != nil {
		return nil, err
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("razorpay order response missing order id")
	}

	return &Session{
		ID:          orderID,
		Amount:      amountINR,
		AmountMinor: amountPaise,
		Currency:    "INR",
		KeyID:       keyID,
	}, nil
}

// VerifyPayment checks the widget's completion handler payload: the
// signature must be an HMAC-SHA256 of "order_id|payment_id" under the
// key secret. A mismatch is ErrVerificationFailed, never a paid
// outcome.
func (g *RazorpayGateway) VerifyPayment(proof Proof) (*Outcome, error) {
	if proof.PaymentID == "" || proof.Signature == "" {
		return nil, ErrVerificationFailed
	}

	mac := hmac.New(sha256.New, []byte(os.Getenv("RAZORPAY_KEY_SECRET")))
	mac.Write([]byte(proof.SessionID + "|" + proof.PaymentID))
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(proof.Signature), []byte(expectedMAC)) {
		return nil, ErrVerificationFailed
	}

	return &Outcome{Paid: true}, nil
}
