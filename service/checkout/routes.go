package checkout

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/fitforxe/fitforxe-server/cmd/utils"
	"github.com/fitforxe/fitforxe-server/service/member"
	"github.com/fitforxe/fitforxe-server/service/payment"
	"github.com/gorilla/mux"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
	"gorm.io/gorm"
)

// Handler drives the member-onboarding checkout flow: ensure a member
// record exists, create a gateway-side session, persist the pending
// transaction, and reconcile the asynchronous payment outcome back into
// member and payment state.
type Handler struct {
	db       *gorm.DB
	gateways map[string]Gateway
}

func NewHandler(db *gorm.DB, gateways map[string]Gateway) *Handler {
	return &Handler{db: db, gateways: gateways}
}

// RegisterRoutes registers the checkout and billing endpoints
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/membership-pricing", h.GetMembershipPricing).Methods("GET")
	router.HandleFunc("/detect-country", h.DetectCountry).Methods("GET")
	router.HandleFunc("/checkout/gateway", h.SuggestGateway).Methods("GET")

	router.HandleFunc("/stripe/checkout", h.CreateStripeCheckout).Methods("POST")
	router.HandleFunc("/stripe/checkout/status/{sessionID}", h.GetStripeCheckoutStatus).Methods("GET")
	router.HandleFunc("/webhook/stripe", h.HandleStripeWebhook).Methods("POST")

	router.HandleFunc("/razorpay/create-order", h.CreateRazorpayOrder).Methods("POST")
	router.HandleFunc("/razorpay/verify-payment", h.VerifyRazorpayPayment).Methods("POST")
	router.HandleFunc("/razorpay/cancel-payment", h.CancelRazorpayPayment).Methods("POST")
}

// GetMembershipPricing returns the reference price map
func (h *Handler) GetMembershipPricing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.MembershipPricing)
}

// DetectCountry geolocates the caller, defaulting to US when the lookup
// fails
func (h *Handler) DetectCountry(w http.ResponseWriter, r *http.Request) {
	country := DetectCountry(utils.ClientIP(r))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"country": country})
}

// SuggestGateway resolves the gateway and localized pricing for a
// country. An explicit gateway parameter overrides the country routing.
func (h *Handler) SuggestGateway(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()
	country := queryParams.Get("country")
	if country == "" {
		country = DetectCountry(utils.ClientIP(r))
	}

	gateway := SelectGateway(country, queryParams.Get("gateway"))

	pricing := make(map[models.MembershipType]float64, len(models.MembershipPricing))
	currency := "USD"
	for tier := range models.MembershipPricing {
		amount, cur, _ := LocalizedPrice(tier, gateway)
		pricing[tier] = amount
		currency = cur
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"gateway":  gateway,
		"country":  country,
		"currency": currency,
		"pricing":  pricing,
	})
}

type stripeCheckoutRequest struct {
	MemberID       uint                  `json:"member_id"`
	MembershipType models.MembershipType `json:"membership_type"`
	SuccessURL     string                `json:"success_url"`
	CancelURL      string                `json:"cancel_url"`
}

// CreateStripeCheckout creates a hosted checkout session for an
// existing member and persists the pending transaction. The pending row
// is committed before the redirect URL is handed to the browser, so an
// abandoned checkout always leaves a reconcilable record.
func (h *Handler) CreateStripeCheckout(w http.ResponseWriter, r *http.Request) {
	var req stripeCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SuccessURL == "" || req.CancelURL == "" {
		http.Error(w, "success_url and cancel_url are required", http.StatusBadRequest)
		return
	}
	if !models.ValidMembershipType(req.MembershipType) {
		http.Error(w, "Invalid membership type", http.StatusBadRequest)
		return
	}

	m, err := member.GetMember(h.db, req.MemberID)
	if err != nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	gw := h.gateways[models.GatewayStripe]
	sess, err := gw.CreateSession(m, req.MembershipType, SessionOptions{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		// No transaction row exists yet; the attempt just restarts
		log.Printf("stripe session creation failed for member %d: %v", m.ID, err)
		http.Error(w, "Payment processing failed, please try again", http.StatusBadGateway)
		return
	}

	p := models.Payment{
		MemberID:       m.ID,
		Gateway:        models.GatewayStripe,
		SessionID:      sess.ID,
		Amount:         sess.Amount,
		Currency:       sess.Currency,
		MembershipType: req.MembershipType,
		PaymentMethod:  "card",
	}
	if err := payment.CreatePending(h.db, &p); err != nil {
		log.Printf("failed to persist pending transaction for session %s: %v", sess.ID, err)
		http.Error(w, "Payment processing failed, please try again", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"url":        sess.URL,
		"session_id": sess.ID,
	})
}

// GetStripeCheckoutStatus reconciles a session after the browser
// returns from the hosted page. The status is taken from a server-side
// poll of the gateway, never from the client's query-string markers.
func (h *Handler) GetStripeCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["sessionID"]

	p, err := payment.GetBySession(h.db, sessionID)
	if err != nil {
		http.Error(w, "Checkout session not found", http.StatusNotFound)
		return
	}

	if p.Status == models.PaymentStatusCompleted {
		h.respondStatus(w, p.Status)
		return
	}

	gw := h.gateways[models.GatewayStripe]
	outcome, err := gw.VerifyPayment(Proof{SessionID: sessionID})
	if err != nil {
		log.Printf("stripe status poll failed for session %s: %v", sessionID, err)
		http.Error(w, "Payment processing failed, please try again", http.StatusBadGateway)
		return
	}

	switch {
	case outcome.Paid:
		if err := h.finalizeCheckout(sessionID, outcome.CustomerRef); err != nil {
			http.Error(w, "Error completing payment", http.StatusInternalServerError)
			return
		}
		h.respondStatus(w, models.PaymentStatusCompleted)
	case outcome.Expired:
		if err := payment.MarkCancelled(h.db, sessionID); err != nil && !errors.Is(err, payment.ErrStaleTransaction) {
			http.Error(w, "Error updating payment", http.StatusInternalServerError)
			return
		}
		h.respondStatus(w, models.PaymentStatusCancelled)
	default:
		h.respondStatus(w, models.PaymentStatusPending)
	}
}

// HandleStripeWebhook processes signed gateway events. Delivery is
// idempotent both per event id and per session: a re-delivered
// completion never extends membership a second time.
func (h *Handler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), os.Getenv("STRIPE_WEBHOOK_SECRET"))
	if err != nil {
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	if event.Type != "checkout.session.completed" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		http.Error(w, "Error parsing webhook payload", http.StatusBadRequest)
		return
	}

	customerRef := ""
	if cs.Customer != nil {
		customerRef = cs.Customer.ID
	}

	// The dedup row and the completion commit or roll back together, so
	// a failed delivery stays retryable under the same event id.
	tx := h.db.Begin()

	seen, err := recordWebhookEvent(tx, event.ID)
	if err != nil {
		tx.Rollback()
		http.Error(w, "Error processing webhook", http.StatusInternalServerError)
		return
	}
	if seen {
		// Duplicate delivery, acknowledge without reprocessing
		tx.Rollback()
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := completeSession(tx, cs.ID, customerRef); err != nil {
		tx.Rollback()
		if errors.Is(err, payment.ErrNotFound) {
			log.Printf("webhook for unknown session %s", cs.ID)
			http.Error(w, "Checkout session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error processing webhook", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error processing webhook", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type razorpayOrderRequest struct {
	MemberID        uint                  `json:"member_id"`
	MembershipType  models.MembershipType `json:"membership_type"`
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	CustomerPhone   string                `json:"customer_phone"`
	CustomerCountry string                `json:"customer_country"`
}

// CreateRazorpayOrder ensures a member record exists (reusing the given
// member id, otherwise creating one with auto-billing enabled), creates
// the gateway order and persists the pending transaction. A duplicate
// email fails the whole attempt instead of silently creating a second
// member on retry.
func (h *Handler) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	var req razorpayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !models.ValidMembershipType(req.MembershipType) {
		http.Error(w, "Invalid membership type", http.StatusBadRequest)
		return
	}

	var m *models.Member
	var err error
	if req.MemberID != 0 {
		m, err = member.GetMember(h.db, req.MemberID)
		if err != nil {
			http.Error(w, "Member not found", http.StatusNotFound)
			return
		}
	} else {
		if req.CustomerName == "" || req.CustomerEmail == "" || req.CustomerPhone == "" || req.CustomerCountry == "" {
			http.Error(w, "Missing required customer details", http.StatusBadRequest)
			return
		}

		firstName, lastName := splitName(req.CustomerName)
		m = &models.Member{
			FirstName:          firstName,
			LastName:           lastName,
			Email:              req.CustomerEmail,
			Phone:              req.CustomerPhone,
			MembershipType:     req.MembershipType,
			AutoBillingEnabled: true,
		}
		if err := member.CreateMember(h.db, m); err != nil {
			if errors.Is(err, member.ErrDuplicateEmail) {
				http.Error(w, "Member with this email already exists", http.StatusConflict)
				return
			}
			http.Error(w, "Error creating member", http.StatusInternalServerError)
			return
		}
	}

	gw := h.gateways[models.GatewayRazorpay]
	sess, err := gw.CreateSession(m, req.MembershipType, SessionOptions{})
	if err != nil {
		log.Printf("razorpay order creation failed for member %d: %v", m.ID, err)
		http.Error(w, "Payment processing failed, please try again", http.StatusBadGateway)
		return
	}

	p := models.Payment{
		MemberID:       m.ID,
		Gateway:        models.GatewayRazorpay,
		SessionID:      sess.ID,
		Amount:         sess.Amount,
		Currency:       sess.Currency,
		MembershipType: req.MembershipType,
		PaymentMethod:  "card",
	}
	if err := payment.CreatePending(h.db, &p); err != nil {
		log.Printf("failed to persist pending transaction for order %s: %v", sess.ID, err)
		http.Error(w, "Payment processing failed, please try again", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id":        sess.ID,
		"amount":          sess.AmountMinor,
		"currency":        sess.Currency,
		"razorpay_key_id": sess.KeyID,
		"member_id":       m.ID,
	})
}

type razorpayVerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyRazorpayPayment checks the widget completion payload. Only a
// valid signature completes the transaction and extends the membership.
func (h *Handler) VerifyRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	var req razorpayVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		http.Error(w, "Missing payment verification fields", http.StatusBadRequest)
		return
	}

	if _, err := payment.GetBySession(h.db, req.RazorpayOrderID); err != nil {
		http.Error(w, "Checkout session not found", http.StatusNotFound)
		return
	}

	gw := h.gateways[models.GatewayRazorpay]
	outcome, err := gw.VerifyPayment(Proof{
		SessionID: req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	})
	if err != nil {
		if errors.Is(err, ErrVerificationFailed) {
			if markErr := payment.MarkFailed(h.db, req.RazorpayOrderID, "signature verification failed"); markErr != nil && !errors.Is(markErr, payment.ErrStaleTransaction) {
				log.Printf("failed to mark order %s failed: %v", req.RazorpayOrderID, markErr)
			}
			http.Error(w, "Payment verification failed, contact support", http.StatusBadRequest)
			return
		}
		http.Error(w, "Payment processing failed, please try again", http.StatusBadGateway)
		return
	}

	if !outcome.Paid {
		http.Error(w, "Payment verification failed, contact support", http.StatusBadRequest)
		return
	}

	if err := h.finalizeCheckout(req.RazorpayOrderID, outcome.CustomerRef); err != nil {
		http.Error(w, "Error completing payment", http.StatusInternalServerError)
		return
	}

	h.respondStatus(w, models.PaymentStatusCompleted)
}

type razorpayCancelRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id"`
}

// CancelRazorpayPayment acknowledges a dismissed widget. The pending
// transaction row is left in place as an orphaned record for later
// reconciliation; nothing else is mutated.
func (h *Handler) CancelRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	var req razorpayCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := payment.GetBySession(h.db, req.RazorpayOrderID)
	if err != nil {
		http.Error(w, "Checkout session not found", http.StatusNotFound)
		return
	}

	if p.Status != models.PaymentStatusPending {
		// Already reconciled to a terminal status; echo what the ledger says
		h.respondStatus(w, p.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  models.PaymentStatusCancelled,
		"message": "Checkout cancelled, you can restart at any time",
	})
}

// finalizeCheckout marks the transaction completed and, exactly once,
// extends the member's membership and records the gateway customer ref.
// Both writes happen in one database transaction; membership extension
// is gated strictly behind the verified confirmation that got us here.
func (h *Handler) finalizeCheckout(sessionID, customerRef string) error {
	tx := h.db.Begin()
	if err := completeSession(tx, sessionID, customerRef); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// completeSession runs the completion writes on the caller's
// transaction.
func completeSession(tx *gorm.DB, sessionID, customerRef string) error {
	periodEnd := member.MembershipEndDate(time.Now().UTC())
	transitioned, p, err := payment.MarkCompleted(tx, sessionID, periodEnd)
	if err != nil {
		return err
	}

	if transitioned {
		if err := member.ExtendMembershipTo(tx, p.MemberID, periodEnd); err != nil {
			return err
		}
		if err := member.SetGatewayCustomerRef(tx, p.MemberID, customerRef); err != nil {
			return err
		}
	}

	return nil
}

// recordWebhookEvent persists the gateway event id on the caller's
// transaction, reporting whether it was already processed.
func recordWebhookEvent(tx *gorm.DB, eventID string) (bool, error) {
	event := models.WebhookEvent{
		EventID:     eventID,
		Gateway:     models.GatewayStripe,
		ProcessedAt: time.Now().UTC(),
	}
	if err := tx.Create(&event).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (h *Handler) respondStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
