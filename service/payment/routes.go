package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/fitforxe/fitforxe-server/service/member"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes registers payment-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/payments", h.CreateManualPayment).Methods("POST")
	router.HandleFunc("/payments", h.GetPayments).Methods("GET")
	router.HandleFunc("/payments/member/{memberID:[0-9]+}", h.GetMemberPayments).Methods("GET")
}

type manualPaymentRequest struct {
	MemberID       uint                  `json:"member_id"`
	PaymentMethod  string                `json:"payment_method"`
	MembershipType models.MembershipType `json:"membership_type"`
	Notes          string                `json:"notes"`
	Amount         float64               `json:"amount"`
	CardReference  string                `json:"card_reference"`
	CardExpiry     string                `json:"card_expiry"`
}

// CreateManualPayment records an over-the-counter payment (cash, card,
// check, bank transfer). The transaction is written directly in
// completed state and the member's membership period restarts from now.
// A zero amount is accepted (comp or promotional payment).
func (h *Handler) CreateManualPayment(w http.ResponseWriter, r *http.Request) {
	var req manualPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PaymentMethod == "" {
		http.Error(w, "Payment method is required", http.StatusBadRequest)
		return
	}
	if req.Amount < 0 {
		http.Error(w, "Amount cannot be negative", http.StatusBadRequest)
		return
	}
	if !models.ValidMembershipType(req.MembershipType) {
		http.Error(w, "Invalid membership type", http.StatusBadRequest)
		return
	}

	notes := req.Notes
	if req.PaymentMethod == "card" && req.CardReference != "" {
		cardNote := fmt.Sprintf("card %s", FormatCardNumber(req.CardReference))
		if req.CardExpiry != "" {
			cardNote += " exp " + FormatExpiry(req.CardExpiry)
		}
		if notes != "" {
			notes += "; "
		}
		notes += cardNote
	}

	tx := h.db.Begin()

	if _, err := member.GetMember(tx, req.MemberID); err != nil {
		tx.Rollback()
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	periodEnd := member.MembershipEndDate(now)

	p := models.Payment{
		MemberID:       req.MemberID,
		Gateway:        models.GatewayManual,
		SessionID:      "MAN-" + uuid.New().String(),
		Amount:         req.Amount,
		Currency:       "USD",
		MembershipType: req.MembershipType,
		Status:         models.PaymentStatusCompleted,
		PaymentMethod:  req.PaymentMethod,
		PaymentDate:    now,
		PeriodStart:    now,
		PeriodEnd:      periodEnd,
		Notes:          notes,
	}

	if err := tx.Create(&p).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error recording payment", http.StatusInternalServerError)
		return
	}

	if err := member.ExtendMembershipTo(tx, req.MemberID, periodEnd); err != nil {
		tx.Rollback()
		http.Error(w, "Error updating membership", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error recording payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// GetPayments retrieves payments with optional member filter, newest
// first
func (h *Handler) GetPayments(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	skip := 0
	if skipStr := queryParams.Get("skip"); skipStr != "" {
		parsed, err := strconv.Atoi(skipStr)
		if err == nil && parsed >= 0 {
			skip = parsed
		}
	}

	limit := 100
	if limitStr := queryParams.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	query := h.db.Model(&models.Payment{})
	if memberIDStr := queryParams.Get("member_id"); memberIDStr != "" {
		memberID, err := strconv.ParseUint(memberIDStr, 10, 32)
		if err != nil {
			http.Error(w, "Invalid member_id parameter", http.StatusBadRequest)
			return
		}
		query = query.Where("member_id = ?", memberID)
	}
	if status := queryParams.Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := query.Order("payment_date DESC").Offset(skip).Limit(limit).Find(&payments).Error; err != nil {
		http.Error(w, "Error retrieving payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

func (h *Handler) GetMemberPayments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	memberID, err := strconv.ParseUint(vars["memberID"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	if _, err := member.GetMember(h.db, uint(memberID)); err != nil {
		if errors.Is(err, member.ErrNotFound) {
			http.Error(w, "Member not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving member", http.StatusInternalServerError)
		return
	}

	payments, err := ListByMember(h.db, uint(memberID))
	if err != nil {
		http.Error(w, "Error retrieving payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}
