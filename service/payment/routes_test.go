package payment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(db *gorm.DB) *mux.Router {
	router := mux.NewRouter()
	NewHandler(db).RegisterRoutes(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateManualPayment(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	rr := postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"payment_method":  "cash",
		"membership_type": "basic",
		"amount":          29.99,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var p models.Payment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Equal(t, models.GatewayManual, p.Gateway)
	assert.Equal(t, "cash", p.PaymentMethod)

	// Membership end date matches the paid period exactly
	var updated models.Member
	require.NoError(t, db.First(&updated, m.ID).Error)
	assert.WithinDuration(t, p.PeriodEnd, updated.MembershipEndDate, time.Second)
	assert.Equal(t, models.MemberStatusActive, updated.Status)
}

func TestCreateManualPaymentZeroAmount(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	rr := postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"payment_method":  "cash",
		"membership_type": "basic",
		"amount":          0,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateManualPaymentNegativeAmount(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	rr := postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"payment_method":  "cash",
		"membership_type": "basic",
		"amount":          -5,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateManualPaymentCardNotes(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	rr := postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"payment_method":  "card",
		"membership_type": "premium",
		"amount":          49.99,
		"card_reference":  "4242424242424242",
		"card_expiry":     "1225",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var p models.Payment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Contains(t, p.Notes, "4242 4242 4242 4242")
	assert.Contains(t, p.Notes, "12/25")
}

func TestCreateManualPaymentValidation(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	// Missing payment method
	rr := postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"membership_type": "basic",
		"amount":          29.99,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown membership tier
	rr = postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       m.ID,
		"payment_method":  "cash",
		"membership_type": "platinum",
		"amount":          29.99,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown member, no payment row left behind
	rr = postJSON(t, router, "/payments", map[string]interface{}{
		"member_id":       9999,
		"payment_method":  "cash",
		"membership_type": "basic",
		"amount":          29.99,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetPaymentsFilters(t *testing.T) {
	db := setupTestDB(t)
	m := seedMember(t, db)
	router := newTestRouter(db)

	seedPending(t, db, m.ID, "cs_filter_1")
	_, _, err := MarkCompleted(db, "cs_filter_1", time.Now().UTC().Add(30*24*time.Hour))
	require.NoError(t, err)
	seedPending(t, db, m.ID, "cs_filter_2")

	req := httptest.NewRequest(http.MethodGet, "/payments?status=pending", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var payments []models.Payment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "cs_filter_2", payments[0].SessionID)
}

func TestGetMemberPaymentsUnknownMember(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/payments/member/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
