package member

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

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

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCreateMemberHandler(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	rr := doJSON(t, router, http.MethodPost, "/members", map[string]interface{}{
		"first_name":      "Ama",
		"last_name":       "Owusu",
		"email":           "ama@example.com",
		"phone":           "+233501234567",
		"membership_type": "premium",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var m models.Member
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, models.MemberStatusActive, m.Status)
	assert.Equal(t, models.MembershipPremium, m.MembershipType)
}

func TestCreateMemberHandlerValidation(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	// Missing required fields
	rr := doJSON(t, router, http.MethodPost, "/members", map[string]interface{}{
		"first_name": "Ama",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Unknown tier
	rr = doJSON(t, router, http.MethodPost, "/members", map[string]interface{}{
		"first_name":      "Ama",
		"last_name":       "Owusu",
		"email":           "ama@example.com",
		"phone":           "+233501234567",
		"membership_type": "platinum",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateMemberHandlerDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	body := map[string]interface{}{
		"first_name":      "Ama",
		"last_name":       "Owusu",
		"email":           "ama@example.com",
		"phone":           "+233501234567",
		"membership_type": "basic",
	}
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/members", body).Code)

	rr := doJSON(t, router, http.MethodPost, "/members", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already exists")
}

func TestUpdateMemberHandler(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	m := newMember("ama@example.com")
	require.NoError(t, CreateMember(db, m))

	rr := doJSON(t, router, http.MethodPut, fmt.Sprintf("/members/%d", m.ID), map[string]interface{}{
		"phone":           "+233509999999",
		"membership_type": "vip",
		"status":          models.MemberStatusSuspended,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	updated, err := GetMember(db, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "+233509999999", updated.Phone)
	assert.Equal(t, models.MembershipVIP, updated.MembershipType)
	assert.Equal(t, models.MemberStatusSuspended, updated.Status)
	// Untouched fields keep their values
	assert.Equal(t, "ama@example.com", updated.Email)
}

func TestUpdateMemberHandlerEmailConflict(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	first := newMember("ama@example.com")
	require.NoError(t, CreateMember(db, first))
	second := newMember("kofi@example.com")
	require.NoError(t, CreateMember(db, second))

	rr := doJSON(t, router, http.MethodPut, fmt.Sprintf("/members/%d", second.ID), map[string]interface{}{
		"email": "ama@example.com",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDeleteMemberHandler(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	m := newMember("ama@example.com")
	require.NoError(t, CreateMember(db, m))

	rr := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/members/%d", m.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Hard delete frees the email for re-registration
	_, err := GetMember(db, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, CreateMember(db, newMember("ama@example.com")))
}

func TestGetMembersStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter(db)

	active := newMember("ama@example.com")
	require.NoError(t, CreateMember(db, active))
	suspended := newMember("kofi@example.com")
	require.NoError(t, CreateMember(db, suspended))
	require.NoError(t, db.Model(suspended).Update("status", models.MemberStatusSuspended).Error)

	rr := doJSON(t, router, http.MethodGet, "/members?status=suspended", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var members []models.Member
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &members))
	require.Len(t, members, 1)
	assert.Equal(t, "kofi@example.com", members[0].Email)
}
