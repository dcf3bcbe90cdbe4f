package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, *mux.Router) {
	t.Setenv("SECRET_KEY", "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GymOwner{}, &models.PasswordResetToken{}))

	router := mux.NewRouter()
	NewHandler(db).RegisterRoutes(router)
	return db, router
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func registerOwner(t *testing.T, router *mux.Router) {
	rr := postJSON(t, router, "/auth/register", map[string]string{
		"full_name": "Efua Mensah",
		"gym_name":  "FitForce",
		"email":     "efua@example.com",
		"password":  "correct-horse",
		"phone":     "+233501234567",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestRegister(t *testing.T) {
	db, router := setupTest(t)
	registerOwner(t, router)

	var owner models.GymOwner
	require.NoError(t, db.Where("email = ?", "efua@example.com").First(&owner).Error)
	assert.Equal(t, "FitForce", owner.GymName)
	assert.NotEqual(t, "correct-horse", owner.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, router := setupTest(t)
	registerOwner(t, router)

	rr := postJSON(t, router, "/auth/register", map[string]string{
		"full_name": "Another Owner",
		"gym_name":  "OtherGym",
		"email":     "efua@example.com",
		"password":  "some-password",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterShortPassword(t *testing.T) {
	_, router := setupTest(t)

	rr := postJSON(t, router, "/auth/register", map[string]string{
		"full_name": "Efua Mensah",
		"gym_name":  "FitForce",
		"email":     "efua@example.com",
		"password":  "abc",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin(t *testing.T) {
	_, router := setupTest(t)
	registerOwner(t, router)

	rr := postJSON(t, router, "/auth/login", map[string]string{
		"email":    "efua@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["access_token"])
	assert.Equal(t, "FitForce", resp["gym_name"])
}

func TestLoginBadCredentials(t *testing.T) {
	_, router := setupTest(t)
	registerOwner(t, router)

	rr := postJSON(t, router, "/auth/login", map[string]string{
		"email":    "efua@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = postJSON(t, router, "/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	db, router := setupTest(t)
	registerOwner(t, router)

	rr := postJSON(t, router, "/auth/request-reset", map[string]string{
		"email": "efua@example.com",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resetToken models.PasswordResetToken
	require.NoError(t, db.First(&resetToken).Error)
	require.Len(t, resetToken.Token, 6)

	rr = postJSON(t, router, "/auth/verify-reset-token", map[string]string{
		"email": "efua@example.com",
		"token": resetToken.Token,
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, router, "/auth/reset", map[string]string{
		"email":        "efua@example.com",
		"token":        resetToken.Token,
		"new_password": "new-password",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	// Old password no longer works, new one does
	assert.Equal(t, http.StatusUnauthorized, postJSON(t, router, "/auth/login", map[string]string{
		"email":    "efua@example.com",
		"password": "correct-horse",
	}).Code)
	assert.Equal(t, http.StatusOK, postJSON(t, router, "/auth/login", map[string]string{
		"email":    "efua@example.com",
		"password": "new-password",
	}).Code)

	// The code is single use
	rr = postJSON(t, router, "/auth/reset", map[string]string{
		"email":        "efua@example.com",
		"token":        resetToken.Token,
		"new_password": "another-password",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPasswordResetUnknownEmailStaysVague(t *testing.T) {
	db, router := setupTest(t)

	rr := postJSON(t, router, "/auth/request-reset", map[string]string{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "If an account exists")

	var count int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPasswordResetBadToken(t *testing.T) {
	_, router := setupTest(t)
	registerOwner(t, router)

	rr := postJSON(t, router, "/auth/reset", map[string]string{
		"email":        "efua@example.com",
		"token":        "000000",
		"new_password": "new-password",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
