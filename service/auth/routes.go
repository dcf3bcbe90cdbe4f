package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gopkg.in/gomail.v2"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all owner auth routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/auth/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/auth/request-reset", h.HandlePasswordResetRequest).Methods("POST")
	router.HandleFunc("/auth/verify-reset-token", h.HandleVerifyResetToken).Methods("POST")
	router.HandleFunc("/auth/reset", h.HandlePasswordReset).Methods("POST")
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		FullName string `json:"full_name"`
		GymName  string `json:"gym_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	if registerRequest.FullName == "" || registerRequest.GymName == "" || registerRequest.Email == "" || registerRequest.Password == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if len(registerRequest.Password) < 6 {
		http.Error(w, "Password must be at least 6 characters long", http.StatusBadRequest)
		return
	}

	var existing models.GymOwner
	if result := h.db.Where("email = ?", registerRequest.Email).First(&existing); !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Email is already in use", http.StatusConflict)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	owner := models.GymOwner{
		FullName:     registerRequest.FullName,
		GymName:      registerRequest.GymName,
		Email:        registerRequest.Email,
		PasswordHash: string(passwordHash),
		Phone:        registerRequest.Phone,
	}

	if err := h.db.Create(&owner).Error; err != nil {
		http.Error(w, "Error registering owner", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Account created successfully",
		"owner_id": owner.ID,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	var owner models.GymOwner
	result := h.db.Where("email = ?", loginRequest.Email).First(&owner)
	if result.Error != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(loginRequest.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	accessToken, err := generateJWT(owner.ID, 24)
	if err != nil {
		http.Error(w, "Error generating access token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Login successful",
		"access_token": accessToken,
		"owner_id":     owner.ID,
		"gym_name":     owner.GymName,
	})
}

func generateJWT(ownerID uint, expirationHours int) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(ownerID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * time.Duration(expirationHours))),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}

func (h *Handler) HandlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var resetRequest struct {
		Email   string `json:"email"`
		GymName string `json:"gym_name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if resetRequest.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	// Keep the response vague whether or not the account exists
	vague := map[string]string{
		"message": "If an account exists, a reset code will be sent to your email",
	}

	var owner models.GymOwner
	query := h.db.Where("email = ?", resetRequest.Email)
	if resetRequest.GymName != "" {
		query = query.Where("gym_name = ?", resetRequest.GymName)
	}
	if err := query.First(&owner).Error; err != nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vague)
		return
	}

	resetToken := fmt.Sprintf("%06d", rand.Intn(1000000))

	tx := h.db.Begin()

	// Invalidate earlier codes for this owner
	if err := tx.Where("owner_id = ?", owner.ID).Delete(&models.PasswordResetToken{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error processing reset request", http.StatusInternalServerError)
		return
	}

	passwordResetToken := models.PasswordResetToken{
		OwnerID:   owner.ID,
		Token:     resetToken,
		ExpiresAt: time.Now().Add(20 * time.Minute),
	}

	if err := tx.Create(&passwordResetToken).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating reset token", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error processing reset request", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := sendResetEmail(owner.Email, resetToken); err != nil {
			log.Printf("Error sending reset email: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vague)
}

// sendResetEmail sends the 6-digit reset code
func sendResetEmail(email, code string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password Reset Code")
	m.SetBody("text/plain", fmt.Sprintf("Your password reset code is: %s. Ignore this email if you did not request a reset.", code))

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}

type tokenVerificationRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (h *Handler) HandleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req tokenVerificationRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var owner models.GymOwner
	if err := h.db.Where("email = ?", req.Email).First(&owner).Error; err != nil {
		// Deliberately vague to avoid revealing account existence
		http.Error(w, "Invalid email or token", http.StatusBadRequest)
		return
	}

	var resetToken models.PasswordResetToken
	if err := h.db.Where("owner_id = ? AND token = ? AND used = ?", owner.ID, req.Token, false).First(&resetToken).Error; err != nil {
		http.Error(w, "Invalid email or token", http.StatusBadRequest)
		return
	}

	if time.Now().After(resetToken.ExpiresAt) {
		http.Error(w, "Token expired", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Token is valid",
		"owner_id": owner.ID,
	})
}

func (h *Handler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var resetRequest struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(resetRequest.NewPassword) < 6 {
		http.Error(w, "Password must be at least 6 characters long", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	var owner models.GymOwner
	if err := tx.Where("email = ?", resetRequest.Email).First(&owner).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Invalid email or token", http.StatusBadRequest)
		return
	}

	var resetToken models.PasswordResetToken
	if err := tx.Where("owner_id = ? AND token = ? AND used = ?", owner.ID, resetRequest.Token, false).First(&resetToken).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Invalid email or token", http.StatusBadRequest)
		return
	}

	if time.Now().After(resetToken.ExpiresAt) {
		tx.Rollback()
		http.Error(w, "This reset code is no longer valid", http.StatusBadRequest)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(resetRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		tx.Rollback()
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	owner.PasswordHash = string(passwordHash)
	if err := tx.Save(&owner).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating password", http.StatusInternalServerError)
		return
	}

	// Single use
	if err := tx.Model(&resetToken).Update("used", true).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error processing password reset", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error processing password reset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Password reset successful",
	})
}
