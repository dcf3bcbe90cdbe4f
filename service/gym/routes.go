package gym

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes registers gym profile routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/gym-profile", h.GetProfile).Methods("GET")
	router.HandleFunc("/gym-profile", h.UpsertProfile).Methods("PUT")
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.GymProfile
	if err := h.db.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Gym profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error retrieving gym profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

type profileRequest struct {
	GymName   string `json:"gym_name"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// UpsertProfile creates or updates the single gym profile record
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.GymName == "" {
		http.Error(w, "Gym name is required", http.StatusBadRequest)
		return
	}

	var profile models.GymProfile
	err := h.db.First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Error retrieving gym profile", http.StatusInternalServerError)
		return
	}

	profile.GymName = req.GymName
	profile.OwnerName = req.OwnerName
	profile.Email = req.Email
	profile.Phone = req.Phone
	profile.Address = req.Address

	if err := h.db.Save(&profile).Error; err != nil {
		http.Error(w, "Error saving gym profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
