package member

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes sets up all member-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/members", h.CreateMember).Methods("POST")
	router.HandleFunc("/members", h.GetMembers).Methods("GET")
	router.HandleFunc("/members/{id:[0-9]+}", h.GetMember).Methods("GET")
	router.HandleFunc("/members/{id:[0-9]+}", h.UpdateMember).Methods("PUT")
	router.HandleFunc("/members/{id:[0-9]+}", h.DeleteMember).Methods("DELETE")
}

type createMemberRequest struct {
	FirstName             string                `json:"first_name"`
	LastName              string                `json:"last_name"`
	Email                 string                `json:"email"`
	Phone                 string                `json:"phone"`
	DateOfBirth           *time.Time            `json:"date_of_birth"`
	MembershipType        models.MembershipType `json:"membership_type"`
	EnableAutoBilling     bool                  `json:"enable_auto_billing"`
	EmergencyContactName  string                `json:"emergency_contact_name"`
	EmergencyContactPhone string                `json:"emergency_contact_phone"`
	MedicalConditions     string                `json:"medical_conditions"`
}

func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	if !models.ValidMembershipType(req.MembershipType) {
		http.Error(w, "Invalid membership type", http.StatusBadRequest)
		return
	}

	m := models.Member{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		DateOfBirth:           req.DateOfBirth,
		MembershipType:        req.MembershipType,
		AutoBillingEnabled:    req.EnableAutoBilling,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		MedicalConditions:     req.MedicalConditions,
	}

	if err := CreateMember(h.db, &m); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			http.Error(w, "Member with this email already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Error creating member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

// GetMembers retrieves members with optional status filter and
// skip/limit pagination
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
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

	query := h.db.Model(&models.Member{})
	if status := queryParams.Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var members []models.Member
	if err := query.Offset(skip).Limit(limit).Find(&members).Error; err != nil {
		http.Error(w, "Error retrieving members", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	m, err := GetMember(h.db, uint(id))
	if err != nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

type updateMemberRequest struct {
	FirstName             string                `json:"first_name"`
	LastName              string                `json:"last_name"`
	Email                 string                `json:"email"`
	Phone                 string                `json:"phone"`
	MembershipType        models.MembershipType `json:"membership_type"`
	Status                string                `json:"status"`
	EmergencyContactName  string                `json:"emergency_contact_name"`
	EmergencyContactPhone string                `json:"emergency_contact_phone"`
	MedicalConditions     string                `json:"medical_conditions"`
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	var req updateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := GetMember(h.db, uint(id))
	if err != nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	if req.FirstName != "" {
		m.FirstName = req.FirstName
	}
	if req.LastName != "" {
		m.LastName = req.LastName
	}
	if req.Email != "" && req.Email != m.Email {
		var existing models.Member
		if h.db.Where("email = ? AND id <> ?", req.Email, m.ID).First(&existing).Error == nil {
			http.Error(w, "Member with this email already exists", http.StatusConflict)
			return
		}
		m.Email = req.Email
	}
	if req.Phone != "" {
		m.Phone = req.Phone
	}
	if req.MembershipType != "" {
		if !models.ValidMembershipType(req.MembershipType) {
			http.Error(w, "Invalid membership type", http.StatusBadRequest)
			return
		}
		m.MembershipType = req.MembershipType
	}
	if req.Status != "" {
		switch req.Status {
		case models.MemberStatusActive, models.MemberStatusInactive, models.MemberStatusExpired, models.MemberStatusSuspended:
			m.Status = req.Status
		default:
			http.Error(w, "Invalid member status", http.StatusBadRequest)
			return
		}
	}
	if req.EmergencyContactName != "" {
		m.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != "" {
		m.EmergencyContactPhone = req.EmergencyContactPhone
	}
	if req.MedicalConditions != "" {
		m.MedicalConditions = req.MedicalConditions
	}

	if err := h.db.Save(m).Error; err != nil {
		http.Error(w, "Error updating member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	if _, err := GetMember(h.db, uint(id)); err != nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	// Hard delete, no tombstone
	if err := h.db.Unscoped().Delete(&models.Member{}, id).Error; err != nil {
		http.Error(w, "Error deleting member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Member deleted successfully",
	})
}
