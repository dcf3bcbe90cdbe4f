package attendance

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/fitforxe/fitforxe-server/service/member"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes registers attendance-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/attendance/checkin", h.CheckIn).Methods("POST")
	router.HandleFunc("/attendance/checkout/{memberID:[0-9]+}", h.CheckOut).Methods("POST")
	router.HandleFunc("/attendance", h.GetAttendance).Methods("GET")
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type checkInRequest struct {
	MemberID uint `json:"member_id"`
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := member.GetMember(h.db, req.MemberID); err != nil {
		http.Error(w, "Member not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	today := startOfDay(now)

	// Reject a second open check-in for the same day
	var existing models.Attendance
	err := h.db.Where("member_id = ? AND date = ? AND check_out_time IS NULL", req.MemberID, today).
		First(&existing).Error
	if err == nil {
		http.Error(w, "Member already checked in today", http.StatusBadRequest)
		return
	}

	record := models.Attendance{
		MemberID:    req.MemberID,
		CheckInTime: now,
		Date:        today,
	}

	if err := h.db.Create(&record).Error; err != nil {
		http.Error(w, "Error recording check-in", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	memberID, err := strconv.ParseUint(vars["memberID"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	today := startOfDay(now)

	var record models.Attendance
	if err := h.db.Where("member_id = ? AND date = ? AND check_out_time IS NULL", memberID, today).
		First(&record).Error; err != nil {
		http.Error(w, "No active check-in found for today", http.StatusNotFound)
		return
	}

	if err := h.db.Model(&record).Update("check_out_time", now).Error; err != nil {
		http.Error(w, "Error recording check-out", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Member checked out successfully",
	})
}

// GetAttendance lists attendance records, newest check-in first, with
// optional date filter and skip/limit pagination
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
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

	query := h.db.Model(&models.Attendance{})
	if dateStr := queryParams.Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		query = query.Where("date = ?", startOfDay(date))
	}

	var records []models.Attendance
	if err := query.Order("check_in_time DESC").Offset(skip).Limit(limit).Find(&records).Error; err != nil {
		http.Error(w, "Error retrieving attendance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
