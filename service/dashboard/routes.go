package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fitforxe/fitforxe-server/cmd/models"
	"github.com/fitforxe/fitforxe-server/cmd/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type DashboardStats struct {
	TotalMembers    int64   `json:"total_members"`
	ActiveMembers   int64   `json:"active_members"`
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	PendingPayments int64   `json:"pending_payments"`
	TodaysCheckins  int64   `json:"todays_checkins"`
}

// RegisterRoutes registers dashboard-related routes with Gorilla Mux
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard/stats", utils.AuthMiddleware(h.GetDashboardStats)).Methods("GET")
}

func (h *DashboardHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats

	h.db.Model(&models.Member{}).Count(&stats.TotalMembers)

	h.db.Model(&models.Member{}).
		Where("status = ?", models.MemberStatusActive).
		Count(&stats.ActiveMembers)

	// Revenue of completed payments since the start of the current month
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var revenue struct {
		Total float64
	}
	h.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ? AND payment_date >= ?", models.PaymentStatusCompleted, monthStart).
		Scan(&revenue)
	stats.MonthlyRevenue = revenue.Total

	// Active members whose paid period already ran out
	h.db.Model(&models.Member{}).
		Where("membership_end_date < ? AND status = ?", now, models.MemberStatusActive).
		Count(&stats.PendingPayments)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	h.db.Model(&models.Attendance{}).
		Where("date = ?", today).
		Count(&stats.TodaysCheckins)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
