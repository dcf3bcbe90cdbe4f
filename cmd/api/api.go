package api

import (
	"log"
	"net/http"

	"github.com/fitforxe/fitforxe-server/service/attendance"
	"github.com/fitforxe/fitforxe-server/service/auth"
	"github.com/fitforxe/fitforxe-server/service/checkout"
	"github.com/fitforxe/fitforxe-server/service/dashboard"
	"github.com/fitforxe/fitforxe-server/service/gym"
	"github.com/fitforxe/fitforxe-server/service/member"
	"github.com/fitforxe/fitforxe-server/service/payment"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api").Subrouter()

	authHandler := auth.NewHandler(s.db)
	authHandler.RegisterRoutes(subrouter)

	memberHandler := member.NewHandler(s.db)
	memberHandler.RegisterRoutes(subrouter)

	paymentHandler := payment.NewHandler(s.db)
	paymentHandler.RegisterRoutes(subrouter)

	checkoutHandler := checkout.NewHandler(s.db, checkout.DefaultGateways())
	checkoutHandler.RegisterRoutes(subrouter)

	attendanceHandler := attendance.NewHandler(s.db)
	attendanceHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewDashboardHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	gymHandler := gym.NewHandler(s.db)
	gymHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
