// Package api сборка HTTP маршрутов сервиса
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/RoomBookingService/internal/api/middleware"
	"github.com/m04kA/RoomBookingService/pkg/metrics"
)

// Handlers обработчики всех маршрутов
type Handlers struct {
	AvailableDates      http.HandlerFunc
	AvailableSlots      http.HandlerFunc
	CreateBooking       http.HandlerFunc
	ConfirmBooking      http.HandlerFunc
	CancelBooking       http.HandlerFunc
	GetBooking          http.HandlerFunc
	CreditBalance       http.HandlerFunc
	UpdateBookingStatus http.HandlerFunc
	InvalidatePolicy    http.HandlerFunc
}

// RouterConfig параметры роутера. Metrics == nil: метрики отключены
type RouterConfig struct {
	AdminToken  string
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter регистрирует маршруты /api/v1 и, если включено, endpoint метрик
func NewRouter(h Handlers, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
		r.Handle(cfg.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}
	r.Use(middleware.ClientIP, middleware.Admin(cfg.AdminToken))

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	api.HandleFunc("/available-dates", h.AvailableDates).Methods(http.MethodGet)
	api.HandleFunc("/available-slots", h.AvailableSlots).Methods(http.MethodGet)

	api.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/confirm", h.ConfirmBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/cancel", h.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{token}", h.GetBooking).Methods(http.MethodGet)

	api.HandleFunc("/credits", h.CreditBalance).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-Token)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/bookings/{bookingId:[0-9]+}/status", h.UpdateBookingStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/policy/invalidate", h.InvalidatePolicy).Methods(http.MethodPost)

	return r
}
