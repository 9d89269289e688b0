package get_booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	"github.com/m04kA/RoomBookingService/internal/service/bookings"
	"github.com/m04kA/RoomBookingService/internal/service/bookings/models"
)

const (
	msgMissingToken = "токен бронирования обязателен"
	msgNotFound     = "бронирование не найдено"
)

type Handler struct {
	service  BookingService
	location *time.Location
	logger   Logger
}

func NewHandler(service BookingService, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:  service,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/bookings/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(mux.Vars(r)["token"])
	if token == "" {
		h.logger.Warn("GET /bookings/{token} - Missing token")
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	booking, err := h.service.GetByToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("GET /bookings/{token} - Booking not found")
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /bookings/{token} - Failed to get booking: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{token} - Booking retrieved successfully: booking_id=%d", booking.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, h.location))
}
