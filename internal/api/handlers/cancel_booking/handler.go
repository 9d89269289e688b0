package cancel_booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	"github.com/m04kA/RoomBookingService/internal/api/middleware"
	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/service/bookings"
	"github.com/m04kA/RoomBookingService/internal/service/bookings/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingToken       = "токен бронирования обязателен"
	msgNotFound           = "бронирование не найдено"
	msgCannotCancel       = "бронирование не может быть отменено"
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

// Handle POST /api/v1/bookings/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		h.logger.Warn("POST /bookings/cancel - Missing token")
		handlers.RespondBadRequest(w, msgMissingToken)
		return
	}

	actor := domain.ActorClient
	if middleware.IsAdmin(r.Context()) {
		actor = domain.ActorAdmin
	}

	booking, err := h.service.Cancel(r.Context(), token, actor)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/cancel - Booking not found")
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrCannotCancel):
			h.logger.Warn("POST /bookings/cancel - Cannot cancel: %v", err)
			handlers.RespondConflict(w, msgCannotCancel)

		default:
			h.logger.Error("POST /bookings/cancel - Failed to cancel booking: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/cancel - Booking cancelled successfully: booking_id=%d, actor=%s", booking.ID, actor)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, h.location))
}
