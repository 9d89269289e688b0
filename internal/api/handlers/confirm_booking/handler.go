package confirm_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	"github.com/m04kA/RoomBookingService/internal/service/bookings/models"
	confirmBooking "github.com/m04kA/RoomBookingService/internal/usecase/confirm_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingToken       = "токен подтверждения обязателен"
	msgNotFound           = "бронирование не найдено"
	msgNotPending         = "бронирование нельзя подтвердить"
	msgSlotNotAvailable   = "выбранный временной слот уже занят"
	msgBusy               = "сервис перегружен, повторите попытку"
)

type Handler struct {
	useCase  ConfirmBookingUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase ConfirmBookingUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ConfirmBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/confirm - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	booking, err := h.useCase.Execute(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, confirmBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/confirm - Missing token")
			handlers.RespondBadRequest(w, msgMissingToken)

		case errors.Is(err, confirmBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/confirm - Booking not found")
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmBooking.ErrNotPending):
			h.logger.Warn("POST /bookings/confirm - Not pending: %v", err)
			handlers.RespondConflict(w, msgNotPending)

		case errors.Is(err, confirmBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /bookings/confirm - Slot not available: %v", err)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, confirmBooking.ErrBusy):
			h.logger.Warn("POST /bookings/confirm - Busy: %v", err)
			handlers.RespondServiceUnavailable(w, msgBusy)

		default:
			h.logger.Error("POST /bookings/confirm - Failed to confirm booking: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/confirm - Booking confirmed: booking_id=%d", booking.ID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(booking, h.location))
}
