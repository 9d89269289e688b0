package create_booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	"github.com/m04kA/RoomBookingService/internal/api/middleware"
	createBooking "github.com/m04kA/RoomBookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidInput          = "некорректные данные бронирования"
	msgClientInactive        = "аккаунт клиента отключён"
	msgDateInPast            = "дата бронирования в прошлом"
	msgDateTooFar            = "дата бронирования слишком далеко в будущем"
	msgDateClosed            = "зал закрыт в выбранную дату"
	msgInvalidTimeSlot       = "некорректный временной слот"
	msgTooLateToBook         = "слишком поздно для бронирования этого слота"
	msgSlotNotAvailable      = "выбранный временной слот недоступен"
	msgNoCreditAvailable     = "нет доступных предоплаченных сеансов"
	msgDiscountNotApplicable = "код скидки не применим к этому сеансу"
	msgDiscountLimitReached  = "лимит использований кода скидки исчерпан"
	msgRateLimited           = "слишком много попыток бронирования, попробуйте позже"
	msgBusy                  = "сервис перегружен, повторите попытку"
)

type Handler struct {
	useCase  CreateBookingUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateBookingUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq := req.ToUseCaseRequest(
		middleware.GetClientIP(r.Context()),
		r.UserAgent(),
		middleware.IsAdmin(r.Context()),
	)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status, message := mapError(err)
		field := ""
		var fe *createBooking.FieldError
		if errors.As(err, &fe) {
			field = fe.Field
		}

		if status == http.StatusInternalServerError {
			h.logger.Error("POST /bookings - Failed to create booking: email=%s, error=%v", req.ClientEmail, err)
			handlers.RespondInternalError(w)
			return
		}

		h.logger.Warn("POST /bookings - Rejected: email=%s, status=%d, field=%s, error=%v", req.ClientEmail, status, field, err)
		handlers.RespondFieldError(w, status, field, message)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, source=%s",
		result.BookingID, result.Pricing.Source)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, h.location))
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, createBooking.ErrSlotNotAvailable):
		return http.StatusConflict, msgSlotNotAvailable
	case errors.Is(err, createBooking.ErrNoCreditAvailable):
		return http.StatusConflict, msgNoCreditAvailable
	case errors.Is(err, createBooking.ErrDiscountLimitReached):
		return http.StatusConflict, msgDiscountLimitReached
	case errors.Is(err, createBooking.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, createBooking.ErrBusy):
		return http.StatusServiceUnavailable, msgBusy
	case errors.Is(err, createBooking.ErrClientInactive):
		return http.StatusBadRequest, msgClientInactive
	case errors.Is(err, createBooking.ErrDateInPast):
		return http.StatusBadRequest, msgDateInPast
	case errors.Is(err, createBooking.ErrDateTooFarInFuture):
		return http.StatusBadRequest, msgDateTooFar
	case errors.Is(err, createBooking.ErrDateClosed):
		return http.StatusBadRequest, msgDateClosed
	case errors.Is(err, createBooking.ErrInvalidTimeSlot):
		return http.StatusBadRequest, msgInvalidTimeSlot
	case errors.Is(err, createBooking.ErrTooLateToBook):
		return http.StatusBadRequest, msgTooLateToBook
	case errors.Is(err, createBooking.ErrDiscountNotApplicable):
		return http.StatusBadRequest, msgDiscountNotApplicable
	case errors.Is(err, createBooking.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	default:
		return http.StatusInternalServerError, ""
	}
}
