package get_available_dates

import (
	"errors"
	"net/http"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	"github.com/m04kA/RoomBookingService/internal/api/middleware"
	getAvailableDates "github.com/m04kA/RoomBookingService/internal/usecase/get_available_dates"
)

const (
	msgInvalidYear           = "некорректный год"
	msgInvalidMonth          = "некорректный месяц"
	msgInvalidMaxAdvanceDays = "некорректное значение maxAdvanceDays"
	msgInvalidAccompaniment  = "некорректное значение accompaniment"
	msgMissingSessionType    = "тип сеанса обязателен"
	msgInvalidInput          = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableDatesUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableDatesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/available-dates
// Query params: year, month, sessionType (required), clientClass, maxAdvanceDays, accompaniment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	year, err := handlers.QueryInt(r, "year")
	if err != nil {
		h.logger.Warn("GET /available-dates - Invalid year: %v", err)
		handlers.RespondBadRequest(w, msgInvalidYear)
		return
	}

	month, err := handlers.QueryInt(r, "month")
	if err != nil {
		h.logger.Warn("GET /available-dates - Invalid month: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMonth)
		return
	}

	sessionType := r.URL.Query().Get("sessionType")
	if sessionType == "" {
		h.logger.Warn("GET /available-dates - Missing session type")
		handlers.RespondBadRequest(w, msgMissingSessionType)
		return
	}

	maxAdvanceDays, err := handlers.QueryOptionalInt(r, "maxAdvanceDays")
	if err != nil {
		h.logger.Warn("GET /available-dates - Invalid maxAdvanceDays: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMaxAdvanceDays)
		return
	}

	accompanied, err := handlers.QueryBool(r, "accompaniment")
	if err != nil {
		h.logger.Warn("GET /available-dates - Invalid accompaniment: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAccompaniment)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableDates.Request{
		Year:           year,
		Month:          month,
		SessionType:    sessionType,
		ClientClass:    r.URL.Query().Get("clientClass"),
		MaxAdvanceDays: maxAdvanceDays,
		Accompanied:    accompanied,
		IsAdmin:        middleware.IsAdmin(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableDates.ErrInvalidInput):
			h.logger.Warn("GET /available-dates - Invalid input: %04d-%02d, session_type=%s, error=%v", year, month, sessionType, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /available-dates - Failed to get dates: %04d-%02d, session_type=%s, error=%v", year, month, sessionType, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-dates - Dates retrieved successfully: %04d-%02d, session_type=%s, dates_count=%d",
		year, month, sessionType, len(result.Dates))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
