package get_available_slots

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/RoomBookingService/internal/usecase/get_available_slots"
)

const (
	msgMissingDate          = "дата обязательна"
	msgMissingSessionType   = "тип сеанса обязателен"
	msgInvalidAccompaniment = "некорректное значение accompaniment"
	msgInvalidInput         = "некорректные параметры запроса"
)

type Handler struct {
	useCase  GetAvailableSlotsUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/available-slots
// Query params: date (required, YYYY-MM-DD), sessionType (required), accompaniment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date := query.Get("date")
	if date == "" {
		h.logger.Warn("GET /available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	sessionType := query.Get("sessionType")
	if sessionType == "" {
		h.logger.Warn("GET /available-slots - Missing session type")
		handlers.RespondBadRequest(w, msgMissingSessionType)
		return
	}

	accompanied, err := handlers.QueryBool(r, "accompaniment")
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid accompaniment: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAccompaniment)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		Date:        date,
		SessionType: sessionType,
		Accompanied: accompanied,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid input: date=%s, session_type=%s, error=%v", date, sessionType, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: date=%s, session_type=%s, error=%v", date, sessionType, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Slots retrieved successfully: date=%s, session_type=%s, slots_count=%d",
		date, sessionType, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result, h.location))
}
