package get_credit_balance

import (
	"errors"
	"net/http"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
	getCreditBalance "github.com/m04kA/RoomBookingService/internal/usecase/get_credit_balance"
)

const (
	msgMissingEmail = "email обязателен"
	msgInvalidInput = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetCreditBalanceUseCase
	logger  Logger
}

func NewHandler(useCase GetCreditBalanceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/credits
// Query params: email (required), sessionType
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.logger.Warn("GET /credits - Missing email")
		handlers.RespondBadRequest(w, msgMissingEmail)
		return
	}

	balance, err := h.useCase.Execute(r.Context(), &getCreditBalance.Request{
		ClientEmail: email,
		SessionType: r.URL.Query().Get("sessionType"),
	})
	if err != nil {
		switch {
		case errors.Is(err, getCreditBalance.ErrInvalidInput):
			h.logger.Warn("GET /credits - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /credits - Failed to get balance: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /credits - Balance retrieved successfully: total_credits=%d, packs=%d",
		balance.TotalCredits, len(balance.Packs))
	handlers.RespondJSON(w, http.StatusOK, FromBalance(balance))
}
