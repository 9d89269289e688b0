package invalidate_policy

import (
	"net/http"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
)

type PolicyCache interface {
	Invalidate()
}

type Logger interface {
	Info(format string, v ...interface{})
}

type Handler struct {
	cache  PolicyCache
	logger Logger
}

func NewHandler(cache PolicyCache, logger Logger) *Handler {
	return &Handler{
		cache:  cache,
		logger: logger,
	}
}

// Handle POST /api/v1/admin/policy/invalidate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	h.cache.Invalidate()
	h.logger.Info("POST /admin/policy/invalidate - Policy cache invalidated")
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
