package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса и возвращает дату
func validateRequest(req *Request) (time.Time, domain.SessionType, error) {
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		return time.Time{}, "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: date must be in format YYYY-MM-DD", ErrInvalidInput)
	}

	sessionType, err := domain.ParseSessionType(strings.TrimSpace(req.SessionType))
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return date, sessionType, nil
}
