package get_available_dates

import (
	"github.com/m04kA/RoomBookingService/internal/domain"
	getAvailableDates "github.com/m04kA/RoomBookingService/internal/usecase/get_available_dates"
)

// AvailableDatesResponse HTTP response model
type AvailableDatesResponse struct {
	Year           int      `json:"year"`
	Month          int      `json:"month"`
	MaxAdvanceDays int      `json:"maxAdvanceDays"`
	Dates          []string `json:"dates"` // YYYY-MM-DD
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableDates.Response) *AvailableDatesResponse {
	dates := make([]string, len(resp.Dates))
	for i, d := range resp.Dates {
		dates[i] = d.Format(domain.DateFormat)
	}

	return &AvailableDatesResponse{
		Year:           resp.Year,
		Month:          resp.Month,
		MaxAdvanceDays: resp.MaxAdvanceDays,
		Dates:          dates,
	}
}
