package get_available_slots

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/RoomBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date           string   `json:"date"`
	SessionType    string   `json:"sessionType"`
	Accompaniment  bool     `json:"accompaniment"`
	DisplayMinutes int      `json:"displayMinutes"`
	BlockedMinutes int      `json:"blockedMinutes"`
	Slots          []string `json:"slots"` // RFC 3339 в часовом поясе зала
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response, loc *time.Location) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, start := range resp.Slots {
		slots[i] = start.In(loc).Format(time.RFC3339)
	}

	return &AvailableSlotsResponse{
		Date:           resp.Date.Format(domain.DateFormat),
		SessionType:    resp.SessionType,
		Accompaniment:  resp.Accompanied,
		DisplayMinutes: resp.DisplayMinutes,
		BlockedMinutes: resp.BlockedMinutes,
		Slots:          slots,
	}
}
