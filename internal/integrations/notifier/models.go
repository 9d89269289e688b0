package notifier

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Event уведомление о бронировании
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Booking    BookingPayload `json:"booking"`
}

// BookingPayload полностью заполненная запись бронирования для получателя уведомлений
type BookingPayload struct {
	ID                int64    `json:"id"`
	ClientID          int64    `json:"clientId"`
	PersonID          *int64   `json:"personId,omitempty"`
	Status            string   `json:"status"`
	SessionType       string   `json:"sessionType"`
	Accompanied       bool     `json:"accompanied"`
	StartsAt          string   `json:"startsAt"`
	EndsAt            string   `json:"endsAt"`
	Price             float64  `json:"price"`
	OriginalPrice     *float64 `json:"originalPrice,omitempty"`
	DiscountAmount    *float64 `json:"discountAmount,omitempty"`
	PrepaidPackID     *int64   `json:"prepaidPackId,omitempty"`
	DiscountCodeID    *int64   `json:"discountCodeId,omitempty"`
	ConfirmationToken string   `json:"confirmationToken"`
}

func toPayload(b *domain.Booking) BookingPayload {
	return BookingPayload{
		ID:                b.ID,
		ClientID:          b.ClientID,
		PersonID:          b.PersonID,
		Status:            string(b.Status),
		SessionType:       string(b.SessionType),
		Accompanied:       b.Accompanied,
		StartsAt:          b.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:            b.EndsAt().UTC().Format(time.RFC3339),
		Price:             b.Price,
		OriginalPrice:     b.OriginalPrice,
		DiscountAmount:    b.DiscountAmount,
		PrepaidPackID:     b.PrepaidPackID,
		DiscountCodeID:    b.DiscountCodeID,
		ConfirmationToken: b.ConfirmationToken,
	}
}
