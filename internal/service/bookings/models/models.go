package models

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// UpdateStatusRequest запрос администратора на смену статуса
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status"`
	SessionType     string  `json:"sessionType"`
	Accompanied     bool    `json:"accompanied"`
	StartsAt        string  `json:"startsAt"` // RFC 3339 в часовом поясе зала
	EndsAt          string  `json:"endsAt"`
	DisplayMinutes  int     `json:"displayMinutes"`
	BlockingMinutes int     `json:"blockingMinutes"`
	Price           float64 `json:"price"`

	OriginalPrice  *float64 `json:"originalPrice,omitempty"`
	DiscountAmount *float64 `json:"discountAmount,omitempty"`
	PrepaidCredit  bool     `json:"prepaidCredit"`

	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// FromDomainBooking конвертирует domain модель в DTO. loc == nil: время в UTC
func FromDomainBooking(b *domain.Booking, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	return &BookingResponse{
		ID:              b.ID,
		Status:          string(b.Status),
		SessionType:     string(b.SessionType),
		Accompanied:     b.Accompanied,
		StartsAt:        b.StartsAt.In(loc).Format(time.RFC3339),
		EndsAt:          b.EndsAt().In(loc).Format(time.RFC3339),
		DisplayMinutes:  b.DisplayMinutes,
		BlockingMinutes: b.BlockingMinutes,
		Price:           b.Price,
		OriginalPrice:   b.OriginalPrice,
		DiscountAmount:  b.DiscountAmount,
		PrepaidCredit:   b.UsedPrepaidCredit(),
		CreatedAt:       b.CreatedAt,
		ConfirmedAt:     b.ConfirmedAt,
		CancelledAt:     b.CancelledAt,
	}
}
