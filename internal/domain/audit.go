package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry запись журнала аудита
type AuditEntry struct {
	ID        int64
	Actor     string
	Action    string
	Entity    string
	EntityID  int64
	Before    json.RawMessage
	After     json.RawMessage
	CreatedAt time.Time
}

// BookingSnapshot сериализуемая часть бронирования для журнала аудита
type BookingSnapshot struct {
	Status        BookingStatus `json:"status"`
	StartsAt      time.Time     `json:"startsAt"`
	SessionType   SessionType   `json:"sessionType"`
	Price         float64       `json:"price"`
	PrepaidPackID *int64        `json:"prepaidPackId,omitempty"`
	DiscountID    *int64        `json:"discountCodeId,omitempty"`
}

// Snapshot снимок бронирования для журнала аудита
func (b *Booking) Snapshot() json.RawMessage {
	data, err := json.Marshal(BookingSnapshot{
		Status:        b.Status,
		StartsAt:      b.StartsAt,
		SessionType:   b.SessionType,
		Price:         b.Price,
		PrepaidPackID: b.PrepaidPackID,
		DiscountID:    b.DiscountCodeID,
	})
	if err != nil {
		return nil
	}
	return data
}
