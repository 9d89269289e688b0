package domain

import (
	"fmt"
	"time"
)

// BookingStatus статус бронирования
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// transitions допустимые переходы state machine.
// pending и confirmed единственные нетерминальные статусы
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

// ParseBookingStatus конвертирует строку в BookingStatus с валидацией
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
}

// Booking бронирование зала
type Booking struct {
	ID       int64
	ClientID int64  // владелец (аккаунт клиента)
	PersonID *int64 // участник сеанса; nil для групповых типов

	StartsAt    time.Time
	SessionType SessionType
	Accompanied bool // только для групповых типов

	// Снимок длительностей на момент создания, не пересчитывается
	DisplayMinutes  int
	BlockingMinutes int

	Price          float64
	OriginalPrice  *float64 // заполнено только если применена скидка
	DiscountAmount *float64
	DiscountCodeID *int64 // взаимоисключающе с PrepaidPackID
	PrepaidPackID  *int64

	Status            BookingStatus
	ConfirmationToken string

	Consent   bool
	ConsentAt *time.Time

	IPAddress *string
	UserAgent *string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
}

// EndsAt конец сеанса, который видит клиент
func (b *Booking) EndsAt() time.Time {
	return b.StartsAt.Add(time.Duration(b.DisplayMinutes) * time.Minute)
}

// BlockedUntil конец занятого в календаре интервала [StartsAt, BlockedUntil)
func (b *Booking) BlockedUntil() time.Time {
	return b.StartsAt.Add(time.Duration(b.BlockingMinutes) * time.Minute)
}

// IsBlocking только pending и confirmed занимают зал
func (b *Booking) IsBlocking() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal из терминального статуса переходов нет
func (b *Booking) IsTerminal() bool {
	_, ok := transitions[b.Status]
	return !ok
}

// CanTransitionTo проверяет допустимость перехода
func (b *Booking) CanTransitionTo(to BookingStatus) bool {
	for _, allowed := range transitions[b.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UsedPrepaidCredit бронирование оплачено кредитом из пакета
func (b *Booking) UsedPrepaidCredit() bool {
	return b.PrepaidPackID != nil
}

// Overlaps пересекается ли занятый интервал бронирования с [start, end)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return Overlaps(b.StartsAt, b.BlockedUntil(), start, end)
}

// Validate проверяет инварианты бронирования
func (b *Booking) Validate() error {
	if b.DiscountCodeID != nil && b.PrepaidPackID != nil {
		return fmt.Errorf("%w: booking cannot reference both discount code and prepaid pack", ErrInvariantViolation)
	}
	if b.DisplayMinutes <= 0 {
		return fmt.Errorf("%w: display minutes must be positive", ErrInvariantViolation)
	}
	if b.BlockingMinutes < b.DisplayMinutes {
		return fmt.Errorf("%w: blocking minutes %d < display minutes %d", ErrInvariantViolation, b.BlockingMinutes, b.DisplayMinutes)
	}
	if b.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvariantViolation)
	}
	if b.Accompanied && !b.SessionType.IsGroup() {
		return fmt.Errorf("%w: accompaniment is only available for group sessions", ErrInvariantViolation)
	}
	return nil
}
