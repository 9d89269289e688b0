package bookings

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error
}

// DiscountUsageRepository удаление использований кода при отмене
type DiscountUsageRepository interface {
	DeleteUsageByBooking(ctx context.Context, bookingID int64) (bool, error)
}

// CreditLedger возврат кредита при отмене
type CreditLedger interface {
	Release(ctx context.Context, bookingID int64) (bool, error)
}

// AuditRepository журнал аудита
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// Notifier отправка уведомлений после коммита
type Notifier interface {
	Notify(ctx context.Context, event string, booking *domain.Booking) error
}

// Metrics счётчики переходов статуса
type Metrics interface {
	IncTransition(to string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

// Now возвращает текущее время
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
