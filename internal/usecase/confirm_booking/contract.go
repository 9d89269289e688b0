package confirm_booking

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error
}

// AvailabilityService повторная проверка пересечений
type AvailabilityService interface {
	IsSlotFree(ctx context.Context, start time.Time, blockingMinutes int, statuses []domain.BookingStatus, excludeID int64) (bool, error)
}

// AuditRepository журнал аудита
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// Notifier отправка уведомлений после коммита
type Notifier interface {
	Notify(ctx context.Context, event string, booking *domain.Booking) error
}

// Metrics счётчик переходов
type Metrics interface {
	IncTransition(to string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
