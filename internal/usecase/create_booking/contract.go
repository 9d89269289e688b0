package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/ratelimit"
	"github.com/m04kA/RoomBookingService/internal/service/calendar"
	"github.com/m04kA/RoomBookingService/internal/service/discount"
)

// PolicyProvider источник правил календаря и прайса
type PolicyProvider interface {
	Get(ctx context.Context) (*domain.PolicyConfig, error)
}

// AvailabilityService проверка свободного слота
type AvailabilityService interface {
	NewCalendar(ctx context.Context, policy *domain.PolicyConfig, from, to time.Time) (*calendar.Calendar, error)
	IsSlotFree(ctx context.Context, start time.Time, blockingMinutes int, statuses []domain.BookingStatus, excludeID int64) (bool, error)
}

// ClientRepository поиск или создание аккаунта и участника
type ClientRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	GetPersonByName(ctx context.Context, clientID int64, name string) (*domain.Person, error)
	CreatePerson(ctx context.Context, p *domain.Person) (*domain.Person, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// DiscountResolver расчёт цены
type DiscountResolver interface {
	Resolve(ctx context.Context, req discount.Request) (*discount.Result, error)
}

// CreditLedger списание кредита
type CreditLedger interface {
	Reserve(ctx context.Context, packID, bookingID int64, now time.Time) (*domain.PackUsage, error)
}

// DiscountUsageRepository запись использования кода
type DiscountUsageRepository interface {
	CreateUsage(ctx context.Context, usage *domain.DiscountUsage) (*domain.DiscountUsage, error)
}

// AuditRepository журнал аудита
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// RateLimiter ограничение попыток
type RateLimiter interface {
	Allow(ctx context.Context, key string, rule ratelimit.Rule) (bool, error)
}

// Notifier отправка уведомлений после коммита
type Notifier interface {
	Notify(ctx context.Context, event string, booking *domain.Booking) error
}

// Metrics счётчик созданных бронирований
type Metrics interface {
	IncBookingCreated(source string)
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
