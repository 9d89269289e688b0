package get_available_dates

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/service/calendar"
)

// PolicyProvider источник правил календаря
type PolicyProvider interface {
	Get(ctx context.Context) (*domain.PolicyConfig, error)
}

// AvailabilityService интерфейс сервиса свободных дат
type AvailabilityService interface {
	NewCalendar(ctx context.Context, policy *domain.PolicyConfig, from, to time.Time) (*calendar.Calendar, error)
	AvailableDates(ctx context.Context, cal *calendar.Calendar, year int, month time.Month, durations domain.Durations, now time.Time, maxAdvanceDays int) ([]time.Time, error)
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
