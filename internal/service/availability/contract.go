package availability

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetOverlapping(ctx context.Context, from, to time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error)
}

// OffDayRepository интерфейс репозитория закрытых дней
type OffDayRepository interface {
	ListInRange(ctx context.Context, from, to time.Time) ([]*domain.OffDay, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
