package discount

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// DiscountRepository интерфейс репозитория кодов скидок
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	ListAutomatic(ctx context.Context) ([]*domain.DiscountCode, error)
	CountUsages(ctx context.Context, codeID int64) (int, error)
	CountClientUsages(ctx context.Context, codeID, clientID int64) (int, error)
}

// BookingCounter число бронирований клиента для правила first_booking
type BookingCounter interface {
	CountByClient(ctx context.Context, clientID int64) (int, error)
}

// CreditSelector выбор пакета для списания
type CreditSelector interface {
	SelectPack(ctx context.Context, clientID int64, sessionType domain.SessionType, now time.Time) (*domain.PrepaidPack, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
