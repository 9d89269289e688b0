package credits

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// PackRepository интерфейс репозитория пакетов
type PackRepository interface {
	ListByClient(ctx context.Context, clientID int64) ([]*domain.PrepaidPack, error)
	ConsumeOne(ctx context.Context, packID int64, now time.Time) (bool, error)
	RestoreOne(ctx context.Context, packID int64) (bool, error)
	CreateUsage(ctx context.Context, usage *domain.PackUsage) (*domain.PackUsage, error)
	GetUsageByBooking(ctx context.Context, bookingID int64) (*domain.PackUsage, error)
	DeleteUsage(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями.
// Вызов внутри внешней транзакции присоединяется к ней
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики операций с кредитами
type Metrics interface {
	IncCreditOperation(op, result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
