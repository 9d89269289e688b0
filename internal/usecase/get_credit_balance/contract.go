package get_credit_balance

import (
	"context"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
)

// ClientRepository поиск аккаунта по email
type ClientRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Client, error)
}

// CreditService проекция баланса
type CreditService interface {
	Balance(ctx context.Context, clientID int64, sessionType *domain.SessionType, now time.Time) (*credits.Balance, error)
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
