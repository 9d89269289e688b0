package cancel_booking

import (
	"context"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

type BookingService interface {
	Cancel(ctx context.Context, token, actor string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
