package update_booking_status

import (
	"context"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

type BookingService interface {
	UpdateStatus(ctx context.Context, bookingID int64, status string) (*domain.Booking, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
