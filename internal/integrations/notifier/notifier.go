// Package notifier доставка уведомлений о бронированиях: RabbitMQ и HTTP сервис уведомлений.
// Отправка происходит после коммита и не влияет на результат операции
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Dispatcher рассылает событие во все каналы
type Dispatcher struct {
	senders      []Sender
	log          Logger
	timeProvider TimeProvider
}

// NewDispatcher создает диспетчер. Без каналов уведомления только логируются
func NewDispatcher(log Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		senders:      senders,
		log:          log,
		timeProvider: RealTimeProvider{},
	}
}

// Notify отправляет событие во все каналы; ошибки каналов объединяются
func (d *Dispatcher) Notify(ctx context.Context, eventType string, booking *domain.Booking) error {
	if booking == nil {
		return fmt.Errorf("%w: nil booking", ErrInternal)
	}

	event := &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: d.timeProvider.Now().UTC(),
		Booking:    toPayload(booking),
	}

	if len(d.senders) == 0 {
		d.log.Info("Notify: %s for booking id=%d (no channels configured)", eventType, booking.ID)
		return nil
	}

	var errs []error
	for _, sender := range d.senders {
		if err := sender.Send(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	d.log.Info("Notify: %s sent for booking id=%d", eventType, booking.ID)
	return nil
}
