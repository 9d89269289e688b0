package confirm_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/RoomBookingService/internal/domain"
	bookingRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/booking"
	"github.com/m04kA/RoomBookingService/pkg/txmanager"
)

// confirmedOnly подтверждение конкурирует только с уже подтверждёнными бронированиями
var confirmedOnly = []domain.BookingStatus{domain.StatusConfirmed}

// UseCase use case для подтверждения бронирования по токену
type UseCase struct {
	bookingRepo  BookingRepository
	availability AvailabilityService
	auditRepo    AuditRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availability AvailabilityService,
	auditRepo AuditRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		availability: availability,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute подтверждает pending бронирование.
// Интервал перепроверяется на момент подтверждения; при конфликте бронирование остаётся pending.
// Повторное подтверждение возвращает бронирование без побочных эффектов
func (uc *UseCase) Execute(ctx context.Context, token string) (*domain.Booking, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		uc.logger.Warn("ConfirmBooking: empty token")
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	var (
		booking *domain.Booking
		changed bool
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error

		// 1. Бронирование по токену
		booking, err = uc.bookingRepo.GetByToken(txCtx, token)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2. Статус
		if booking.Status == domain.StatusConfirmed {
			return nil
		}
		if booking.Status != domain.StatusPending {
			return fmt.Errorf("%w: status %s", ErrNotPending, booking.Status)
		}

		// 3. Повторная проверка пересечений
		free, err := uc.availability.IsSlotFree(txCtx, booking.StartsAt, booking.BlockingMinutes, confirmedOnly, booking.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
		}
		if !free {
			return ErrSlotNotAvailable
		}

		// 4. Условный переход pending -> confirmed
		before := booking.Snapshot()
		now := uc.timeProvider.Now().UTC()
		if err := uc.bookingRepo.UpdateStatus(txCtx, booking.ID, domain.StatusPending, domain.StatusConfirmed, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusConflict) {
				return fmt.Errorf("%w: booking id=%d changed concurrently", ErrNotPending, booking.ID)
			}
			return fmt.Errorf("%w: failed to update status: %v", ErrInternal, err)
		}
		booking.Status = domain.StatusConfirmed
		booking.ConfirmedAt = &now
		booking.UpdatedAt = now

		// 5. Аудит
		err = uc.auditRepo.Create(txCtx, &domain.AuditEntry{
			Actor:    domain.ActorClient,
			Action:   domain.AuditActionConfirm,
			Entity:   "booking",
			EntityID: booking.ID,
			Before:   before,
			After:    booking.Snapshot(),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to write audit: %v", ErrInternal, err)
		}

		changed = true
		return nil
	})

	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("ConfirmBooking: serialization retries exhausted")
			return nil, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("ConfirmBooking: %v", err)
		} else {
			uc.logger.Warn("ConfirmBooking: rejected: %v", err)
		}
		return nil, err
	}

	if !changed {
		uc.logger.Info("ConfirmBooking: booking id=%d already confirmed", booking.ID)
		return booking, nil
	}

	uc.logger.Info("ConfirmBooking: booking id=%d confirmed", booking.ID)

	// 6. После коммита: метрики и уведомление
	uc.metrics.IncTransition(string(domain.StatusConfirmed))
	if err := uc.notifier.Notify(ctx, domain.EventBookingConfirmed, booking); err != nil {
		uc.logger.Warn("ConfirmBooking: failed to notify about booking id=%d: %v", booking.ID, err)
	}

	return booking, nil
}
