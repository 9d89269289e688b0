package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	bookingRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/booking"
)

// Service жизненный цикл бронирования после создания: отмена и административные переходы
type Service struct {
	bookingRepo  BookingRepository
	discountRepo DiscountUsageRepository
	credits      CreditLedger
	auditRepo    AuditRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	logger       Logger
	timeProvider TimeProvider
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	discountRepo DiscountUsageRepository,
	credits CreditLedger,
	auditRepo AuditRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		discountRepo: discountRepo,
		credits:      credits,
		auditRepo:    auditRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		timeProvider: RealTimeProvider{},
	}
}

// NewServiceWithTimeProvider создает сервис с кастомным TimeProvider (для тестов)
func NewServiceWithTimeProvider(
	bookingRepo BookingRepository,
	discountRepo DiscountUsageRepository,
	credits CreditLedger,
	auditRepo AuditRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
	timeProvider TimeProvider,
) *Service {
	s := NewService(bookingRepo, discountRepo, credits, auditRepo, txManager, notifier, metrics, logger)
	s.timeProvider = timeProvider
	return s
}

// GetByToken получает бронирование по токену подтверждения
func (s *Service) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByToken: booking not found")
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByToken: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetByToken - repository error: %v", ErrInternal, err)
	}
	return booking, nil
}

// Cancel отменяет бронирование: возвращает кредит, удаляет использование кода скидки,
// ставит статус cancelled и пишет аудит в одной транзакции.
// Повторная отмена ничего не делает, отмена завершённого бронирования запрещена
func (s *Service) Cancel(ctx context.Context, token, actor string) (*domain.Booking, error) {
	var (
		booking *domain.Booking
		changed bool
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByToken(txCtx, token)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: Cancel - get booking: %v", ErrInternal, err)
		}

		if booking.Status == domain.StatusCancelled {
			return nil
		}
		if !booking.CanTransitionTo(domain.StatusCancelled) {
			return fmt.Errorf("%w: status %s", ErrCannotCancel, booking.Status)
		}

		before := booking.Snapshot()
		now := s.timeProvider.Now().UTC()

		if booking.UsedPrepaidCredit() {
			released, err := s.credits.Release(txCtx, booking.ID)
			if err != nil {
				return fmt.Errorf("%w: Cancel - release credit: %v", ErrInternal, err)
			}
			if !released {
				s.logger.Warn("Cancel: booking id=%d references pack but has no usage to release", booking.ID)
			}
		}

		if booking.DiscountCodeID != nil {
			if _, err := s.discountRepo.DeleteUsageByBooking(txCtx, booking.ID); err != nil {
				return fmt.Errorf("%w: Cancel - delete discount usage: %v", ErrInternal, err)
			}
		}

		if err := s.changeStatus(txCtx, booking, domain.StatusCancelled, now); err != nil {
			return err
		}

		if err := s.audit(txCtx, actor, domain.AuditActionCancel, booking, before); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrCannotCancel) {
			s.logger.Warn("Cancel: %v", err)
		} else {
			s.logger.Error("Cancel: %v", err)
		}
		return nil, err
	}

	if changed {
		s.logger.Info("Cancel: booking id=%d cancelled by %s", booking.ID, actor)
		s.afterTransition(ctx, booking)
	} else {
		s.logger.Info("Cancel: booking id=%d already cancelled", booking.ID)
	}
	return booking, nil
}

// UpdateStatus административный переход confirmed -> completed | no_show.
// Повторная установка того же статуса ничего не делает
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, status string) (*domain.Booking, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s", bookingID, status)

	target, err := domain.ParseBookingStatus(status)
	if err != nil || (target != domain.StatusCompleted && target != domain.StatusNoShow) {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", status, bookingID)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var (
		booking *domain.Booking
		changed bool
	)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: UpdateStatus - get booking: %v", ErrInternal, err)
		}

		if booking.Status == target {
			return nil
		}
		if booking.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
		}

		before := booking.Snapshot()
		if err := s.changeStatus(txCtx, booking, target, s.timeProvider.Now().UTC()); err != nil {
			return err
		}
		if err := s.audit(txCtx, domain.ActorAdmin, domain.AuditActionStatus, booking, before); err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInternal) {
			s.logger.Error("UpdateStatus: booking id=%d: %v", bookingID, err)
		} else {
			s.logger.Warn("UpdateStatus: booking id=%d: %v", bookingID, err)
		}
		return nil, err
	}

	if changed {
		s.logger.Info("UpdateStatus: booking id=%d is now %s", bookingID, target)
		s.afterTransition(ctx, booking)
	}
	return booking, nil
}

// changeStatus условный переход в хранилище и обновление копии в памяти
func (s *Service) changeStatus(ctx context.Context, booking *domain.Booking, to domain.BookingStatus, at time.Time) error {
	if err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, to, at); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			return fmt.Errorf("%w: booking id=%d changed concurrently", ErrInvalidTransition, booking.ID)
		}
		return fmt.Errorf("%w: update status: %v", ErrInternal, err)
	}

	booking.Status = to
	booking.UpdatedAt = at
	switch to {
	case domain.StatusConfirmed:
		booking.ConfirmedAt = &at
	case domain.StatusCancelled:
		booking.CancelledAt = &at
	}
	return nil
}

func (s *Service) audit(ctx context.Context, actor, action string, booking *domain.Booking, before []byte) error {
	err := s.auditRepo.Create(ctx, &domain.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "booking",
		EntityID: booking.ID,
		Before:   before,
		After:    booking.Snapshot(),
	})
	if err != nil {
		return fmt.Errorf("%w: write audit: %v", ErrInternal, err)
	}
	return nil
}

// afterTransition уведомление и метрики после коммита, ошибки уведомления не возвращаются
func (s *Service) afterTransition(ctx context.Context, booking *domain.Booking) {
	s.metrics.IncTransition(string(booking.Status))
	if err := s.notifier.Notify(ctx, domain.EventForStatus(booking.Status), booking); err != nil {
		s.logger.Warn("afterTransition: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}
