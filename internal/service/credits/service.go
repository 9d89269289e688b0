package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	packRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/pack"
)

// Метки операций для метрик
const (
	opReserve = "reserve"
	opRelease = "release"

	resultOK       = "ok"
	resultConflict = "conflict"
	resultNoop     = "noop"
	resultError    = "error"
)

// Service книга кредитов предоплаченных пакетов.
// Корректность обеспечивается условными UPDATE, а не предварительной проверкой остатка
type Service struct {
	packRepo  PackRepository
	txManager TransactionManager
	metrics   Metrics
	logger    Logger
}

// NewService создает новый экземпляр книги кредитов
func NewService(
	packRepo PackRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		packRepo:  packRepo,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
	}
}

// SelectPack первый по FIFO подходящий пакет или nil, если подходящих нет
func (s *Service) SelectPack(ctx context.Context, clientID int64, sessionType domain.SessionType, now time.Time) (*domain.PrepaidPack, error) {
	packs, err := s.packRepo.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error("SelectPack: failed to list packs for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: SelectPack - list packs: %v", ErrInternal, err)
	}

	eligible := domain.EligiblePacks(packs, sessionType, now)
	if len(eligible) == 0 {
		return nil, nil
	}
	return eligible[0], nil
}

// Reserve списывает один кредит с пакета и записывает PackUsage в одной транзакции.
// Если условное списание не изменило строку, возвращает ErrNoCreditAvailable без повтора
func (s *Service) Reserve(ctx context.Context, packID, bookingID int64, now time.Time) (*domain.PackUsage, error) {
	var usage *domain.PackUsage

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		consumed, err := s.packRepo.ConsumeOne(txCtx, packID, now)
		if err != nil {
			return fmt.Errorf("%w: Reserve - consume: %v", ErrInternal, err)
		}
		if !consumed {
			return ErrNoCreditAvailable
		}

		usage, err = s.packRepo.CreateUsage(txCtx, &domain.PackUsage{
			PackID:    packID,
			BookingID: bookingID,
			UsedAt:    now,
		})
		if err != nil {
			if errors.Is(err, packRepo.ErrUsageExists) {
				return ErrAlreadyReserved
			}
			return fmt.Errorf("%w: Reserve - create usage: %v", ErrInternal, err)
		}
		return nil
	})

	switch {
	case err == nil:
		s.metrics.IncCreditOperation(opReserve, resultOK)
		s.logger.Info("Reserve: consumed credit from pack=%d for booking=%d", packID, bookingID)
		return usage, nil
	case errors.Is(err, ErrNoCreditAvailable), errors.Is(err, ErrAlreadyReserved):
		s.metrics.IncCreditOperation(opReserve, resultConflict)
		s.logger.Warn("Reserve: pack=%d booking=%d: %v", packID, bookingID, err)
		return nil, err
	default:
		s.metrics.IncCreditOperation(opReserve, resultError)
		s.logger.Error("Reserve: pack=%d booking=%d: %v", packID, bookingID, err)
		return nil, err
	}
}

// Release возвращает кредит бронирования: уменьшает sessions_consumed и удаляет PackUsage.
// Без списания это идемпотентный no-op, возвращает false
func (s *Service) Release(ctx context.Context, bookingID int64) (bool, error) {
	released := false

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		usage, err := s.packRepo.GetUsageByBooking(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, packRepo.ErrUsageNotFound) {
				return nil
			}
			return fmt.Errorf("%w: Release - get usage: %v", ErrInternal, err)
		}

		restored, err := s.packRepo.RestoreOne(txCtx, usage.PackID)
		if err != nil {
			return fmt.Errorf("%w: Release - restore: %v", ErrInternal, err)
		}
		if !restored {
			s.logger.Warn("Release: pack=%d already has zero consumed sessions, dropping usage for booking=%d",
				usage.PackID, bookingID)
		}

		if err := s.packRepo.DeleteUsage(txCtx, usage.ID); err != nil {
			return fmt.Errorf("%w: Release - delete usage: %v", ErrInternal, err)
		}

		released = true
		return nil
	})

	if err != nil {
		s.metrics.IncCreditOperation(opRelease, resultError)
		s.logger.Error("Release: booking=%d: %v", bookingID, err)
		return false, err
	}

	if released {
		s.metrics.IncCreditOperation(opRelease, resultOK)
		s.logger.Info("Release: credit returned for booking=%d", bookingID)
	} else {
		s.metrics.IncCreditOperation(opRelease, resultNoop)
	}
	return released, nil
}

// Balance проекция подходящих пакетов клиента. при sessionType == nil без фильтра по типу
func (s *Service) Balance(ctx context.Context, clientID int64, sessionType *domain.SessionType, now time.Time) (*Balance, error) {
	packs, err := s.packRepo.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error("Balance: failed to list packs for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: Balance - list packs: %v", ErrInternal, err)
	}

	usable := make([]*domain.PrepaidPack, 0, len(packs))
	for _, p := range packs {
		if !p.Active || p.IsExpired(now) || p.IsExhausted() {
			continue
		}
		if sessionType != nil && !p.Covers(*sessionType) {
			continue
		}
		usable = append(usable, p)
	}
	domain.SortPacksFIFO(usable)

	balance := &Balance{Packs: make([]PackBalance, 0, len(usable))}
	for _, p := range usable {
		balance.TotalCredits += p.Remaining()
		balance.Packs = append(balance.Packs, toPackBalance(p))
	}
	return balance, nil
}
