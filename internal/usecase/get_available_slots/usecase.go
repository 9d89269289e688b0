package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// UseCase use case для получения свободных стартов на дату
type UseCase struct {
	policy       PolicyProvider
	availability AvailabilityService
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	policy PolicyProvider,
	availability AvailabilityService,
	logger Logger,
) *UseCase {
	return &UseCase{
		policy:       policy,
		availability: availability,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных стартов.
// Закрытая или прошедшая дата даёт пустой список, а не ошибку
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s, type=%s, accompanied=%t", req.Date, req.SessionType, req.Accompanied)

	// 1. Валидация входных данных
	date, sessionType, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Правила календаря
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	cal, err := uc.availability.NewCalendar(ctx, policy, date, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to build calendar: %v", err)
		return nil, fmt.Errorf("%w: failed to build calendar: %v", ErrInternal, err)
	}

	// 3. Длительности сеанса
	durations, err := cal.Durations(sessionType, req.Accompanied)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Свободные старты
	slots, err := uc.availability.AvailableSlots(ctx, cal, date, durations, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get slots: %v", err)
		return nil, fmt.Errorf("%w: failed to get slots: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableSlots: found %d slots for date=%s, type=%s",
		len(slots), date.Format(domain.DateFormat), sessionType)

	return &Response{
		Date:           date,
		SessionType:    string(sessionType),
		Accompanied:    req.Accompanied,
		DisplayMinutes: durations.DisplayMinutes,
		BlockedMinutes: durations.BlockingMinutes,
		Slots:          slots,
	}, nil
}
