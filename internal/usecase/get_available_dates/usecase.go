package get_available_dates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// UseCase use case для получения дат месяца, на которые есть свободный старт
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

// Execute выполняет use case. Месяц ограничивается сегодняшним днём и горизонтом
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableDates: %04d-%02d, type=%s, class=%s, accompanied=%t",
		req.Year, req.Month, req.SessionType, req.ClientClass, req.Accompanied)

	// 1. Валидация входных данных
	sessionType, class, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailableDates: validation failed: %v", err)
		return nil, err
	}

	// 2. Календарь на месяц
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	cal, err := uc.availability.NewCalendar(ctx, policy, first, first.AddDate(0, 1, -1))
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to build calendar: %v", err)
		return nil, fmt.Errorf("%w: failed to build calendar: %v", ErrInternal, err)
	}

	// 3. Комбинация тип/класс/сопровождение
	if err := cal.ValidateSelection(sessionType, class, req.Accompanied); err != nil {
		uc.logger.Warn("GetAvailableDates: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	durations, err := cal.Durations(sessionType, req.Accompanied)
	if err != nil {
		uc.logger.Warn("GetAvailableDates: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 4. Горизонт
	maxDays := cal.MaxAdvanceDays(class, req.IsAdmin)
	if req.MaxAdvanceDays != nil && *req.MaxAdvanceDays < maxDays {
		maxDays = *req.MaxAdvanceDays
	}

	// 5. Даты
	dates, err := uc.availability.AvailableDates(ctx, cal, req.Year, time.Month(req.Month), durations, uc.timeProvider.Now(), maxDays)
	if err != nil {
		uc.logger.Error("GetAvailableDates: failed to get dates: %v", err)
		return nil, fmt.Errorf("%w: failed to get dates: %v", ErrInternal, err)
	}

	uc.logger.Info("GetAvailableDates: found %d dates for %04d-%02d", len(dates), req.Year, req.Month)

	return &Response{
		Year:           req.Year,
		Month:          req.Month,
		MaxAdvanceDays: maxDays,
		Dates:          dates,
	}, nil
}

func validateRequest(req *Request) (domain.SessionType, domain.ClientClass, error) {
	if req.Year < 2000 || req.Year > 9999 {
		return "", "", fmt.Errorf("%w: year is out of range", ErrInvalidInput)
	}
	if req.Month < 1 || req.Month > 12 {
		return "", "", fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if req.MaxAdvanceDays != nil && *req.MaxAdvanceDays < 0 {
		return "", "", fmt.Errorf("%w: maxAdvanceDays must not be negative", ErrInvalidInput)
	}

	sessionType, err := domain.ParseSessionType(strings.TrimSpace(req.SessionType))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	class := domain.ClientIndividual
	if raw := strings.TrimSpace(req.ClientClass); raw != "" {
		class, err = domain.ParseClientClass(raw)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return sessionType, class, nil
}
