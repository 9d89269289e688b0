package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/service/calendar"
)

// Service поиск свободных стартов.
// Состояние каждый раз читается заново: зал один, важен последний закоммиченный снимок
type Service struct {
	bookingRepo BookingRepository
	offDayRepo  OffDayRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	bookingRepo BookingRepository,
	offDayRepo OffDayRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		offDayRepo:  offDayRepo,
		logger:      logger,
	}
}

// NewCalendar собирает календарь с закрытыми днями из диапазона [from, to]
func (s *Service) NewCalendar(ctx context.Context, policy *domain.PolicyConfig, from, to time.Time) (*calendar.Calendar, error) {
	offDays, err := s.offDayRepo.ListInRange(ctx, from, to)
	if err != nil {
		s.logger.Error("Availability: failed to load off days %s..%s: %v",
			from.Format(domain.DateFormat), to.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: NewCalendar - load off days: %v", ErrInternal, err)
	}
	return calendar.New(policy, offDays), nil
}

// AvailableSlots свободные старты на дату в хронологическом порядке.
// Закрытая дата, прошедшая дата и отсутствие свободных стартов дают пустой результат
func (s *Service) AvailableSlots(
	ctx context.Context,
	cal *calendar.Calendar,
	date time.Time,
	durations domain.Durations,
	now time.Time,
) ([]time.Time, error) {
	if !cal.IsOpen(date) || domain.DateOnly(date).Before(cal.Today(now)) {
		return []time.Time{}, nil
	}

	candidates := cal.CandidateStarts(date, durations.BlockingMinutes)
	if len(candidates) == 0 {
		return []time.Time{}, nil
	}

	dayStart := cal.At(date, 0)
	bookings, err := s.bookingRepo.GetOverlapping(ctx, dayStart, dayStart.AddDate(0, 0, 1), domain.BlockingStatuses)
	if err != nil {
		s.logger.Error("Availability: failed to load bookings for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: AvailableSlots - load bookings: %v", ErrInternal, err)
	}

	return freeStarts(candidates, durations.BlockingMinutes, bookings, cal.EarliestStart(now)), nil
}

// AvailableDates даты месяца, на которые есть хотя бы один свободный старт.
// Диапазон ограничен сегодняшним днём и горизонтом maxAdvanceDays
func (s *Service) AvailableDates(
	ctx context.Context,
	cal *calendar.Calendar,
	year int,
	month time.Month,
	durations domain.Durations,
	now time.Time,
	maxAdvanceDays int,
) ([]time.Time, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	today := cal.Today(now)
	horizon := today.AddDate(0, 0, maxAdvanceDays)

	if first.Before(today) {
		first = today
	}
	if last.After(horizon) {
		last = horizon
	}

	dates := make([]time.Time, 0)
	if first.After(last) {
		return dates, nil
	}

	rangeStart := cal.At(first, 0)
	rangeEnd := cal.At(last, 0).AddDate(0, 0, 1)
	bookings, err := s.bookingRepo.GetOverlapping(ctx, rangeStart, rangeEnd, domain.BlockingStatuses)
	if err != nil {
		s.logger.Error("Availability: failed to load bookings for %d-%02d: %v", year, month, err)
		return nil, fmt.Errorf("%w: AvailableDates - load bookings: %v", ErrInternal, err)
	}

	earliest := cal.EarliestStart(now)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !cal.IsOpen(d) {
			continue
		}
		candidates := cal.CandidateStarts(d, durations.BlockingMinutes)
		if len(freeStarts(candidates, durations.BlockingMinutes, bookings, earliest)) > 0 {
			dates = append(dates, d)
		}
	}

	return dates, nil
}

// IsSlotFree свободен ли интервал [start, start + blockingMinutes) от бронирований с указанными статусами.
// excludeID исключает само проверяемое бронирование
func (s *Service) IsSlotFree(
	ctx context.Context,
	start time.Time,
	blockingMinutes int,
	statuses []domain.BookingStatus,
	excludeID int64,
) (bool, error) {
	end := start.Add(time.Duration(blockingMinutes) * time.Minute)

	bookings, err := s.bookingRepo.GetOverlapping(ctx, start, end, statuses)
	if err != nil {
		s.logger.Error("Availability: failed to load bookings overlapping %s: %v", start.Format(time.RFC3339), err)
		return false, fmt.Errorf("%w: IsSlotFree - load bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if b.ID != excludeID && b.Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

// freeStarts отбрасывает старты раньше earliest и старты, чей занятый интервал пересекается с бронированием
func freeStarts(candidates []time.Time, blockingMinutes int, bookings []*domain.Booking, earliest time.Time) []time.Time {
	free := make([]time.Time, 0, len(candidates))
	block := time.Duration(blockingMinutes) * time.Minute

	for _, start := range candidates {
		if start.Before(earliest) {
			continue
		}
		end := start.Add(block)
		taken := false
		for _, b := range bookings {
			if b.Overlaps(start, end) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, start)
		}
	}
	return free
}
