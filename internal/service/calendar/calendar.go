package calendar

import (
	"fmt"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Calendar правила календаря: открытые даты, горизонт, длительности, цены и сетка стартов.
// Не обращается к хранилищу: закрытые дни передаются при создании
type Calendar struct {
	policy  *domain.PolicyConfig
	offDays []*domain.OffDay
}

// New создает календарь для одного запроса
func New(policy *domain.PolicyConfig, offDays []*domain.OffDay) *Calendar {
	return &Calendar{
		policy:  policy,
		offDays: offDays,
	}
}

// Location часовой пояс зала
func (c *Calendar) Location() *time.Location {
	return c.policy.Location
}

// Today текущая календарная дата в часовом поясе зала
func (c *Calendar) Today(now time.Time) time.Time {
	return domain.DateOnly(now.In(c.policy.Location))
}

// IsOffDay попадает ли дата в закрытый диапазон
func (c *Calendar) IsOffDay(date time.Time) bool {
	for _, off := range c.offDays {
		if off.Covers(date) {
			return true
		}
	}
	return false
}

// IsOpen дата открыта: у дня недели есть окна работы и дата не закрыта
func (c *Calendar) IsOpen(date time.Time) bool {
	d := domain.DateOnly(date)
	if len(c.policy.Opening[d.Weekday()]) == 0 {
		return false
	}
	return !c.IsOffDay(d)
}

// MaxAdvanceDays на сколько дней вперёд можно бронировать
func (c *Calendar) MaxAdvanceDays(class domain.ClientClass, isAdmin bool) int {
	if isAdmin {
		return c.policy.AdminAdvanceDays
	}
	if class == domain.ClientAssociation {
		return c.policy.AssociationAdvanceDays
	}
	return c.policy.IndividualAdvanceDays
}

// CheckHorizon дата в диапазоне [today, today + maxDays]
func (c *Calendar) CheckHorizon(date, now time.Time, maxDays int) error {
	d := domain.DateOnly(date)
	today := c.Today(now)
	if d.Before(today) {
		return ErrDateInPast
	}
	if d.After(today.AddDate(0, 0, maxDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrBeyondHorizon, maxDays)
	}
	return nil
}

// ValidateSelection проверяет допустимость комбинации тип/класс/сопровождение
func (c *Calendar) ValidateSelection(t domain.SessionType, class domain.ClientClass, accompanied bool) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownSessionType, t)
	}
	if t.IsGroup() && class != domain.ClientAssociation {
		return ErrGroupSessionNotAllowed
	}
	if accompanied && !t.IsGroup() {
		return ErrAccompanimentNotAllowed
	}
	return nil
}

// Durations показываемая и блокирующая длительности
func (c *Calendar) Durations(t domain.SessionType, accompanied bool) (domain.Durations, error) {
	if !t.IsValid() {
		return domain.Durations{}, fmt.Errorf("%w: %q", ErrUnknownSessionType, t)
	}
	if accompanied && !t.IsGroup() {
		return domain.Durations{}, ErrAccompanimentNotAllowed
	}
	d, ok := c.policy.Durations[domain.DurationKey{Session: t, Accompanied: accompanied}]
	if !ok {
		return domain.Durations{}, fmt.Errorf("%w: no durations for %s (accompanied=%t)", ErrSessionNotOffered, t, accompanied)
	}
	return d, nil
}

// Price базовая цена из прайса
func (c *Calendar) Price(class domain.ClientClass, t domain.SessionType, accompanied bool) (float64, error) {
	price, ok := c.policy.Prices[domain.PriceKey{Class: class, Session: t, Accompanied: accompanied}]
	if !ok {
		return 0, fmt.Errorf("%w: no price for %s/%s (accompanied=%t)", ErrSessionNotOffered, class, t, accompanied)
	}
	return price, nil
}

// CandidateStarts сетка стартов на дату в хронологическом порядке.
// Старт допустим, только если занятый интервал целиком помещается в окно работы
func (c *Calendar) CandidateStarts(date time.Time, blockingMinutes int) []time.Time {
	if !c.IsOpen(date) {
		return []time.Time{}
	}

	d := domain.DateOnly(date)
	step := c.policy.SlotGranularityMinutes
	starts := make([]time.Time, 0)

	for _, w := range c.policy.WindowsFor(d.Weekday()) {
		for minute := w.OpenMinute; minute+blockingMinutes <= w.CloseMinute; minute += step {
			starts = append(starts, c.At(d, minute))
		}
	}
	return starts
}

// IsOnGrid совпадает ли start с одним из стартов сетки
func (c *Calendar) IsOnGrid(start time.Time, blockingMinutes int) bool {
	local := start.In(c.policy.Location)
	for _, candidate := range c.CandidateStarts(local, blockingMinutes) {
		if candidate.Equal(start) {
			return true
		}
	}
	return false
}

// At момент времени: дата + минуты от полуночи в часовом поясе зала
func (c *Calendar) At(date time.Time, minuteOfDay int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minuteOfDay/60, minuteOfDay%60, 0, 0, c.policy.Location)
}

// EarliestStart минимальный допустимый старт с учётом min notice
func (c *Calendar) EarliestStart(now time.Time) time.Time {
	return now.Add(time.Duration(c.policy.MinNoticeMinutes) * time.Minute)
}
