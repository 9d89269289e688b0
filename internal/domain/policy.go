package domain

import (
	"fmt"
	"sort"
	"time"
)

// OpeningWindow окно работы зала в минутах от полуночи, [Open, Close)
type OpeningWindow struct {
	OpenMinute  int
	CloseMinute int
}

// DurationKey ключ таблицы длительностей
type DurationKey struct {
	Session     SessionType
	Accompanied bool
}

// PriceKey ключ прайса
type PriceKey struct {
	Class       ClientClass
	Session     SessionType
	Accompanied bool
}

// PolicyConfig правила календаря и цен.
// Собирается один раз на запрос (или берётся из кеша) и передаётся явно
type PolicyConfig struct {
	Location *time.Location

	SlotGranularityMinutes int
	MinNoticeMinutes       int

	IndividualAdvanceDays  int
	AssociationAdvanceDays int
	AdminAdvanceDays       int

	Opening   map[time.Weekday][]OpeningWindow
	Durations map[DurationKey]Durations
	Prices    map[PriceKey]float64
}

// Clone глубокая копия, чтобы переопределения не затрагивали кеш
func (c *PolicyConfig) Clone() *PolicyConfig {
	cp := *c
	cp.Opening = make(map[time.Weekday][]OpeningWindow, len(c.Opening))
	for day, windows := range c.Opening {
		cp.Opening[day] = append([]OpeningWindow(nil), windows...)
	}
	cp.Durations = make(map[DurationKey]Durations, len(c.Durations))
	for k, v := range c.Durations {
		cp.Durations[k] = v
	}
	cp.Prices = make(map[PriceKey]float64, len(c.Prices))
	for k, v := range c.Prices {
		cp.Prices[k] = v
	}
	return &cp
}

// WindowsFor окна работы для дня недели, отсортированные по открытию
func (c *PolicyConfig) WindowsFor(day time.Weekday) []OpeningWindow {
	windows := append([]OpeningWindow(nil), c.Opening[day]...)
	sort.Slice(windows, func(i, j int) bool { return windows[i].OpenMinute < windows[j].OpenMinute })
	return windows
}

// Validate проверяет согласованность конфигурации
func (c *PolicyConfig) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidPolicy)
	}
	if c.SlotGranularityMinutes < MinSlotGranularityMinutes || c.SlotGranularityMinutes > MaxSlotGranularityMinutes {
		return fmt.Errorf("%w: slot granularity must be between %d and %d minutes",
			ErrInvalidPolicy, MinSlotGranularityMinutes, MaxSlotGranularityMinutes)
	}
	if c.MinNoticeMinutes < 0 || c.MinNoticeMinutes > MaxMinNoticeMinutes {
		return fmt.Errorf("%w: min notice must be between 0 and %d minutes", ErrInvalidPolicy, MaxMinNoticeMinutes)
	}
	for _, days := range []int{c.IndividualAdvanceDays, c.AssociationAdvanceDays, c.AdminAdvanceDays} {
		if days < 0 || days > MaxAdvanceDays {
			return fmt.Errorf("%w: advance days must be between 0 and %d", ErrInvalidPolicy, MaxAdvanceDays)
		}
	}
	for day := range c.Opening {
		sorted := c.WindowsFor(day)
		for i, w := range sorted {
			if w.OpenMinute < 0 || w.CloseMinute > 24*60 || w.OpenMinute >= w.CloseMinute {
				return fmt.Errorf("%w: invalid opening window on %s", ErrInvalidPolicy, day)
			}
			if i > 0 && sorted[i-1].CloseMinute > w.OpenMinute {
				return fmt.Errorf("%w: overlapping opening windows on %s", ErrInvalidPolicy, day)
			}
		}
	}
	for key, d := range c.Durations {
		if !key.Session.IsValid() {
			return fmt.Errorf("%w: unknown session type %q in durations", ErrInvalidPolicy, key.Session)
		}
		if key.Accompanied && !key.Session.IsGroup() {
			return fmt.Errorf("%w: accompanied durations for non-group session %s", ErrInvalidPolicy, key.Session)
		}
		if d.DisplayMinutes <= 0 || d.BlockingMinutes < d.DisplayMinutes {
			return fmt.Errorf("%w: durations for %s must satisfy 0 < display <= blocking", ErrInvalidPolicy, key.Session)
		}
	}
	for key, price := range c.Prices {
		if price < 0 {
			return fmt.Errorf("%w: negative price for %s/%s", ErrInvalidPolicy, key.Class, key.Session)
		}
	}
	return nil
}
