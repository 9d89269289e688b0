package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// PolicyConfig значения правил календаря и цен по умолчанию.
// Таблица settings может переопределить их во время работы
type PolicyConfig struct {
	Timezone               string `toml:"timezone"`
	SlotGranularityMinutes int    `toml:"slot_granularity_minutes"`
	MinNoticeMinutes       *int   `toml:"min_notice_minutes"`
	IndividualAdvanceDays  int    `toml:"individual_advance_days"`
	AssociationAdvanceDays int    `toml:"association_advance_days"`
	AdminAdvanceDays       int    `toml:"admin_advance_days"`
	CacheTTLSeconds        int    `toml:"cache_ttl_seconds"`

	Opening  []OpeningConfig `toml:"opening"`
	Sessions []SessionConfig `toml:"sessions"`
	Prices   []PriceConfig   `toml:"prices"`
}

// OpeningConfig окна работы на день недели, формат "HH:MM-HH:MM"
type OpeningConfig struct {
	Weekday string   `toml:"weekday"`
	Windows []string `toml:"windows"`
}

// SessionConfig длительности типа сеанса
type SessionConfig struct {
	Type            string `toml:"type"`
	Accompanied     bool   `toml:"accompanied"`
	DisplayMinutes  int    `toml:"display_minutes"`
	BlockingMinutes int    `toml:"blocking_minutes"`
}

// PriceConfig строка прайса
type PriceConfig struct {
	Class       string  `toml:"class"`
	Session     string  `toml:"session"`
	Accompanied bool    `toml:"accompanied"`
	Price       float64 `toml:"price"`
}

func (p *PolicyConfig) applyDefaults() {
	if p.Timezone == "" {
		p.Timezone = domain.DefaultTimezone
	}
	if p.SlotGranularityMinutes == 0 {
		p.SlotGranularityMinutes = domain.DefaultSlotGranularityMinutes
	}
	if p.MinNoticeMinutes == nil {
		n := domain.DefaultMinNoticeMinutes
		p.MinNoticeMinutes = &n
	}
	if p.IndividualAdvanceDays == 0 {
		p.IndividualAdvanceDays = domain.DefaultIndividualAdvanceDays
	}
	if p.AssociationAdvanceDays == 0 {
		p.AssociationAdvanceDays = domain.DefaultAssociationAdvanceDays
	}
	if p.AdminAdvanceDays == 0 {
		p.AdminAdvanceDays = domain.DefaultAdminAdvanceDays
	}
	if p.CacheTTLSeconds == 0 {
		p.CacheTTLSeconds = 60
	}
	if len(p.Opening) == 0 {
		p.Opening = defaultOpening()
	}
	if len(p.Sessions) == 0 {
		p.Sessions = defaultSessions()
	}
	if len(p.Prices) == 0 {
		p.Prices = defaultPrices()
	}
}

func defaultOpening() []OpeningConfig {
	weekdays := []string{"tuesday", "wednesday", "thursday", "friday"}
	opening := make([]OpeningConfig, 0, len(weekdays)+1)
	for _, day := range weekdays {
		opening = append(opening, OpeningConfig{Weekday: day, Windows: []string{"09:00-12:30", "14:00-19:00"}})
	}
	return append(opening, OpeningConfig{Weekday: "saturday", Windows: []string{"09:00-13:00"}})
}

func defaultSessions() []SessionConfig {
	return []SessionConfig{
		{Type: string(domain.SessionDiscovery), DisplayMinutes: 30, BlockingMinutes: 45},
		{Type: string(domain.SessionRegular), DisplayMinutes: 60, BlockingMinutes: 75},
		{Type: string(domain.SessionHalfDay), DisplayMinutes: 210, BlockingMinutes: 210},
		{Type: string(domain.SessionHalfDay), Accompanied: true, DisplayMinutes: 210, BlockingMinutes: 240},
		{Type: string(domain.SessionFullDay), DisplayMinutes: 420, BlockingMinutes: 420},
		{Type: string(domain.SessionFullDay), Accompanied: true, DisplayMinutes: 420, BlockingMinutes: 450},
	}
}

func defaultPrices() []PriceConfig {
	individual := string(domain.ClientIndividual)
	association := string(domain.ClientAssociation)
	return []PriceConfig{
		{Class: individual, Session: string(domain.SessionDiscovery), Price: 30},
		{Class: individual, Session: string(domain.SessionRegular), Price: 45},
		{Class: association, Session: string(domain.SessionDiscovery), Price: 25},
		{Class: association, Session: string(domain.SessionRegular), Price: 40},
		{Class: association, Session: string(domain.SessionHalfDay), Price: 150},
		{Class: association, Session: string(domain.SessionHalfDay), Accompanied: true, Price: 220},
		{Class: association, Session: string(domain.SessionFullDay), Price: 260},
		{Class: association, Session: string(domain.SessionFullDay), Accompanied: true, Price: 400},
	}
}

// ToDomain собирает domain.PolicyConfig и валидирует его
func (p *PolicyConfig) ToDomain() (*domain.PolicyConfig, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}

	cfg := &domain.PolicyConfig{
		Location:               loc,
		SlotGranularityMinutes: p.SlotGranularityMinutes,
		IndividualAdvanceDays:  p.IndividualAdvanceDays,
		AssociationAdvanceDays: p.AssociationAdvanceDays,
		AdminAdvanceDays:       p.AdminAdvanceDays,
		Opening:                make(map[time.Weekday][]domain.OpeningWindow),
		Durations:              make(map[domain.DurationKey]domain.Durations),
		Prices:                 make(map[domain.PriceKey]float64),
	}
	if p.MinNoticeMinutes != nil {
		cfg.MinNoticeMinutes = *p.MinNoticeMinutes
	}

	for _, o := range p.Opening {
		day, err := ParseWeekday(o.Weekday)
		if err != nil {
			return nil, err
		}
		for _, raw := range o.Windows {
			w, err := ParseWindow(raw)
			if err != nil {
				return nil, err
			}
			cfg.Opening[day] = append(cfg.Opening[day], w)
		}
	}

	for _, s := range p.Sessions {
		st, err := domain.ParseSessionType(s.Type)
		if err != nil {
			return nil, err
		}
		cfg.Durations[domain.DurationKey{Session: st, Accompanied: s.Accompanied}] = domain.Durations{
			DisplayMinutes:  s.DisplayMinutes,
			BlockingMinutes: s.BlockingMinutes,
		}
	}

	for _, pr := range p.Prices {
		class, err := domain.ParseClientClass(pr.Class)
		if err != nil {
			return nil, err
		}
		st, err := domain.ParseSessionType(pr.Session)
		if err != nil {
			return nil, err
		}
		cfg.Prices[domain.PriceKey{Class: class, Session: st, Accompanied: pr.Accompanied}] = pr.Price
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday название дня недели на английском, регистр не важен
func ParseWeekday(s string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return day, nil
}

// ParseWindow разбирает окно "HH:MM-HH:MM"
func ParseWindow(s string) (domain.OpeningWindow, error) {
	open, closeAt, found := strings.Cut(s, "-")
	if !found {
		return domain.OpeningWindow{}, fmt.Errorf("invalid opening window %q: expected HH:MM-HH:MM", s)
	}
	openMin, err := parseClock(open)
	if err != nil {
		return domain.OpeningWindow{}, fmt.Errorf("invalid opening window %q: %w", s, err)
	}
	closeMin, err := parseClock(closeAt)
	if err != nil {
		return domain.OpeningWindow{}, fmt.Errorf("invalid opening window %q: %w", s, err)
	}
	return domain.OpeningWindow{OpenMinute: openMin, CloseMinute: closeMin}, nil
}

func parseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return 24 * 60, nil
	}
	t, err := time.Parse(domain.TimeFormat, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
