package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

func testPolicy() *domain.PolicyConfig {
	return &domain.PolicyConfig{
		Location:               time.UTC,
		SlotGranularityMinutes: 30,
		MinNoticeMinutes:       60,
		IndividualAdvanceDays:  30,
		AssociationAdvanceDays: 90,
		AdminAdvanceDays:       365,
		Opening: map[time.Weekday][]domain.OpeningWindow{
			time.Tuesday: {{OpenMinute: 14 * 60, CloseMinute: 16 * 60}, {OpenMinute: 9 * 60, CloseMinute: 11 * 60}},
		},
		Durations: map[domain.DurationKey]domain.Durations{
			{Session: domain.SessionRegular}:                    {DisplayMinutes: 60, BlockingMinutes: 75},
			{Session: domain.SessionHalfDay}:                    {DisplayMinutes: 120, BlockingMinutes: 120},
			{Session: domain.SessionHalfDay, Accompanied: true}: {DisplayMinutes: 120, BlockingMinutes: 120},
		},
		Prices: map[domain.PriceKey]float64{
			{Class: domain.ClientIndividual, Session: domain.SessionRegular}:                     45,
			{Class: domain.ClientAssociation, Session: domain.SessionHalfDay, Accompanied: true}: 220,
		},
	}
}

// 2026-03-10: вторник
var tuesday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestCalendar_IsOpen(t *testing.T) {
	reason := "maintenance"
	cal := New(testPolicy(), []*domain.OffDay{
		{StartDate: tuesday.AddDate(0, 0, 7), EndDate: tuesday.AddDate(0, 0, 7), Reason: &reason},
	})

	assert.True(t, cal.IsOpen(tuesday))
	assert.False(t, cal.IsOpen(tuesday.AddDate(0, 0, 1)), "wednesday has no opening template")
	assert.False(t, cal.IsOpen(tuesday.AddDate(0, 0, 7)), "off-day")
	assert.True(t, cal.IsOpen(tuesday.AddDate(0, 0, 14)))
}

func TestCalendar_MaxAdvanceDays(t *testing.T) {
	cal := New(testPolicy(), nil)

	assert.Equal(t, 30, cal.MaxAdvanceDays(domain.ClientIndividual, false))
	assert.Equal(t, 90, cal.MaxAdvanceDays(domain.ClientAssociation, false))
	assert.Equal(t, 365, cal.MaxAdvanceDays(domain.ClientIndividual, true))
}

func TestCalendar_CheckHorizon(t *testing.T) {
	cal := New(testPolicy(), nil)
	now := tuesday.Add(10 * time.Hour)

	assert.NoError(t, cal.CheckHorizon(tuesday, now, 30))
	assert.NoError(t, cal.CheckHorizon(tuesday.AddDate(0, 0, 30), now, 30))
	assert.ErrorIs(t, cal.CheckHorizon(tuesday.AddDate(0, 0, 31), now, 30), ErrBeyondHorizon)
	assert.ErrorIs(t, cal.CheckHorizon(tuesday.AddDate(0, 0, -1), now, 30), ErrDateInPast)
}

func TestCalendar_ValidateSelection(t *testing.T) {
	cal := New(testPolicy(), nil)

	assert.NoError(t, cal.ValidateSelection(domain.SessionRegular, domain.ClientIndividual, false))
	assert.NoError(t, cal.ValidateSelection(domain.SessionHalfDay, domain.ClientAssociation, true))
	assert.ErrorIs(t, cal.ValidateSelection(domain.SessionHalfDay, domain.ClientIndividual, false), ErrGroupSessionNotAllowed)
	assert.ErrorIs(t, cal.ValidateSelection(domain.SessionRegular, domain.ClientIndividual, true), ErrAccompanimentNotAllowed)
	assert.ErrorIs(t, cal.ValidateSelection("yoga", domain.ClientIndividual, false), ErrUnknownSessionType)
}

func TestCalendar_DurationsAndPrice(t *testing.T) {
	cal := New(testPolicy(), nil)

	d, err := cal.Durations(domain.SessionRegular, false)
	require.NoError(t, err)
	assert.Equal(t, 15, d.BufferMinutes())

	_, err = cal.Durations(domain.SessionDiscovery, false)
	assert.ErrorIs(t, err, ErrSessionNotOffered)

	price, err := cal.Price(domain.ClientIndividual, domain.SessionRegular, false)
	require.NoError(t, err)
	assert.Equal(t, 45.0, price)

	price, err = cal.Price(domain.ClientAssociation, domain.SessionHalfDay, true)
	require.NoError(t, err)
	assert.Equal(t, 220.0, price)

	_, err = cal.Price(domain.ClientAssociation, domain.SessionHalfDay, false)
	assert.ErrorIs(t, err, ErrSessionNotOffered)
}

func TestCalendar_CandidateStarts(t *testing.T) {
	cal := New(testPolicy(), nil)
	at := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }

	// окна 09:00-11:00 и 14:00-16:00, блок 75 минут, шаг 30
	starts := cal.CandidateStarts(tuesday, 75)
	assert.Equal(t, []time.Time{at(9, 0), at(9, 30), at(14, 0), at(14, 30)}, starts)

	starts = cal.CandidateStarts(tuesday, 120)
	assert.Equal(t, []time.Time{at(9, 0), at(14, 0)}, starts)

	assert.Empty(t, cal.CandidateStarts(tuesday, 180))
	assert.Empty(t, cal.CandidateStarts(tuesday.AddDate(0, 0, 1), 30))

	assert.True(t, cal.IsOnGrid(at(9, 30), 75))
	assert.False(t, cal.IsOnGrid(at(9, 45), 75))
	assert.False(t, cal.IsOnGrid(at(10, 0), 75), "would end after window close")
}

func TestCalendar_Timezone(t *testing.T) {
	policy := testPolicy()
	policy.Location = time.FixedZone("CET", 3600)
	cal := New(policy, nil)

	starts := cal.CandidateStarts(tuesday, 120)
	require.Len(t, starts, 2)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), starts[0].UTC())

	// 23:30 UTC понедельника в Париже уже вторник
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, tuesday, cal.Today(now))
}
