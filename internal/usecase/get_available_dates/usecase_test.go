package get_available_dates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/internal/service/availability"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/ptr"
)

type staticPolicy struct{ p *domain.PolicyConfig }

func (s staticPolicy) Get(context.Context) (*domain.PolicyConfig, error) { return s.p, nil }

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

func testPolicy() *domain.PolicyConfig {
	return &domain.PolicyConfig{
		Location:               time.UTC,
		SlotGranularityMinutes: 30,
		MinNoticeMinutes:       60,
		IndividualAdvanceDays:  30,
		AssociationAdvanceDays: 90,
		AdminAdvanceDays:       365,
		Opening: map[time.Weekday][]domain.OpeningWindow{
			time.Tuesday: {{OpenMinute: 9 * 60, CloseMinute: 12 * 60}},
		},
		Durations: map[domain.DurationKey]domain.Durations{
			{Session: domain.SessionRegular}: {DisplayMinutes: 60, BlockingMinutes: 75},
			{Session: domain.SessionHalfDay}: {DisplayMinutes: 180, BlockingMinutes: 180},
		},
		Prices: map[domain.PriceKey]float64{},
	}
}

func day(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }

// понедельник 2026-03-02; вторники марта: 3, 10, 17, 24, 31
func setup(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()
	uc := NewUseCase(staticPolicy{p: testPolicy()}, availability.NewService(store.Bookings(), store.OffDays(), log), log).
		WithTimeProvider(fixedTime{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)})
	return uc, store
}

func addBooking(t *testing.T, store *memory.Store, token string, start time.Time) {
	t.Helper()
	_, err := store.Bookings().Create(context.Background(), &domain.Booking{
		ConfirmationToken: token,
		StartsAt:          start,
		SessionType:       domain.SessionRegular,
		DisplayMinutes:    60,
		BlockingMinutes:   75,
		Status:            domain.StatusConfirmed,
	})
	require.NoError(t, err)
}

func TestGetAvailableDates_SkipsFullAndOffDays(t *testing.T) {
	ctx := context.Background()
	uc, store := setup(t)

	// 10 марта полностью занято: 9:00-10:15 и 10:30-11:45
	addBooking(t, store, "a", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	addBooking(t, store, "b", time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC))
	_, err := store.OffDays().Add(ctx, &domain.OffDay{StartDate: day(3, 16), EndDate: day(3, 18)})
	require.NoError(t, err)

	resp, err := uc.Execute(ctx, &Request{Year: 2026, Month: 3, SessionType: "regular"})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.MaxAdvanceDays)
	assert.Equal(t, []time.Time{day(3, 3), day(3, 24), day(3, 31)}, resp.Dates)
}

func TestGetAvailableDates_Horizon(t *testing.T) {
	tests := []struct {
		name     string
		req      *Request
		wantDays int
		want     []time.Time
	}{
		{
			name:     "individual horizon ends before april tuesdays",
			req:      &Request{Year: 2026, Month: 4, SessionType: "regular"},
			wantDays: 30,
			want:     []time.Time{},
		},
		{
			name:     "association horizon",
			req:      &Request{Year: 2026, Month: 4, SessionType: "half_day", ClientClass: "association"},
			wantDays: 90,
			want:     []time.Time{day(4, 7), day(4, 14), day(4, 21), day(4, 28)},
		},
		{
			name:     "requested ceiling narrows horizon",
			req:      &Request{Year: 2026, Month: 3, SessionType: "regular", MaxAdvanceDays: ptr.Ptr(10)},
			wantDays: 10,
			want:     []time.Time{day(3, 3), day(3, 10)},
		},
		{
			name:     "requested ceiling cannot widen horizon",
			req:      &Request{Year: 2026, Month: 4, SessionType: "regular", MaxAdvanceDays: ptr.Ptr(365)},
			wantDays: 30,
			want:     []time.Time{},
		},
		{
			name:     "admin horizon",
			req:      &Request{Year: 2026, Month: 4, SessionType: "regular", IsAdmin: true},
			wantDays: 365,
			want:     []time.Time{day(4, 7), day(4, 14), day(4, 21), day(4, 28)},
		},
		{
			name:     "past month",
			req:      &Request{Year: 2026, Month: 2, SessionType: "regular"},
			wantDays: 30,
			want:     []time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := setup(t)
			resp, err := uc.Execute(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, resp.MaxAdvanceDays)
			assert.Equal(t, tt.want, resp.Dates)
		})
	}
}

func TestGetAvailableDates_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{name: "month out of range", req: &Request{Year: 2026, Month: 13, SessionType: "regular"}},
		{name: "year out of range", req: &Request{Year: 26, Month: 3, SessionType: "regular"}},
		{name: "unknown session type", req: &Request{Year: 2026, Month: 3, SessionType: "yoga"}},
		{name: "unknown client class", req: &Request{Year: 2026, Month: 3, SessionType: "regular", ClientClass: "company"}},
		{name: "group session for individual", req: &Request{Year: 2026, Month: 3, SessionType: "half_day"}},
		{name: "negative ceiling", req: &Request{Year: 2026, Month: 3, SessionType: "regular", MaxAdvanceDays: ptr.Ptr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := setup(t)
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
