package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/pkg/ptr"
)

func TestBooking_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			b := &Booking{Status: tt.from}
			assert.Equal(t, tt.allowed, b.CanTransitionTo(tt.to))
		})
	}
}

func TestBooking_IsTerminal(t *testing.T) {
	assert.False(t, (&Booking{Status: StatusPending}).IsTerminal())
	assert.False(t, (&Booking{Status: StatusConfirmed}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusCancelled}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusCompleted}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusNoShow}).IsTerminal())
}

func TestBooking_Validate(t *testing.T) {
	valid := func() *Booking {
		return &Booking{SessionType: SessionRegular, DisplayMinutes: 60, BlockingMinutes: 75, Price: 45}
	}

	require.NoError(t, valid().Validate())

	b := valid()
	b.DiscountCodeID = ptr.Ptr(int64(1))
	b.PrepaidPackID = ptr.Ptr(int64(2))
	assert.ErrorIs(t, b.Validate(), ErrInvariantViolation)

	b = valid()
	b.BlockingMinutes = 30
	assert.ErrorIs(t, b.Validate(), ErrInvariantViolation)

	b = valid()
	b.Accompanied = true
	assert.ErrorIs(t, b.Validate(), ErrInvariantViolation)

	b = valid()
	b.SessionType = SessionHalfDay
	b.Accompanied = true
	assert.NoError(t, b.Validate())
}

func TestBooking_Intervals(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	b := &Booking{StartsAt: start, DisplayMinutes: 60, BlockingMinutes: 75}

	assert.Equal(t, start.Add(60*time.Minute), b.EndsAt())
	assert.Equal(t, start.Add(75*time.Minute), b.BlockedUntil())

	// граничит с буфером, не пересекается
	assert.False(t, b.Overlaps(start.Add(75*time.Minute), start.Add(120*time.Minute)))
	assert.True(t, b.Overlaps(start.Add(70*time.Minute), start.Add(120*time.Minute)))
	assert.False(t, b.Overlaps(start.Add(-30*time.Minute), start))
}

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"partial", at(11, 30), at(12, 0), at(11, 20), at(11, 40), true},
		{"adjacent before", at(11, 30), at(12, 0), at(11, 0), at(11, 30), false},
		{"adjacent after", at(11, 30), at(12, 0), at(12, 0), at(12, 30), false},
		{"contained", at(10, 0), at(14, 0), at(11, 0), at(12, 0), true},
		{"identical", at(10, 0), at(11, 0), at(10, 0), at(11, 0), true},
		{"disjoint", at(9, 0), at(10, 0), at(15, 0), at(16, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestParseBookingStatus(t *testing.T) {
	st, err := ParseBookingStatus("no_show")
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, st)

	_, err = ParseBookingStatus("archived")
	assert.Error(t, err)
}
