package confirm_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/internal/service/availability"
	"github.com/m04kA/RoomBookingService/pkg/logger"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ *domain.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type countingMetrics struct{ transitions []string }

func (m *countingMetrics) IncTransition(to string) { m.transitions = append(m.transitions, to) }

var (
	now   = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	start = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*UseCase, *memory.Store, *recordingNotifier, *countingMetrics) {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()
	notifier := &recordingNotifier{}
	metrics := &countingMetrics{}

	uc := NewUseCase(
		store.Bookings(),
		availability.NewService(store.Bookings(), store.OffDays(), log),
		store.Audit(),
		store,
		notifier,
		metrics,
		log,
	).WithTimeProvider(fixedTime{t: now})
	return uc, store, notifier, metrics
}

func addBooking(t *testing.T, store *memory.Store, token string, startsAt time.Time, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	b, err := store.Bookings().Create(context.Background(), &domain.Booking{
		ClientID:          1,
		StartsAt:          startsAt,
		SessionType:       domain.SessionRegular,
		DisplayMinutes:    60,
		BlockingMinutes:   75,
		Price:             45,
		Status:            status,
		ConfirmationToken: token,
		Consent:           true,
	})
	require.NoError(t, err)
	return b
}

func TestConfirmBooking_Success(t *testing.T) {
	ctx := context.Background()
	uc, store, notifier, metrics := setup(t)
	addBooking(t, store, "tok", start, domain.StatusPending)

	b, err := uc.Execute(ctx, " tok ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	require.NotNil(t, b.ConfirmedAt)
	assert.True(t, b.ConfirmedAt.Equal(now))

	stored, err := store.Bookings().GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	entries, err := store.Audit().Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionConfirm, entries[0].Action)

	assert.Equal(t, []string{domain.EventBookingConfirmed}, notifier.events)
	assert.Equal(t, []string{string(domain.StatusConfirmed)}, metrics.transitions)
}

func TestConfirmBooking_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, store, notifier, _ := setup(t)
	addBooking(t, store, "tok", start, domain.StatusPending)

	_, err := uc.Execute(ctx, "tok")
	require.NoError(t, err)

	b, err := uc.Execute(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, b.Status)

	entries, err := store.Audit().Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Len(t, notifier.events, 1)
}

func TestConfirmBooking_CompetitorConfirmedFirst(t *testing.T) {
	ctx := context.Background()
	uc, store, notifier, _ := setup(t)

	// более позднее бронирование пересекается с первым и подтверждается раньше
	addBooking(t, store, "first", start, domain.StatusPending)
	addBooking(t, store, "second", start.Add(30*time.Minute), domain.StatusPending)

	_, err := uc.Execute(ctx, "second")
	require.NoError(t, err)

	_, err = uc.Execute(ctx, "first")
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	stored, err := store.Bookings().GetByToken(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
	assert.Equal(t, []string{domain.EventBookingConfirmed}, notifier.events)
}

func TestConfirmBooking_PendingNeighbourDoesNotBlock(t *testing.T) {
	uc, store, _, _ := setup(t)
	addBooking(t, store, "first", start, domain.StatusPending)
	addBooking(t, store, "second", start.Add(30*time.Minute), domain.StatusPending)

	_, err := uc.Execute(context.Background(), "first")
	assert.NoError(t, err)
}

func TestConfirmBooking_AdjacentConfirmedDoesNotBlock(t *testing.T) {
	uc, store, _, _ := setup(t)
	addBooking(t, store, "before", start.Add(-75*time.Minute), domain.StatusConfirmed)
	addBooking(t, store, "tok", start, domain.StatusPending)

	_, err := uc.Execute(context.Background(), "tok")
	assert.NoError(t, err)
}

func TestConfirmBooking_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.BookingStatus
		token   string
		wantErr error
	}{
		{name: "empty token", status: domain.StatusPending, token: "  ", wantErr: ErrInvalidInput},
		{name: "unknown token", status: domain.StatusPending, token: "missing", wantErr: ErrBookingNotFound},
		{name: "cancelled", status: domain.StatusCancelled, token: "tok", wantErr: ErrNotPending},
		{name: "completed", status: domain.StatusCompleted, token: "tok", wantErr: ErrNotPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store, notifier, _ := setup(t)
			addBooking(t, store, "tok", start, tt.status)

			_, err := uc.Execute(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, notifier.events)
		})
	}
}
