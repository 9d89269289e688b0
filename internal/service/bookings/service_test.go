package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/ptr"
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

type nopMetrics struct{}

func (nopMetrics) IncTransition(string)              {}
func (nopMetrics) IncCreditOperation(string, string) {}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *memory.Store, *recordingNotifier) {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()
	notifier := &recordingNotifier{}
	ledger := credits.NewService(store.Packs(), store, nopMetrics{}, log)
	svc := NewServiceWithTimeProvider(store.Bookings(), store.Discounts(), ledger, store.Audit(), store,
		notifier, nopMetrics{}, log, fixedTime{t: now})
	return svc, store, notifier
}

func addBooking(t *testing.T, store *memory.Store, token string, status domain.BookingStatus, packID *int64) *domain.Booking {
	t.Helper()
	b, err := store.Bookings().Create(context.Background(), &domain.Booking{
		ClientID:          1,
		ConfirmationToken: token,
		StartsAt:          now.AddDate(0, 0, 3),
		SessionType:       domain.SessionRegular,
		DisplayMinutes:    60,
		BlockingMinutes:   75,
		Price:             0,
		PrepaidPackID:     packID,
		Status:            status,
	})
	require.NoError(t, err)
	return b
}

func TestService_Cancel_ReleasesCreditOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := setup(t)

	pack, err := store.Packs().Add(ctx, &domain.PrepaidPack{ClientID: 1, SessionsTotal: 2, SessionsConsumed: 1,
		SessionType: domain.PackSessionAny, Active: true})
	require.NoError(t, err)
	b := addBooking(t, store, "tok", domain.StatusConfirmed, ptr.Ptr(pack.ID))
	_, err = store.Packs().CreateUsage(ctx, &domain.PackUsage{PackID: pack.ID, BookingID: b.ID, UsedAt: now})
	require.NoError(t, err)

	got, err := svc.Cancel(ctx, "tok", domain.ActorClient)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.Equal(t, now, *got.CancelledAt)

	got, err = svc.Cancel(ctx, "tok", domain.ActorClient)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	p, err := store.Packs().GetByID(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.SessionsConsumed)

	count, err := store.Packs().CountUsages(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.Equal(t, []string{domain.EventBookingCancelled}, notifier.events)

	entries, err := store.Audit().Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCancel, entries[0].Action)
	assert.Equal(t, b.ID, entries[0].EntityID)
}

func TestService_Cancel_WithoutCreditLeavesPacksUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	pack, err := store.Packs().Add(ctx, &domain.PrepaidPack{ClientID: 1, SessionsTotal: 2, SessionsConsumed: 1,
		SessionType: domain.PackSessionAny, Active: true})
	require.NoError(t, err)
	addBooking(t, store, "tok", domain.StatusPending, nil)

	_, err = svc.Cancel(ctx, "tok", domain.ActorClient)
	require.NoError(t, err)

	p, err := store.Packs().GetByID(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SessionsConsumed)
}

func TestService_Cancel_RemovesDiscountUsage(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	code, err := store.Discounts().Add(ctx, &domain.DiscountCode{Code: ptr.Ptr("ONCE"), Kind: domain.DiscountFixedAmount, Value: 5, Active: true})
	require.NoError(t, err)
	b, err := store.Bookings().Create(ctx, &domain.Booking{
		ClientID: 1, ConfirmationToken: "tok", StartsAt: now.AddDate(0, 0, 3), SessionType: domain.SessionRegular,
		DisplayMinutes: 60, BlockingMinutes: 75, Price: 40, DiscountCodeID: ptr.Ptr(code.ID), Status: domain.StatusPending,
	})
	require.NoError(t, err)
	_, err = store.Discounts().CreateUsage(ctx, &domain.DiscountUsage{CodeID: code.ID, ClientID: 1, BookingID: b.ID, UsedAt: now})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "tok", domain.ActorClient)
	require.NoError(t, err)

	used, err := store.Discounts().CountUsages(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

func TestService_Cancel_Refused(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := setup(t)
	addBooking(t, store, "done", domain.StatusCompleted, nil)
	addBooking(t, store, "absent", domain.StatusNoShow, nil)

	_, err := svc.Cancel(ctx, "done", domain.ActorClient)
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = svc.Cancel(ctx, "absent", domain.ActorClient)
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = svc.Cancel(ctx, "missing", domain.ActorClient)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.Empty(t, notifier.events)
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := setup(t)
	confirmed := addBooking(t, store, "c", domain.StatusConfirmed, nil)
	pending := addBooking(t, store, "p", domain.StatusPending, nil)

	got, err := svc.UpdateStatus(ctx, confirmed.ID, "no_show")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoShow, got.Status)

	_, err = svc.UpdateStatus(ctx, confirmed.ID, "no_show")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, confirmed.ID, "completed")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, pending.ID, "completed")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, pending.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 999, "completed")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	assert.Equal(t, []string{domain.EventBookingNoShow}, notifier.events)
}

func TestService_GetByToken(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)
	b := addBooking(t, store, "tok", domain.StatusPending, nil)

	got, err := svc.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.GetByToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
