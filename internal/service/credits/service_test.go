package credits

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/ptr"
)

type recordingMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (m *recordingMetrics) IncCreditOperation(op, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = make(map[string]int)
	}
	m.ops[op+"/"+result]++
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *memory.Store, *recordingMetrics) {
	t.Helper()
	store := memory.NewStore()
	m := &recordingMetrics{}
	return NewService(store.Packs(), store, m, logger.NewNop()), store, m
}

func addPack(t *testing.T, store *memory.Store, p domain.PrepaidPack) *domain.PrepaidPack {
	t.Helper()
	created, err := store.Packs().Add(context.Background(), &p)
	require.NoError(t, err)
	return created
}

func TestService_SelectPack_FIFO(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 5, SessionType: domain.PackSessionAny, Active: true, PurchasedAt: now.AddDate(0, -2, 0)})
	expiring := addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 5, SessionType: domain.PackSessionAny, Active: true,
		PurchasedAt: now.AddDate(0, -1, 0), ExpiresAt: ptr.Ptr(now.AddDate(0, 1, 0))})
	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 5, SessionType: string(domain.SessionDiscovery), Active: true,
		PurchasedAt: now.AddDate(0, -3, 0), ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 1))})
	addPack(t, store, domain.PrepaidPack{ClientID: 2, SessionsTotal: 5, SessionType: domain.PackSessionAny, Active: true,
		PurchasedAt: now.AddDate(0, -3, 0), ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 1))})

	got, err := svc.SelectPack(ctx, 1, domain.SessionRegular, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, expiring.ID, got.ID)

	none, err := svc.SelectPack(ctx, 3, domain.SessionRegular, now)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestService_ReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	svc, store, m := setup(t)

	p := addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 2, SessionsConsumed: 1, SessionType: domain.PackSessionAny, Active: true})

	usage, err := svc.Reserve(ctx, p.ID, 100, now)
	require.NoError(t, err)
	assert.Equal(t, p.ID, usage.PackID)
	assert.Equal(t, int64(100), usage.BookingID)

	got, err := store.Packs().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SessionsConsumed)

	_, err = svc.Reserve(ctx, p.ID, 101, now)
	assert.ErrorIs(t, err, ErrNoCreditAvailable)

	released, err := svc.Release(ctx, 100)
	require.NoError(t, err)
	assert.True(t, released)

	got, err = store.Packs().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SessionsConsumed)

	released, err = svc.Release(ctx, 100)
	require.NoError(t, err)
	assert.False(t, released)

	assert.Equal(t, 1, m.ops["reserve/ok"])
	assert.Equal(t, 1, m.ops["reserve/conflict"])
	assert.Equal(t, 1, m.ops["release/ok"])
	assert.Equal(t, 1, m.ops["release/noop"])
}

func TestService_Reserve_ExpiredPack(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	p := addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 2, SessionType: domain.PackSessionAny, Active: true,
		ExpiresAt: ptr.Ptr(now.Add(-time.Minute))})

	_, err := svc.Reserve(ctx, p.ID, 1, now)
	assert.ErrorIs(t, err, ErrNoCreditAvailable)
}

func TestService_Reserve_SecondUsageForSameBookingRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	p := addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 5, SessionType: domain.PackSessionAny, Active: true})

	_, err := svc.Reserve(ctx, p.ID, 7, now)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, p.ID, 7, now)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	got, err := store.Packs().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SessionsConsumed)
}

func TestService_Reserve_LastCreditRace(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	p := addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 1, SessionType: domain.PackSessionAny, Active: true})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(bookingID int64) {
			defer wg.Done()
			_, err := svc.Reserve(ctx, p.ID, bookingID, now)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, ErrNoCreditAvailable) {
				conflicts++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, conflicts)

	count, err := store.Packs().CountUsages(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Balance(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := setup(t)

	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 5, SessionsConsumed: 2, SessionType: domain.PackSessionAny, Active: true})
	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 3, SessionType: string(domain.SessionDiscovery), Active: true})
	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 3, SessionType: domain.PackSessionAny, Active: false})
	addPack(t, store, domain.PrepaidPack{ClientID: 1, SessionsTotal: 3, SessionType: domain.PackSessionAny, Active: true,
		ExpiresAt: ptr.Ptr(now.Add(-time.Hour))})

	all, err := svc.Balance(ctx, 1, nil, now)
	require.NoError(t, err)
	assert.Equal(t, 6, all.TotalCredits)
	assert.Len(t, all.Packs, 2)

	regular := domain.SessionRegular
	filtered, err := svc.Balance(ctx, 1, &regular, now)
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.TotalCredits)
	require.Len(t, filtered.Packs, 1)
	assert.Equal(t, 3, filtered.Packs[0].Remaining)
}
