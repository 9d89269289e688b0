package get_credit_balance

import (
	"context"
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

type nopMetrics struct{}

func (nopMetrics) IncCreditOperation(string, string) {}

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestGetCreditBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.NewNop()
	uc := NewUseCase(store.Clients(), credits.NewService(store.Packs(), store, nopMetrics{}, log), log).
		WithTimeProvider(fixedTime{t: now})

	client, err := store.Clients().Create(ctx, &domain.Client{Email: "alice@example.com", Name: "Alice", Class: domain.ClientIndividual, Active: true})
	require.NoError(t, err)

	packs := []*domain.PrepaidPack{
		{ClientID: client.ID, PackType: "pack5", SessionsTotal: 5, SessionsConsumed: 2, SessionType: domain.PackSessionAny, Active: true},
		{ClientID: client.ID, PackType: "pack3", SessionsTotal: 3, SessionType: string(domain.SessionDiscovery), Active: true,
			ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 5))},
		{ClientID: client.ID, PackType: "old", SessionsTotal: 3, SessionType: domain.PackSessionAny, Active: true,
			ExpiresAt: ptr.Ptr(now.AddDate(0, 0, -1))},
	}
	for _, p := range packs {
		_, err := store.Packs().Add(ctx, p)
		require.NoError(t, err)
	}

	balance, err := uc.Execute(ctx, &Request{ClientEmail: " Alice@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, 6, balance.TotalCredits)
	require.Len(t, balance.Packs, 2)
	assert.Equal(t, "pack3", balance.Packs[0].PackType)

	balance, err = uc.Execute(ctx, &Request{ClientEmail: "alice@example.com", SessionType: "regular"})
	require.NoError(t, err)
	assert.Equal(t, 3, balance.TotalCredits)

	balance, err = uc.Execute(ctx, &Request{ClientEmail: "nobody@example.com"})
	require.NoError(t, err)
	assert.Zero(t, balance.TotalCredits)
	assert.Empty(t, balance.Packs)

	_, err = uc.Execute(ctx, &Request{ClientEmail: "broken"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{ClientEmail: "alice@example.com", SessionType: "yoga"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
