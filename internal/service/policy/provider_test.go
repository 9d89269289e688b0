package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/pkg/logger"
)

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }

type failingSettings struct{ err error }

func (f *failingSettings) GetAll(context.Context) (map[string]string, error) { return nil, f.err }

func defaults() *domain.PolicyConfig {
	return &domain.PolicyConfig{
		Location:               time.UTC,
		SlotGranularityMinutes: 30,
		MinNoticeMinutes:       60,
		IndividualAdvanceDays:  30,
		AssociationAdvanceDays: 90,
		AdminAdvanceDays:       365,
		Opening:                map[time.Weekday][]domain.OpeningWindow{},
		Durations:              map[domain.DurationKey]domain.Durations{},
		Prices: map[domain.PriceKey]float64{
			{Class: domain.ClientIndividual, Session: domain.SessionRegular}: 45,
		},
	}
}

func TestProvider_AppliesOverrides(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	settings := store.Settings()
	require.NoError(t, settings.Set(ctx, KeyIndividualAdvanceDays, "14"))
	require.NoError(t, settings.Set(ctx, "price.individual.regular", "50"))
	require.NoError(t, settings.Set(ctx, "price.association.half_day.accompanied", "230"))
	require.NoError(t, settings.Set(ctx, "price.individual.yoga", "10"))
	require.NoError(t, settings.Set(ctx, KeyAdminAdvanceDays, "many"))

	def := defaults()
	p := NewProvider(def, settings, time.Minute, logger.NewNop())

	policy, err := p.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 14, policy.IndividualAdvanceDays)
	assert.Equal(t, 365, policy.AdminAdvanceDays)
	assert.Equal(t, 50.0, policy.Prices[domain.PriceKey{Class: domain.ClientIndividual, Session: domain.SessionRegular}])
	assert.Equal(t, 230.0, policy.Prices[domain.PriceKey{Class: domain.ClientAssociation, Session: domain.SessionHalfDay, Accompanied: true}])

	// значения по умолчанию не изменились
	assert.Equal(t, 30, def.IndividualAdvanceDays)
	assert.Equal(t, 45.0, def.Prices[domain.PriceKey{Class: domain.ClientIndividual, Session: domain.SessionRegular}])
}

func TestProvider_CacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	settings := memory.NewStore().Settings()
	clock := &fixedTime{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}

	p := NewProvider(defaults(), settings, time.Minute, logger.NewNop())
	p.timeProvider = clock

	policy, err := p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, policy.MinNoticeMinutes)

	require.NoError(t, settings.Set(ctx, KeyMinNoticeMinutes, "0"))

	policy, err = p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, policy.MinNoticeMinutes, "served from cache")

	p.Invalidate()
	policy, err = p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, policy.MinNoticeMinutes)

	require.NoError(t, settings.Set(ctx, KeyMinNoticeMinutes, "15"))
	clock.now = clock.now.Add(2 * time.Minute)
	policy, err = p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, policy.MinNoticeMinutes, "ttl expired")
}

func TestProvider_InvalidOverridesFallBackToDefaults(t *testing.T) {
	ctx := context.Background()
	settings := memory.NewStore().Settings()
	require.NoError(t, settings.Set(ctx, KeySlotGranularity, "1"))

	p := NewProvider(defaults(), settings, 0, logger.NewNop())
	policy, err := p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, policy.SlotGranularityMinutes)
}

func TestProvider_SettingsFailure(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(defaults(), &failingSettings{err: errors.New("db down")}, time.Minute, logger.NewNop())

	_, err := p.Get(ctx)
	assert.ErrorIs(t, err, ErrInternal)
}
