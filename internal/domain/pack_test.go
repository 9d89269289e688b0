package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/RoomBookingService/pkg/ptr"
)

func TestPrepaidPack_IsEligible(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	base := func() *PrepaidPack {
		return &PrepaidPack{SessionsTotal: 2, SessionsConsumed: 1, SessionType: PackSessionAny, Active: true}
	}

	assert.True(t, base().IsEligible(SessionDiscovery, now))

	p := base()
	p.Active = false
	assert.False(t, p.IsEligible(SessionDiscovery, now))

	p = base()
	p.SessionsConsumed = 2
	assert.True(t, p.IsExhausted())
	assert.False(t, p.IsEligible(SessionDiscovery, now))

	p = base()
	p.ExpiresAt = ptr.Ptr(now.Add(-time.Second))
	assert.True(t, p.IsExpired(now))
	assert.False(t, p.IsEligible(SessionDiscovery, now))

	p = base()
	p.ExpiresAt = ptr.Ptr(now)
	assert.False(t, p.IsExpired(now))

	p = base()
	p.SessionType = string(SessionRegular)
	assert.True(t, p.IsEligible(SessionRegular, now))
	assert.False(t, p.IsEligible(SessionDiscovery, now))
	assert.Equal(t, 1, p.Remaining())
}

func TestSortPacksFIFO(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	noExpiryOld := &PrepaidPack{ID: 1, PurchasedAt: now.AddDate(0, -6, 0)}
	noExpiryNew := &PrepaidPack{ID: 2, PurchasedAt: now.AddDate(0, -1, 0)}
	expiresLate := &PrepaidPack{ID: 3, PurchasedAt: now, ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 30))}
	expiresSoon := &PrepaidPack{ID: 4, PurchasedAt: now, ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 5))}

	packs := []*PrepaidPack{noExpiryNew, expiresLate, noExpiryOld, expiresSoon}
	SortPacksFIFO(packs)

	ids := make([]int64, len(packs))
	for i, p := range packs {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{4, 3, 1, 2}, ids)
}

func TestEligiblePacks(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	packs := []*PrepaidPack{
		{ID: 1, SessionsTotal: 5, SessionType: PackSessionAny, Active: true, PurchasedAt: now.AddDate(0, -2, 0)},
		{ID: 2, SessionsTotal: 5, SessionType: PackSessionAny, Active: true, PurchasedAt: now, ExpiresAt: ptr.Ptr(now.AddDate(0, 0, 5))},
		{ID: 3, SessionsTotal: 5, SessionsConsumed: 5, SessionType: PackSessionAny, Active: true},
		{ID: 4, SessionsTotal: 5, SessionType: string(SessionFullDay), Active: true},
	}

	eligible := EligiblePacks(packs, SessionRegular, now)
	if assert.Len(t, eligible, 2) {
		assert.Equal(t, int64(2), eligible[0].ID)
		assert.Equal(t, int64(1), eligible[1].ID)
	}
}
