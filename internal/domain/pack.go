package domain

import (
	"sort"
	"time"
)

// PackSessionAny пакет покрывает любой тип сеанса
const PackSessionAny = "any"

// PrepaidPack предоплаченный пакет сеансов клиента
type PrepaidPack struct {
	ID               int64
	ClientID         int64
	PackType         string  // тип пакета из каталога (определяет число сеансов и цену при покупке)
	Price            float64 // цена на момент покупки
	SessionsTotal    int
	SessionsConsumed int
	SessionType      string // "any" или конкретный SessionType
	ExpiresAt        *time.Time
	Active           bool
	PurchasedAt      time.Time
}

// Remaining сколько сеансов осталось
func (p *PrepaidPack) Remaining() int {
	return p.SessionsTotal - p.SessionsConsumed
}

// IsExpired пакет с expiry истекает строго после ExpiresAt
func (p *PrepaidPack) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// IsExhausted не осталось сеансов
func (p *PrepaidPack) IsExhausted() bool {
	return p.Remaining() <= 0
}

// Covers совместим ли пакет с типом сеанса
func (p *PrepaidPack) Covers(t SessionType) bool {
	return p.SessionType == PackSessionAny || p.SessionType == string(t)
}

// IsEligible пакет можно списать: активен, не истёк, не исчерпан, совместим по типу
func (p *PrepaidPack) IsEligible(t SessionType, now time.Time) bool {
	return p.Active && !p.IsExpired(now) && !p.IsExhausted() && p.Covers(t)
}

// SortPacksFIFO порядок списания: сначала пакеты с expiry (ближайший первым),
// затем без expiry, внутри по дате покупки
func SortPacksFIFO(packs []*PrepaidPack) {
	sort.SliceStable(packs, func(i, j int) bool {
		a, b := packs[i], packs[j]
		switch {
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		if !a.PurchasedAt.Equal(b.PurchasedAt) {
			return a.PurchasedAt.Before(b.PurchasedAt)
		}
		return a.ID < b.ID
	})
}

// EligiblePacks отфильтрованные и отсортированные по FIFO пакеты
func EligiblePacks(packs []*PrepaidPack, t SessionType, now time.Time) []*PrepaidPack {
	eligible := make([]*PrepaidPack, 0, len(packs))
	for _, p := range packs {
		if p.IsEligible(t, now) {
			eligible = append(eligible, p)
		}
	}
	SortPacksFIFO(eligible)
	return eligible
}

// PackUsage одно списание кредита. Удаление строки = возврат кредита
type PackUsage struct {
	ID        int64
	PackID    int64
	BookingID int64
	UsedAt    time.Time
}
