package get_credit_balance

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/service/credits"
)

// CreditBalanceResponse HTTP response model
type CreditBalanceResponse struct {
	TotalCredits int           `json:"totalCredits"`
	Packs        []PackBalance `json:"packs"`
}

// PackBalance остаток по пакету, в порядке списания
type PackBalance struct {
	ID          int64      `json:"id"`
	PackType    string     `json:"packType"`
	SessionType string     `json:"sessionType,omitempty"`
	Remaining   int        `json:"remaining"`
	Total       int        `json:"total"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	PurchasedAt time.Time  `json:"purchasedAt"`
}

// FromBalance конвертирует баланс сервиса в HTTP response
func FromBalance(b *credits.Balance) *CreditBalanceResponse {
	packs := make([]PackBalance, len(b.Packs))
	for i, p := range b.Packs {
		packs[i] = PackBalance{
			ID:          p.ID,
			PackType:    p.PackType,
			SessionType: p.SessionType,
			Remaining:   p.Remaining,
			Total:       p.Total,
			ExpiresAt:   p.ExpiresAt,
			PurchasedAt: p.PurchasedAt,
		}
	}

	return &CreditBalanceResponse{
		TotalCredits: b.TotalCredits,
		Packs:        packs,
	}
}
