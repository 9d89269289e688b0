package credits

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Balance проекция доступных кредитов клиента, только для отображения
type Balance struct {
	TotalCredits int
	Packs        []PackBalance
}

// PackBalance остаток по пакету
type PackBalance struct {
	ID          int64
	PackType    string
	SessionType string
	Remaining   int
	Total       int
	ExpiresAt   *time.Time
	PurchasedAt time.Time
}

func toPackBalance(p *domain.PrepaidPack) PackBalance {
	return PackBalance{
		ID:          p.ID,
		PackType:    p.PackType,
		SessionType: p.SessionType,
		Remaining:   p.Remaining(),
		Total:       p.SessionsTotal,
		ExpiresAt:   p.ExpiresAt,
		PurchasedAt: p.PurchasedAt,
	}
}
