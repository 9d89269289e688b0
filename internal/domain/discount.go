package domain

import "time"

// DiscountKind вид скидки
type DiscountKind string

const (
	DiscountFreeSession DiscountKind = "free_session"
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

// AutoRule правило автоматического применения кода
type AutoRule string

const (
	AutoRuleNone         AutoRule = ""              // код применяется только вручную
	AutoRuleAlways       AutoRule = "always"        // любой клиент, удовлетворяющий ограничениям
	AutoRuleFirstBooking AutoRule = "first_booking" // клиент без единого бронирования
)

// DiscountCode код скидки: ручной (Code != nil) или автоматический (AutoRule != "")
type DiscountCode struct {
	ID       int64
	Code     *string
	AutoRule AutoRule
	Kind     DiscountKind
	Value    float64 // процент 0..100 или фиксированная сумма; для free_session не используется

	// Ограничения применимости; пустой список = без ограничения
	SessionTypes  []SessionType
	ClientClasses []ClientClass

	MaxUses          *int
	MaxUsesPerClient *int

	ValidFrom  *time.Time
	ValidUntil *time.Time

	Active    bool
	CreatedAt time.Time
}

// IsAutomatic код может примениться без ввода клиентом
func (d *DiscountCode) IsAutomatic() bool {
	return d.AutoRule != AutoRuleNone
}

// IsFreeSession код бесплатного сеанса: абсолютный приоритет
func (d *DiscountCode) IsFreeSession() bool {
	return d.Kind == DiscountFreeSession
}

// IsValidAt активен и входит в окно действия
func (d *DiscountCode) IsValidAt(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	return true
}

// AppliesToSession совместимость с типом сеанса
func (d *DiscountCode) AppliesToSession(t SessionType) bool {
	if len(d.SessionTypes) == 0 {
		return true
	}
	for _, st := range d.SessionTypes {
		if st == t {
			return true
		}
	}
	return false
}

// AppliesToClass совместимость с классом клиента
func (d *DiscountCode) AppliesToClass(c ClientClass) bool {
	if len(d.ClientClasses) == 0 {
		return true
	}
	for _, cc := range d.ClientClasses {
		if cc == c {
			return true
		}
	}
	return false
}

// DiscountUsage факт использования кода в бронировании
type DiscountUsage struct {
	ID        int64
	CodeID    int64
	ClientID  int64
	BookingID int64
	UsedAt    time.Time
}
