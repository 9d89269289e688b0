package discount

import (
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// Source чем определена итоговая цена
type Source string

const (
	SourceNone        Source = "none"
	SourceFreeSession Source = "free_session"
	SourcePrepaid     Source = "prepaid"
	SourceDiscount    Source = "discount"
)

// Request входные данные расчёта цены
type Request struct {
	SessionType   domain.SessionType
	ClientID      int64
	ClientClass   domain.ClientClass
	Code          string // пустая строка: код не введён
	UsePrepaid    bool
	OriginalPrice float64
	Now           time.Time
}

// Result итог расчёта. Code и Pack взаимоисключающие
type Result struct {
	OriginalPrice  float64
	FinalPrice     float64
	DiscountAmount float64
	Source         Source
	Code           *domain.DiscountCode
	Pack           *domain.PrepaidPack
}
