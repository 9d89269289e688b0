package create_booking

import "time"

// Поля запроса для FieldError
const (
	FieldSessionDate     = "sessionDate"
	FieldSessionType     = "sessionType"
	FieldAccompaniment   = "accompaniment"
	FieldClientEmail     = "clientEmail"
	FieldClientName      = "clientName"
	FieldClientClass     = "clientClass"
	FieldBeneficiaryName = "beneficiaryName"
	FieldDiscountCode    = "discountCode"
	FieldUsePrepaid      = "usePrepaidCredit"
	FieldConsent         = "consent"
)

// Request модель запроса на создание бронирования
type Request struct {
	SessionDate      string // RFC 3339 или "2006-01-02T15:04" в часовом поясе зала
	SessionType      string
	Accompanied      bool
	ClientEmail      string
	ClientName       string
	ClientClass      string // учитывается только при создании аккаунта
	BeneficiaryName  string // участник индивидуального сеанса; пусто = сам клиент
	DiscountCode     string
	UsePrepaidCredit bool
	Consent          bool

	IPAddress string
	UserAgent string
	IsAdmin   bool
}

// Pricing итог расчёта цены
type Pricing struct {
	OriginalPrice  float64
	FinalPrice     float64
	DiscountAmount float64
	Source         string
	DiscountCode   *string
	PrepaidPackID  *int64
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID         int64
	ConfirmationToken string
	Status            string
	StartsAt          time.Time
	EndsAt            time.Time
	DisplayMinutes    int
	BlockingMinutes   int
	Pricing           Pricing
}
