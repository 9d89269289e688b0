package create_booking

import (
	"time"

	createBooking "github.com/m04kA/RoomBookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	SessionDate      string `json:"sessionDate"` // "2026-03-10T09:00" или RFC 3339
	SessionType      string `json:"sessionType"`
	Accompaniment    bool   `json:"accompaniment"`
	ClientEmail      string `json:"clientEmail"`
	ClientName       string `json:"clientName"`
	ClientClass      string `json:"clientClass,omitempty"`
	BeneficiaryName  string `json:"beneficiaryName,omitempty"`
	DiscountCode     string `json:"discountCode,omitempty"`
	UsePrepaidCredit bool   `json:"usePrepaidCredit"`
	Consent          bool   `json:"consent"`
}

// PricingResponse итог расчёта цены
type PricingResponse struct {
	OriginalPrice  float64 `json:"originalPrice"`
	FinalPrice     float64 `json:"finalPrice"`
	DiscountAmount float64 `json:"discountAmount"`
	Source         string  `json:"source"`
	DiscountCode   *string `json:"discountCode,omitempty"`
	PrepaidPackID  *int64  `json:"prepaidPackId,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID         int64           `json:"bookingId"`
	ConfirmationToken string          `json:"confirmationToken"`
	Status            string          `json:"status"`
	StartsAt          string          `json:"startsAt"`
	EndsAt            string          `json:"endsAt"`
	DisplayMinutes    int             `json:"displayMinutes"`
	BlockingMinutes   int             `json:"blockingMinutes"`
	Pricing           PricingResponse `json:"pricing"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(ip, userAgent string, isAdmin bool) *createBooking.Request {
	return &createBooking.Request{
		SessionDate:      r.SessionDate,
		SessionType:      r.SessionType,
		Accompanied:      r.Accompaniment,
		ClientEmail:      r.ClientEmail,
		ClientName:       r.ClientName,
		ClientClass:      r.ClientClass,
		BeneficiaryName:  r.BeneficiaryName,
		DiscountCode:     r.DiscountCode,
		UsePrepaidCredit: r.UsePrepaidCredit,
		Consent:          r.Consent,
		IPAddress:        ip,
		UserAgent:        userAgent,
		IsAdmin:          isAdmin,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response, loc *time.Location) *BookingResponse {
	return &BookingResponse{
		BookingID:         resp.BookingID,
		ConfirmationToken: resp.ConfirmationToken,
		Status:            resp.Status,
		StartsAt:          resp.StartsAt.In(loc).Format(time.RFC3339),
		EndsAt:            resp.EndsAt.In(loc).Format(time.RFC3339),
		DisplayMinutes:    resp.DisplayMinutes,
		BlockingMinutes:   resp.BlockingMinutes,
		Pricing: PricingResponse{
			OriginalPrice:  resp.Pricing.OriginalPrice,
			FinalPrice:     resp.Pricing.FinalPrice,
			DiscountAmount: resp.Pricing.DiscountAmount,
			Source:         resp.Pricing.Source,
			DiscountCode:   resp.Pricing.DiscountCode,
			PrepaidPackID:  resp.Pricing.PrepaidPackID,
		},
	}
}
