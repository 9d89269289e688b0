package create_booking

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// localLayouts форматы времени без смещения, трактуются в часовом поясе зала
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// normalize обрезает пробелы и приводит email к нижнему регистру
func normalize(req *Request) {
	req.SessionDate = strings.TrimSpace(req.SessionDate)
	req.SessionType = strings.TrimSpace(req.SessionType)
	req.ClientEmail = strings.ToLower(strings.TrimSpace(req.ClientEmail))
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientClass = strings.TrimSpace(req.ClientClass)
	req.BeneficiaryName = strings.TrimSpace(req.BeneficiaryName)
	req.DiscountCode = strings.TrimSpace(req.DiscountCode)
	if len(req.UserAgent) > domain.MaxUserAgentLength {
		req.UserAgent = req.UserAgent[:domain.MaxUserAgentLength]
	}
}

// validateRequest валидирует входные данные запроса, не зависящие от правил календаря
func validateRequest(req *Request) error {
	if req.SessionDate == "" {
		return fieldError(FieldSessionDate, fmt.Errorf("%w: sessionDate is required", ErrInvalidInput))
	}

	if _, err := domain.ParseSessionType(req.SessionType); err != nil {
		return fieldError(FieldSessionType, fmt.Errorf("%w: unknown sessionType %q", ErrInvalidInput, req.SessionType))
	}

	if req.ClientEmail == "" {
		return fieldError(FieldClientEmail, fmt.Errorf("%w: clientEmail is required", ErrInvalidInput))
	}
	if len(req.ClientEmail) > domain.MaxEmailLength {
		return fieldError(FieldClientEmail, fmt.Errorf("%w: clientEmail is too long", ErrInvalidInput))
	}
	if addr, err := mail.ParseAddress(req.ClientEmail); err != nil || addr.Address != req.ClientEmail {
		return fieldError(FieldClientEmail, fmt.Errorf("%w: clientEmail is malformed", ErrInvalidInput))
	}

	if req.ClientName == "" {
		return fieldError(FieldClientName, fmt.Errorf("%w: clientName is required", ErrInvalidInput))
	}
	if len([]rune(req.ClientName)) > domain.MaxNameLength {
		return fieldError(FieldClientName, fmt.Errorf("%w: clientName is too long", ErrInvalidInput))
	}

	if req.ClientClass != "" {
		if _, err := domain.ParseClientClass(req.ClientClass); err != nil {
			return fieldError(FieldClientClass, fmt.Errorf("%w: unknown clientClass %q", ErrInvalidInput, req.ClientClass))
		}
	}

	if len([]rune(req.BeneficiaryName)) > domain.MaxNameLength {
		return fieldError(FieldBeneficiaryName, fmt.Errorf("%w: beneficiaryName is too long", ErrInvalidInput))
	}

	if len(req.DiscountCode) > domain.MaxDiscountCodeLength {
		return fieldError(FieldDiscountCode, fmt.Errorf("%w: discountCode is too long", ErrInvalidInput))
	}

	if !req.Consent {
		return fieldError(FieldConsent, fmt.Errorf("%w: consent is required", ErrInvalidInput))
	}

	return nil
}

// parseSessionDate разбирает старт сеанса; время без смещения трактуется в loc
func parseSessionDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fieldError(FieldSessionDate, fmt.Errorf("%w: sessionDate %q is not a valid timestamp", ErrInvalidInput, value))
}

// beneficiaryKey ключ лимита попыток на участника
func beneficiaryKey(req *Request) string {
	name := req.BeneficiaryName
	if name == "" {
		name = req.ClientName
	}
	return "beneficiary:" + req.ClientEmail + "|" + strings.ToLower(name)
}
