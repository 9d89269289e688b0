package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/RoomBookingService/internal/domain"
	discountRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/discount"
)

var hundred = decimal.NewFromInt(100)

// Resolver определяет цену бронирования в строгом порядке:
// бесплатный сеанс, предоплаченный кредит, процентная или фиксированная скидка, базовая цена
type Resolver struct {
	discountRepo DiscountRepository
	bookings     BookingCounter
	credits      CreditSelector
	logger       Logger
}

// NewResolver создает новый экземпляр резолвера скидок
func NewResolver(
	discountRepo DiscountRepository,
	bookings BookingCounter,
	credits CreditSelector,
	logger Logger,
) *Resolver {
	return &Resolver{
		discountRepo: discountRepo,
		bookings:     bookings,
		credits:      credits,
		logger:       logger,
	}
}

// Resolve рассчитывает итоговую цену. Ничего не записывает: списание кредита
// и запись использования кода выполняет вызывающий в своей транзакции
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	supplied, err := r.lookupSupplied(ctx, req)
	if err != nil {
		return nil, err
	}

	var automatic []*domain.DiscountCode
	if supplied == nil {
		automatic, err = r.applicableAutomatic(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	// 1. Бесплатный сеанс: абсолютный приоритет, подавляет кредит
	if supplied != nil && supplied.IsFreeSession() {
		return r.free(req, supplied), nil
	}
	if supplied == nil {
		for _, code := range automatic {
			if code.IsFreeSession() {
				return r.free(req, code), nil
			}
		}
	}

	// 2. Предоплаченный кредит
	if req.UsePrepaid {
		pack, err := r.credits.SelectPack(ctx, req.ClientID, req.SessionType, req.Now)
		if err != nil {
			r.logger.Error("Resolve: failed to select pack for client=%d: %v", req.ClientID, err)
			return nil, fmt.Errorf("%w: Resolve - select pack: %v", ErrInternal, err)
		}
		if pack != nil {
			return &Result{
				OriginalPrice:  req.OriginalPrice,
				FinalPrice:     0,
				DiscountAmount: req.OriginalPrice,
				Source:         SourcePrepaid,
				Pack:           pack,
			}, nil
		}
	}

	// 3. Процентная или фиксированная скидка
	if supplied != nil {
		return r.apply(req, supplied), nil
	}
	var best *Result
	for _, code := range automatic {
		candidate := r.apply(req, code)
		// automatic отсортирован по ID, при равной скидке остаётся меньший ID
		if best == nil || candidate.DiscountAmount > best.DiscountAmount {
			best = candidate
		}
	}
	if best != nil && best.DiscountAmount > 0 {
		return best, nil
	}

	// 4. Без скидки
	return &Result{
		OriginalPrice: req.OriginalPrice,
		FinalPrice:    req.OriginalPrice,
		Source:        SourceNone,
	}, nil
}

// lookupSupplied введённый код. Неизвестный, неактивный или просроченный код
// молча игнорируется, нарушение ограничений возвращается ошибкой
func (r *Resolver) lookupSupplied(ctx context.Context, req Request) (*domain.DiscountCode, error) {
	raw := strings.TrimSpace(req.Code)
	if raw == "" {
		return nil, nil
	}

	code, err := r.discountRepo.GetByCode(ctx, raw)
	if err != nil {
		if errors.Is(err, discountRepo.ErrCodeNotFound) {
			r.logger.Info("Resolve: supplied code %q not found, falling back", raw)
			return nil, nil
		}
		r.logger.Error("Resolve: failed to get code %q: %v", raw, err)
		return nil, fmt.Errorf("%w: Resolve - get code: %v", ErrInternal, err)
	}

	if !code.IsValidAt(req.Now) {
		r.logger.Info("Resolve: supplied code %q is not valid now, falling back", raw)
		return nil, nil
	}
	if !code.AppliesToSession(req.SessionType) || !code.AppliesToClass(req.ClientClass) {
		return nil, fmt.Errorf("%w: code %q for session=%s class=%s", ErrCodeNotApplicable, raw, req.SessionType, req.ClientClass)
	}

	withinLimits, err := r.withinLimits(ctx, code, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !withinLimits {
		return nil, fmt.Errorf("%w: code %q", ErrUsageLimitReached, raw)
	}

	return code, nil
}

// applicableAutomatic автоматические коды, подходящие клиенту, по возрастанию ID
func (r *Resolver) applicableAutomatic(ctx context.Context, req Request) ([]*domain.DiscountCode, error) {
	codes, err := r.discountRepo.ListAutomatic(ctx)
	if err != nil {
		r.logger.Error("Resolve: failed to list automatic codes: %v", err)
		return nil, fmt.Errorf("%w: Resolve - list automatic: %v", ErrInternal, err)
	}

	bookingCount := -1
	result := make([]*domain.DiscountCode, 0, len(codes))
	for _, code := range codes {
		if !code.IsValidAt(req.Now) || !code.AppliesToSession(req.SessionType) || !code.AppliesToClass(req.ClientClass) {
			continue
		}

		if code.AutoRule == domain.AutoRuleFirstBooking {
			if bookingCount < 0 {
				bookingCount, err = r.bookings.CountByClient(ctx, req.ClientID)
				if err != nil {
					r.logger.Error("Resolve: failed to count bookings for client=%d: %v", req.ClientID, err)
					return nil, fmt.Errorf("%w: Resolve - count bookings: %v", ErrInternal, err)
				}
			}
			if bookingCount > 0 {
				continue
			}
		}

		withinLimits, err := r.withinLimits(ctx, code, req.ClientID)
		if err != nil {
			return nil, err
		}
		if withinLimits {
			result = append(result, code)
		}
	}
	return result, nil
}

func (r *Resolver) withinLimits(ctx context.Context, code *domain.DiscountCode, clientID int64) (bool, error) {
	if code.MaxUses != nil {
		used, err := r.discountRepo.CountUsages(ctx, code.ID)
		if err != nil {
			r.logger.Error("Resolve: failed to count usages of code=%d: %v", code.ID, err)
			return false, fmt.Errorf("%w: Resolve - count usages: %v", ErrInternal, err)
		}
		if used >= *code.MaxUses {
			return false, nil
		}
	}

	if code.MaxUsesPerClient != nil {
		used, err := r.discountRepo.CountClientUsages(ctx, code.ID, clientID)
		if err != nil {
			r.logger.Error("Resolve: failed to count client usages of code=%d: %v", code.ID, err)
			return false, fmt.Errorf("%w: Resolve - count client usages: %v", ErrInternal, err)
		}
		if used >= *code.MaxUsesPerClient {
			return false, nil
		}
	}

	return true, nil
}

func (r *Resolver) free(req Request, code *domain.DiscountCode) *Result {
	return &Result{
		OriginalPrice:  req.OriginalPrice,
		FinalPrice:     0,
		DiscountAmount: req.OriginalPrice,
		Source:         SourceFreeSession,
		Code:           code,
	}
}

func (r *Resolver) apply(req Request, code *domain.DiscountCode) *Result {
	final := ApplyDiscount(req.OriginalPrice, code.Kind, code.Value)
	return &Result{
		OriginalPrice:  req.OriginalPrice,
		FinalPrice:     final,
		DiscountAmount: decimal.NewFromFloat(req.OriginalPrice).Sub(decimal.NewFromFloat(final)).InexactFloat64(),
		Source:         SourceDiscount,
		Code:           code,
	}
}

// ApplyDiscount итоговая цена, не ниже нуля. Процент округляется до целого половиной от нуля
func ApplyDiscount(original float64, kind domain.DiscountKind, value float64) float64 {
	price := decimal.NewFromFloat(original)

	switch kind {
	case domain.DiscountFreeSession:
		return 0
	case domain.DiscountPercentage:
		rate := decimal.NewFromFloat(value).Div(hundred)
		final := price.Mul(decimal.NewFromInt(1).Sub(rate)).Round(0)
		if final.IsNegative() {
			return 0
		}
		return final.InexactFloat64()
	case domain.DiscountFixedAmount:
		final := price.Sub(decimal.NewFromFloat(value))
		if final.IsNegative() {
			return 0
		}
		return final.InexactFloat64()
	default:
		return original
	}
}
