package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/ratelimit"
	clientRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/client"
	"github.com/m04kA/RoomBookingService/internal/service/calendar"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
	"github.com/m04kA/RoomBookingService/internal/service/discount"
	"github.com/m04kA/RoomBookingService/pkg/ptr"
	"github.com/m04kA/RoomBookingService/pkg/txmanager"
)

// Limits правила ограничения попыток
type Limits struct {
	PerIP          ratelimit.Rule
	PerBeneficiary ratelimit.Rule
}

// Dependencies зависимости use case
type Dependencies struct {
	Policy       PolicyProvider
	Availability AvailabilityService
	Clients      ClientRepository
	Bookings     BookingRepository
	Resolver     DiscountResolver
	Credits      CreditLedger
	Discounts    DiscountUsageRepository
	Audit        AuditRepository
	Limiter      RateLimiter
	Notifier     Notifier
	Metrics      Metrics
	TxManager    TransactionManager
	Logger       Logger
}

// UseCase use case для создания бронирования
type UseCase struct {
	policy       PolicyProvider
	availability AvailabilityService
	clientRepo   ClientRepository
	bookingRepo  BookingRepository
	resolver     DiscountResolver
	credits      CreditLedger
	discountRepo DiscountUsageRepository
	auditRepo    AuditRepository
	limiter      RateLimiter
	limits       Limits
	notifier     Notifier
	metrics      Metrics
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(deps Dependencies, limits Limits) *UseCase {
	return &UseCase{
		policy:       deps.Policy,
		availability: deps.Availability,
		clientRepo:   deps.Clients,
		bookingRepo:  deps.Bookings,
		resolver:     deps.Resolver,
		credits:      deps.Credits,
		discountRepo: deps.Discounts,
		auditRepo:    deps.Audit,
		limiter:      deps.Limiter,
		limits:       limits,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		txManager:    deps.TxManager,
		timeProvider: &RealTimeProvider{},
		logger:       deps.Logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования.
// Проверка слота, расчёт цены, списание кредита и вставка бронирования выполняются
// в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	normalize(req)
	uc.logger.Info("CreateBooking: email=%s, type=%s, date=%s, accompanied=%t, prepaid=%t",
		req.ClientEmail, req.SessionType, req.SessionDate, req.Accompanied, req.UsePrepaidCredit)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	sessionType := domain.SessionType(req.SessionType)

	// 2. Ограничение попыток
	if err := uc.checkRateLimits(ctx, req); err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 3. Правила календаря
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	start, err := parseSessionDate(req.SessionDate, policy.Location)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}
	localDay := domain.DateOnly(start.In(policy.Location))

	cal, err := uc.availability.NewCalendar(ctx, policy, localDay, localDay)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to build calendar: %v", err)
		return nil, fmt.Errorf("%w: failed to build calendar: %v", ErrInternal, err)
	}

	// 4. Аккаунт клиента
	client, err := uc.resolveClient(ctx, req)
	if err != nil {
		return nil, err
	}

	// 5. Комбинация тип/класс/сопровождение, длительности, базовая цена
	if err := cal.ValidateSelection(sessionType, client.Class, req.Accompanied); err != nil {
		uc.logger.Warn("CreateBooking: invalid selection for client=%d: %v", client.ID, err)
		field := FieldSessionType
		if errors.Is(err, calendar.ErrAccompanimentNotAllowed) {
			field = FieldAccompaniment
		}
		return nil, fieldError(field, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	durations, err := cal.Durations(sessionType, req.Accompanied)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, fieldError(FieldSessionType, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	basePrice, err := cal.Price(client.Class, sessionType, req.Accompanied)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, fieldError(FieldSessionType, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}

	// 6. Дата и время
	if err := uc.validateStart(cal, start, durations, client.Class, req.IsAdmin, now); err != nil {
		uc.logger.Warn("CreateBooking: start %s rejected: %v", start.Format(time.RFC3339), err)
		return nil, err
	}

	actor := domain.ActorClient
	if req.IsAdmin {
		actor = domain.ActorAdmin
	}

	var (
		result  *domain.Booking
		pricing *discount.Result
	)

	// 7. Сериализуемая транзакция
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		free, err := uc.availability.IsSlotFree(txCtx, start, durations.BlockingMinutes, domain.BlockingStatuses, 0)
		if err != nil {
			return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
		}
		if !free {
			return fieldError(FieldSessionDate, ErrSlotNotAvailable)
		}

		personID, err := uc.resolvePerson(txCtx, client, sessionType, req)
		if err != nil {
			return err
		}

		pricing, err = uc.resolver.Resolve(txCtx, discount.Request{
			SessionType:   sessionType,
			ClientID:      client.ID,
			ClientClass:   client.Class,
			Code:          req.DiscountCode,
			UsePrepaid:    req.UsePrepaidCredit,
			OriginalPrice: basePrice,
			Now:           now,
		})
		if err != nil {
			return mapResolveError(err)
		}

		booking := &domain.Booking{
			ClientID:          client.ID,
			PersonID:          personID,
			StartsAt:          start.UTC(),
			SessionType:       sessionType,
			Accompanied:       req.Accompanied,
			DisplayMinutes:    durations.DisplayMinutes,
			BlockingMinutes:   durations.BlockingMinutes,
			Price:             pricing.FinalPrice,
			Status:            domain.StatusPending,
			ConfirmationToken: uuid.NewString(),
			Consent:           req.Consent,
			ConsentAt:         ptr.Ptr(now.UTC()),
		}
		if pricing.Source != discount.SourceNone {
			booking.OriginalPrice = ptr.Ptr(pricing.OriginalPrice)
			booking.DiscountAmount = ptr.Ptr(pricing.DiscountAmount)
		}
		if pricing.Code != nil {
			booking.DiscountCodeID = ptr.Ptr(pricing.Code.ID)
		}
		if pricing.Pack != nil {
			booking.PrepaidPackID = ptr.Ptr(pricing.Pack.ID)
		}
		if req.IPAddress != "" {
			booking.IPAddress = ptr.Ptr(req.IPAddress)
		}
		if req.UserAgent != "" {
			booking.UserAgent = ptr.Ptr(req.UserAgent)
		}

		if err := booking.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		if pricing.Pack != nil {
			if _, err := uc.credits.Reserve(txCtx, pricing.Pack.ID, created.ID, now.UTC()); err != nil {
				if errors.Is(err, credits.ErrNoCreditAvailable) {
					return fieldError(FieldUsePrepaid, ErrNoCreditAvailable)
				}
				return fmt.Errorf("%w: failed to reserve credit: %v", ErrInternal, err)
			}
		}

		if pricing.Code != nil {
			_, err := uc.discountRepo.CreateUsage(txCtx, &domain.DiscountUsage{
				CodeID:    pricing.Code.ID,
				ClientID:  client.ID,
				BookingID: created.ID,
				UsedAt:    now.UTC(),
			})
			if err != nil {
				return fmt.Errorf("%w: failed to record discount usage: %v", ErrInternal, err)
			}
		}

		err = uc.auditRepo.Create(txCtx, &domain.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditActionCreate,
			Entity:   "booking",
			EntityID: created.ID,
			After:    created.Snapshot(),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to write audit: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateBooking: serialization retries exhausted for start=%s", start.Format(time.RFC3339))
			return nil, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		if errors.Is(err, ErrInternal) {
			uc.logger.Error("CreateBooking: %v", err)
		} else {
			uc.logger.Warn("CreateBooking: rejected: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, price=%.2f, source=%s",
		result.ID, result.Price, pricing.Source)

	// 8. После коммита: метрики и уведомление
	uc.metrics.IncBookingCreated(string(pricing.Source))
	if err := uc.notifier.Notify(ctx, domain.EventBookingCreated, result); err != nil {
		uc.logger.Warn("CreateBooking: failed to notify about booking id=%d: %v", result.ID, err)
	}

	return toResponse(result, pricing), nil
}

type limitCheck struct {
	key  string
	rule ratelimit.Rule
}

// checkRateLimits лимиты на IP и участника. Недоступность хранилища лимитов не блокирует запрос
func (uc *UseCase) checkRateLimits(ctx context.Context, req *Request) error {
	checks := []limitCheck{{key: beneficiaryKey(req), rule: uc.limits.PerBeneficiary}}
	if req.IPAddress != "" {
		checks = append(checks, limitCheck{key: "ip:" + req.IPAddress, rule: uc.limits.PerIP})
	}

	for _, check := range checks {
		allowed, err := uc.limiter.Allow(ctx, check.key, check.rule)
		if err != nil {
			uc.logger.Warn("CreateBooking: rate limiter unavailable for key=%s: %v", check.key, err)
			continue
		}
		if !allowed {
			uc.logger.Warn("CreateBooking: rate limit exceeded for key=%s", check.key)
			return ErrRateLimited
		}
	}
	return nil
}

// resolveClient находит аккаунт по email или создаёт новый
func (uc *UseCase) resolveClient(ctx context.Context, req *Request) (*domain.Client, error) {
	client, err := uc.clientRepo.GetByEmail(ctx, req.ClientEmail)
	if err == nil {
		if !client.Active {
			uc.logger.Warn("CreateBooking: client id=%d is inactive", client.ID)
			return nil, fieldError(FieldClientEmail, ErrClientInactive)
		}
		return client, nil
	}
	if !errors.Is(err, clientRepo.ErrClientNotFound) {
		uc.logger.Error("CreateBooking: failed to get client: %v", err)
		return nil, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
	}

	class := domain.ClientIndividual
	if req.ClientClass != "" {
		class = domain.ClientClass(req.ClientClass)
	}

	client, err = uc.clientRepo.Create(ctx, &domain.Client{
		Email:  req.ClientEmail,
		Name:   req.ClientName,
		Class:  class,
		Active: true,
	})
	if err != nil {
		if errors.Is(err, clientRepo.ErrClientExists) {
			return uc.resolveClient(ctx, req)
		}
		uc.logger.Error("CreateBooking: failed to create client: %v", err)
		return nil, fmt.Errorf("%w: failed to create client: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: created client id=%d, class=%s", client.ID, client.Class)
	return client, nil
}

// resolvePerson участник индивидуального сеанса; для групповых сеансов nil
func (uc *UseCase) resolvePerson(ctx context.Context, client *domain.Client, t domain.SessionType, req *Request) (*int64, error) {
	if t.IsGroup() {
		return nil, nil
	}

	name := req.BeneficiaryName
	if name == "" {
		name = req.ClientName
	}

	person, err := uc.clientRepo.GetPersonByName(ctx, client.ID, name)
	if err == nil {
		return ptr.Ptr(person.ID), nil
	}
	if !errors.Is(err, clientRepo.ErrPersonNotFound) {
		return nil, fmt.Errorf("%w: failed to get person: %v", ErrInternal, err)
	}

	person, err = uc.clientRepo.CreatePerson(ctx, &domain.Person{ClientID: client.ID, Name: name})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create person: %v", ErrInternal, err)
	}
	return ptr.Ptr(person.ID), nil
}

// validateStart горизонт, открытая дата, сетка и минимальное уведомление
func (uc *UseCase) validateStart(
	cal *calendar.Calendar,
	start time.Time,
	durations domain.Durations,
	class domain.ClientClass,
	isAdmin bool,
	now time.Time,
) error {
	local := start.In(cal.Location())

	if err := cal.CheckHorizon(local, now, cal.MaxAdvanceDays(class, isAdmin)); err != nil {
		if errors.Is(err, calendar.ErrDateInPast) {
			return fieldError(FieldSessionDate, ErrDateInPast)
		}
		return fieldError(FieldSessionDate, fmt.Errorf("%w: %v", ErrDateTooFarInFuture, err))
	}

	if !cal.IsOpen(local) {
		return fieldError(FieldSessionDate, ErrDateClosed)
	}

	if !cal.IsOnGrid(start, durations.BlockingMinutes) {
		return fieldError(FieldSessionDate, ErrInvalidTimeSlot)
	}

	if start.Before(cal.EarliestStart(now)) {
		return fieldError(FieldSessionDate, ErrTooLateToBook)
	}

	return nil
}

func mapResolveError(err error) error {
	switch {
	case errors.Is(err, discount.ErrCodeNotApplicable):
		return fieldError(FieldDiscountCode, fmt.Errorf("%w: %v", ErrDiscountNotApplicable, err))
	case errors.Is(err, discount.ErrUsageLimitReached):
		return fieldError(FieldDiscountCode, fmt.Errorf("%w: %v", ErrDiscountLimitReached, err))
	default:
		return fmt.Errorf("%w: failed to resolve price: %v", ErrInternal, err)
	}
}

func toResponse(b *domain.Booking, pricing *discount.Result) *Response {
	resp := &Response{
		BookingID:         b.ID,
		ConfirmationToken: b.ConfirmationToken,
		Status:            string(b.Status),
		StartsAt:          b.StartsAt,
		EndsAt:            b.EndsAt(),
		DisplayMinutes:    b.DisplayMinutes,
		BlockingMinutes:   b.BlockingMinutes,
		Pricing: Pricing{
			OriginalPrice:  pricing.OriginalPrice,
			FinalPrice:     pricing.FinalPrice,
			DiscountAmount: pricing.DiscountAmount,
			Source:         string(pricing.Source),
			PrepaidPackID:  b.PrepaidPackID,
		},
	}
	if pricing.Code != nil && pricing.Code.Code != nil {
		resp.Pricing.DiscountCode = ptr.Ptr(*pricing.Code.Code)
	}
	return resp
}
