package create_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/internal/infra/ratelimit"
	"github.com/m04kA/RoomBookingService/internal/infra/storage/memory"
	"github.com/m04kA/RoomBookingService/internal/service/availability"
	"github.com/m04kA/RoomBookingService/internal/service/credits"
	"github.com/m04kA/RoomBookingService/internal/service/discount"
	"github.com/m04kA/RoomBookingService/pkg/logger"
	"github.com/m04kA/RoomBookingService/pkg/ptr"
)

type staticPolicy struct{ p *domain.PolicyConfig }

func (s staticPolicy) Get(context.Context) (*domain.PolicyConfig, error) { return s.p, nil }

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ *domain.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) IncBookingCreated(string)          {}
func (nopMetrics) IncCreditOperation(string, string) {}

// failingLedger имитирует конкурентное исчерпание пакета между выбором и списанием
type failingLedger struct{}

func (failingLedger) Reserve(context.Context, int64, int64, time.Time) (*domain.PackUsage, error) {
	return nil, credits.ErrNoCreditAvailable
}

// понедельник; 2026-03-10 вторник
var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func testPolicy() *domain.PolicyConfig {
	return &domain.PolicyConfig{
		Location:               time.UTC,
		SlotGranularityMinutes: 30,
		MinNoticeMinutes:       60,
		IndividualAdvanceDays:  30,
		AssociationAdvanceDays: 90,
		AdminAdvanceDays:       365,
		Opening: map[time.Weekday][]domain.OpeningWindow{
			time.Tuesday: {
				{OpenMinute: 9 * 60, CloseMinute: 12 * 60},
				{OpenMinute: 14 * 60, CloseMinute: 19 * 60},
			},
		},
		Durations: map[domain.DurationKey]domain.Durations{
			{Session: domain.SessionDiscovery}: {DisplayMinutes: 30, BlockingMinutes: 45},
			{Session: domain.SessionRegular}:   {DisplayMinutes: 60, BlockingMinutes: 75},
			{Session: domain.SessionHalfDay}:   {DisplayMinutes: 210, BlockingMinutes: 210},
		},
		Prices: map[domain.PriceKey]float64{
			{Class: domain.ClientIndividual, Session: domain.SessionDiscovery}:  30,
			{Class: domain.ClientIndividual, Session: domain.SessionRegular}:    45,
			{Class: domain.ClientAssociation, Session: domain.SessionRegular}:   40,
			{Class: domain.ClientAssociation, Session: domain.SessionHalfDay}:   150,
			{Class: domain.ClientAssociation, Session: domain.SessionDiscovery}: 25,
		},
	}
}

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	ledger   *credits.Service
	notifier *recordingNotifier
	deps     Dependencies
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNop()
	ledger := credits.NewService(store.Packs(), store, nopMetrics{}, log)
	notifier := &recordingNotifier{}

	deps := Dependencies{
		Policy:       staticPolicy{p: testPolicy()},
		Availability: availability.NewService(store.Bookings(), store.OffDays(), log),
		Clients:      store.Clients(),
		Bookings:     store.Bookings(),
		Resolver:     discount.NewResolver(store.Discounts(), store.Bookings(), ledger, log),
		Credits:      ledger,
		Discounts:    store.Discounts(),
		Audit:        store.Audit(),
		Limiter:      ratelimit.Noop{},
		Notifier:     notifier,
		Metrics:      nopMetrics{},
		TxManager:    store,
		Logger:       log,
	}

	return &fixture{
		uc:       NewUseCase(deps, Limits{}).WithTimeProvider(fixedTime{t: now}),
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		deps:     deps,
	}
}

func request(date, sessionType string) *Request {
	return &Request{
		SessionDate: date,
		SessionType: sessionType,
		ClientEmail: "Alice@Example.com",
		ClientName:  "Alice",
		Consent:     true,
		IPAddress:   "10.0.0.1",
	}
}

func addPack(t *testing.T, f *fixture, clientID int64, total, consumed int, expiresAt *time.Time) *domain.PrepaidPack {
	t.Helper()
	p, err := f.store.Packs().Add(context.Background(), &domain.PrepaidPack{
		ClientID:         clientID,
		SessionsTotal:    total,
		SessionsConsumed: consumed,
		SessionType:      domain.PackSessionAny,
		Active:           true,
		ExpiresAt:        expiresAt,
		PurchasedAt:      now.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	return p
}

func createClient(t *testing.T, f *fixture, email string, class domain.ClientClass, active bool) *domain.Client {
	t.Helper()
	c, err := f.store.Clients().Create(context.Background(), &domain.Client{Email: email, Name: "Alice", Class: class, Active: active})
	require.NoError(t, err)
	return c
}

func TestCreateBooking_RegularBasePrice(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	resp, err := f.uc.Execute(ctx, request("2026-03-10T09:00:00Z", "regular"))
	require.NoError(t, err)

	assert.Equal(t, 45.0, resp.Pricing.FinalPrice)
	assert.Equal(t, string(discount.SourceNone), resp.Pricing.Source)
	assert.Nil(t, resp.Pricing.PrepaidPackID)
	assert.Nil(t, resp.Pricing.DiscountCode)
	assert.NotEmpty(t, resp.ConfirmationToken)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), resp.EndsAt)

	b, err := f.store.Bookings().GetByToken(ctx, resp.ConfirmationToken)
	require.NoError(t, err)
	assert.Equal(t, 45.0, b.Price)
	assert.Nil(t, b.DiscountCodeID)
	assert.Nil(t, b.PrepaidPackID)
	assert.Nil(t, b.OriginalPrice)
	require.NotNil(t, b.PersonID)
	assert.Equal(t, 75, b.BlockingMinutes)

	client, err := f.store.Clients().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.ClientIndividual, client.Class)
	assert.Equal(t, client.ID, b.ClientID)

	entries, err := f.store.Audit().Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)

	assert.Equal(t, []string{domain.EventBookingCreated}, f.notifier.events)
}

func TestCreateBooking_LocalTimeInRoomZone(t *testing.T) {
	f := setup(t)

	resp, err := f.uc.Execute(context.Background(), request("2026-03-10T14:30", "discovery"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), resp.StartsAt)
	assert.Equal(t, 30.0, resp.Pricing.FinalPrice)
}

func TestCreateBooking_PrepaidAnyPack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	client := createClient(t, f, "alice@example.com", domain.ClientIndividual, true)
	pack := addPack(t, f, client.ID, 2, 1, nil)

	req := request("2026-03-10T09:00:00Z", "discovery")
	req.UsePrepaidCredit = true
	resp, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 0.0, resp.Pricing.FinalPrice)
	assert.Equal(t, string(discount.SourcePrepaid), resp.Pricing.Source)
	require.NotNil(t, resp.Pricing.PrepaidPackID)
	assert.Equal(t, pack.ID, *resp.Pricing.PrepaidPackID)

	got, err := f.store.Packs().GetByID(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SessionsConsumed)

	count, err := f.store.Packs().CountUsages(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	b, err := f.store.Bookings().GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	assert.Nil(t, b.DiscountCodeID)

	_, err = f.ledger.Reserve(ctx, pack.ID, resp.BookingID+100, now)
	assert.ErrorIs(t, err, credits.ErrNoCreditAvailable)
}

func TestCreateBooking_FreeSessionBeatsPrepaid(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	client := createClient(t, f, "alice@example.com", domain.ClientIndividual, true)
	pack := addPack(t, f, client.ID, 5, 0, nil)
	code, err := f.store.Discounts().Add(ctx, &domain.DiscountCode{Code: ptr.Ptr("OFFERT"), Kind: domain.DiscountFreeSession, Active: true})
	require.NoError(t, err)

	req := request("2026-03-10T09:00:00Z", "regular")
	req.UsePrepaidCredit = true
	req.DiscountCode = "offert"
	resp, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 0.0, resp.Pricing.FinalPrice)
	assert.Equal(t, 45.0, resp.Pricing.DiscountAmount)
	assert.Equal(t, string(discount.SourceFreeSession), resp.Pricing.Source)
	assert.Nil(t, resp.Pricing.PrepaidPackID)

	got, err := f.store.Packs().GetByID(ctx, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SessionsConsumed)

	used, err := f.store.Discounts().CountUsages(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used)

	b, err := f.store.Bookings().GetByID(ctx, resp.BookingID)
	require.NoError(t, err)
	require.NotNil(t, b.DiscountCodeID)
	assert.Equal(t, code.ID, *b.DiscountCodeID)
	require.NotNil(t, b.OriginalPrice)
	assert.Equal(t, 45.0, *b.OriginalPrice)
}

func TestCreateBooking_FIFOConsumesExpiringPack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	client := createClient(t, f, "alice@example.com", domain.ClientIndividual, true)
	forever := addPack(t, f, client.ID, 5, 0, nil)
	expiring := addPack(t, f, client.ID, 5, 0, ptr.Ptr(now.AddDate(0, 0, 5)))

	req := request("2026-03-10T09:00:00Z", "regular")
	req.UsePrepaidCredit = true
	_, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)

	got, err := f.store.Packs().GetByID(ctx, expiring.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SessionsConsumed)

	got, err = f.store.Packs().GetByID(ctx, forever.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SessionsConsumed)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	f := setup(t)

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := request("2026-03-10T09:00:00Z", "regular")
			req.ClientEmail = fmt.Sprintf("client%d@example.com", i)
			_, err := f.uc.Execute(context.Background(), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotNotAvailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestCreateBooking_BufferBlocksNextStart(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.uc.Execute(ctx, request("2026-03-10T09:00:00Z", "regular"))
	require.NoError(t, err)

	// 9:00 + 75 минут занимает до 10:15: старт в 10:00 пересекается, 10:30 свободен
	other := request("2026-03-10T10:00:00Z", "regular")
	other.ClientEmail = "bob@example.com"
	_, err = f.uc.Execute(ctx, other)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldSessionDate, fe.Field)

	other.SessionDate = "2026-03-10T10:30:00Z"
	_, err = f.uc.Execute(ctx, other)
	assert.NoError(t, err)
}

func TestCreateBooking_ReservationFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	client := createClient(t, f, "alice@example.com", domain.ClientIndividual, true)
	addPack(t, f, client.ID, 5, 0, nil)

	deps := f.deps
	deps.Credits = failingLedger{}
	uc := NewUseCase(deps, Limits{}).WithTimeProvider(fixedTime{t: now})

	req := request("2026-03-10T09:00:00Z", "regular")
	req.UsePrepaidCredit = true
	_, err := uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrNoCreditAvailable)

	bookings, err := f.store.Bookings().GetOverlapping(ctx, now, now.AddDate(0, 1, 0), domain.BlockingStatuses)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	entries, err := f.store.Audit().Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateBooking_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
		field   string
	}{
		{name: "missing consent", mutate: func(r *Request) { r.Consent = false }, wantErr: ErrInvalidInput, field: FieldConsent},
		{name: "malformed email", mutate: func(r *Request) { r.ClientEmail = "not-an-email" }, wantErr: ErrInvalidInput, field: FieldClientEmail},
		{name: "unknown session type", mutate: func(r *Request) { r.SessionType = "yoga" }, wantErr: ErrInvalidInput, field: FieldSessionType},
		{name: "bad timestamp", mutate: func(r *Request) { r.SessionDate = "tomorrow" }, wantErr: ErrInvalidInput, field: FieldSessionDate},
		{name: "accompaniment on individual session", mutate: func(r *Request) { r.Accompanied = true }, wantErr: ErrInvalidInput, field: FieldAccompaniment},
		{name: "group session for individual", mutate: func(r *Request) { r.SessionType = "half_day" }, wantErr: ErrInvalidInput, field: FieldSessionType},
		{name: "closed weekday", mutate: func(r *Request) { r.SessionDate = "2026-03-09T09:00:00Z" }, wantErr: ErrDateClosed, field: FieldSessionDate},
		{name: "off grid", mutate: func(r *Request) { r.SessionDate = "2026-03-10T09:10:00Z" }, wantErr: ErrInvalidTimeSlot, field: FieldSessionDate},
		{name: "does not fit window", mutate: func(r *Request) { r.SessionDate = "2026-03-10T11:00:00Z" }, wantErr: ErrInvalidTimeSlot, field: FieldSessionDate},
		{name: "beyond horizon", mutate: func(r *Request) { r.SessionDate = "2026-04-07T09:00:00Z" }, wantErr: ErrDateTooFarInFuture, field: FieldSessionDate},
		{name: "in the past", mutate: func(r *Request) { r.SessionDate = "2026-02-24T09:00:00Z" }, wantErr: ErrDateInPast, field: FieldSessionDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			req := request("2026-03-10T09:00:00Z", "regular")
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestCreateBooking_TooLateToBook(t *testing.T) {
	f := setup(t)
	uc := f.uc.WithTimeProvider(fixedTime{t: time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)})

	_, err := uc.Execute(context.Background(), request("2026-03-10T09:00:00Z", "regular"))
	assert.ErrorIs(t, err, ErrTooLateToBook)

	_, err = uc.Execute(context.Background(), request("2026-03-10T09:30:00Z", "regular"))
	assert.NoError(t, err)
}

func TestCreateBooking_AssociationHorizonAndGroupSession(t *testing.T) {
	f := setup(t)
	createClient(t, f, "asso@example.com", domain.ClientAssociation, true)

	req := request("2026-04-07T14:00:00Z", "half_day")
	req.ClientEmail = "asso@example.com"
	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 150.0, resp.Pricing.FinalPrice)

	b, err := f.store.Bookings().GetByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Nil(t, b.PersonID)
}

func TestCreateBooking_InactiveClient(t *testing.T) {
	f := setup(t)
	createClient(t, f, "alice@example.com", domain.ClientIndividual, false)

	_, err := f.uc.Execute(context.Background(), request("2026-03-10T09:00:00Z", "regular"))
	assert.ErrorIs(t, err, ErrClientInactive)
}

func TestCreateBooking_RateLimited(t *testing.T) {
	f := setup(t)
	deps := f.deps
	deps.Limiter = ratelimit.NewLocalLimiter()
	uc := NewUseCase(deps, Limits{PerBeneficiary: ratelimit.Rule{Limit: 1, Window: time.Hour}}).
		WithTimeProvider(fixedTime{t: now})

	_, err := uc.Execute(context.Background(), request("2026-03-10T09:00:00Z", "regular"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), request("2026-03-10T14:00:00Z", "regular"))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCreateBooking_DiscountCodeErrors(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.store.Discounts().Add(ctx, &domain.DiscountCode{Code: ptr.Ptr("ASSO"), Kind: domain.DiscountPercentage, Value: 10,
		ClientClasses: []domain.ClientClass{domain.ClientAssociation}, Active: true})
	require.NoError(t, err)

	req := request("2026-03-10T09:00:00Z", "regular")
	req.DiscountCode = "ASSO"
	_, err = f.uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrDiscountNotApplicable)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FieldDiscountCode, fe.Field)

	req = request("2026-03-10T09:00:00Z", "regular")
	req.DiscountCode = "UNKNOWN"
	resp, err := f.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 45.0, resp.Pricing.FinalPrice)
}
