// Package memory хранилище в памяти: те же контракты репозиториев и менеджера транзакций,
// что и у PostgreSQL. Используется в тестах и при storage.driver = "memory".
//
// Транзакция держит глобальный мьютекс всё время выполнения и работает с копией состояния,
// которая подменяет основное состояние только при успешном завершении.
// Это даёт сериализуемую изоляцию.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

type state struct {
	nextID int64

	bookings       map[int64]*domain.Booking
	packs          map[int64]*domain.PrepaidPack
	packUsages     map[int64]*domain.PackUsage
	codes          map[int64]*domain.DiscountCode
	discountUsages map[int64]*domain.DiscountUsage
	offDays        map[int64]*domain.OffDay
	clients        map[int64]*domain.Client
	persons        map[int64]*domain.Person
	settings       map[string]string
	audit          []*domain.AuditEntry
}

func newState() *state {
	return &state{
		bookings:       make(map[int64]*domain.Booking),
		packs:          make(map[int64]*domain.PrepaidPack),
		packUsages:     make(map[int64]*domain.PackUsage),
		codes:          make(map[int64]*domain.DiscountCode),
		discountUsages: make(map[int64]*domain.DiscountUsage),
		offDays:        make(map[int64]*domain.OffDay),
		clients:        make(map[int64]*domain.Client),
		persons:        make(map[int64]*domain.Person),
		settings:       make(map[string]string),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneMap[T any](src map[int64]*T) map[int64]*T {
	dst := make(map[int64]*T, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}

func (s *state) clone() *state {
	cp := &state{
		nextID:         s.nextID,
		bookings:       cloneMap(s.bookings),
		packs:          cloneMap(s.packs),
		packUsages:     cloneMap(s.packUsages),
		codes:          cloneMap(s.codes),
		discountUsages: cloneMap(s.discountUsages),
		offDays:        cloneMap(s.offDays),
		clients:        cloneMap(s.clients),
		persons:        cloneMap(s.persons),
		settings:       make(map[string]string, len(s.settings)),
		audit:          append([]*domain.AuditEntry(nil), s.audit...),
	}
	for k, v := range s.settings {
		cp.settings[k] = v
	}
	return cp
}

type txKey struct{}

type tx struct {
	st *state
}

// Store общее состояние всех репозиториев
type Store struct {
	mu    sync.Mutex
	st    *state
	clock func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		st:    newState(),
		clock: time.Now,
	}
}

// Do выполняет fn в транзакции. Вложенный вызов присоединяется к внешней транзакции
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{st: s.st.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}

	s.st = t.st
	return nil
}

// with выполняет fn над состоянием текущей транзакции или, вне транзакции, над основным состоянием под мьютексом
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(t.st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) now() time.Time {
	return s.clock()
}

// SetClock подменяет часы для created_at и подобных полей
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Bookings репозиторий бронирований
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

// Packs репозиторий пакетов
func (s *Store) Packs() *PackRepository {
	return &PackRepository{s: s}
}

// Discounts репозиторий кодов скидок
func (s *Store) Discounts() *DiscountRepository {
	return &DiscountRepository{s: s}
}

// OffDays репозиторий закрытых дней
func (s *Store) OffDays() *OffDayRepository {
	return &OffDayRepository{s: s}
}

// Clients репозиторий клиентов
func (s *Store) Clients() *ClientRepository {
	return &ClientRepository{s: s}
}

// Settings репозиторий настроек
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{s: s}
}

// Audit журнал аудита
func (s *Store) Audit() *AuditRepository {
	return &AuditRepository{s: s}
}
