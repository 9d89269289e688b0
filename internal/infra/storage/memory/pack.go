package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	packRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/pack"
)

// PackRepository пакеты и списания в памяти
type PackRepository struct {
	s *Store
}

// Add добавляет пакет (покупка пакетов вне этого сервиса)
func (r *PackRepository) Add(ctx context.Context, p *domain.PrepaidPack) (*domain.PrepaidPack, error) {
	err := r.s.with(ctx, func(st *state) error {
		p.ID = st.id()
		if p.PurchasedAt.IsZero() {
			p.PurchasedAt = r.s.now()
		}
		cp := *p
		st.packs[p.ID] = &cp
		return nil
	})
	return p, err
}

// ListByClient все пакеты клиента
func (r *PackRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.PrepaidPack, error) {
	result := make([]*domain.PrepaidPack, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, p := range st.packs {
			if p.ClientID == clientID {
				cp := *p
				result = append(result, &cp)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

// GetByID получает пакет по ID
func (r *PackRepository) GetByID(ctx context.Context, id int64) (*domain.PrepaidPack, error) {
	var result *domain.PrepaidPack
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.packs[id]
		if !ok {
			return packRepo.ErrPackNotFound
		}
		cp := *p
		result = &cp
		return nil
	})
	return result, err
}

// ConsumeOne условное списание: активен, не истёк, consumed < total
func (r *PackRepository) ConsumeOne(ctx context.Context, packID int64, now time.Time) (bool, error) {
	changed := false
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.packs[packID]
		if !ok || !p.Active || p.IsExpired(now) || p.SessionsConsumed >= p.SessionsTotal {
			return nil
		}
		p.SessionsConsumed++
		changed = true
		return nil
	})
	return changed, err
}

// RestoreOne условный возврат: consumed > 0
func (r *PackRepository) RestoreOne(ctx context.Context, packID int64) (bool, error) {
	changed := false
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.packs[packID]
		if !ok || p.SessionsConsumed <= 0 {
			return nil
		}
		p.SessionsConsumed--
		changed = true
		return nil
	})
	return changed, err
}

// CreateUsage записывает списание, не более одного на бронирование
func (r *PackRepository) CreateUsage(ctx context.Context, usage *domain.PackUsage) (*domain.PackUsage, error) {
	err := r.s.with(ctx, func(st *state) error {
		for _, u := range st.packUsages {
			if u.BookingID == usage.BookingID {
				return packRepo.ErrUsageExists
			}
		}
		usage.ID = st.id()
		cp := *usage
		st.packUsages[usage.ID] = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// GetUsageByBooking списание бронирования
func (r *PackRepository) GetUsageByBooking(ctx context.Context, bookingID int64) (*domain.PackUsage, error) {
	var result *domain.PackUsage
	err := r.s.with(ctx, func(st *state) error {
		for _, u := range st.packUsages {
			if u.BookingID == bookingID {
				cp := *u
				result = &cp
				return nil
			}
		}
		return packRepo.ErrUsageNotFound
	})
	return result, err
}

// DeleteUsage удаляет списание
func (r *PackRepository) DeleteUsage(ctx context.Context, id int64) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.packUsages[id]; !ok {
			return packRepo.ErrUsageNotFound
		}
		delete(st.packUsages, id)
		return nil
	})
}

// CountUsages число списаний по пакету
func (r *PackRepository) CountUsages(ctx context.Context, packID int64) (int, error) {
	count := 0
	err := r.s.with(ctx, func(st *state) error {
		for _, u := range st.packUsages {
			if u.PackID == packID {
				count++
			}
		}
		return nil
	})
	return count, err
}
