package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/m04kA/RoomBookingService/internal/domain"
	discountRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/discount"
)

// DiscountRepository коды скидок и их использования в памяти
type DiscountRepository struct {
	s *Store
}

// Add добавляет код (создание кодов администрированием вне этого сервиса)
func (r *DiscountRepository) Add(ctx context.Context, code *domain.DiscountCode) (*domain.DiscountCode, error) {
	err := r.s.with(ctx, func(st *state) error {
		code.ID = st.id()
		if code.CreatedAt.IsZero() {
			code.CreatedAt = r.s.now()
		}
		cp := *code
		st.codes[code.ID] = &cp
		return nil
	})
	return code, err
}

// GetByCode ищет ручной код без учёта регистра
func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	var result *domain.DiscountCode
	needle := strings.ToUpper(strings.TrimSpace(code))
	err := r.s.with(ctx, func(st *state) error {
		for _, c := range st.codes {
			if c.Code != nil && strings.ToUpper(*c.Code) == needle {
				cp := *c
				result = &cp
				return nil
			}
		}
		return discountRepo.ErrCodeNotFound
	})
	return result, err
}

// ListAutomatic активные автоматические коды по возрастанию ID
func (r *DiscountRepository) ListAutomatic(ctx context.Context) ([]*domain.DiscountCode, error) {
	result := make([]*domain.DiscountCode, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, c := range st.codes {
			if c.IsAutomatic() && c.Active {
				cp := *c
				result = append(result, &cp)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, err
}

// CountUsages общее число использований кода
func (r *DiscountRepository) CountUsages(ctx context.Context, codeID int64) (int, error) {
	return r.count(ctx, func(u *domain.DiscountUsage) bool { return u.CodeID == codeID })
}

// CountClientUsages число использований кода клиентом
func (r *DiscountRepository) CountClientUsages(ctx context.Context, codeID, clientID int64) (int, error) {
	return r.count(ctx, func(u *domain.DiscountUsage) bool { return u.CodeID == codeID && u.ClientID == clientID })
}

func (r *DiscountRepository) count(ctx context.Context, match func(u *domain.DiscountUsage) bool) (int, error) {
	n := 0
	err := r.s.with(ctx, func(st *state) error {
		for _, u := range st.discountUsages {
			if match(u) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// CreateUsage записывает использование кода
func (r *DiscountRepository) CreateUsage(ctx context.Context, usage *domain.DiscountUsage) (*domain.DiscountUsage, error) {
	err := r.s.with(ctx, func(st *state) error {
		usage.ID = st.id()
		cp := *usage
		st.discountUsages[usage.ID] = &cp
		return nil
	})
	return usage, err
}

// DeleteUsageByBooking удаляет использования кода бронированием
func (r *DiscountRepository) DeleteUsageByBooking(ctx context.Context, bookingID int64) (bool, error) {
	deleted := false
	err := r.s.with(ctx, func(st *state) error {
		for id, u := range st.discountUsages {
			if u.BookingID == bookingID {
				delete(st.discountUsages, id)
				deleted = true
			}
		}
		return nil
	})
	return deleted, err
}
