package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
)

// OffDayRepository закрытые дни в памяти
type OffDayRepository struct {
	s *Store
}

// Add добавляет закрытый диапазон
func (r *OffDayRepository) Add(ctx context.Context, o *domain.OffDay) (*domain.OffDay, error) {
	err := r.s.with(ctx, func(st *state) error {
		o.ID = st.id()
		cp := *o
		st.offDays[o.ID] = &cp
		return nil
	})
	return o, err
}

// ListInRange закрытые диапазоны, пересекающиеся с [from, to]
func (r *OffDayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*domain.OffDay, error) {
	result := make([]*domain.OffDay, 0)
	fromDate, toDate := domain.DateOnly(from), domain.DateOnly(to)
	err := r.s.with(ctx, func(st *state) error {
		for _, o := range st.offDays {
			if domain.DateOnly(o.StartDate).After(toDate) || domain.DateOnly(o.EndDate).Before(fromDate) {
				continue
			}
			cp := *o
			result = append(result, &cp)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result, err
}

// SettingsRepository настройки в памяти
type SettingsRepository struct {
	s *Store
}

// Set задаёт значение настройки
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.s.with(ctx, func(st *state) error {
		st.settings[key] = value
		return nil
	})
}

// GetAll копия всех настроек
func (r *SettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)
	err := r.s.with(ctx, func(st *state) error {
		for k, v := range st.settings {
			result[k] = v
		}
		return nil
	})
	return result, err
}

// AuditRepository журнал аудита в памяти
type AuditRepository struct {
	s *Store
}

// Create добавляет запись
func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return r.s.with(ctx, func(st *state) error {
		entry.ID = st.id()
		cp := *entry
		st.audit = append(st.audit, &cp)
		return nil
	})
}

// Entries все записи в порядке добавления
func (r *AuditRepository) Entries(ctx context.Context) ([]*domain.AuditEntry, error) {
	var result []*domain.AuditEntry
	err := r.s.with(ctx, func(st *state) error {
		for _, e := range st.audit {
			cp := *e
			result = append(result, &cp)
		}
		return nil
	})
	return result, err
}
