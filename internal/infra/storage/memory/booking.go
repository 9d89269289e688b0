package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/RoomBookingService/internal/domain"
	bookingRepo "github.com/m04kA/RoomBookingService/internal/infra/storage/booking"
)

// BookingRepository бронирования в памяти
type BookingRepository struct {
	s *Store
}

// Create сохраняет копию бронирования
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	err := r.s.with(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.ConfirmationToken == booking.ConfirmationToken {
				return bookingRepo.ErrDuplicateToken
			}
		}
		now := r.s.now()
		booking.ID = st.id()
		booking.CreatedAt = now
		booking.UpdatedAt = now
		cp := *booking
		st.bookings[booking.ID] = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var result *domain.Booking
	err := r.s.with(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		cp := *b
		result = &cp
		return nil
	})
	return result, err
}

// GetByToken получает бронирование по токену подтверждения
func (r *BookingRepository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	var result *domain.Booking
	err := r.s.with(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.ConfirmationToken == token {
				cp := *b
				result = &cp
				return nil
			}
		}
		return bookingRepo.ErrBookingNotFound
	})
	return result, err
}

// GetOverlapping бронирования с указанными статусами, пересекающиеся с [from, to)
func (r *BookingRepository) GetOverlapping(ctx context.Context, from, to time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if !hasStatus(b.Status, statuses) || !b.Overlaps(from, to) {
				continue
			}
			cp := *b
			result = append(result, &cp)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, err
}

// CountByClient число бронирований клиента, кроме отменённых
func (r *BookingRepository) CountByClient(ctx context.Context, clientID int64) (int, error) {
	count := 0
	err := r.s.with(ctx, func(st *state) error {
		for _, b := range st.bookings {
			if b.ClientID == clientID && b.Status != domain.StatusCancelled {
				count++
			}
		}
		return nil
	})
	return count, err
}

// UpdateStatus условно меняет статус from -> to
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	return r.s.with(ctx, func(st *state) error {
		b, ok := st.bookings[id]
		if !ok || b.Status != from {
			return bookingRepo.ErrStatusConflict
		}
		b.Status = to
		b.UpdatedAt = at
		switch to {
		case domain.StatusConfirmed:
			b.ConfirmedAt = &at
		case domain.StatusCancelled:
			b.CancelledAt = &at
		}
		return nil
	})
}

func hasStatus(status domain.BookingStatus, statuses []domain.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
