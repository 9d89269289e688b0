package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/psqlbuilder"
)

const tableName = "bookings"

var columns = []string{
	"id",
	"client_id",
	"person_id",
	"starts_at",
	"session_type",
	"accompanied",
	"display_minutes",
	"blocking_minutes",
	"price",
	"original_price",
	"discount_amount",
	"discount_code_id",
	"prepaid_pack_id",
	"status",
	"confirmation_token",
	"consent",
	"consent_at",
	"ip_address",
	"user_agent",
	"created_at",
	"updated_at",
	"confirmed_at",
	"cancelled_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"client_id",
			"person_id",
			"starts_at",
			"session_type",
			"accompanied",
			"display_minutes",
			"blocking_minutes",
			"price",
			"original_price",
			"discount_amount",
			"discount_code_id",
			"prepaid_pack_id",
			"status",
			"confirmation_token",
			"consent",
			"consent_at",
			"ip_address",
			"user_agent",
		).
		Values(
			booking.ClientID,
			booking.PersonID,
			booking.StartsAt,
			booking.SessionType,
			booking.Accompanied,
			booking.DisplayMinutes,
			booking.BlockingMinutes,
			booking.Price,
			booking.OriginalPrice,
			booking.DiscountAmount,
			booking.DiscountCodeID,
			booking.PrepaidPackID,
			booking.Status,
			booking.ConfirmationToken,
			booking.Consent,
			booking.ConsentAt,
			booking.IPAddress,
			booking.UserAgent,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: Create - %v", ErrDuplicateToken, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByToken получает бронирование по токену подтверждения.
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return r.getOne(ctx, "GetByToken", squirrel.Eq{"confirmation_token": token})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
	}

	return booking, nil
}

// GetOverlapping получает бронирования с указанными статусами,
// чей занятый интервал [starts_at, starts_at + blocking_minutes) пересекается с [from, to)
func (r *Repository) GetOverlapping(ctx context.Context, from, to time.Time, statuses []domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusValues := make([]string, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"status": statusValues}).
		Where(squirrel.Lt{"starts_at": to}).
		Where(squirrel.Expr("starts_at + make_interval(mins => blocking_minutes) > ?", from)).
		OrderBy("starts_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOverlapping - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverlapping - rows iteration: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// CountByClient количество бронирований клиента в статусах, отличных от cancelled
func (r *Repository) CountByClient(ctx context.Context, clientID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableName).
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountByClient - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountByClient - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// UpdateStatus условно меняет статус: строка обновляется только если текущий статус равен from.
// Проставляет confirmed_at / cancelled_at для соответствующих переходов
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	update := psqlbuilder.Update(tableName).
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from})

	switch to {
	case domain.StatusConfirmed:
		update = update.Set("confirmed_at", at)
	case domain.StatusCancelled:
		update = update.Set("cancelled_at", at)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.PersonID,
		&booking.StartsAt,
		&booking.SessionType,
		&booking.Accompanied,
		&booking.DisplayMinutes,
		&booking.BlockingMinutes,
		&booking.Price,
		&booking.OriginalPrice,
		&booking.DiscountAmount,
		&booking.DiscountCodeID,
		&booking.PrepaidPackID,
		&booking.Status,
		&booking.ConfirmationToken,
		&booking.Consent,
		&booking.ConsentAt,
		&booking.IPAddress,
		&booking.UserAgent,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
