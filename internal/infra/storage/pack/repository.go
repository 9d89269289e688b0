package pack

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

const (
	packsTable  = "prepaid_packs"
	usagesTable = "pack_usages"
)

var packColumns = []string{
	"id",
	"client_id",
	"pack_type",
	"price",
	"sessions_total",
	"sessions_consumed",
	"session_type",
	"expires_at",
	"active",
	"purchased_at",
}

// Repository репозиторий предоплаченных пакетов и их списаний
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пакетов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListByClient все пакеты клиента
func (r *Repository) ListByClient(ctx context.Context, clientID int64) ([]*domain.PrepaidPack, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(packColumns...).
		From(packsTable).
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("purchased_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClient - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	packs := make([]*domain.PrepaidPack, 0)
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByClient - scan pack: %v", ErrScanRow, err)
		}
		packs = append(packs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByClient - rows iteration: %v", ErrScanRow, err)
	}

	return packs, nil
}

// GetByID получает пакет по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PrepaidPack, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(packColumns...).
		From(packsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPack(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrPackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan pack: %v", ErrScanRow, err)
	}

	return p, nil
}

// ConsumeOne условно увеличивает sessions_consumed.
// Возвращает false, если ни одна строка не изменилась: пакет исчерпан, неактивен или истёк
func (r *Repository) ConsumeOne(ctx context.Context, packID int64, now time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(packsTable).
		Set("sessions_consumed", squirrel.Expr("sessions_consumed + 1")).
		Where(squirrel.Eq{"id": packID, "active": true}).
		Where("sessions_consumed < sessions_total").
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.GtOrEq{"expires_at": now},
		}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ConsumeOne - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, executor, "ConsumeOne", query, args)
}

// RestoreOne условно уменьшает sessions_consumed (WHERE sessions_consumed > 0)
func (r *Repository) RestoreOne(ctx context.Context, packID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(packsTable).
		Set("sessions_consumed", squirrel.Expr("sessions_consumed - 1")).
		Where(squirrel.Eq{"id": packID}).
		Where("sessions_consumed > 0").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: RestoreOne - build update query: %v", ErrBuildQuery, err)
	}

	return r.execConditional(ctx, executor, "RestoreOne", query, args)
}

func (r *Repository) execConditional(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (bool, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	return rowsAffected == 1, nil
}

// CreateUsage записывает списание. Уникальный индекс по booking_id гарантирует одно списание на бронирование
func (r *Repository) CreateUsage(ctx context.Context, usage *domain.PackUsage) (*domain.PackUsage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(usagesTable).
		Columns("pack_id", "booking_id", "used_at").
		Values(usage.PackID, usage.BookingID, usage.UsedAt).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateUsage - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&usage.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUsageExists
		}
		return nil, fmt.Errorf("%w: CreateUsage - execute insert: %v", ErrExecQuery, err)
	}

	return usage, nil
}

// GetUsageByBooking получает списание, связанное с бронированием
func (r *Repository) GetUsageByBooking(ctx context.Context, bookingID int64) (*domain.PackUsage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "pack_id", "booking_id", "used_at").
		From(usagesTable).
		Where(squirrel.Eq{"booking_id": bookingID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetUsageByBooking - build select query: %v", ErrBuildQuery, err)
	}

	var usage domain.PackUsage
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&usage.ID,
		&usage.PackID,
		&usage.BookingID,
		&usage.UsedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUsageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetUsageByBooking - scan usage: %v", ErrScanRow, err)
	}

	return &usage, nil
}

// DeleteUsage удаляет списание (возврат кредита)
func (r *Repository) DeleteUsage(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(usagesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteUsage - build delete query: %v", ErrBuildQuery, err)
	}

	deleted, err := r.execConditional(ctx, executor, "DeleteUsage", query, args)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUsageNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPack(row rowScanner) (*domain.PrepaidPack, error) {
	var p domain.PrepaidPack
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.PackType,
		&p.Price,
		&p.SessionsTotal,
		&p.SessionsConsumed,
		&p.SessionType,
		&p.ExpiresAt,
		&p.Active,
		&p.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
