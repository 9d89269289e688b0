package discount

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/RoomBookingService/internal/domain"
	"github.com/m04kA/RoomBookingService/pkg/dbmetrics"
	"github.com/m04kA/RoomBookingService/pkg/psqlbuilder"
)

const (
	codesTable  = "discount_codes"
	usagesTable = "discount_usages"
)

var codeColumns = []string{
	"id",
	"code",
	"auto_rule",
	"kind",
	"value",
	"session_types",
	"client_classes",
	"max_uses",
	"max_uses_per_client",
	"valid_from",
	"valid_until",
	"active",
	"created_at",
}

// Repository репозиторий кодов скидок и их использований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория кодов скидок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode ищет ручной код без учёта регистра
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(codeColumns...).
		From(codesTable).
		Where(squirrel.Expr("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code)))).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	dc, err := scanCode(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan code: %v", ErrScanRow, err)
	}

	return dc, nil
}

// ListAutomatic активные коды с правилом автоматического применения
func (r *Repository) ListAutomatic(ctx context.Context) ([]*domain.DiscountCode, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(codeColumns...).
		From(codesTable).
		Where(squirrel.NotEq{"auto_rule": string(domain.AutoRuleNone)}).
		Where(squirrel.Eq{"active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListAutomatic - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAutomatic - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	codes := make([]*domain.DiscountCode, 0)
	for rows.Next() {
		dc, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListAutomatic - scan code: %v", ErrScanRow, err)
		}
		codes = append(codes, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListAutomatic - rows iteration: %v", ErrScanRow, err)
	}

	return codes, nil
}

// CountUsages общее число использований кода
func (r *Repository) CountUsages(ctx context.Context, codeID int64) (int, error) {
	return r.count(ctx, "CountUsages", squirrel.Eq{"code_id": codeID})
}

// CountClientUsages число использований кода клиентом
func (r *Repository) CountClientUsages(ctx context.Context, codeID, clientID int64) (int, error) {
	return r.count(ctx, "CountClientUsages", squirrel.Eq{"code_id": codeID, "client_id": clientID})
}

func (r *Repository) count(ctx context.Context, op string, where squirrel.Sqlizer) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(usagesTable).
		Where(where).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var n int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %s - scan count: %v", ErrScanRow, op, err)
	}

	return n, nil
}

// CreateUsage записывает использование кода
func (r *Repository) CreateUsage(ctx context.Context, usage *domain.DiscountUsage) (*domain.DiscountUsage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(usagesTable).
		Columns("code_id", "client_id", "booking_id", "used_at").
		Values(usage.CodeID, usage.ClientID, usage.BookingID, usage.UsedAt).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateUsage - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&usage.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateUsage - execute insert: %v", ErrExecQuery, err)
	}

	return usage, nil
}

// DeleteUsageByBooking удаляет использование кода при отмене бронирования.
// Возвращает false, если использования не было
func (r *Repository) DeleteUsageByBooking(ctx context.Context, bookingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(usagesTable).
		Where(squirrel.Eq{"booking_id": bookingID}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: DeleteUsageByBooking - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: DeleteUsageByBooking - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: DeleteUsageByBooking - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCode(row rowScanner) (*domain.DiscountCode, error) {
	var (
		dc            domain.DiscountCode
		autoRule      sql.NullString
		sessionTypes  []string
		clientClasses []string
		maxUses       sql.NullInt64
		maxPerClient  sql.NullInt64
	)

	err := row.Scan(
		&dc.ID,
		&dc.Code,
		&autoRule,
		&dc.Kind,
		&dc.Value,
		pq.Array(&sessionTypes),
		pq.Array(&clientClasses),
		&maxUses,
		&maxPerClient,
		&dc.ValidFrom,
		&dc.ValidUntil,
		&dc.Active,
		&dc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	dc.AutoRule = domain.AutoRule(autoRule.String)
	for _, st := range sessionTypes {
		dc.SessionTypes = append(dc.SessionTypes, domain.SessionType(st))
	}
	for _, cc := range clientClasses {
		dc.ClientClasses = append(dc.ClientClasses, domain.ClientClass(cc))
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		dc.MaxUses = &n
	}
	if maxPerClient.Valid {
		n := int(maxPerClient.Int64)
		dc.MaxUsesPerClient = &n
	}

	return &dc, nil
}
